/*
Copyright © 2024 the AeroSphere authors.
This file is part of AeroSphere.

AeroSphere is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AeroSphere is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AeroSphere.  If not, see <http://www.gnu.org/licenses/>.*/

// Package features implements C4, the feature assembler: it pivots
// long-format ground readings into a wide per-observation row, joins
// in co-located meteorology/PBLH/fire context, and derives the
// temporal and autocorrelation columns the training and forecast
// engines both consume. There is no data-frame library in the stack
// that fits this (pandas-style wide frames aren't idiomatic Go and no
// example repo in the corpus pulls one in); the frame here is a plain
// slice of Row plus a known, statically-declared column set, matching
// the explicit-transform approach the rest of the pipeline uses for
// anything columnar (compare internal/store's RowSet).
package features

import (
	"math"
	"sort"
	"time"

	"github.com/aerosphere/aerosphere/internal/schema"
)

// GroundObservation is one long-format ground reading, the pivot's raw
// input.
type GroundObservation struct {
	ObservationTime time.Time
	Lat, Lon        float64
	LocationID      string
	City            string
	Parameter       schema.Pollutant
	Value           float64
}

// MetObservation is one co-located meteorology sample, the asof join's
// right side.
type MetObservation struct {
	GranuleTime time.Time
	Lat, Lon    float64
	Variable    schema.MetVariable
	Value       float64
}

// PBLHObservation is one co-located PBLH sample.
type PBLHObservation struct {
	Timestamp  time.Time
	Lat, Lon   float64
	PBLHeightM float64
}

// FireObservation is one active-fire detection for proximity scoring.
type FireObservation struct {
	AcqDate  time.Time
	Lat, Lon float64
	FRP      float64
}

// Row is one assembled (station, timestamp) feature row. Values holds
// every numeric feature column by name; Cols is the stable, ordered
// list of usable feature columns per §4.4's output contract (numeric
// only, identifiers and raw timestamps excluded -- those live as typed
// fields on Row itself, not in Values).
type Row struct {
	ObservationTime time.Time
	Lat, Lon        float64
	LocationID      string
	City            string
	Values          map[string]float64
}

// Frame is the assembled output of Assemble: every row plus the
// ordered feature-column list shared by all of them.
type Frame struct {
	Rows []Row
	Cols []string
}

// Options configures the assembler's join tolerances, all sourced from
// §6's `features.*` config keys.
type Options struct {
	AsofTolerance  time.Duration
	SpatialRoundDeg float64
	FireRadiusKM    float64
}

// DefaultOptions returns the documented default join tolerances.
func DefaultOptions() Options {
	return Options{AsofTolerance: time.Hour, SpatialRoundDeg: 0.1, FireRadiusKM: 50}
}

const (
	colHour           = "hour"
	colDayOfWeek      = "day_of_week"
	colMonth          = "month"
	colIsWeekend      = "is_weekend"
	colHourSin        = "hour_sin"
	colHourCos        = "hour_cos"
	colFireCount      = "fire_count_50km"
	colFireFRPSum     = "fire_frp_sum_50km"
)

var lagHours = []int{1, 6, 24}

const rollingWindow = 6

// Assemble implements §4.4 end to end: pivot, temporal features,
// autocorrelation features, cross-source asof joins, fire proximity.
func Assemble(ground []GroundObservation, met []MetObservation, pblh []PBLHObservation, fire []FireObservation, opts Options) Frame {
	rows, pollutantCols := pivot(ground)
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].ObservationTime.Equal(rows[j].ObservationTime) {
			return rows[i].ObservationTime.Before(rows[j].ObservationTime)
		}
		return rows[i].LocationID < rows[j].LocationID
	})

	addTemporalFeatures(rows)
	addAutocorrelationFeatures(rows, pollutantCols)

	metIndex := indexMet(met, opts.SpatialRoundDeg)
	joinNearest(rows, metIndex, opts.AsofTolerance)

	pblhIndex := indexPBLH(pblh, opts.SpatialRoundDeg)
	joinNearest(rows, pblhIndex, opts.AsofTolerance)

	if len(fire) > 0 {
		addFireProximity(rows, fire, opts.FireRadiusKM)
	}

	return Frame{Rows: rows, Cols: usableColumns(rows)}
}

// pivot reduces long-format ground readings to one Row per
// (observation_time, location_id), taking lat, lon, and city from the
// first reading seen for that key, and averaging
// duplicate (time, station, parameter) readings per §4.4's pivot
// aggregation rule.
func pivot(ground []GroundObservation) ([]Row, map[string]bool) {
	type key struct {
		t          time.Time
		locationID string
	}
	type agg struct {
		row  Row
		sums map[string]float64
		cnts map[string]int
	}
	byKey := make(map[key]*agg)
	var order []key
	pollutants := make(map[string]bool)

	for _, g := range ground {
		k := key{t: g.ObservationTime, locationID: g.LocationID}
		a, ok := byKey[k]
		if !ok {
			a = &agg{
				row: Row{
					ObservationTime: g.ObservationTime, Lat: g.Lat, Lon: g.Lon,
					LocationID: g.LocationID, City: g.City, Values: map[string]float64{},
				},
				sums: map[string]float64{}, cnts: map[string]int{},
			}
			byKey[k] = a
			order = append(order, k)
		}
		col := string(g.Parameter)
		a.sums[col] += g.Value
		a.cnts[col]++
		pollutants[col] = true
	}

	rows := make([]Row, 0, len(order))
	for _, k := range order {
		a := byKey[k]
		for col, sum := range a.sums {
			a.row.Values[col] = sum / float64(a.cnts[col])
		}
		rows = append(rows, a.row)
	}
	return rows, pollutants
}

// addTemporalFeatures derives hour/day_of_week/month/is_weekend and
// the cyclical hour encoding, per §4.4.
func addTemporalFeatures(rows []Row) {
	for i := range rows {
		setTemporal(rows[i].Values, rows[i].ObservationTime)
	}
}

func setTemporal(v map[string]float64, t time.Time) {
	hour := t.Hour()
	dow := int(t.Weekday())
	v[colHour] = float64(hour)
	v[colDayOfWeek] = float64(dow)
	v[colMonth] = float64(t.Month())
	if dow == int(time.Saturday) || dow == int(time.Sunday) {
		v[colIsWeekend] = 1
	} else {
		v[colIsWeekend] = 0
	}
	angle := 2 * math.Pi * float64(hour) / 24
	v[colHourSin] = math.Sin(angle)
	v[colHourCos] = math.Cos(angle)
}

// addAutocorrelationFeatures derives, for every pollutant column
// present, lagged values at {1,6,24}h and a 6h rolling mean/std,
// grouped by location_id and ordered by observation time (rows is
// already globally time-sorted, so a per-location filtered view
// preserves order).
func addAutocorrelationFeatures(rows []Row, pollutantCols map[string]bool) {
	byLocation := make(map[string][]int)
	for i, r := range rows {
		byLocation[r.LocationID] = append(byLocation[r.LocationID], i)
	}

	for col := range pollutantCols {
		for _, idxs := range byLocation {
			series := make([]float64, len(idxs))
			present := make([]bool, len(idxs))
			for j, idx := range idxs {
				if val, ok := rows[idx].Values[col]; ok {
					series[j] = val
					present[j] = true
				}
			}
			for _, lag := range lagHours {
				lagCol := col + "_lag_" + itoa(lag) + "h"
				for j := range idxs {
					if j-lag < 0 || !present[j-lag] {
						continue
					}
					rows[idxs[j]].Values[lagCol] = series[j-lag]
				}
			}
			meanCol := col + "_rolling_mean_6h"
			stdCol := col + "_rolling_std_6h"
			for j := range idxs {
				start := j - rollingWindow + 1
				if start < 0 {
					start = 0
				}
				var window []float64
				for k := start; k <= j; k++ {
					if present[k] {
						window = append(window, series[k])
					}
				}
				if len(window) == 0 {
					continue
				}
				mean, std := meanStd(window)
				rows[idxs[j]].Values[meanCol] = mean
				if len(window) > 1 {
					rows[idxs[j]].Values[stdCol] = std
				}
			}
		}
	}
}

func meanStd(xs []float64) (mean, std float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// usableColumns returns the sorted, stable union of numeric feature
// columns observed across rows -- the ordered list §4.4 requires
// downstream consumers (training, forecast reconstruction) to agree on.
func usableColumns(rows []Row) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		for c := range r.Values {
			seen[c] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
