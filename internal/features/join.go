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

package features

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// contextPoint is one time-stamped context reading (met variable or
// PBLH) at a spatial bucket, ready for the asof sweep.
type contextPoint struct {
	t      time.Time
	values map[string]float64
}

// spatialIndex buckets context points by rounded (lat, lon) and keeps
// each bucket sorted by time, so joinNearest can binary-search the
// nearest timestamp within tolerance per station row -- the two-pointer
// sweep over time-sorted, spatially-bucketed sequences §9 asks for in
// place of a data-frame asof-merge.
type spatialIndex map[string][]contextPoint

func bucketKey(lat, lon, roundDeg float64) string {
	if roundDeg <= 0 {
		roundDeg = 0.1
	}
	r := func(v float64) float64 { return math.Round(v/roundDeg) * roundDeg }
	return fmt.Sprintf("%.4f,%.4f", r(lat), r(lon))
}

// indexMet groups met observations by spatial bucket and variable,
// merging same-bucket-same-time variables into one context point.
func indexMet(met []MetObservation, roundDeg float64) spatialIndex {
	type key struct {
		bucket string
		t      time.Time
	}
	merged := make(map[key]map[string]float64)
	var order []key
	for _, m := range met {
		k := key{bucket: bucketKey(m.Lat, m.Lon, roundDeg), t: m.GranuleTime}
		v, ok := merged[k]
		if !ok {
			v = map[string]float64{}
			merged[k] = v
			order = append(order, k)
		}
		v[string(m.Variable)] = m.Value
	}
	idx := spatialIndex{}
	for _, k := range order {
		idx[k.bucket] = append(idx[k.bucket], contextPoint{t: k.t, values: merged[k]})
	}
	for b := range idx {
		sort.Slice(idx[b], func(i, j int) bool { return idx[b][i].t.Before(idx[b][j].t) })
	}
	return idx
}

// indexPBLH groups PBLH samples by spatial bucket.
func indexPBLH(pblh []PBLHObservation, roundDeg float64) spatialIndex {
	idx := spatialIndex{}
	for _, p := range pblh {
		k := bucketKey(p.Lat, p.Lon, roundDeg)
		idx[k] = append(idx[k], contextPoint{t: p.Timestamp, values: map[string]float64{"pbl_height_m": p.PBLHeightM}})
	}
	for b := range idx {
		sort.Slice(idx[b], func(i, j int) bool { return idx[b][i].t.Before(idx[b][j].t) })
	}
	return idx
}

// joinNearest implements §4.4's cross-source enrichment: for each
// station row, find the bucket's temporally nearest context point
// within tolerance and copy its values in. One-directional: a station
// row gains at most the one nearest context point, never duplicating
// the row itself; beyond tolerance (or with no bucket match) the
// context columns are simply absent (left null, i.e. not set in Values).
func joinNearest(rows []Row, idx spatialIndex, tolerance time.Duration) {
	for i := range rows {
		bucket := bucketKey(rows[i].Lat, rows[i].Lon, 0.1)
		points := idx[bucket]
		if len(points) == 0 {
			continue
		}
		best, ok := nearestWithinTolerance(points, rows[i].ObservationTime, tolerance)
		if !ok {
			continue
		}
		for k, v := range best.values {
			rows[i].Values[k] = v
		}
	}
}

// nearestWithinTolerance binary-searches the time-sorted points slice
// for the entry closest to t, returning false if the closest entry
// still falls outside tolerance.
func nearestWithinTolerance(points []contextPoint, t time.Time, tolerance time.Duration) (contextPoint, bool) {
	n := len(points)
	j := sort.Search(n, func(i int) bool { return !points[i].t.Before(t) })

	var best contextPoint
	bestDiff := time.Duration(math.MaxInt64)
	found := false
	for _, cand := range []int{j - 1, j} {
		if cand < 0 || cand >= n {
			continue
		}
		diff := points[cand].t.Sub(t)
		if diff < 0 {
			diff = -diff
		}
		if !found || diff < bestDiff {
			best, bestDiff, found = points[cand], diff, true
		}
	}
	if !found || bestDiff > tolerance {
		return contextPoint{}, false
	}
	return best, true
}

// addFireProximity implements §4.4's fire-proximity features: for each
// station row, the count and FRP sum of same-calendar-date fires
// within radiusKM using the documented equirectangular approximation.
func addFireProximity(rows []Row, fire []FireObservation, radiusKM float64) {
	byDate := make(map[string][]FireObservation)
	for _, f := range fire {
		d := f.AcqDate.Format("2006-01-02")
		byDate[d] = append(byDate[d], f)
	}
	for i := range rows {
		d := rows[i].ObservationTime.Format("2006-01-02")
		fires, ok := byDate[d]
		rows[i].Values[colFireCount] = 0
		rows[i].Values[colFireFRPSum] = 0
		if !ok {
			continue
		}
		count := 0
		var frpSum float64
		for _, f := range fires {
			if equirectangularKM(rows[i].Lat, rows[i].Lon, f.Lat, f.Lon) <= radiusKM {
				count++
				frpSum += f.FRP
			}
		}
		rows[i].Values[colFireCount] = float64(count)
		rows[i].Values[colFireFRPSum] = frpSum
	}
}

// equirectangularKM implements the documented approximation from §4.4:
// sqrt(dlat^2 + dlon^2) * 111. Adequate at the ~50km radii involved;
// not a substitute for a true great-circle distance at larger scales.
func equirectangularKM(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := lat1 - lat2
	dlon := lon1 - lon2
	return math.Sqrt(dlat*dlat+dlon*dlon) * 111
}
