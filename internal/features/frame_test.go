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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosphere/aerosphere/internal/schema"
)

func at(h int) time.Time {
	return time.Date(2026, 1, 5, h, 0, 0, 0, time.UTC) // 2026-01-05 is a Monday
}

func TestPivotAveragesDuplicateReadings(t *testing.T) {
	ground := []GroundObservation{
		{ObservationTime: at(0), Lat: 1, Lon: 1, LocationID: "a", Parameter: schema.PM25, Value: 10},
		{ObservationTime: at(0), Lat: 1, Lon: 1, LocationID: "a", Parameter: schema.PM25, Value: 20},
	}
	rows, cols := pivot(ground)
	require.Len(t, rows, 1)
	assert.Equal(t, 15.0, rows[0].Values["pm25"])
	assert.True(t, cols["pm25"])
}

func TestTemporalFeatureValues(t *testing.T) {
	v := map[string]float64{}
	setTemporal(v, at(6)) // Monday 06:00
	assert.Equal(t, 6.0, v[colHour])
	assert.Equal(t, 1.0, v[colDayOfWeek]) // Monday
	assert.Equal(t, 1.0, v[colMonth])
	assert.Equal(t, 0.0, v[colIsWeekend])
	assert.InDelta(t, 1.0, v[colHourSin], 1e-9) // sin(2*pi*6/24) == sin(pi/2) == 1
	assert.InDelta(t, 0.0, v[colHourCos], 1e-9)

	weekend := map[string]float64{}
	sat := time.Date(2026, 1, 10, 6, 0, 0, 0, time.UTC) // a Saturday
	setTemporal(weekend, sat)
	assert.Equal(t, 1.0, weekend[colIsWeekend])
}

func TestLagAndRollingFeatures(t *testing.T) {
	ground := make([]GroundObservation, 0, 8)
	for h := 0; h < 8; h++ {
		ground = append(ground, GroundObservation{
			ObservationTime: at(h), Lat: 1, Lon: 1, LocationID: "a", Parameter: schema.PM25, Value: float64(h + 1),
		})
	}
	rows, cols := pivot(ground)
	addAutocorrelationFeatures(rows, cols)

	// Row at hour 1 (index 1, value 2) lags hour 0 (value 1).
	assert.Equal(t, 1.0, rows[1].Values["pm25_lag_1h"])
	// Row at hour 0 has no lag_1h (nothing precedes it).
	_, ok := rows[0].Values["pm25_lag_1h"]
	assert.False(t, ok)

	// Rolling mean at index 5 (hour 5, value 6) covers a 6h window
	// [h0..h5] = values 1..6, mean 3.5.
	assert.InDelta(t, 3.5, rows[5].Values["pm25_rolling_mean_6h"], 1e-9)
}

func TestAutocorrelationFeaturesAreIsolatedPerLocation(t *testing.T) {
	ground := []GroundObservation{
		{ObservationTime: at(0), Lat: 1, Lon: 1, LocationID: "a", Parameter: schema.PM25, Value: 100},
		{ObservationTime: at(1), Lat: 2, Lon: 2, LocationID: "b", Parameter: schema.PM25, Value: 5},
		{ObservationTime: at(1), Lat: 1, Lon: 1, LocationID: "a", Parameter: schema.PM25, Value: 10},
	}
	rows, cols := pivot(ground)
	addAutocorrelationFeatures(rows, cols)

	for _, r := range rows {
		if r.LocationID == "a" && r.ObservationTime.Equal(at(1)) {
			assert.Equal(t, 100.0, r.Values["pm25_lag_1h"], "location a's lag must come from location a, not b")
		}
	}
}

func TestJoinNearestWithinTolerance(t *testing.T) {
	rows := []Row{{ObservationTime: at(0), Lat: 1.0, Lon: 1.0, Values: map[string]float64{}}}
	met := []MetObservation{{GranuleTime: at(0).Add(30 * time.Minute), Lat: 1.0, Lon: 1.0, Variable: schema.T2M, Value: 290}}
	idx := indexMet(met, 0.1)
	joinNearest(rows, idx, time.Hour)
	assert.Equal(t, 290.0, rows[0].Values[string(schema.T2M)])
}

func TestJoinNearestOutsideToleranceLeavesNull(t *testing.T) {
	rows := []Row{{ObservationTime: at(0), Lat: 1.0, Lon: 1.0, Values: map[string]float64{}}}
	met := []MetObservation{{GranuleTime: at(3), Lat: 1.0, Lon: 1.0, Variable: schema.T2M, Value: 290}}
	idx := indexMet(met, 0.1)
	joinNearest(rows, idx, time.Hour)
	_, ok := rows[0].Values[string(schema.T2M)]
	assert.False(t, ok)
}

func TestFireProximityWithinRadius(t *testing.T) {
	rows := []Row{{ObservationTime: at(0), Lat: 0, Lon: 0, Values: map[string]float64{}}}
	fire := []FireObservation{
		{AcqDate: at(0), Lat: 0.05, Lon: 0.05, FRP: 10}, // ~7.8km away
		{AcqDate: at(0), Lat: 10, Lon: 10, FRP: 99},     // far away
	}
	addFireProximity(rows, fire, 50)
	assert.Equal(t, 1.0, rows[0].Values[colFireCount])
	assert.Equal(t, 10.0, rows[0].Values[colFireFRPSum])
}

func TestAssembleEndToEnd(t *testing.T) {
	ground := []GroundObservation{
		{ObservationTime: at(0), Lat: 1, Lon: 1, LocationID: "a", City: "x", Parameter: schema.PM25, Value: 12},
	}
	met := []MetObservation{{GranuleTime: at(0), Lat: 1, Lon: 1, Variable: schema.T2M, Value: 290}}
	frame := Assemble(ground, met, nil, nil, DefaultOptions())
	require.Len(t, frame.Rows, 1)
	assert.Contains(t, frame.Cols, "pm25")
	assert.Contains(t, frame.Cols, colHour)
	assert.Equal(t, 290.0, frame.Rows[0].Values[string(schema.T2M)])
}
