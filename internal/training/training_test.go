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

package training

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosphere/aerosphere/internal/features"
	"github.com/aerosphere/aerosphere/internal/metrics"
	"github.com/aerosphere/aerosphere/internal/registry"
	"github.com/aerosphere/aerosphere/internal/schema"
)

// linearFrame builds a frame with n rows for one location where pm25
// rises by 1 each hour, so a 1h-ahead target is trivially learnable.
func linearFrame(n int) features.Frame {
	rows := make([]features.Row, n)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		rows[i] = features.Row{
			ObservationTime: base.Add(time.Duration(i) * time.Hour),
			LocationID:      "a",
			Values:          map[string]float64{"pm25": float64(i), "hour": float64(i % 24)},
		}
	}
	return features.Frame{Rows: rows, Cols: []string{"pm25", "hour"}}
}

func TestBuildSupervisedShiftsTargetByHorizon(t *testing.T) {
	frame := linearFrame(10)
	X, y, locIDs := buildSupervised(frame, "pm25", 1)
	require.NotEmpty(t, X)
	// Row 0's 1h-ahead target is row 1's pm25 value (1.0).
	assert.Equal(t, 1.0, y[0])
	assert.Equal(t, "a", locIDs[0])
	// The last row has no row to shift to, so it's dropped.
	assert.Len(t, X, 9)
}

func TestBuildSupervisedDropsRowsMissingTarget(t *testing.T) {
	frame := linearFrame(3)
	frame.Rows[1].Values = map[string]float64{"hour": 1} // pm25 absent
	X, _, _ := buildSupervised(frame, "pm25", 1)
	// No row survives: row 0's 1h-ahead row lacks pm25, row 1 lacks pm25
	// itself, and row 2 has no later row to shift to.
	assert.Len(t, X, 0)
}

func TestRunSkipsInsufficientData(t *testing.T) {
	frame := linearFrame(5) // far fewer than MinTrainRows
	reg := registry.New()
	report := Run(frame, []schema.Pollutant{schema.PM25}, Params{Horizons: []int{1}, SplitFraction: 0.8, MinTrainRows: 20}, reg, nil, nil)

	require.Len(t, report.Skipped, 1)
	assert.Empty(t, report.Trained)
	_, _, ok := reg.Resolve(schema.PM25, 1)
	assert.False(t, ok, "a skipped pair must not register a model")
}

func TestRunSkipsMissingTargetColumn(t *testing.T) {
	frame := linearFrame(50)
	reg := registry.New()
	report := Run(frame, []schema.Pollutant{schema.NO2}, Params{Horizons: []int{1}}, reg, nil, nil)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, schema.NO2, report.Skipped[0].Pollutant)
}

func TestRunTrainsAndRegistersEntry(t *testing.T) {
	frame := linearFrame(50)
	reg := registry.New()
	report := Run(frame, []schema.Pollutant{schema.PM25}, Params{Horizons: []int{1}, SplitFraction: 0.8, MinTrainRows: 20}, reg, nil, nil)

	require.Len(t, report.Trained, 1)
	outcome := report.Trained[0]
	assert.Len(t, outcome.Metrics, 3) // one per model in models.AllNames
	assert.NotEmpty(t, outcome.BestModel)

	entry, used, ok := reg.Resolve(schema.PM25, 1)
	require.True(t, ok)
	assert.Equal(t, 1, used)
	assert.NotNil(t, entry.Scaler)
}

func TestRunIncrementsMetricsWhenProvided(t *testing.T) {
	frame := linearFrame(50)
	reg := registry.New()
	m := metrics.New()
	Run(frame, []schema.Pollutant{schema.PM25, schema.NO2}, Params{Horizons: []int{1}, MinTrainRows: 20}, reg, nil, m)

	assert.InDelta(t, 1.0, counterValue(t, m), 0, "TrainRunsTotal increments exactly once per Run call")
}

func counterValue(t *testing.T, m *metrics.Metrics) float64 {
	t.Helper()
	mfs, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "aerosphere_train_runs_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatal("aerosphere_train_runs_total not found in registry")
	return 0
}

func TestNormalizeSumsToOne(t *testing.T) {
	out := normalize([]float64{1, 1, 2})
	var sum float64
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestNormalizeZeroTotalReturnsZeros(t *testing.T) {
	out := normalize([]float64{0, 0})
	assert.Equal(t, []float64{0, 0}, out)
}
