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

package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosphere/aerosphere/internal/metrics"
	"github.com/aerosphere/aerosphere/internal/schema"
	"github.com/aerosphere/aerosphere/internal/sources"
	"github.com/aerosphere/aerosphere/internal/store"
)

// fakeGroundProvider returns a fixed record set, or an error when
// failOn is true -- used to exercise the one-provider-failure-never-
// aborts-another contract.
type fakeGroundProvider struct {
	name    string
	records []sources.GroundRawRecord
	failOn  bool
}

func (f *fakeGroundProvider) Name() string { return f.name }

func (f *fakeGroundProvider) Fetch(ctx context.Context, window sources.Window, bbox sources.BoundingBox) ([]sources.GroundRawRecord, error) {
	if f.failOn {
		return nil, errors.New("upstream unavailable")
	}
	return f.records, nil
}

func validRecord(locationID string, v float64) sources.GroundRawRecord {
	return sources.GroundRawRecord{
		ObservationTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Lat: 1, Lon: 1, LocationID: locationID, Parameter: "pm25", Value: v, SensorID: "s1",
	}
}

func TestOrchestratorUnionsAcrossProvidersIgnoringFailures(t *testing.T) {
	mem := store.NewMemStore()
	orch := &Orchestrator{
		Ground: &sources.GroundAdapter{Providers: []sources.GroundProvider{
			&fakeGroundProvider{name: "good", records: []sources.GroundRawRecord{validRecord("a", 10)}},
			&fakeGroundProvider{name: "bad", failOn: true},
		}},
		Store:     mem,
		BatchSize: 100,
	}
	report := orch.Run(context.Background(), sources.Window{Start: time.Now().Add(-time.Hour), End: time.Now()}, nil)

	res := report.PerSource[SourceGround][string(schema.GroundAirQualityTable)]
	assert.Equal(t, 1, res.Inserted, "the failing provider must not prevent the healthy one's rows from landing")
}

func TestOrchestratorIdempotentReplay(t *testing.T) {
	mem := store.NewMemStore()
	orch := &Orchestrator{
		Ground: &sources.GroundAdapter{Providers: []sources.GroundProvider{
			&fakeGroundProvider{name: "p", records: []sources.GroundRawRecord{validRecord("a", 10)}},
		}},
		Store:     mem,
		BatchSize: 100,
	}
	window := sources.Window{Start: time.Now().Add(-time.Hour), End: time.Now()}

	first := orch.Run(context.Background(), window, nil)
	require.Equal(t, 1, first.PerSource[SourceGround][string(schema.GroundAirQualityTable)].Inserted)

	second := orch.Run(context.Background(), window, nil)
	res := second.PerSource[SourceGround][string(schema.GroundAirQualityTable)]
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.DuplicateSkipped)
	assert.Equal(t, 1, mem.Count(schema.GroundAirQualityTable))
}

func TestOrchestratorSourceFilterRestrictsToEnabled(t *testing.T) {
	mem := store.NewMemStore()
	orch := &Orchestrator{
		Ground: &sources.GroundAdapter{Providers: []sources.GroundProvider{
			&fakeGroundProvider{name: "p", records: []sources.GroundRawRecord{validRecord("a", 10)}},
		}},
		Store:     mem,
		BatchSize: 100,
	}
	window := sources.Window{Start: time.Now().Add(-time.Hour), End: time.Now()}

	report := orch.Run(context.Background(), window, []string{"reanalysis_met"}) // ground not in the enabled set
	_, touched := report.PerSource[SourceGround]
	assert.False(t, touched, "ground must be skipped when excluded from the enabled sources list")
}

func TestOrchestratorInvalidRecordsCountedSeparately(t *testing.T) {
	mem := store.NewMemStore()
	bad := validRecord("a", 10)
	bad.Lat = 9999 // out of range, dropped by schema.GroundAirQuality.Validate
	orch := &Orchestrator{
		Ground: &sources.GroundAdapter{Providers: []sources.GroundProvider{
			&fakeGroundProvider{name: "p", records: []sources.GroundRawRecord{validRecord("a", 10), bad}},
		}},
		Store:     mem,
		BatchSize: 100,
	}
	report := orch.Run(context.Background(), sources.Window{Start: time.Now().Add(-time.Hour), End: time.Now()}, nil)
	res := report.PerSource[SourceGround][string(schema.GroundAirQualityTable)]
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.InvalidSkipped)
}

func TestOrchestratorIncrementsMetricsWhenProvided(t *testing.T) {
	mem := store.NewMemStore()
	m := metrics.New()
	orch := &Orchestrator{
		Ground: &sources.GroundAdapter{Providers: []sources.GroundProvider{
			&fakeGroundProvider{name: "p", records: []sources.GroundRawRecord{validRecord("a", 10)}},
		}},
		Store:     mem,
		BatchSize: 100,
		Metrics:   m,
	}
	orch.Run(context.Background(), sources.Window{Start: time.Now().Add(-time.Hour), End: time.Now()}, nil)

	mfs, err := m.Registry.Gather()
	require.NoError(t, err)
	var sawRuns, sawRows bool
	for _, mf := range mfs {
		switch mf.GetName() {
		case "aerosphere_ingest_runs_total":
			sawRuns = mf.GetMetric()[0].GetCounter().GetValue() == 1
		case "aerosphere_ingest_rows_total":
			sawRows = len(mf.GetMetric()) > 0
		}
	}
	assert.True(t, sawRuns)
	assert.True(t, sawRows)
}
