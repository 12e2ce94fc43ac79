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

// Package ingest wires C1 (sources) -> C2 (schema) -> C3 (store) into
// the single ingest cycle described in §2 and exposed at §6's
// POST /ingest. One source's failure never aborts another's -- each
// adapter is already failure-contained per §4.1, and each table's
// persistence batch is independent per §4.3.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aerosphere/aerosphere/internal/metrics"
	"github.com/aerosphere/aerosphere/internal/schema"
	"github.com/aerosphere/aerosphere/internal/sources"
	"github.com/aerosphere/aerosphere/internal/store"
)

// TableResult is the per-table counter triple of §8's quantified
// invariant: inserted + duplicate_skipped + invalid_skipped = len(candidates).
type TableResult struct {
	Inserted         int `json:"inserted"`
	DuplicateSkipped int `json:"duplicate_skipped"`
	InvalidSkipped   int `json:"invalid_skipped"`
}

// Report is the response envelope for §6's POST /ingest. mu guards
// PerSource since every source adapter's ingest task writes into it
// concurrently from Run's errgroup fan-out; it's a pointer so Report
// stays safe to return and copy by value once Run's fan-out completes.
type Report struct {
	RunID     string                             `json:"run_id"`
	PerSource map[string]map[string]TableResult `json:"per_source"`

	mu *sync.Mutex
}

func (r *Report) record(source string, table schema.TableName, tr TableResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.PerSource[source] == nil {
		r.PerSource[source] = make(map[string]TableResult)
	}
	r.PerSource[source][string(table)] = tr
}

// Orchestrator ties every configured adapter to the schema validators
// and the shared store. A nil adapter field means that source is not
// configured and is skipped silently (distinct from a configured
// source returning empty, which still appears in the report with all
// zero counts).
type Orchestrator struct {
	Ground     *sources.GroundAdapter
	GroundBBox sources.BoundingBox

	SatelliteNO2  *sources.SatelliteAdapter
	SatelliteHCHO *sources.SatelliteAdapter
	SatelliteO3   *sources.SatelliteAdapter

	Met   *sources.MetAdapter
	PBLH  *sources.PBLHAdapter
	Fire  *sources.FireAdapter

	Gridded   *sources.GriddedWeatherAdapter
	GridCells []sources.GridCell

	Store     store.Store
	BatchSize int
	Log       *logrus.Entry

	// Metrics is optional; a nil value disables counter increments
	// entirely rather than requiring a caller to wire a discard sink.
	Metrics *metrics.Metrics
}

// sourceNames are the keys recognized by the optional `sources` filter
// on POST /ingest.
const (
	SourceGround    = "ground"
	SourceNO2       = "satellite_no2"
	SourceHCHO      = "satellite_hcho"
	SourceO3        = "satellite_o3"
	SourceMet       = "reanalysis_met"
	SourcePBLH      = "pblh"
	SourceFire      = "fire_detection"
	SourceGridded   = "gridded_weather"
)

// Run executes one ingest cycle over window, restricted to enabled if
// non-empty, fanning out one task per configured source adapter --
// each adapter already contains its own failures (logged, not
// propagated), so every task always returns nil and one source's
// slowness or failure never delays or aborts another's. It is safe to
// call repeatedly with an unchanged window and unchanged upstream data
// -- §8's idempotence property requires the second call to report
// inserted = 0 for every table.
func (o *Orchestrator) Run(ctx context.Context, window sources.Window, enabled []string) Report {
	report := Report{RunID: uuid.NewString(), PerSource: make(map[string]map[string]TableResult), mu: new(sync.Mutex)}
	now := time.Now().UTC()
	want := toSet(enabled)

	g := new(errgroup.Group)
	if o.Ground != nil && want.allows(SourceGround) {
		g.Go(func() error { o.ingestGround(ctx, window, now, &report); return nil })
	}
	if o.SatelliteNO2 != nil && want.allows(SourceNO2) {
		g.Go(func() error {
			o.ingestSatellite(ctx, window, now, o.SatelliteNO2, schema.SatelliteNO2Table, SourceNO2, &report)
			return nil
		})
	}
	if o.SatelliteHCHO != nil && want.allows(SourceHCHO) {
		g.Go(func() error {
			o.ingestSatellite(ctx, window, now, o.SatelliteHCHO, schema.SatelliteHCHOTable, SourceHCHO, &report)
			return nil
		})
	}
	if o.SatelliteO3 != nil && want.allows(SourceO3) {
		g.Go(func() error {
			o.ingestSatellite(ctx, window, now, o.SatelliteO3, schema.SatelliteO3Table, SourceO3, &report)
			return nil
		})
	}
	if o.Met != nil && want.allows(SourceMet) {
		g.Go(func() error { o.ingestMet(ctx, window, now, &report); return nil })
	}
	if o.PBLH != nil && want.allows(SourcePBLH) {
		g.Go(func() error { o.ingestPBLH(ctx, window, now, &report); return nil })
	}
	if o.Fire != nil && want.allows(SourceFire) {
		g.Go(func() error { o.ingestFire(ctx, window, now, &report); return nil })
	}
	if o.Gridded != nil && want.allows(SourceGridded) {
		g.Go(func() error { o.ingestGridded(ctx, now, &report); return nil })
	}
	_ = g.Wait()

	if o.Metrics != nil {
		o.Metrics.IngestRunsTotal.Inc()
	}
	return report
}

type sourceSet map[string]bool

func toSet(names []string) sourceSet {
	s := make(sourceSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

func (s sourceSet) allows(name string) bool {
	if len(s) == 0 {
		return true
	}
	return s[name]
}

func (o *Orchestrator) batchSize() int {
	if o.BatchSize <= 0 {
		return 10000
	}
	return o.BatchSize
}
