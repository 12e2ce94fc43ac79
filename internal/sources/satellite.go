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

package sources

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// GranulePoint is one sampled (lat, lon, value) point read out of a
// satellite granule, alongside whatever quality information that
// product attaches.
type GranulePoint struct {
	Lat, Lon    float64
	Value       float64
	Uncertainty *float64
	QualityFlag *int
}

// Granule describes one satellite overpass file intersecting a fetch
// window.
type Granule struct {
	SourceFile  string
	MidpointUTC int64 // Unix seconds; kept as an int64 to avoid importing time in the decode boundary.
}

// GranuleFetcher is the vendor-specific boundary §1 keeps out of the
// core: discovering granules for a window (Earthdata/CMR) and decoding
// one into sampled points (a NetCDF reader) are both external
// concerns. The core only depends on this interface.
type GranuleFetcher interface {
	FindGranules(ctx context.Context, window Window) ([]Granule, error)
	Decode(ctx context.Context, g Granule, maxPoints int) ([]GranulePoint, error)
}

// QualityFilter reports whether a sampled point passes a product's
// admission filter (invariant 5). Each filter decides for itself what a
// point with no quality flag gets: HCHOFilter rejects it, while
// products with no quality flag at all (e.g. NO2) admit every point.
type QualityFilter func(p GranulePoint) bool

// SatelliteAdapter fetches one column product (NO2, HCHO, or O3).
type SatelliteAdapter struct {
	Product   string
	Fetcher   GranuleFetcher
	MaxPoints int
	Filter    QualityFilter
	Cache     *FetchCache
	Log       *logrus.Entry
}

// NO2Filter admits every point; TEMPO/OMI NO2 has no documented
// quality-flag gate in the source system.
func NO2Filter(GranulePoint) bool { return true }

// HCHOFilter implements "HCHO: quality_flag >= 0" from invariant 5.
func HCHOFilter(p GranulePoint) bool {
	return p.QualityFlag != nil && *p.QualityFlag >= 0
}

// O3Filter admits every point; the WAQI-sourced O3 AQI feed carries no
// per-point quality flag.
func O3Filter(GranulePoint) bool { return true }

// SampleRecord is the emitted record shape before C2 validation; it
// maps 1:1 onto schema.SatelliteColumn modulo ObservationTime which the
// caller fills in from the granule midpoint.
type SampleRecord struct {
	Lat, Lon    float64
	ColumnValue float64
	Uncertainty *float64
	QualityFlag *int
	SourceFile  string
	MidpointUTC int64
}

// Fetch implements §4.1's satellite contract: find granules
// intersecting window, decode and subsample each to at most MaxPoints,
// apply the quality filter, and stamp every emitted point with the
// granule's midpoint time. A granule that fails to decode is skipped
// with a warning; the adapter never aborts the whole fetch over one
// bad granule.
func (a *SatelliteAdapter) Fetch(ctx context.Context, window Window) []SampleRecord {
	granules, err := a.Fetcher.FindGranules(ctx, window)
	if err != nil {
		if a.Log != nil {
			a.Log.WithError(err).WithField("product", a.Product).Warn("satellite granule discovery failed, contributing empty")
		}
		return nil
	}

	results := make([][]SampleRecord, len(granules))
	g, gctx := errgroup.WithContext(ctx)
	for i, gr := range granules {
		i, gr := i, gr
		g.Go(func() error {
			points, err := a.decode(gctx, gr)
			if err != nil {
				if a.Log != nil {
					a.Log.WithError(err).WithFields(logrus.Fields{"product": a.Product, "granule": gr.SourceFile}).
						Warn("granule decode failed, skipping")
				}
				return nil
			}
			var recs []SampleRecord
			for _, p := range points {
				if a.Filter != nil && !a.Filter(p) {
					continue
				}
				recs = append(recs, SampleRecord{
					Lat: p.Lat, Lon: p.Lon, ColumnValue: p.Value,
					Uncertainty: p.Uncertainty, QualityFlag: p.QualityFlag,
					SourceFile: gr.SourceFile, MidpointUTC: gr.MidpointUTC,
				})
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	var out []SampleRecord
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func (a *SatelliteAdapter) decode(ctx context.Context, g Granule) ([]GranulePoint, error) {
	if a.Cache == nil {
		return a.Fetcher.Decode(ctx, g, a.MaxPoints)
	}
	key := fmt.Sprintf("%s:%s:%d", a.Product, g.SourceFile, a.MaxPoints)
	v, err := a.Cache.Get(ctx, g, key)
	if err != nil {
		return nil, err
	}
	return v.([]GranulePoint), nil
}

// NewGranuleCache builds the FetchCache a SatelliteAdapter uses for
// decode(), with the worker bound to fetcher.Decode at maxPoints.
func NewGranuleCache(memSize, maxPoints int, fetcher GranuleFetcher) *FetchCache {
	return NewFetchCache(memSize, func(ctx context.Context, request interface{}) (interface{}, error) {
		return fetcher.Decode(ctx, request.(Granule), maxPoints)
	})
}
