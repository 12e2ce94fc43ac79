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
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// GroundRawRecord is one (station, parameter, timestamp) reading as
// produced by a ground-station provider, before C2 canonicalizes
// Parameter and builds a schema.GroundAirQuality.
type GroundRawRecord struct {
	ObservationTime time.Time
	Lat, Lon        float64
	LocationID      string
	City, Country   string
	Parameter       string
	Value           float64
	Units           string
	Provider        string
	SensorID        string
}

// GroundProvider is one ground-station data provider (e.g. WAQI, EPA
// AirNow, OpenAQ). Implementations are independently invokable and
// share no state, per §4.1.
type GroundProvider interface {
	Name() string
	Fetch(ctx context.Context, window Window, bbox BoundingBox) ([]GroundRawRecord, error)
}

// GroundAdapter unions readings across every configured provider.
type GroundAdapter struct {
	Providers []GroundProvider
	Log       *logrus.Entry
}

// Fetch implements the multi-provider-union contract of §4.1: current
// readings over bbox, one record per (station, parameter, timestamp),
// with records missing a numeric value already dropped by each
// provider. A provider that errors contributes nothing for the cycle;
// the failure never aborts the union.
func (a *GroundAdapter) Fetch(ctx context.Context, window Window, bbox BoundingBox) []GroundRawRecord {
	type result struct {
		recs []GroundRawRecord
	}
	results := make([]result, len(a.Providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.Providers {
		i, p := i, p
		g.Go(func() error {
			recs, err := p.Fetch(gctx, window, bbox)
			if err != nil {
				if a.Log != nil {
					a.Log.WithError(err).WithField("provider", p.Name()).Warn("ground provider fetch failed, contributing empty")
				}
				return nil // SourceUnavailable: logged, not propagated.
			}
			results[i] = result{recs: recs}
			return nil
		})
	}
	_ = g.Wait() // no provider's error reaches the caller; see above.

	var out []GroundRawRecord
	for _, r := range results {
		out = append(out, r.recs...)
	}
	return out
}
