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

	"github.com/sirupsen/logrus"

	"github.com/aerosphere/aerosphere/internal/schema"
)

// FireSample is one active-fire detection before C2 validation.
type FireSample struct {
	AcqDateUnix int64 // midnight UTC of the acquisition date.
	AcqTime     string
	Lat, Lon    float64
	FRP         float64
	Confidence  schema.Confidence
	Satellite   string
}

// FireFetcher retrieves raw fire detections for a window; the fetcher
// itself is expected to have already applied the provider-side
// confidence filter where the upstream API supports it.
type FireFetcher interface {
	Fetch(ctx context.Context, window Window) ([]FireSample, error)
}

// FireAdapter fetches active-fire detections and enforces the
// confidence filter of invariant 5 as a second line of defense,
// regardless of whether the upstream fetcher already applied it.
type FireAdapter struct {
	Fetcher FireFetcher
	Log     *logrus.Entry
}

// Fetch implements §4.1's fire-detection contract: filter by
// confidence in {nominal, high}.
func (a *FireAdapter) Fetch(ctx context.Context, window Window) []FireSample {
	samples, err := a.Fetcher.Fetch(ctx, window)
	if err != nil {
		if a.Log != nil {
			a.Log.WithError(err).Warn("fire fetch failed, contributing empty")
		}
		return nil
	}
	out := samples[:0:0]
	for _, s := range samples {
		if s.Confidence == schema.ConfidenceNominal || s.Confidence == schema.ConfidenceHigh {
			out = append(out, s)
		}
	}
	return out
}
