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
)

// MetSample is one (time, lat, lon, variable) reanalysis sample
// decoded from a meteorology granule, before C2 validation.
type MetSample struct {
	GranuleTime int64 // Unix seconds.
	Lat, Lon    float64
	Variable    string
	Value       float64
	Units       string
}

// MetGranuleFetcher finds and decodes reanalysis-meteorology granules.
// A single granule typically contains every variable on the full grid
// across multiple hours (§4.1); the decoder is responsible for
// subsampling to at most maxPointsPerVariable points per variable.
type MetGranuleFetcher interface {
	FindGranules(ctx context.Context, window Window) ([]Granule, error)
	Decode(ctx context.Context, g Granule, maxPointsPerVariable int) ([]MetSample, error)
}

// MetAdapter fetches reanalysis meteorology.
type MetAdapter struct {
	Fetcher              MetGranuleFetcher
	MaxPointsPerVariable int
	Log                  *logrus.Entry
}

// Fetch implements §4.1's reanalysis-met contract.
func (a *MetAdapter) Fetch(ctx context.Context, window Window) []MetSample {
	granules, err := a.Fetcher.FindGranules(ctx, window)
	if err != nil {
		if a.Log != nil {
			a.Log.WithError(err).Warn("met granule discovery failed, contributing empty")
		}
		return nil
	}
	var out []MetSample
	for _, g := range granules {
		samples, err := a.Fetcher.Decode(ctx, g, a.MaxPointsPerVariable)
		if err != nil {
			if a.Log != nil {
				a.Log.WithError(err).WithField("granule", g.SourceFile).Warn("met granule decode failed, skipping")
			}
			continue
		}
		out = append(out, samples...)
	}
	return out
}
