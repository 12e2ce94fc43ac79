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

// PBLHSample is one planetary-boundary-layer-height grid cell reading.
type PBLHSample struct {
	TimestampUTC int64
	Lat, Lon     float64
	PBLHeightM   float64
}

// PBLHFetcher retrieves PBLH cells over a continental bounding box.
type PBLHFetcher interface {
	Fetch(ctx context.Context, window Window, bbox BoundingBox) ([]PBLHSample, error)
}

// PBLHAdapter fetches planetary-boundary-layer heights.
type PBLHAdapter struct {
	Fetcher PBLHFetcher
	BBox    BoundingBox
	Log     *logrus.Entry
}

// Fetch implements §4.1's PBLH contract: subset to BBox, emit every
// valid cell (no further subsampling -- the continental extent is
// already bounded).
func (a *PBLHAdapter) Fetch(ctx context.Context, window Window) []PBLHSample {
	samples, err := a.Fetcher.Fetch(ctx, window, a.BBox)
	if err != nil {
		if a.Log != nil {
			a.Log.WithError(err).Warn("pblh fetch failed, contributing empty")
		}
		return nil
	}
	return samples
}
