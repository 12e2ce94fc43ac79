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

// Package sources implements C1, the source adapters: independently
// invokable functions that fetch a half-open time window from one
// external collaborator and return a uniform in-memory record stream.
// No adapter writes to the store directly, and none shares state with
// another -- each constructs its own HTTP client, cache, and (for the
// gridded-weather adapter) rate limiter.
package sources

import "time"

// Window is the half-open [Start, End) interval an adapter fetches.
type Window struct {
	Start, End time.Time
}

// Duration returns the window's length.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// BoundingBox is a lat/lon rectangle used to scope ground-station and
// PBLH fetches.
type BoundingBox struct {
	MinLat, MaxLat, MinLon, MaxLon float64
}

// Contains reports whether (lat, lon) falls within b.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
