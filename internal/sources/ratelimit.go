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

	"golang.org/x/time/rate"
)

// SharedLimiter is the sliding-window token bucket the gridded-weather
// adapter wraps every outbound request in (§5): "the limiter is shared
// across all parallel fetch tasks so aggregate throughput obeys the
// cap." permitsPerMinute defaults to 580 (fetch.rate_limit_per_min).
type SharedLimiter struct {
	limiter *rate.Limiter
}

// NewSharedLimiter builds a limiter allowing permitsPerMinute
// acquisitions per 60s, with a burst equal to the full per-minute
// allowance so a cold start doesn't immediately starve.
func NewSharedLimiter(permitsPerMinute int) *SharedLimiter {
	if permitsPerMinute <= 0 {
		permitsPerMinute = 580
	}
	every := time.Minute / time.Duration(permitsPerMinute)
	return &SharedLimiter{limiter: rate.NewLimiter(rate.Every(every), permitsPerMinute)}
}

// Acquire blocks until a permit is available or ctx is done.
func (s *SharedLimiter) Acquire(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}
