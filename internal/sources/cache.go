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
	"runtime"

	"github.com/ctessum/requestcache"
)

// FetchCache deduplicates concurrent and repeated fetches of the same
// upstream resource (a granule file, a grid cell) within one ingest
// cycle, grounded on sr/srreader.go's requestcache.NewCache +
// requestcache.Deduplicate() + requestcache.Memory(n) pattern. A
// retried adapter call -- or two goroutines racing on the same cell --
// is collapsed into a single upstream request.
type FetchCache struct {
	cache *requestcache.Cache
}

// NewFetchCache builds a cache that keeps up to memSize results and
// runs the worker with up to runtime.GOMAXPROCS(-1) concurrency,
// calling fetch at most once per distinct key regardless of how many
// callers request it concurrently. fetch receives whatever request
// value Get was called with.
func NewFetchCache(memSize int, fetch func(ctx context.Context, request interface{}) (interface{}, error)) *FetchCache {
	return &FetchCache{
		cache: requestcache.NewCache(fetch, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(memSize)),
	}
}

// Get returns the cached or freshly fetched value for key, invoking
// the cache's worker with request if key has not been seen before.
func (c *FetchCache) Get(ctx context.Context, request interface{}, key string) (interface{}, error) {
	req := c.cache.NewRequest(ctx, request, key)
	return req.Result()
}
