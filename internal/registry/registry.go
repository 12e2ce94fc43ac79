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

// Package registry implements C8: an in-process map from
// (pollutant, horizon) to its fitted feature list, scaler, model set,
// and importance vector. Writers replace a key's entry wholesale;
// readers see either the old entry or the new one, never a partial --
// no persistence across a process restart, per §4.8.
package registry

import (
	"sync"

	"github.com/aerosphere/aerosphere/internal/models"
	"github.com/aerosphere/aerosphere/internal/schema"
)

// Key identifies one trained model slot.
type Key struct {
	Pollutant    schema.Pollutant
	HorizonHours int
}

// Entry is one trained (pollutant, horizon) slot's full state.
type Entry struct {
	FeatureNames []string
	Scaler       *models.Scaler
	Models       map[models.Name]models.Model
	Importances  map[string]float64
}

// Registry is the shared, concurrency-safe model store.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[Key]*Entry)}
}

// Put atomically replaces the entry at key. The old *Entry, if any, is
// left untouched and safe for any reader still holding it from an
// earlier Get.
func (r *Registry) Put(key Key, e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = e
}

// Get returns the entry at key, or false if none has been trained.
func (r *Registry) Get(key Key) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	return e, ok
}

// HorizonFallbackOrder is the preference order §4.6 specifies for
// selecting a trained horizon when the exact target is missing.
var HorizonFallbackOrder = []int{24, 6, 1}

// Resolve returns the entry for pollutant at target horizon if one
// exists, else the largest trained horizon <= target following
// HorizonFallbackOrder, else false. usedHorizon reports which horizon
// the returned entry was actually trained at.
func (r *Registry) Resolve(pollutant schema.Pollutant, target int) (e *Entry, usedHorizon int, ok bool) {
	if e, ok := r.Get(Key{Pollutant: pollutant, HorizonHours: target}); ok {
		return e, target, true
	}
	for _, h := range HorizonFallbackOrder {
		if h > target {
			continue
		}
		if e, ok := r.Get(Key{Pollutant: pollutant, HorizonHours: h}); ok {
			return e, h, true
		}
	}
	return nil, 0, false
}
