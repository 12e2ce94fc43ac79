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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aerosphere/aerosphere/internal/schema"
)

func TestResolveExactMatch(t *testing.T) {
	r := New()
	entry := &Entry{FeatureNames: []string{"x"}}
	r.Put(Key{Pollutant: schema.PM25, HorizonHours: 24}, entry)

	got, used, ok := r.Resolve(schema.PM25, 24)
	assert.True(t, ok)
	assert.Equal(t, 24, used)
	assert.Same(t, entry, got)
}

func TestResolveFallsBackToShorterHorizon(t *testing.T) {
	r := New()
	entry := &Entry{FeatureNames: []string{"x"}}
	r.Put(Key{Pollutant: schema.PM25, HorizonHours: 6}, entry)

	got, used, ok := r.Resolve(schema.PM25, 24)
	assert.True(t, ok)
	assert.Equal(t, 6, used)
	assert.Same(t, entry, got)
}

func TestResolveNeverFallsForward(t *testing.T) {
	r := New()
	r.Put(Key{Pollutant: schema.PM25, HorizonHours: 24}, &Entry{})

	_, _, ok := r.Resolve(schema.PM25, 6)
	assert.False(t, ok, "a 24h-trained entry must never serve a 6h request")
}

func TestResolveMissingPollutant(t *testing.T) {
	r := New()
	_, _, ok := r.Resolve(schema.NO2, 24)
	assert.False(t, ok)
}

func TestPutReplacesEntryWhollyNotPartially(t *testing.T) {
	r := New()
	key := Key{Pollutant: schema.PM25, HorizonHours: 1}
	first := &Entry{FeatureNames: []string{"a"}}
	r.Put(key, first)

	got, _ := r.Get(key)
	assert.Same(t, first, got)

	second := &Entry{FeatureNames: []string{"a", "b"}}
	r.Put(key, second)

	got, _ = r.Get(key)
	assert.Same(t, second, got)
	// The first entry, if a reader still holds it, is unmodified.
	assert.Equal(t, []string{"a"}, first.FeatureNames)
}
