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

package aqi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosphere/aerosphere/internal/aeroerr"
	"github.com/aerosphere/aerosphere/internal/schema"
)

func TestSubIndexBoundary(t *testing.T) {
	// The shared boundary between the Good and Moderate PM2.5
	// intervals belongs to Good, not Moderate.
	aqi, err := SubIndex(schema.PM25, 12.0)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, aqi, 1e-9)
	assert.Equal(t, Good, CategoryFor(aqi))

	aqi, err = SubIndex(schema.PM25, 12.1)
	require.NoError(t, err)
	assert.Greater(t, aqi, 50.0)
	assert.Equal(t, Moderate, CategoryFor(aqi))
}

func TestSubIndexZeroIsGood(t *testing.T) {
	aqi, err := SubIndex(schema.PM25, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, aqi)
}

func TestSubIndexOutOfRange(t *testing.T) {
	_, err := SubIndex(schema.PM25, -1)
	requireAQIOutOfRange(t, err)

	_, err = SubIndex(schema.PM25, 1000)
	requireAQIOutOfRange(t, err)

	_, err = SubIndex(schema.Pollutant("xylene"), 1)
	requireAQIOutOfRange(t, err)
}

func TestCombineMaxAcrossPollutants(t *testing.T) {
	result, err := Combine([]Reading{
		{Pollutant: schema.PM25, Concentration: 12.0}, // AQI 50
		{Pollutant: schema.O3, Concentration: 0.080},  // well into Moderate/USG
	})
	require.NoError(t, err)
	assert.Equal(t, schema.O3, result.DominantPollutant)
	assert.Greater(t, result.AQI, 50.0)
}

func TestCombineSkipsOutOfRangePollutants(t *testing.T) {
	result, err := Combine([]Reading{
		{Pollutant: schema.PM25, Concentration: -5}, // invalid, skipped
		{Pollutant: schema.NO2, Concentration: 40},
	})
	require.NoError(t, err)
	assert.Equal(t, schema.NO2, result.DominantPollutant)
}

func TestCombineAllOutOfRange(t *testing.T) {
	_, err := Combine([]Reading{{Pollutant: schema.PM25, Concentration: -5}})
	requireAQIOutOfRange(t, err)
}

func requireAQIOutOfRange(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var ae *aeroerr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, aeroerr.AQIOutOfRange, ae.Kind)
}
