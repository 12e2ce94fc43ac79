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

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosphere/aerosphere/internal/schema"
)

func sampleRows() GroundAirQualityRows {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return GroundAirQualityRows{
		{ObservationTime: t, Lat: 1, Lon: 1, LocationID: "a", Parameter: schema.PM25, Value: 10, SensorID: "s1"},
		{ObservationTime: t, Lat: 1, Lon: 1, LocationID: "a", Parameter: schema.PM25, Value: 11, SensorID: "s2"},
	}
}

func TestMemStoreUpsertCounts(t *testing.T) {
	m := NewMemStore()
	res, err := m.Upsert(context.Background(), sampleRows(), 100)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 2, DuplicateSkipped: 0}, res)
	assert.Equal(t, 2, m.Count(schema.GroundAirQualityTable))
}

func TestMemStoreUpsertIsIdempotent(t *testing.T) {
	m := NewMemStore()
	rows := sampleRows()
	_, err := m.Upsert(context.Background(), rows, 100)
	require.NoError(t, err)

	res, err := m.Upsert(context.Background(), rows, 100)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 0, DuplicateSkipped: 2}, res)
	assert.Equal(t, 2, m.Count(schema.GroundAirQualityTable))
}

func TestMemStoreBatchChunking(t *testing.T) {
	m := NewMemStore()
	rows := sampleRows()
	res, err := m.Upsert(context.Background(), rows, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
}
