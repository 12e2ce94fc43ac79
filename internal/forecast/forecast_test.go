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

package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosphere/aerosphere/internal/aeroerr"
	"github.com/aerosphere/aerosphere/internal/models"
	"github.com/aerosphere/aerosphere/internal/registry"
	"github.com/aerosphere/aerosphere/internal/schema"
)

// constModel predicts the same value regardless of input, so ensemble
// tests can assert on the decay multiplier without noise from the
// tree regressors.
type constModel float64

func (c constModel) Predict(x []float64) float64 { return float64(c) }
func (c constModel) Importances() []float64      { return nil }

// fakeSource is a FeatureSource backed by a fixed map, for tests that
// don't need real observation history.
type fakeSource struct {
	values map[string]float64
	at     time.Time
}

func (f fakeSource) LatestValue(col string) (float64, bool) {
	v, ok := f.values[col]
	return v, ok
}
func (f fakeSource) LatestObservationTime() time.Time { return f.at }

func TestPredictExactHorizonNoDecay(t *testing.T) {
	reg := registry.New()
	reg.Put(registry.Key{Pollutant: schema.PM25, HorizonHours: 24}, &registry.Entry{
		FeatureNames: []string{"pm25", "hour"},
		Models: map[models.Name]models.Model{
			models.RandomForest:  constModel(8),
			models.GBMDepth6:     constModel(10),
			models.GBMLeafwise31: constModel(14),
		},
	})
	eng := NewEngine(reg)
	src := fakeSource{values: map[string]float64{"pm25": 11}, at: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}

	ens, err := eng.Predict(schema.PM25, 24, src)
	require.NoError(t, err)
	assert.Equal(t, 24, ens.HorizonUsed)
	// {8, 10, 14} -> mean≈10.67, population std≈2.49, agreement≈0.77.
	assert.InDelta(t, 10.67, ens.Mean, 0.01)
	assert.InDelta(t, 2.49, ens.Std, 0.01)
	assert.InDelta(t, 0.77, ens.ModelAgreement, 0.01)
	assert.True(t, ens.Lower95 < ens.Mean && ens.Mean < ens.Upper95)
}

func TestPredictFallbackAppliesDecay(t *testing.T) {
	reg := registry.New()
	reg.Put(registry.Key{Pollutant: schema.PM25, HorizonHours: 6}, &registry.Entry{
		FeatureNames: []string{"pm25"},
		Models: map[models.Name]models.Model{
			models.RandomForest:  constModel(20),
			models.GBMDepth6:     constModel(20),
			models.GBMLeafwise31: constModel(20),
		},
	})
	eng := NewEngine(reg)
	eng.DecayBase = 0.9
	src := fakeSource{values: map[string]float64{"pm25": 20}, at: time.Now()}

	ens, err := eng.Predict(schema.PM25, 24, src)
	require.NoError(t, err)
	assert.Equal(t, 6, ens.HorizonUsed)
	assert.Less(t, ens.Mean, 20.0, "a forecast using a shorter-trained horizon must decay toward less certainty")
}

func TestPredictModelMissing(t *testing.T) {
	reg := registry.New()
	eng := NewEngine(reg)
	_, err := eng.Predict(schema.PM25, 24, fakeSource{at: time.Now()})
	require.Error(t, err)
	assert.True(t, aeroerr.Is(err, aeroerr.ModelMissing))
}

func TestPredictFeatureMismatchWhenTargetPollutantMissing(t *testing.T) {
	reg := registry.New()
	reg.Put(registry.Key{Pollutant: schema.PM25, HorizonHours: 1}, &registry.Entry{
		FeatureNames: []string{"pm25"},
		Models:       map[models.Name]models.Model{models.RandomForest: constModel(1)},
	})
	eng := NewEngine(reg)
	_, err := eng.Predict(schema.PM25, 1, fakeSource{at: time.Now()}) // pm25 absent from values
	require.Error(t, err)
	assert.True(t, aeroerr.Is(err, aeroerr.FeatureMismatch))
}
