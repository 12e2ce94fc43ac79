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

package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// linearDataset returns rows/y for y = 3*x0 + 1, a function simple
// enough that any of the three regressors should fit it closely within
// the training range.
func linearDataset(n int) ([][]float64, []float64) {
	rows := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i % 10)
		rows[i] = []float64{x, float64(i % 3)}
		y[i] = 3*x + 1
	}
	return rows, y
}

func TestRandomForestFitsLinearTrend(t *testing.T) {
	rows, y := linearDataset(200)
	rf := FitRandomForest(rows, y, RandomForestParams{NumTrees: 20, MaxDepth: 6})
	pred := rf.Predict([]float64{5, 1})
	assert.InDelta(t, 16.0, pred, 3.0)
	assert.Len(t, rf.Importances(), 2)
}

func TestGBMDepthBoundedFitsLinearTrend(t *testing.T) {
	rows, y := linearDataset(200)
	g := FitGBM(rows, y, GBMParams{Rounds: 30, LearningRate: 0.2, MaxDepth: 6})
	pred := g.Predict([]float64{5, 1})
	assert.InDelta(t, 16.0, pred, 3.0)
}

func TestGBMLeafwiseFitsLinearTrend(t *testing.T) {
	rows, y := linearDataset(200)
	g := FitGBM(rows, y, GBMParams{Rounds: 30, LearningRate: 0.2, MaxLeaves: 15})
	pred := g.Predict([]float64{5, 1})
	assert.InDelta(t, 16.0, pred, 3.0)
}

func TestScalerStandardizesAndClampsZeroStd(t *testing.T) {
	rows := [][]float64{{1, 5}, {2, 5}, {3, 5}}
	s := FitScaler(rows)
	assert.InDelta(t, 2.0, s.Mean[0], 1e-9)
	assert.Equal(t, 1.0, s.Std[1], "a constant column's std is clamped to 1, not 0")

	out := s.Transform([]float64{2, 5})
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 0.0, out[1], 1e-9)
}

func TestScalerEmptyInput(t *testing.T) {
	s := FitScaler(nil)
	assert.NotNil(t, s)
}

func TestAllNamesOrderIsStable(t *testing.T) {
	assert.Equal(t, []Name{RandomForest, GBMDepth6, GBMLeafwise31}, AllNames)
}

func TestRandomForestPredictWithNoTrees(t *testing.T) {
	rf := &RandomForestRegressor{}
	assert.Equal(t, 0.0, rf.Predict([]float64{1, 2}))
}

func TestGBMZeroRoundsPredictionIsNotNaN(t *testing.T) {
	rows, y := linearDataset(10)
	g := FitGBM(rows, y, GBMParams{Rounds: 0, LearningRate: 0.1})
	// Rounds<=0 falls back to the default of 100, so this isn't a
	// baseline-only check; assert the prediction is not NaN instead.
	pred := g.Predict([]float64{5, 1})
	assert.False(t, math.IsNaN(pred))
}
