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
	"math/rand"
)

// RandomForestRegressor is a bagged ensemble of depth-bounded CART
// trees, each fit on a bootstrap resample with a random per-split
// feature subset -- §4.5's "bagged tree ensemble (random forest),
// default 100 trees, max depth 20".
type RandomForestRegressor struct {
	trees       []*regressionTree
	importances []float64
}

// RandomForestParams configures the ensemble; zero values fall back to
// documented defaults.
type RandomForestParams struct {
	NumTrees int
	MaxDepth int
	Seed     int64
}

func (p RandomForestParams) withDefaults() RandomForestParams {
	if p.NumTrees <= 0 {
		p.NumTrees = 100
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 20
	}
	return p
}

// FitRandomForest bootstraps NumTrees samples of rows/y and fits one
// tree per sample, each split considering a random ~sqrt(nFeatures)
// feature subset (the standard bagging heuristic).
func FitRandomForest(rows [][]float64, y []float64, p RandomForestParams) *RandomForestRegressor {
	p = p.withDefaults()
	rng := rand.New(rand.NewSource(p.Seed))
	nFeatures := 0
	if len(rows) > 0 {
		nFeatures = len(rows[0])
	}
	subset := int(math.Sqrt(float64(nFeatures)))
	if subset < 1 {
		subset = nFeatures
	}
	growth := treeGrowth{maxDepth: p.MaxDepth, featuresSubset: subset, minSamples: 2}

	f := &RandomForestRegressor{importances: make([]float64, nFeatures)}
	n := len(rows)
	for t := 0; t < p.NumTrees; t++ {
		bootRows := make([][]float64, n)
		bootY := make([]float64, n)
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			bootRows[i], bootY[i] = rows[j], y[j]
		}
		tree := fitRegressionTree(bootRows, bootY, growth, rng)
		f.trees = append(f.trees, tree)
		for i, imp := range tree.importances {
			f.importances[i] += imp
		}
	}
	return f
}

// Predict averages every tree's prediction.
func (f *RandomForestRegressor) Predict(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// Importances returns the summed split-gain importance per feature
// across all trees, unnormalized.
func (f *RandomForestRegressor) Importances() []float64 { return f.importances }
