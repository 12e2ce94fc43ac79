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

import "math/rand"

// GBMRegressor is a gradient-boosted ensemble of regression trees
// fit on the running residual, matching §4.5's two boosted variants:
// the depth-6 ensemble and the 31-leaf ("leaf-wise") ensemble. Which
// variant a given instance is depends purely on the treeGrowth passed
// to FitGBM.
type GBMRegressor struct {
	baseline    float64
	trees       []*regressionTree
	learningRate float64
	importances []float64
}

// GBMParams configures one boosting run.
type GBMParams struct {
	Rounds       int
	LearningRate float64
	MaxDepth     int // depth-bounded growth when > 0
	MaxLeaves    int // leaf-wise growth when > 0 (mutually exclusive with MaxDepth)
	Seed         int64
}

func (p GBMParams) withDefaults() GBMParams {
	if p.Rounds <= 0 {
		p.Rounds = 100
	}
	if p.LearningRate <= 0 {
		p.LearningRate = 0.1
	}
	return p
}

// FitGBM fits Rounds trees sequentially on the residual of the running
// prediction, each scaled by LearningRate before being added to the
// ensemble -- standard gradient boosting under squared-error loss,
// where the per-tree target is just the residual itself.
func FitGBM(rows [][]float64, y []float64, p GBMParams) *GBMRegressor {
	p = p.withDefaults()
	rng := rand.New(rand.NewSource(p.Seed))
	nFeatures := 0
	if len(rows) > 0 {
		nFeatures = len(rows[0])
	}
	growth := treeGrowth{maxDepth: p.MaxDepth, maxLeaves: p.MaxLeaves, minSamples: 2}

	g := &GBMRegressor{learningRate: p.LearningRate, importances: make([]float64, nFeatures)}
	n := len(rows)
	g.baseline = mean(y)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = g.baseline
	}

	for r := 0; r < p.Rounds; r++ {
		residual := make([]float64, n)
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		tree := fitRegressionTree(rows, residual, growth, rng)
		g.trees = append(g.trees, tree)
		for i, imp := range tree.importances {
			g.importances[i] += imp
		}
		for i := range rows {
			pred[i] += p.LearningRate * tree.predict(rows[i])
		}
	}
	return g
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// Predict sums the baseline and every tree's learning-rate-scaled
// contribution.
func (g *GBMRegressor) Predict(x []float64) float64 {
	v := g.baseline
	for _, t := range g.trees {
		v += g.learningRate * t.predict(x)
	}
	return v
}

// Importances returns the summed split-gain importance per feature
// across boosting rounds, unnormalized.
func (g *GBMRegressor) Importances() []float64 { return g.importances }
