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

// Package models implements the three decorrelated regressors fit per
// (pollutant, horizon) -- a bagged random forest and two
// gradient-boosted tree ensembles differing in leaf growth strategy --
// plus the standardizer recorded alongside them in the registry. No
// tree-ensemble library is in scope, so these are hand-rolled CART
// trees over plain [][]float64 feature matrices; gonum.org/v1/gonum/stat
// is used only for the standardizer's mean/stddev (see scaler.go).
package models

// Model is anything that predicts a single target value from a
// feature vector, in the exact column order it was trained on.
type Model interface {
	Predict(x []float64) float64
	// Importances returns a per-feature-index importance score,
	// unnormalized; callers normalize if they need a distribution.
	Importances() []float64
}

// Name identifies one of the three fitted regressors within a
// registry.ModelEntry.
type Name string

const (
	RandomForest      Name = "random_forest"
	GBMDepth6         Name = "gbm_depth6"
	GBMLeafwise31     Name = "gbm_leafwise31"
)

// AllNames is the stable fit order for §4.5 step 6.
var AllNames = []Name{RandomForest, GBMDepth6, GBMLeafwise31}
