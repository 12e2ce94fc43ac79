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

import "gonum.org/v1/gonum/stat"

// Scaler is a per-column standardizer: (x - mean) / std. §4.5 notes
// the tree models need no scaling but a standardizer is fit and stored
// regardless, for any consumer that wants standardized features.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-column mean and population-corrected sample
// standard deviation over rows (each a feature vector in column
// order). A zero or near-zero std is clamped to 1 so Transform never
// divides by zero on a constant column.
func FitScaler(rows [][]float64) *Scaler {
	if len(rows) == 0 {
		return &Scaler{}
	}
	nCols := len(rows[0])
	mean := make([]float64, nCols)
	std := make([]float64, nCols)
	col := make([]float64, len(rows))
	for c := 0; c < nCols; c++ {
		for i, r := range rows {
			col[i] = r[c]
		}
		m, s := stat.MeanStdDev(col, nil)
		if s < 1e-12 {
			s = 1
		}
		mean[c], std[c] = m, s
	}
	return &Scaler{Mean: mean, Std: std}
}

// Transform standardizes x in place of a copy, leaving x untouched.
func (s *Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if i >= len(s.Mean) {
			out[i] = v
			continue
		}
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out
}
