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

// Package training implements C5: per-(pollutant, horizon) supervised
// target construction, the time-ordered train/validation split, the
// three-regressor fit, and the best-by-RMSE importance retention that
// feeds internal/registry.
package training

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aerosphere/aerosphere/internal/aeroerr"
	"github.com/aerosphere/aerosphere/internal/features"
	"github.com/aerosphere/aerosphere/internal/metrics"
	"github.com/aerosphere/aerosphere/internal/models"
	"github.com/aerosphere/aerosphere/internal/registry"
	"github.com/aerosphere/aerosphere/internal/schema"
)

// Params configures one training run, sourced from §6's `train.*`
// config keys.
type Params struct {
	Horizons      []int
	SplitFraction float64
	MinTrainRows  int
}

// DefaultParams returns the documented default training configuration.
func DefaultParams() Params {
	return Params{Horizons: []int{1, 6, 24}, SplitFraction: 0.8, MinTrainRows: 20}
}

// ModelMetrics records one fitted model's validation performance.
type ModelMetrics struct {
	Name models.Name
	RMSE float64
	MAE  float64
}

// Outcome is one (pollutant, horizon) training attempt's result.
type Outcome struct {
	Pollutant  schema.Pollutant
	HorizonH   int
	Skipped    bool
	SkipReason string
	Metrics    []ModelMetrics
	BestModel  models.Name
}

// Report is the response envelope for §6's POST /train.
type Report struct {
	Trained []Outcome
	Skipped []Outcome
}

// Run fits every requested (pollutant, horizon) pair against frame,
// fanning out one task per pair per §5's nested-parallelism model.
// A failing pair never aborts another; its outcome is recorded as
// skipped. m is optional; pass nil to disable counter increments.
func Run(frame features.Frame, pollutants []schema.Pollutant, p Params, reg *registry.Registry, log *logrus.Entry, m *metrics.Metrics) Report {
	if p.SplitFraction <= 0 || p.SplitFraction >= 1 {
		p.SplitFraction = 0.8
	}
	if p.MinTrainRows <= 0 {
		p.MinTrainRows = 20
	}
	if len(p.Horizons) == 0 {
		p.Horizons = []int{1, 6, 24}
	}

	type task struct {
		pollutant schema.Pollutant
		horizon   int
	}
	var tasks []task
	for _, pol := range pollutants {
		for _, h := range p.Horizons {
			tasks = append(tasks, task{pol, h})
		}
	}

	outcomes := make([]Outcome, len(tasks))
	g := new(errgroup.Group)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			outcomes[i] = fitOne(frame, t.pollutant, t.horizon, p, reg, log, m)
			return nil
		})
	}
	_ = g.Wait()

	var report Report
	for _, o := range outcomes {
		if o.Skipped {
			report.Skipped = append(report.Skipped, o)
		} else {
			report.Trained = append(report.Trained, o)
		}
	}
	if m != nil {
		m.TrainRunsTotal.Inc()
	}
	return report
}

// fitOne implements §4.5 steps 1-9 for a single (pollutant, horizon).
func fitOne(frame features.Frame, pollutant schema.Pollutant, horizon int, p Params, reg *registry.Registry, log *logrus.Entry, m *metrics.Metrics) Outcome {
	base := Outcome{Pollutant: pollutant, HorizonH: horizon}

	targetCol := string(pollutant)
	X, y, locIDs := buildSupervised(frame, targetCol, horizon)
	if len(X) == 0 {
		base.Skipped = true
		base.SkipReason = "target pollutant not present in assembled frame"
		countSkip(m, pollutant, "no_target_column")
		return base
	}

	nTrain := int(float64(len(X)) * p.SplitFraction)
	if nTrain < 1 {
		nTrain = len(X)
	}
	if nTrain < p.MinTrainRows {
		base.Skipped = true
		base.SkipReason = aeroerr.New(aeroerr.InsufficientData,
			"fewer than minimum training rows").Error()
		countSkip(m, pollutant, "insufficient_data")
		return base
	}

	Xtrain, ytrain := X[:nTrain], y[:nTrain]
	Xval, yval := X[nTrain:], y[nTrain:]
	_ = locIDs

	scaler := models.FitScaler(Xtrain)

	rf := models.FitRandomForest(Xtrain, ytrain, models.RandomForestParams{})
	gA := models.FitGBM(Xtrain, ytrain, models.GBMParams{MaxDepth: 6})
	gB := models.FitGBM(Xtrain, ytrain, models.GBMParams{MaxLeaves: 31})

	fitted := map[models.Name]models.Model{
		models.RandomForest:  rf,
		models.GBMDepth6:     gA,
		models.GBMLeafwise31: gB,
	}

	var modelMetrics []ModelMetrics
	bestRMSE := math.Inf(1)
	var best models.Name
	for _, name := range models.AllNames {
		fit := fitted[name]
		rmse, mae := evaluate(fit, Xval, yval)
		modelMetrics = append(modelMetrics, ModelMetrics{Name: name, RMSE: rmse, MAE: mae})
		if rmse < bestRMSE {
			bestRMSE, best = rmse, name
		}
	}

	importances := normalize(fitted[best].Importances())
	importanceMap := make(map[string]float64, len(frame.Cols))
	for i, col := range frame.Cols {
		if i < len(importances) {
			importanceMap[col] = importances[i]
		}
	}

	reg.Put(registry.Key{Pollutant: pollutant, HorizonHours: horizon}, &registry.Entry{
		FeatureNames: frame.Cols,
		Scaler:       scaler,
		Models:       fitted,
		Importances:  importanceMap,
	})

	if log != nil {
		log.WithFields(logrus.Fields{"pollutant": pollutant, "horizon_h": horizon, "best": best}).Info("trained model")
	}

	base.Metrics = modelMetrics
	base.BestModel = best
	return base
}

func countSkip(m *metrics.Metrics, pollutant schema.Pollutant, reason string) {
	if m == nil {
		return
	}
	m.TrainSkippedTotal.WithLabelValues(string(pollutant), reason).Inc()
}

// buildSupervised implements §4.5 steps 1-3: construct y = P.shift(-h)
// grouped by location, drop rows missing current P or missing the
// shifted target, select numeric feature columns in frame.Cols order
// with remaining NaN filled to 0. Rows are returned sorted by
// observation time, the ordering the time-ordered split in fitOne
// relies on.
func buildSupervised(frame features.Frame, targetCol string, horizon int) (X [][]float64, y []float64, locIDs []string) {
	byLocation := make(map[string][]int)
	for i, r := range frame.Rows {
		byLocation[r.LocationID] = append(byLocation[r.LocationID], i)
	}

	targetAt := make(map[int]float64)
	for _, idxs := range byLocation {
		for j, idx := range idxs {
			target := j + horizon
			if target >= len(idxs) {
				continue
			}
			if v, ok := frame.Rows[idxs[target]].Values[targetCol]; ok {
				targetAt[idx] = v
			}
		}
	}

	var order []int
	for i, r := range frame.Rows {
		if _, ok := r.Values[targetCol]; !ok {
			continue
		}
		if _, ok := targetAt[i]; !ok {
			continue
		}
		order = append(order, i)
	}
	sort.Slice(order, func(a, b int) bool {
		return frame.Rows[order[a]].ObservationTime.Before(frame.Rows[order[b]].ObservationTime)
	})

	for _, i := range order {
		row := frame.Rows[i]
		vec := make([]float64, len(frame.Cols))
		for c, col := range frame.Cols {
			if v, ok := row.Values[col]; ok {
				vec[c] = v
			}
		}
		X = append(X, vec)
		y = append(y, targetAt[i])
		locIDs = append(locIDs, row.LocationID)
	}
	return X, y, locIDs
}

func evaluate(m models.Model, X [][]float64, y []float64) (rmse, mae float64) {
	if len(X) == 0 {
		return 0, 0
	}
	var sqSum, absSum float64
	for i, x := range X {
		pred := m.Predict(x)
		diff := pred - y[i]
		sqSum += diff * diff
		if diff < 0 {
			diff = -diff
		}
		absSum += diff
	}
	n := float64(len(X))
	return math.Sqrt(sqSum / n), absSum / n
}

func normalize(imps []float64) []float64 {
	var total float64
	for _, v := range imps {
		total += v
	}
	out := make([]float64, len(imps))
	if total <= 0 {
		return out
	}
	for i, v := range imps {
		out[i] = v / total
	}
	return out
}
