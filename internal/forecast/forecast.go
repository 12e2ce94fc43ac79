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

// Package forecast implements C6: feature reconstruction for a target
// time, horizon fallback with persistence-decay, and the three-model
// ensemble's mean/std/band/agreement output.
package forecast

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/aerosphere/aerosphere/internal/aeroerr"
	"github.com/aerosphere/aerosphere/internal/models"
	"github.com/aerosphere/aerosphere/internal/registry"
	"github.com/aerosphere/aerosphere/internal/schema"
)

// DefaultDecayBase is the default persistence-decay constant of §4.6;
// Engine.DecayBase overrides it and is set from the
// `forecast.decay_base` config key (see DESIGN.md's Open Question 3).
const DefaultDecayBase = 0.95

// Ensemble is the C6 output contract.
type Ensemble struct {
	HorizonRequested int
	HorizonUsed      int
	Mean             float64
	Std              float64
	Lower95          float64
	Upper95          float64
	ModelAgreement   float64
}

// Engine runs forecasts against a shared registry.
type Engine struct {
	Registry  *registry.Registry
	DecayBase float64
}

// NewEngine returns an Engine with DefaultDecayBase.
func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{Registry: reg, DecayBase: DefaultDecayBase}
}

// Predict implements §4.6: resolve the model entry (exact horizon or
// fallback), reconstruct the feature row from latest, run all three
// regressors, and apply the persistence-decay multiplier when the
// resolved horizon differs from the requested one.
func (e *Engine) Predict(pollutant schema.Pollutant, targetHorizon int, latest FeatureSource) (Ensemble, error) {
	decayBase := e.DecayBase
	if decayBase <= 0 {
		decayBase = DefaultDecayBase
	}

	entry, used, ok := e.Registry.Resolve(pollutant, targetHorizon)
	if !ok {
		return Ensemble{}, aeroerr.New(aeroerr.ModelMissing,
			"no trained model for this pollutant at or below the requested horizon")
	}

	x, err := reconstructFeatures(entry.FeatureNames, latest, pollutant, targetHorizon)
	if err != nil {
		return Ensemble{}, err
	}

	preds := make([]float64, 0, len(models.AllNames))
	for _, name := range models.AllNames {
		m, ok := entry.Models[name]
		if !ok {
			continue
		}
		preds = append(preds, m.Predict(x))
	}
	if len(preds) == 0 {
		return Ensemble{}, aeroerr.New(aeroerr.ModelMissing, "resolved registry entry carries no fitted models")
	}

	mean, std := meanStd(preds)
	if used != targetHorizon {
		decay := math.Pow(decayBase, float64(targetHorizon-used)/float64(used))
		mean *= decay
		for i := range preds {
			preds[i] *= decay
		}
		mean, std = meanStd(preds)
	}

	agreement := 0.0
	if mean != 0 {
		agreement = 1 - std/math.Abs(mean)
	}
	if agreement < 0 {
		agreement = 0
	}

	return Ensemble{
		HorizonRequested: targetHorizon, HorizonUsed: used,
		Mean: mean, Std: std,
		Lower95: mean - 1.96*std, Upper95: mean + 1.96*std,
		ModelAgreement: agreement,
	}, nil
}

// meanStd computes the ensemble's population mean/std (ddof=0), matching
// numpy's default predictions.std(axis=0) in the original forecaster and
// the worked example of a {8,10,14} ensemble giving std≈2.49.
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(xs, nil)
}

// FeatureSource supplies the most recent complete observation context
// the engine needs to reconstruct a feature row: the last known value
// for every feature column not re-derivable from the target time
// itself (temporal columns are always re-derived).
type FeatureSource interface {
	// LatestValue returns the most recently observed value for column,
	// and whether one exists at all.
	LatestValue(column string) (float64, bool)
	// LatestObservationTime is the timestamp the "most recent complete
	// observation" was taken at. Lag/rolling features are read as
	// last-known values through LatestValue, not re-derived.
	LatestObservationTime() time.Time
}

var temporalCols = map[string]bool{
	"hour": true, "day_of_week": true, "month": true, "is_weekend": true,
	"hour_sin": true, "hour_cos": true,
}

// reconstructFeatures implements §4.6's feature-reconstruction step:
// temporal columns are re-derived for targetTime = now (UTC) + horizon;
// every other column falls back to its latest known value, filled
// with 0 if entirely absent -- except the target pollutant's own most
// recent value, which is a required feature and triggers
// FeatureMismatch if missing (a forecast with no persistence anchor at
// all is not safe to silently zero-fill).
func reconstructFeatures(featureNames []string, src FeatureSource, pollutant schema.Pollutant, horizonHours int) ([]float64, error) {
	targetTime := time.Now().UTC().Add(time.Duration(horizonHours) * time.Hour)

	temporal := map[string]float64{}
	hour := targetTime.Hour()
	dow := int(targetTime.Weekday())
	temporal["hour"] = float64(hour)
	temporal["day_of_week"] = float64(dow)
	temporal["month"] = float64(targetTime.Month())
	if dow == 0 || dow == 6 {
		temporal["is_weekend"] = 1
	}
	angle := 2 * math.Pi * float64(hour) / 24
	temporal["hour_sin"] = math.Sin(angle)
	temporal["hour_cos"] = math.Cos(angle)

	x := make([]float64, len(featureNames))
	for i, col := range featureNames {
		if temporalCols[col] {
			x[i] = temporal[col]
			continue
		}
		v, ok := src.LatestValue(col)
		if !ok {
			if col == string(pollutant) {
				return nil, aeroerr.New(aeroerr.FeatureMismatch,
					"target pollutant's most recent observation is unavailable; refusing to zero-fill")
			}
			continue // left at 0
		}
		x[i] = v
	}
	return x, nil
}
