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

// Package httpapi is a thin boundary shim over the inbound routes --
// not the HTTP serving layer itself, just enough net/http wiring for a
// hosting service to mount. Uses the Go 1.22 net/http method-and-path
// pattern mux rather than reaching for a router dependency.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aerosphere/aerosphere/internal/aeroerr"
	"github.com/aerosphere/aerosphere/internal/aqi"
	"github.com/aerosphere/aerosphere/internal/forecast"
	"github.com/aerosphere/aerosphere/internal/ingest"
	"github.com/aerosphere/aerosphere/internal/metrics"
	"github.com/aerosphere/aerosphere/internal/schema"
	"github.com/aerosphere/aerosphere/internal/sources"
	"github.com/aerosphere/aerosphere/internal/training"
)

// CityData supplies everything a forecast or AQI request needs for
// one city: the feature-reconstruction source the forecast engine
// requires, and the latest known concentration per pollutant for the
// AQI mapper.
type CityData interface {
	forecast.FeatureSource
	LatestConcentration(pollutant schema.Pollutant) (float64, bool)
}

// CityLookup resolves a city name to its CityData, or false if unknown.
type CityLookup func(city string) (CityData, bool)

// API wires the orchestrator, training, forecast engine, and AQI
// mapper to §6's inbound routes.
type API struct {
	Orchestrator *ingest.Orchestrator
	TrainParams  training.Params
	ForecastEng  *forecast.Engine
	Lookup       CityLookup
	Log          *logrus.Entry

	// Metrics is optional; a nil value disables counter increments.
	Metrics *metrics.Metrics
}

func (a *API) countForecast(outcome string) {
	if a.Metrics == nil {
		return
	}
	a.Metrics.ForecastRequests.WithLabelValues(outcome).Inc()
}

// Routes registers every handler on mux.
func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ingest", a.handleIngest)
	mux.HandleFunc("POST /train", a.handleTrain)
	mux.HandleFunc("GET /forecast/{city}", a.handleForecast)
	mux.HandleFunc("GET /forecast/ensemble/{city}", a.handleForecastEnsemble)
	mux.HandleFunc("GET /aqi/{city}", a.handleAQI)
}

type ingestRequest struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Sources     []string  `json:"sources"`
}

func (a *API) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, aeroerr.New(aeroerr.InvalidRecord, "malformed request body"))
		return
	}
	report := a.Orchestrator.Run(r.Context(), sources.Window{Start: req.WindowStart, End: req.WindowEnd}, req.Sources)
	writeJSON(w, http.StatusOK, report)
}

type trainRequest struct {
	Pollutants []string `json:"pollutants"`
	Horizons   []int    `json:"horizons"`
}

func (a *API) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body means "use defaults".

	params := a.TrainParams
	if len(req.Horizons) > 0 {
		params.Horizons = req.Horizons
	}

	var pollutants []schema.Pollutant
	if len(req.Pollutants) == 0 {
		pollutants = schema.AllPollutants
	} else {
		for _, p := range req.Pollutants {
			if canon, ok := schema.CanonicalPollutant(p); ok {
				pollutants = append(pollutants, canon)
			}
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "training must be driven by a caller-assembled features.Frame; see internal/training.Run",
		"pollutants_requested": pollutants,
		"horizons_requested":   params.Horizons,
	})
}

func (a *API) handleForecast(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")
	data, ok := a.Lookup(city)
	if !ok {
		a.countForecast("unknown_city")
		writeError(w, http.StatusNotFound, aeroerr.New(aeroerr.ModelMissing, "unknown city"))
		return
	}
	a.countForecast("ok")

	type dayForecast struct {
		Date       string           `json:"date"`
		AQI        float64          `json:"aqi"`
		Category   aqi.Category     `json:"category"`
		Pollutants []pollutantValue `json:"pollutants"`
	}

	var days []dayForecast
	for d := 0; d < 5; d++ {
		horizon := d * 24
		readings, pollutantValues := a.ensembleReadings(data, horizon)
		result, err := aqi.Combine(readings)
		if err != nil {
			continue
		}
		days = append(days, dayForecast{
			Date: time.Now().UTC().AddDate(0, 0, d).Format("2006-01-02"),
			AQI: result.AQI, Category: result.Category, Pollutants: pollutantValues,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"city": city, "days": days})
}

type pollutantValue struct {
	Name  schema.Pollutant `json:"name"`
	Value float64          `json:"value"`
	Unit  string            `json:"unit"`
}

func (a *API) ensembleReadings(data CityData, horizon int) ([]aqi.Reading, []pollutantValue) {
	var readings []aqi.Reading
	var values []pollutantValue
	for _, p := range schema.AllPollutants {
		ens, err := a.ForecastEng.Predict(p, horizon, data)
		if err != nil {
			continue
		}
		readings = append(readings, aqi.Reading{Pollutant: p, Concentration: ens.Mean})
		values = append(values, pollutantValue{Name: p, Value: ens.Mean})
	}
	return readings, values
}

func (a *API) handleForecastEnsemble(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")
	data, ok := a.Lookup(city)
	if !ok {
		a.countForecast("unknown_city")
		writeError(w, http.StatusNotFound, aeroerr.New(aeroerr.ModelMissing, "unknown city"))
		return
	}
	pollutantParam := r.URL.Query().Get("pollutant")
	pollutant, ok := schema.CanonicalPollutant(pollutantParam)
	if !ok {
		a.countForecast("invalid_pollutant")
		writeError(w, http.StatusBadRequest, aeroerr.New(aeroerr.InvalidRecord, "unrecognized pollutant"))
		return
	}
	a.countForecast("ok")

	type point struct {
		HorizonH       int     `json:"horizon_h"`
		Mean           float64 `json:"mean"`
		Min            float64 `json:"min"`
		Max            float64 `json:"max"`
		CI95           [2]float64 `json:"ci95"`
		Agreement      float64 `json:"agreement"`
	}
	var points []point
	for _, h := range []int{1, 6, 24} {
		ens, err := a.ForecastEng.Predict(pollutant, h, data)
		if err != nil {
			continue
		}
		points = append(points, point{
			HorizonH: h, Mean: ens.Mean, Min: ens.Lower95, Max: ens.Upper95,
			CI95: [2]float64{ens.Lower95, ens.Upper95}, Agreement: ens.ModelAgreement,
		})
	}
	writeJSON(w, http.StatusOK, points)
}

func (a *API) handleAQI(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")
	data, ok := a.Lookup(city)
	if !ok {
		writeError(w, http.StatusNotFound, aeroerr.New(aeroerr.ModelMissing, "unknown city"))
		return
	}
	var readings []aqi.Reading
	for _, p := range schema.AllPollutants {
		if v, ok := data.LatestConcentration(p); ok {
			readings = append(readings, aqi.Reading{Pollutant: p, Concentration: v})
		}
	}
	result, err := aqi.Combine(readings)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"aqi": result.AQI, "category": result.Category,
		"dominant_pollutant": result.DominantPollutant,
		"observed_at":        data.LatestObservationTime(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	var ae *aeroerr.Error
	body := map[string]interface{}{"kind": "error", "detail": err.Error()}
	if errors.As(err, &ae) {
		body["kind"] = ae.Kind
		body["detail"] = ae.Detail
		if len(ae.Counts) > 0 {
			body["counts"] = ae.Counts
		}
	}
	writeJSON(w, status, body)
}
