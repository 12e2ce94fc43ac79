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

package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosphere/aerosphere/internal/forecast"
	"github.com/aerosphere/aerosphere/internal/metrics"
	"github.com/aerosphere/aerosphere/internal/registry"
	"github.com/aerosphere/aerosphere/internal/schema"
)

// fakeCity is a minimal CityData backed by fixed concentrations, with
// no registered models -- enough to exercise handleAQI without a
// trained forecast engine.
type fakeCity struct {
	concentrations map[schema.Pollutant]float64
}

func (f fakeCity) LatestValue(col string) (float64, bool) { return 0, false }
func (f fakeCity) LatestObservationTime() time.Time       { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
func (f fakeCity) LatestConcentration(p schema.Pollutant) (float64, bool) {
	v, ok := f.concentrations[p]
	return v, ok
}

func newTestAPI(lookup CityLookup, m *metrics.Metrics) *API {
	return &API{
		ForecastEng: forecast.NewEngine(registry.New()),
		Lookup:      lookup,
		Metrics:     m,
	}
}

func TestHandleAQIUnknownCityReturns404(t *testing.T) {
	api := newTestAPI(func(string) (CityData, bool) { return nil, false }, nil)
	mux := http.NewServeMux()
	api.Routes(mux)

	req := httptest.NewRequest("GET", "/aqi/nowhere", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "model_missing", body["kind"])
}

func TestHandleAQIKnownCityReturnsComputedAQI(t *testing.T) {
	city := fakeCity{concentrations: map[schema.Pollutant]float64{schema.PM25: 12.0}}
	api := newTestAPI(func(string) (CityData, bool) { return city, true }, nil)
	mux := http.NewServeMux()
	api.Routes(mux)

	req := httptest.NewRequest("GET", "/aqi/testville", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 50.0, body["aqi"], 1e-6)
}

func TestHandleForecastEnsembleRejectsUnknownPollutant(t *testing.T) {
	city := fakeCity{concentrations: map[schema.Pollutant]float64{}}
	m := metrics.New()
	api := newTestAPI(func(string) (CityData, bool) { return city, true }, m)
	mux := http.NewServeMux()
	api.Routes(mux)

	req := httptest.NewRequest("GET", "/forecast/ensemble/testville?pollutant=xylene", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleForecastUnknownCityIncrementsMetric(t *testing.T) {
	m := metrics.New()
	api := newTestAPI(func(string) (CityData, bool) { return nil, false }, m)
	mux := http.NewServeMux()
	api.Routes(mux)

	req := httptest.NewRequest("GET", "/forecast/nowhere", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	mfs, err := m.Registry.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range mfs {
		if mf.GetName() == "aerosphere_forecast_requests_total" {
			found = true
		}
	}
	assert.True(t, found)
}
