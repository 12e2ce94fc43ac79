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

// Package metrics exposes the ingest/train outcome counters on a
// dedicated registry, served at /metrics the same way the pack's
// openmeteo_exporter serves its collector -- a custom registry rather
// than the global default, to avoid pulling in the go_collector noise.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every counter the ingest and training paths report
// against.
type Metrics struct {
	Registry *prometheus.Registry

	IngestRowsTotal    *prometheus.CounterVec
	IngestRunsTotal    prometheus.Counter
	TrainRunsTotal     prometheus.Counter
	TrainSkippedTotal  *prometheus.CounterVec
	ForecastRequests   *prometheus.CounterVec
}

// New constructs and registers every counter on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		IngestRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aerosphere_ingest_rows_total",
			Help: "Rows processed per table and outcome during ingest.",
		}, []string{"table", "outcome"}),
		IngestRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aerosphere_ingest_runs_total",
			Help: "Completed ingest cycles.",
		}),
		TrainRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aerosphere_train_runs_total",
			Help: "Completed training runs.",
		}),
		TrainSkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aerosphere_train_skipped_total",
			Help: "Training (pollutant, horizon) pairs skipped, by reason.",
		}, []string{"pollutant", "reason"}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aerosphere_forecast_requests_total",
			Help: "Forecast requests by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.IngestRowsTotal, m.IngestRunsTotal, m.TrainRunsTotal, m.TrainSkippedTotal, m.ForecastRequests)
	return m
}

// Handler returns the /metrics HTTP handler bound to this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
