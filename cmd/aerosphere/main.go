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

// Command aerosphere is the command-line entry point for the
// AeroSphere ingestion and forecasting core: main wires a cobra root
// and delegates everything else to the internal packages.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aerosphere/aerosphere/internal/config"
	"github.com/aerosphere/aerosphere/internal/forecast"
	"github.com/aerosphere/aerosphere/internal/httpapi"
	"github.com/aerosphere/aerosphere/internal/ingest"
	"github.com/aerosphere/aerosphere/internal/metrics"
	"github.com/aerosphere/aerosphere/internal/obslog"
	"github.com/aerosphere/aerosphere/internal/registry"
	"github.com/aerosphere/aerosphere/internal/sources"
	"github.com/aerosphere/aerosphere/internal/store"
	"github.com/aerosphere/aerosphere/internal/training"
)

var cfgFile string

func main() {
	cfg := config.New()
	log := obslog.New("info")

	root := &cobra.Command{
		Use:   "aerosphere",
		Short: "AeroSphere ingests environmental observations and serves AQI forecasts.",
		Long: `AeroSphere fetches ground, satellite, meteorology, and fire-detection
data, persists it idempotently, assembles spatio-temporal features, trains a
three-model ensemble per pollutant and horizon, and serves uncertainty-aware
AQI forecasts.

Configuration can be set via a TOML file (--config), command-line flags, or
AEROSPHERE_<SECTION>_<KEY> environment variables.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadFile(cfgFile); err != nil {
				return err
			}
			lvl, err := logrus.ParseLevel(cfg.GetString("log.level"))
			if err == nil {
				log.SetLevel(lvl)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a TOML configuration file")
	cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		ingestCmd(cfg, log),
		trainCmd(cfg, log),
		serveCmd(cfg, log),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func ingestCmd(cfg *config.Cfg, log *logrus.Logger) *cobra.Command {
	var windowHours int
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingest cycle against every configured source.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entry := obslog.Component(log, "ingest")

			pool, err := connectStore(cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			orch := &ingest.Orchestrator{Store: pool, BatchSize: cfg.GetInt("ingest.batch_size"), Log: entry}

			h := windowHours
			if h <= 0 {
				h = cfg.GetInt("ingest.window_hours")
			}
			end := time.Now().UTC()
			window := sources.Window{Start: end.Add(-time.Duration(h) * time.Hour), End: end}

			report := orch.Run(ctx, window, nil)
			entry.WithField("run_id", report.RunID).Info("ingest cycle complete")
			for src, tables := range report.PerSource {
				for table, r := range tables {
					entry.WithFields(logrus.Fields{
						"source": src, "table": table,
						"inserted": r.Inserted, "duplicate_skipped": r.DuplicateSkipped, "invalid_skipped": r.InvalidSkipped,
					}).Info("table ingest result")
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&windowHours, "window-hours", 0, "override ingest.window_hours for this run")
	return cmd
}

func trainCmd(cfg *config.Cfg, log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Report how to train; this command does not train and always returns an error.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("aerosphere: training requires a caller-assembled features.Frame " +
				"(see internal/features.Assemble and internal/training.Run); this CLI skeleton " +
				"does not itself own a query path from the store back into a Frame -- a hosting " +
				"service wires that and calls internal/training.Run directly")
		},
	}
	return cmd
}

func serveCmd(cfg *config.Cfg, log *logrus.Logger) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (forecast, AQI, ingest, train) and the /metrics endpoint.",
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := obslog.Component(log, "httpapi")

			pool, err := connectStore(cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			m := metrics.New()
			orch := &ingest.Orchestrator{Store: pool, BatchSize: cfg.GetInt("ingest.batch_size"), Log: obslog.Component(log, "ingest"), Metrics: m}

			reg := registry.New()
			eng := forecast.NewEngine(reg)
			eng.DecayBase = cfg.GetFloat64("forecast.decay_base")

			params := training.DefaultParams()
			params.Horizons = cfg.GetIntSlice("train.horizons")
			params.SplitFraction = cfg.GetFloat64("train.split_fraction")
			params.MinTrainRows = cfg.GetInt("train.min_rows")

			api := &httpapi.API{
				Orchestrator: orch,
				TrainParams:  params,
				ForecastEng:  eng,
				Lookup: func(city string) (httpapi.CityData, bool) {
					// Resolving a city name to its latest observations is
					// a hosting-service concern -- query the store for
					// the most recent row per city/pollutant and adapt it
					// to httpapi.CityData. The core only defines that
					// contract; it does not own a city directory.
					return nil, false
				},
				Log:     entry,
				Metrics: m,
			}
			mux := http.NewServeMux()
			api.Routes(mux)
			mux.Handle("/metrics", m.Handler())

			entry.WithField("addr", addr).Info("serving")
			return http.ListenAndServe(addr, mux)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	return cmd
}

func connectStore(cfg *config.Cfg) (*store.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), store.PingTimeout)
	defer cancel()
	return store.Connect(ctx, cfg.DBConnString())
}
