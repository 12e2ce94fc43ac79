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
along with AeroSphere.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package config registers the options recognized by the core (§6 of
// the design doc) on a viper instance shared across the CLI's
// subcommands, the way inmaputil's Cfg wraps *viper.Viper for InMAP's
// own subcommands.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg wraps a *viper.Viper with the option metadata needed to bind
// persistent pflags and environment variables uniformly.
type Cfg struct {
	*viper.Viper
}

type option struct {
	name       string
	usage      string
	defaultVal interface{}
}

// defaults lists every recognized option and its default: the §6
// options of the design doc (the asof-join tolerance registered in
// minutes as features.asof_tolerance_minutes), plus the training-row
// floor, the target-sample threshold, the log level, and the db.*
// connection options.
var defaults = []option{
	{"ingest.window_hours", "look-back window for source fetches, in hours", 72},
	{"ingest.batch_size", "persistence batch cap", 10000},
	{"fetch.rate_limit_per_min", "shared token-bucket size for the gridded-weather adapter", 580},
	{"features.asof_tolerance_minutes", "temporal join tolerance, in minutes", 60},
	{"features.spatial_round_deg", "spatial join rounding granularity, in degrees", 0.1},
	{"features.fire_radius_km", "fire-proximity search radius, in kilometers", 50.0},
	{"train.horizons", "forecast horizons trained, in hours", []int{1, 6, 24}},
	{"train.split_fraction", "fraction of time-ordered rows used for training", 0.8},
	{"train.min_rows", "minimum training rows required before a (pollutant, horizon) is skipped", 20},
	{"schema.min_target_samples", "minimum non-null samples for an auto-selected target (registered only; not read)", 100},
	{"forecast.decay_base", "persistence-decay base applied per horizon step beyond the trained horizon", 0.95},
	{"log.level", "log level: debug, info, warn, error", "info"},
	{"db.host", "database host", "localhost"},
	{"db.port", "database port", 5432},
	{"db.name", "database name", "aerosphere"},
	{"db.user", "database user", "aerosphere"},
	{"db.sslmode", "database sslmode", "disable"},
}

// New creates a Cfg with every default registered and environment
// variable overrides enabled in the AEROSPHERE_<SECTION>_<KEY> form.
func New() *Cfg {
	v := viper.New()
	v.SetEnvPrefix("AEROSPHERE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, o := range defaults {
		v.SetDefault(o.name, o.defaultVal)
	}
	return &Cfg{Viper: v}
}

// BindFlags registers a persistent flag for every option on fs and
// binds it into the viper instance, so command-line flags, a config
// file, and environment variables all resolve through the same Get
// calls.
func (c *Cfg) BindFlags(fs *pflag.FlagSet) {
	for _, o := range defaults {
		switch d := o.defaultVal.(type) {
		case int:
			fs.Int(o.name, d, o.usage)
		case float64:
			fs.Float64(o.name, d, o.usage)
		case string:
			fs.String(o.name, d, o.usage)
		case []int:
			fs.IntSlice(o.name, d, o.usage)
		}
		_ = c.BindPFlag(o.name, fs.Lookup(o.name))
	}
}

// LoadFile reads a TOML configuration file into the viper instance if
// path is non-empty, mirroring inmaputil's setConfig.
func (c *Cfg) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	c.SetConfigFile(path)
	c.SetConfigType("toml")
	if err := c.ReadInConfig(); err != nil {
		return fmt.Errorf("aerosphere: problem reading configuration file: %w", err)
	}
	return nil
}

// AsofTolerance returns the configured asof-join tolerance as a
// time.Duration.
func (c *Cfg) AsofTolerance() time.Duration {
	return time.Duration(c.GetInt("features.asof_tolerance_minutes")) * time.Minute
}

// DBConnString assembles a libpq connection string from the db.*
// options, leaving credentials to environment variables per §6 ("no
// environment-variable escape hatches beyond DB connection parameters
// and source credentials").
func (c *Cfg) DBConnString() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s sslmode=%s",
		c.GetString("db.host"), c.GetInt("db.port"), c.GetString("db.name"),
		c.GetString("db.user"), c.GetString("db.sslmode"))
}
