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

// Package obslog constructs the logrus logger shared by every
// component, keyed by component name the way the ingestion and
// training orchestrators tag their WithFields output.
package obslog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger configured for the given level name
// ("debug", "info", "warn", "error"). An unrecognized or empty level
// defaults to info.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Component returns an entry pre-tagged with the component field, the
// convention every package below uses instead of reaching for the
// global logrus default.
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}
