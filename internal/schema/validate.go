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

package schema

import (
	"fmt"
	"math"
	"strings"
	"time"
)

func naturalKey(parts ...interface{}) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%v", p)
	}
	return b.String()
}

// validLatLon implements invariant 1: lat in [-90,90], lon in
// [-180,180], both finite.
func validLatLon(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", lon)
	}
	return nil
}

// finite implements invariant 4: numeric observation values must be
// finite floats.
func finite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("value %v is not finite", v)
	}
	return nil
}

// Validate checks a GroundAirQuality record against the required-field
// and range rules. Missing or non-numeric value is handled by the
// adapter (dropped before it ever reaches here); Validate re-checks it
// defensively since C2 is the last line of defense before C3.
func (r GroundAirQuality) Validate() error {
	if r.LocationID == "" {
		return fmt.Errorf("location_id is required")
	}
	if r.Parameter == "" {
		return fmt.Errorf("parameter is required")
	}
	if r.ObservationTime.IsZero() {
		return fmt.Errorf("observation_time is required")
	}
	if err := validLatLon(r.Lat, r.Lon); err != nil {
		return err
	}
	if err := finite(r.Value); err != nil {
		return err
	}
	return nil
}

// Validate checks a SatelliteColumn record's structural invariants.
// The quality-filter invariant (5) is not checked here: it is
// product-specific (e.g. HCHO: quality_flag >= 0) and is applied by the
// adapter's Filter before Validate is reached.
func (r SatelliteColumn) Validate() error {
	if r.ObservationTime.IsZero() {
		return fmt.Errorf("observation_time is required")
	}
	if err := validLatLon(r.Lat, r.Lon); err != nil {
		return err
	}
	return finite(r.ColumnValue)
}

// Validate checks a ReanalysisMet record.
func (r ReanalysisMet) Validate() error {
	switch r.VariableName {
	case T2M, QV2M, U10M, V10M, PS, SLP:
	default:
		return fmt.Errorf("unrecognized variable_name %q", r.VariableName)
	}
	if r.GranuleTime.IsZero() {
		return fmt.Errorf("granule_time is required")
	}
	if err := validLatLon(r.Lat, r.Lon); err != nil {
		return err
	}
	return finite(r.Value)
}

// Validate checks a PBLH record.
func (r PBLH) Validate() error {
	if r.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if err := validLatLon(r.Lat, r.Lon); err != nil {
		return err
	}
	return finite(r.PBLHeightM)
}

// Validate checks a FireDetection record, including the
// confidence-in-{nominal,high} filter of invariant 5. Per §4.1 the
// filter is applied at the source, but Validate re-asserts it so a
// malformed upstream record can never slip through C2.
func (r FireDetection) Validate() error {
	if r.AcqDate.IsZero() {
		return fmt.Errorf("acq_date is required")
	}
	if err := validLatLon(r.Lat, r.Lon); err != nil {
		return err
	}
	switch r.Confidence {
	case ConfidenceNominal, ConfidenceHigh:
	default:
		return fmt.Errorf("confidence %q is not admitted (must be nominal or high)", r.Confidence)
	}
	return finite(r.FRP)
}

// Validate checks a GriddedWeather record.
func (r GriddedWeather) Validate() error {
	if r.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if err := validLatLon(r.Lat, r.Lon); err != nil {
		return err
	}
	for _, v := range []float64{r.TemperatureC, r.HumidityPct, r.PrecipMM, r.WindKMH, r.PressureHPA, r.CloudPct} {
		if err := finite(v); err != nil {
			return err
		}
	}
	return nil
}

// UTC normalizes a timestamp to UTC, per invariant 2.
func UTC(t time.Time) time.Time { return t.UTC() }
