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
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedObsTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func validGround() GroundAirQuality {
	return GroundAirQuality{
		ObservationTime: fixedObsTime, Lat: 40.0, Lon: -105.0,
		LocationID: "us-co-001", Parameter: PM25, Value: 12.3, SensorID: "s1",
	}
}

func TestGroundAirQualityValidate(t *testing.T) {
	assert.NoError(t, validGround().Validate())

	missingLocation := validGround()
	missingLocation.LocationID = ""
	assert.Error(t, missingLocation.Validate())

	badLat := validGround()
	badLat.Lat = 95
	assert.Error(t, badLat.Validate())

	nanValue := validGround()
	nanValue.Value = math.NaN()
	assert.Error(t, nanValue.Validate())

	zeroTime := validGround()
	zeroTime.ObservationTime = time.Time{}
	assert.Error(t, zeroTime.Validate())
}

func TestFireDetectionConfidenceFilter(t *testing.T) {
	f := FireDetection{AcqDate: time.Now(), Lat: 1, Lon: 1, FRP: 5, Confidence: ConfidenceHigh, Satellite: "VIIRS"}
	assert.NoError(t, f.Validate())

	f.Confidence = ConfidenceLow
	assert.Error(t, f.Validate())
}

func TestReanalysisMetUnrecognizedVariable(t *testing.T) {
	m := ReanalysisMet{GranuleTime: time.Now(), Lat: 1, Lon: 1, VariableName: "BOGUS", Value: 1}
	assert.Error(t, m.Validate())

	m.VariableName = T2M
	assert.NoError(t, m.Validate())
}

func TestCanonicalPollutant(t *testing.T) {
	cases := map[string]Pollutant{"pm25": PM25, "PM2.5": PM25, "pm2_5": PM25, "NO2": NO2}
	for raw, want := range cases {
		got, ok := CanonicalPollutant(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := CanonicalPollutant("not-a-pollutant")
	assert.False(t, ok)
}

func TestNaturalKeyDistinguishesReadings(t *testing.T) {
	a := validGround()
	b := validGround()
	b.SensorID = "s2"
	assert.NotEqual(t, a.NaturalKey(), b.NaturalKey())

	c := validGround()
	assert.Equal(t, a.NaturalKey(), c.NaturalKey())
}
