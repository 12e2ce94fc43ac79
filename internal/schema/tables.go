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

// Package schema declares the typed observation tables of §3: their
// column sets, natural keys, and the validators every record must pass
// before C3 will persist it.
package schema

import "time"

// TableName identifies one of the destination tables.
type TableName string

const (
	GroundAirQualityTable TableName = "ground_air_quality"
	SatelliteNO2Table     TableName = "satellite_no2"
	SatelliteHCHOTable    TableName = "satellite_hcho"
	SatelliteO3Table      TableName = "satellite_o3"
	ReanalysisMetTable    TableName = "reanalysis_met"
	PBLHTable             TableName = "pblh"
	FireDetectionTable    TableName = "fire_detection"
	GriddedWeatherTable   TableName = "gridded_weather"
)

// Pollutant is the canonical short form for a ground-station
// parameter. The source data mixes spellings ("PM25", "PM2.5",
// "pm25"); CanonicalPollutant returns this form and every later component
// (features, training, registry keys, AQI mapper) uses only it.
type Pollutant string

const (
	PM25 Pollutant = "pm25"
	PM10 Pollutant = "pm10"
	NO2  Pollutant = "no2"
	O3   Pollutant = "o3"
	CO   Pollutant = "co"
	SO2  Pollutant = "so2"
)

var pollutantAliases = map[string]Pollutant{
	"pm25": PM25, "pm2.5": PM25, "PM25": PM25, "PM2.5": PM25, "pm2_5": PM25,
	"pm10": PM10, "PM10": PM10,
	"no2": NO2, "NO2": NO2,
	"o3": O3, "O3": O3,
	"co": CO, "CO": CO,
	"so2": SO2, "SO2": SO2,
}

// CanonicalPollutant resolves any accepted spelling of a pollutant
// parameter name to its canonical form. The bool result is false if
// raw is not a recognized pollutant.
func CanonicalPollutant(raw string) (Pollutant, bool) {
	p, ok := pollutantAliases[raw]
	return p, ok
}

// AllPollutants lists every canonical pollutant the schema accepts, in
// a stable order used when probing a wide feature frame for available
// targets.
var AllPollutants = []Pollutant{PM25, PM10, NO2, O3, CO, SO2}

// Confidence is the fire-detection confidence enumeration.
type Confidence string

const (
	ConfidenceLow     Confidence = "low"
	ConfidenceNominal Confidence = "nominal"
	ConfidenceHigh    Confidence = "high"
)

// MetVariable is the reanalysis-meteorology variable enumeration.
type MetVariable string

const (
	T2M  MetVariable = "T2M"
	QV2M MetVariable = "QV2M"
	U10M MetVariable = "U10M"
	V10M MetVariable = "V10M"
	PS   MetVariable = "PS"
	SLP  MetVariable = "SLP"
)

// GroundAirQuality is one (station, parameter, timestamp) reading from
// a ground-based air-quality monitor.
type GroundAirQuality struct {
	ObservationTime      time.Time
	Lat, Lon             float64
	LocationID           string
	City, Country        string
	Parameter            Pollutant
	Value                float64
	Units                string
	Provider             string
	SensorID             string
	CollectionTimestamp  time.Time
}

// NaturalKey implements the dedup key of §3:
// (observation_time, lat, lon, parameter, value, sensor_id).
func (r GroundAirQuality) NaturalKey() string {
	return naturalKey(r.ObservationTime, r.Lat, r.Lon, string(r.Parameter), r.Value, r.SensorID)
}

// SatelliteColumn is one sampled point from a satellite column-product
// granule (NO2, HCHO, or O3 — one instance of this struct per product
// table).
type SatelliteColumn struct {
	ObservationTime     time.Time
	Lat, Lon            float64
	ColumnValue         float64
	Uncertainty         *float64
	QualityFlag         *int
	SourceFile          string
	CollectionTimestamp time.Time
}

// NaturalKey implements (lat, lon, column_value, observation_time).
func (r SatelliteColumn) NaturalKey() string {
	return naturalKey(r.Lat, r.Lon, r.ColumnValue, r.ObservationTime)
}

// ReanalysisMet is one (time, lat, lon, variable) meteorology sample.
type ReanalysisMet struct {
	GranuleTime         time.Time
	Lat, Lon            float64
	VariableName        MetVariable
	Value               float64
	Units               string
	CollectionTimestamp time.Time
}

// NaturalKey implements (lat, lon, variable_name, granule_time, value).
func (r ReanalysisMet) NaturalKey() string {
	return naturalKey(r.Lat, r.Lon, string(r.VariableName), r.GranuleTime, r.Value)
}

// PBLH is one planetary-boundary-layer-height grid cell sample.
type PBLH struct {
	Timestamp           time.Time
	Lat, Lon            float64
	PBLHeightM          float64
	CollectionTimestamp time.Time
}

// NaturalKey implements (lat, lon, timestamp, pbl_height_m).
func (r PBLH) NaturalKey() string {
	return naturalKey(r.Lat, r.Lon, r.Timestamp, r.PBLHeightM)
}

// FireDetection is one active-fire detection.
type FireDetection struct {
	AcqDate             time.Time
	AcqTime             string
	Lat, Lon            float64
	FRP                 float64
	Confidence          Confidence
	Satellite           string
	CollectionTimestamp time.Time
}

// NaturalKey implements (lat, lon, acq_date, acq_time, satellite).
func (r FireDetection) NaturalKey() string {
	return naturalKey(r.Lat, r.Lon, r.AcqDate, r.AcqTime, r.Satellite)
}

// GriddedWeather is one regular-grid weather cell sample.
type GriddedWeather struct {
	Timestamp           time.Time
	Lat, Lon            float64
	TemperatureC        float64
	HumidityPct         float64
	PrecipMM            float64
	WindKMH             float64
	PressureHPA         float64
	CloudPct            float64
	CollectionTimestamp time.Time
}

// NaturalKey implements (timestamp, lat, lon).
func (r GriddedWeather) NaturalKey() string {
	return naturalKey(r.Timestamp, r.Lat, r.Lon)
}
