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

package store

import "github.com/aerosphere/aerosphere/internal/schema"

// GroundAirQualityRows adapts a []schema.GroundAirQuality batch to RowSet.
type GroundAirQualityRows []schema.GroundAirQuality

func (r GroundAirQualityRows) Table() schema.TableName { return schema.GroundAirQualityTable }
func (r GroundAirQualityRows) Columns() []string {
	return []string{"observation_time", "lat", "lon", "location_id", "city", "country",
		"parameter", "value", "units", "provider", "sensor_id", "collection_timestamp"}
}
func (r GroundAirQualityRows) Len() int                  { return len(r) }
func (r GroundAirQualityRows) NaturalKey(i int) string    { return r[i].NaturalKey() }
func (r GroundAirQualityRows) InsertArgs(i int) []interface{} {
	row := r[i]
	return []interface{}{row.ObservationTime, row.Lat, row.Lon, row.LocationID, row.City, row.Country,
		string(row.Parameter), row.Value, row.Units, row.Provider, row.SensorID, row.CollectionTimestamp}
}

// SatelliteColumnRows adapts a []schema.SatelliteColumn batch to
// RowSet for one product table (table is supplied explicitly since the
// same Go type backs NO2/HCHO/O3).
type SatelliteColumnRows struct {
	Table_ schema.TableName
	Rows   []schema.SatelliteColumn
}

func (r SatelliteColumnRows) Table() schema.TableName { return r.Table_ }
func (r SatelliteColumnRows) Columns() []string {
	return []string{"observation_time", "lat", "lon", "column_value", "uncertainty",
		"quality_flag", "source_file", "collection_timestamp"}
}
func (r SatelliteColumnRows) Len() int               { return len(r.Rows) }
func (r SatelliteColumnRows) NaturalKey(i int) string { return r.Rows[i].NaturalKey() }
func (r SatelliteColumnRows) InsertArgs(i int) []interface{} {
	row := r.Rows[i]
	return []interface{}{row.ObservationTime, row.Lat, row.Lon, row.ColumnValue,
		row.Uncertainty, row.QualityFlag, row.SourceFile, row.CollectionTimestamp}
}

// ReanalysisMetRows adapts a []schema.ReanalysisMet batch to RowSet.
type ReanalysisMetRows []schema.ReanalysisMet

func (r ReanalysisMetRows) Table() schema.TableName { return schema.ReanalysisMetTable }
func (r ReanalysisMetRows) Columns() []string {
	return []string{"lat", "lon", "variable_name", "granule_time", "value", "units", "collection_timestamp"}
}
func (r ReanalysisMetRows) Len() int               { return len(r) }
func (r ReanalysisMetRows) NaturalKey(i int) string { return r[i].NaturalKey() }
func (r ReanalysisMetRows) InsertArgs(i int) []interface{} {
	row := r[i]
	return []interface{}{row.Lat, row.Lon, string(row.VariableName), row.GranuleTime, row.Value, row.Units, row.CollectionTimestamp}
}

// PBLHRows adapts a []schema.PBLH batch to RowSet.
type PBLHRows []schema.PBLH

func (r PBLHRows) Table() schema.TableName { return schema.PBLHTable }
func (r PBLHRows) Columns() []string {
	return []string{"lat", "lon", "timestamp", "pbl_height_m", "collection_timestamp"}
}
func (r PBLHRows) Len() int               { return len(r) }
func (r PBLHRows) NaturalKey(i int) string { return r[i].NaturalKey() }
func (r PBLHRows) InsertArgs(i int) []interface{} {
	row := r[i]
	return []interface{}{row.Lat, row.Lon, row.Timestamp, row.PBLHeightM, row.CollectionTimestamp}
}

// FireDetectionRows adapts a []schema.FireDetection batch to RowSet.
type FireDetectionRows []schema.FireDetection

func (r FireDetectionRows) Table() schema.TableName { return schema.FireDetectionTable }
func (r FireDetectionRows) Columns() []string {
	return []string{"lat", "lon", "acq_date", "acq_time", "frp", "confidence", "satellite", "collection_timestamp"}
}
func (r FireDetectionRows) Len() int               { return len(r) }
func (r FireDetectionRows) NaturalKey(i int) string { return r[i].NaturalKey() }
func (r FireDetectionRows) InsertArgs(i int) []interface{} {
	row := r[i]
	return []interface{}{row.Lat, row.Lon, row.AcqDate, row.AcqTime, row.FRP, string(row.Confidence), row.Satellite, row.CollectionTimestamp}
}

// GriddedWeatherRows adapts a []schema.GriddedWeather batch to RowSet.
type GriddedWeatherRows []schema.GriddedWeather

func (r GriddedWeatherRows) Table() schema.TableName { return schema.GriddedWeatherTable }
func (r GriddedWeatherRows) Columns() []string {
	return []string{"timestamp", "lat", "lon", "temperature_c", "humidity_pct", "precip_mm",
		"wind_kmh", "pressure_hpa", "cloud_pct", "collection_timestamp"}
}
func (r GriddedWeatherRows) Len() int               { return len(r) }
func (r GriddedWeatherRows) NaturalKey(i int) string { return r[i].NaturalKey() }
func (r GriddedWeatherRows) InsertArgs(i int) []interface{} {
	row := r[i]
	return []interface{}{row.Timestamp, row.Lat, row.Lon, row.TemperatureC, row.HumidityPct,
		row.PrecipMM, row.WindKMH, row.PressureHPA, row.CloudPct, row.CollectionTimestamp}
}
