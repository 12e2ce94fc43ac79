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

package ingest

import (
	"context"
	"time"

	"github.com/aerosphere/aerosphere/internal/schema"
	"github.com/aerosphere/aerosphere/internal/sources"
	"github.com/aerosphere/aerosphere/internal/store"
)

// ingestGround runs C2+C3 over one ground-station fetch cycle, the
// parameter field canonicalized against schema's pollutant aliases
// before validation (§3's essential-attributes contract).
func (o *Orchestrator) ingestGround(ctx context.Context, window sources.Window, now time.Time, report *Report) {
	raw := o.Ground.Fetch(ctx, window, o.GroundBBox)
	var rows store.GroundAirQualityRows
	invalid := 0
	for _, r := range raw {
		param, ok := schema.CanonicalPollutant(r.Parameter)
		if !ok {
			invalid++
			continue
		}
		row := schema.GroundAirQuality{
			ObservationTime: schema.UTC(r.ObservationTime), Lat: r.Lat, Lon: r.Lon,
			LocationID: r.LocationID, City: r.City, Country: r.Country,
			Parameter: param, Value: r.Value, Units: r.Units,
			Provider: r.Provider, SensorID: r.SensorID, CollectionTimestamp: now,
		}
		if err := row.Validate(); err != nil {
			invalid++
			continue
		}
		rows = append(rows, row)
	}
	o.persist(ctx, SourceGround, schema.GroundAirQualityTable, rows, invalid, report)
}

// ingestSatellite runs C2+C3 for one satellite column product.
func (o *Orchestrator) ingestSatellite(ctx context.Context, window sources.Window, now time.Time,
	adapter *sources.SatelliteAdapter, table schema.TableName, source string, report *Report) {
	raw := adapter.Fetch(ctx, window)
	var buf []schema.SatelliteColumn
	invalid := 0
	for _, r := range raw {
		row := schema.SatelliteColumn{
			ObservationTime: time.Unix(r.MidpointUTC, 0).UTC(),
			Lat: r.Lat, Lon: r.Lon, ColumnValue: r.ColumnValue,
			Uncertainty: r.Uncertainty, QualityFlag: r.QualityFlag,
			SourceFile: r.SourceFile, CollectionTimestamp: now,
		}
		if err := row.Validate(); err != nil {
			invalid++
			continue
		}
		buf = append(buf, row)
	}
	o.persist(ctx, source, table, store.SatelliteColumnRows{Table_: table, Rows: buf}, invalid, report)
}

// ingestMet runs C2+C3 over reanalysis meteorology.
func (o *Orchestrator) ingestMet(ctx context.Context, window sources.Window, now time.Time, report *Report) {
	raw := o.Met.Fetch(ctx, window)
	var rows store.ReanalysisMetRows
	invalid := 0
	for _, r := range raw {
		row := schema.ReanalysisMet{
			GranuleTime: time.Unix(r.GranuleTime, 0).UTC(), Lat: r.Lat, Lon: r.Lon,
			VariableName: schema.MetVariable(r.Variable), Value: r.Value, Units: r.Units,
			CollectionTimestamp: now,
		}
		if err := row.Validate(); err != nil {
			invalid++
			continue
		}
		rows = append(rows, row)
	}
	o.persist(ctx, SourceMet, schema.ReanalysisMetTable, rows, invalid, report)
}

// ingestPBLH runs C2+C3 over planetary-boundary-layer heights.
func (o *Orchestrator) ingestPBLH(ctx context.Context, window sources.Window, now time.Time, report *Report) {
	raw := o.PBLH.Fetch(ctx, window)
	var rows store.PBLHRows
	invalid := 0
	for _, r := range raw {
		row := schema.PBLH{
			Timestamp: time.Unix(r.TimestampUTC, 0).UTC(), Lat: r.Lat, Lon: r.Lon,
			PBLHeightM: r.PBLHeightM, CollectionTimestamp: now,
		}
		if err := row.Validate(); err != nil {
			invalid++
			continue
		}
		rows = append(rows, row)
	}
	o.persist(ctx, SourcePBLH, schema.PBLHTable, rows, invalid, report)
}

// ingestFire runs C2+C3 over active-fire detections.
func (o *Orchestrator) ingestFire(ctx context.Context, window sources.Window, now time.Time, report *Report) {
	raw := o.Fire.Fetch(ctx, window)
	var rows store.FireDetectionRows
	invalid := 0
	for _, r := range raw {
		row := schema.FireDetection{
			AcqDate: time.Unix(r.AcqDateUnix, 0).UTC(), AcqTime: r.AcqTime, Lat: r.Lat, Lon: r.Lon,
			FRP: r.FRP, Confidence: r.Confidence, Satellite: r.Satellite, CollectionTimestamp: now,
		}
		if err := row.Validate(); err != nil {
			invalid++
			continue
		}
		rows = append(rows, row)
	}
	o.persist(ctx, SourceFire, schema.FireDetectionTable, rows, invalid, report)
}

// ingestGridded runs C2+C3 over a regular-grid weather fetch.
func (o *Orchestrator) ingestGridded(ctx context.Context, now time.Time, report *Report) {
	raw := o.Gridded.Fetch(ctx, o.GridCells)
	var rows store.GriddedWeatherRows
	invalid := 0
	for _, r := range raw {
		row := schema.GriddedWeather{
			Timestamp: time.Unix(r.TimestampUTC, 0).UTC(), Lat: r.Lat, Lon: r.Lon,
			TemperatureC: r.TemperatureC, HumidityPct: r.HumidityPct, PrecipMM: r.PrecipMM,
			WindKMH: r.WindKMH, PressureHPA: r.PressureHPA, CloudPct: r.CloudPct,
			CollectionTimestamp: now,
		}
		if err := row.Validate(); err != nil {
			invalid++
			continue
		}
		rows = append(rows, row)
	}
	o.persist(ctx, SourceGridded, schema.GriddedWeatherTable, rows, invalid, report)
}

// persist upserts rows (a store.RowSet) and folds the result, plus the
// already-counted invalid rejections, into report. A persistence
// failure is logged rather than propagated and the table's inserted and
// duplicate counters are left at zero (its invalid count is still
// reported) -- one table's failure must not abort another's ingest
// (§4.3).
func (o *Orchestrator) persist(ctx context.Context, source string, table schema.TableName, rows store.RowSet, invalid int, report *Report) {
	if rows == nil || rows.Len() == 0 {
		o.countRows(table, "invalid", invalid)
		report.record(source, table, TableResult{InvalidSkipped: invalid})
		return
	}
	res, err := o.Store.Upsert(ctx, rows, o.batchSize())
	if err != nil {
		if o.Log != nil {
			o.Log.WithError(err).WithField("table", table).Error("upsert failed")
		}
		o.countRows(table, "invalid", invalid)
		report.record(source, table, TableResult{InvalidSkipped: invalid})
		return
	}
	o.countRows(table, "inserted", res.Inserted)
	o.countRows(table, "duplicate", res.DuplicateSkipped)
	o.countRows(table, "invalid", invalid)
	report.record(source, table, TableResult{
		Inserted: res.Inserted, DuplicateSkipped: res.DuplicateSkipped, InvalidSkipped: invalid,
	})
}

func (o *Orchestrator) countRows(table schema.TableName, outcome string, n int) {
	if o.Metrics == nil || n == 0 {
		return
	}
	o.Metrics.IngestRowsTotal.WithLabelValues(string(table), outcome).Add(float64(n))
}
