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

// Package aqi implements C7: the US EPA piecewise-linear AQI
// breakpoint mapping, per-pollutant sub-index computation, and the
// multi-pollutant max-across-sub-indices rule.
package aqi

import (
	"github.com/aerosphere/aerosphere/internal/aeroerr"
	"github.com/aerosphere/aerosphere/internal/schema"
)

// breakpoint is one row of an EPA breakpoint table:
// [BPLo, BPHi] concentration maps to [AQILo, AQIHi].
type breakpoint struct {
	BPLo, BPHi   float64
	AQILo, AQIHi float64
}

// Breakpoint intervals are open-left, closed-right except the table's
// first interval, which is closed on both ends at 0 -- see DESIGN.md
// Open Question 2. A concentration exactly on a shared boundary (e.g.
// PM2.5 = 12.0) belongs to the interval it is the upper edge of.
var tables = map[schema.Pollutant][]breakpoint{
	schema.PM25: {
		{0.0, 12.0, 0, 50},
		{12.0, 35.4, 51, 100},
		{35.4, 55.4, 101, 150},
		{55.4, 150.4, 151, 200},
		{150.4, 250.4, 201, 300},
		{250.4, 500.4, 301, 500},
	},
	schema.PM10: {
		{0, 54, 0, 50},
		{54, 154, 51, 100},
		{154, 254, 101, 150},
		{254, 354, 151, 200},
		{354, 424, 201, 300},
		{424, 604, 301, 500},
	},
	schema.O3: {
		{0, 0.054, 0, 50},
		{0.054, 0.070, 51, 100},
		{0.070, 0.085, 101, 150},
		{0.085, 0.105, 151, 200},
		{0.105, 0.200, 201, 300},
	},
	schema.NO2: {
		{0, 53, 0, 50},
		{53, 100, 51, 100},
		{100, 360, 101, 150},
		{360, 649, 151, 200},
		{649, 1249, 201, 300},
		{1249, 2049, 301, 500},
	},
	schema.SO2: {
		{0, 35, 0, 50},
		{35, 75, 51, 100},
		{75, 185, 101, 150},
		{185, 304, 151, 200},
		{304, 604, 201, 300},
		{604, 1004, 301, 500},
	},
	schema.CO: {
		{0.0, 4.4, 0, 50},
		{4.4, 9.4, 51, 100},
		{9.4, 12.4, 101, 150},
		{12.4, 15.4, 151, 200},
		{15.4, 30.4, 201, 300},
		{30.4, 50.4, 301, 500},
	},
}

// Category is the AQI category band per §4.7.
type Category string

const (
	Good                          Category = "Good"
	Moderate                      Category = "Moderate"
	UnhealthyForSensitiveGroups   Category = "Unhealthy for Sensitive Groups"
	Unhealthy                     Category = "Unhealthy"
	VeryUnhealthy                 Category = "Very Unhealthy"
	Hazardous                     Category = "Hazardous"
)

// CategoryFor maps an AQI value to its category band.
func CategoryFor(value float64) Category {
	switch {
	case value <= 50:
		return Good
	case value <= 100:
		return Moderate
	case value <= 150:
		return UnhealthyForSensitiveGroups
	case value <= 200:
		return Unhealthy
	case value <= 300:
		return VeryUnhealthy
	default:
		return Hazardous
	}
}

// SubIndex computes the AQI sub-index for one pollutant concentration.
// Returns aeroerr.AQIOutOfRange if the pollutant has no breakpoint
// table or the concentration falls outside every interval.
func SubIndex(pollutant schema.Pollutant, concentration float64) (float64, error) {
	table, ok := tables[pollutant]
	if !ok {
		return 0, aeroerr.New(aeroerr.AQIOutOfRange, "no breakpoint table for pollutant "+string(pollutant))
	}
	if concentration < 0 {
		return 0, aeroerr.New(aeroerr.AQIOutOfRange, "concentration below zero")
	}
	for i, bp := range table {
		lowOK := concentration > bp.BPLo
		if i == 0 {
			lowOK = concentration >= bp.BPLo
		}
		if lowOK && concentration <= bp.BPHi {
			return linear(bp, concentration), nil
		}
	}
	return 0, aeroerr.New(aeroerr.AQIOutOfRange, "concentration exceeds the highest defined breakpoint")
}

func linear(bp breakpoint, c float64) float64 {
	return ((bp.AQIHi-bp.AQILo)/(bp.BPHi-bp.BPLo))*(c-bp.BPLo) + bp.AQILo
}

// Reading is one pollutant's concentration for a multi-pollutant AQI
// computation.
type Reading struct {
	Pollutant     schema.Pollutant
	Concentration float64
	Unit          string
}

// Result is the combined multi-pollutant AQI per §4.7: the max
// sub-index and the pollutant that produced it.
type Result struct {
	AQI               float64
	Category          Category
	DominantPollutant schema.Pollutant
}

// Combine computes the max-across-sub-indices AQI over readings,
// skipping any pollutant whose concentration is out of range rather
// than failing the whole computation -- matching §7's AQIOutOfRange
// policy ("caller decides fallback") at the level of one pollutant
// among several.
func Combine(readings []Reading) (Result, error) {
	best := Result{AQI: -1}
	for _, r := range readings {
		idx, err := SubIndex(r.Pollutant, r.Concentration)
		if err != nil {
			continue
		}
		if idx > best.AQI {
			best = Result{AQI: idx, DominantPollutant: r.Pollutant}
		}
	}
	if best.AQI < 0 {
		return Result{}, aeroerr.New(aeroerr.AQIOutOfRange, "no pollutant reading was within any defined breakpoint table")
	}
	best.Category = CategoryFor(best.AQI)
	return best, nil
}
