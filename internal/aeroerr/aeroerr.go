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

// Package aeroerr defines the typed error taxonomy used across the
// ingestion and forecasting pipeline so that callers can distinguish
// "this was logged and skipped" from "this aborted the operation"
// without string-matching error messages.
package aeroerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories in the propagation table.
type Kind string

const (
	// SourceUnavailable is returned by an adapter when its upstream
	// network call failed or timed out. Non-fatal: the orchestrator
	// proceeds with other sources.
	SourceUnavailable Kind = "source_unavailable"
	// InvalidRecord is returned by the schema validators when a record
	// fails a required-field, range, or enumeration check.
	InvalidRecord Kind = "invalid_record"
	// DuplicateRecord marks a row suppressed by the natural-key
	// uniqueness constraint. Not an error condition for callers.
	DuplicateRecord Kind = "duplicate_record"
	// PersistenceError indicates the database rejected or could not
	// complete a batch. The triggering transaction is rolled back.
	PersistenceError Kind = "persistence_error"
	// InsufficientData marks a (pollutant, horizon) pair skipped
	// because fewer than the configured minimum training rows survived
	// cleaning.
	InsufficientData Kind = "insufficient_data"
	// ModelMissing indicates no registry entry exists for a requested
	// key even after horizon fallback.
	ModelMissing Kind = "model_missing"
	// FeatureMismatch indicates a forecast request could not
	// reconstruct a feature it needed, in particular the target
	// pollutant's own recent value.
	FeatureMismatch Kind = "feature_mismatch"
	// AQIOutOfRange indicates a concentration fell outside every
	// breakpoint interval in the EPA table.
	AQIOutOfRange Kind = "aqi_out_of_range"
)

// Error is the structured object surfaced to callers for every
// user-visible failure. Detail is a human-readable explanation; Counts
// is populated for batch operations (ingest, training) where partial
// progress accompanies the failure.
type Error struct {
	Kind   Kind
	Detail string
	Counts map[string]int

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap lets errors.Is/errors.As reach the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// New builds an *Error with no underlying cause.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap builds an *Error that carries cause as its Unwrap target.
func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, cause: cause}
}

// WithCounts attaches batch counters to an *Error and returns it for
// chaining at the construction site.
func (e *Error) WithCounts(counts map[string]int) *Error {
	e.Counts = counts
	return e
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
