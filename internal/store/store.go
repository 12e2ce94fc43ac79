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

// Package store implements C3, the persistence engine: idempotent
// batch upsert into the typed tables of internal/schema. It is
// grounded on internal/postgis/postgis.go's pgx connection pattern,
// generalized from a test-container bootstrap into the production
// connection pool and batch-insert path.
package store

import (
	"context"
	"fmt"

	"github.com/aerosphere/aerosphere/internal/schema"
)

// Result holds the inserted and duplicate-skipped counts of §4.3's
// upsert contract; the third count, invalid_skipped, is kept by the
// ingest orchestrator, since invalid rows never reach the store.
type Result struct {
	Inserted         int
	DuplicateSkipped int
}

// Add merges another Result's counts into r.
func (r *Result) Add(o Result) {
	r.Inserted += o.Inserted
	r.DuplicateSkipped += o.DuplicateSkipped
}

// RowSet adapts a homogeneous batch of validated rows for one table to
// the column-agnostic upsert path: the store has no per-table code and
// learns everything from the RowSet: the table's column list, how many
// rows it has, each row's natural key, and the positional insert
// arguments for that row in the table's declared column order.
type RowSet interface {
	Table() schema.TableName
	Columns() []string
	Len() int
	NaturalKey(i int) string
	InsertArgs(i int) []interface{}
}

// Store is the interface both the production pgx-backed pool and the
// in-memory test double satisfy.
type Store interface {
	// Upsert persists rows, skipping any whose natural key already
	// exists, atomically within a single transaction per §4.3's
	// guarantee 1. Batches larger than maxBatch are split into
	// multiple transactions internally but the full-batch semantics
	// described in the contract are preserved within each chunk.
	Upsert(ctx context.Context, rows RowSet, maxBatch int) (Result, error)
}

// chunk splits [0, n) into slices no larger than size, used by both
// backends to respect ingest.batch_size.
func chunk(n, size int) [][2]int {
	if size <= 0 {
		size = n
	}
	var chunks [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, [2]int{start, end})
	}
	return chunks
}

func quoteIdent(s string) string {
	return fmt.Sprintf("%q", s)
}
