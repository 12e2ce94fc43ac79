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

import (
	"context"
	"sync"

	"github.com/aerosphere/aerosphere/internal/schema"
)

// MemStore is an in-process Store implementation backed by a map of
// natural keys per table. It satisfies the same idempotency contract
// as Pool without a database, used by unit tests that exercise the
// ingest orchestrator's counting and dedup behavior (§8's quantified
// invariants) without standing up Postgres, and by the store package's
// own tests.
type MemStore struct {
	mu    sync.Mutex
	keys  map[schema.TableName]map[string]bool
	dumps map[schema.TableName][][]interface{}
	cols  map[schema.TableName][]string
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		keys:  make(map[schema.TableName]map[string]bool),
		dumps: make(map[schema.TableName][][]interface{}),
		cols:  make(map[schema.TableName][]string),
	}
}

// Upsert implements Store.Upsert with in-memory natural-key tracking.
func (m *MemStore) Upsert(_ context.Context, rows RowSet, maxBatch int) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table := rows.Table()
	if m.keys[table] == nil {
		m.keys[table] = make(map[string]bool)
	}
	m.cols[table] = rows.Columns()

	var total Result
	for _, bounds := range chunk(rows.Len(), maxBatch) {
		for i := bounds[0]; i < bounds[1]; i++ {
			key := rows.NaturalKey(i)
			if m.keys[table][key] {
				total.DuplicateSkipped++
				continue
			}
			m.keys[table][key] = true
			m.dumps[table] = append(m.dumps[table], rows.InsertArgs(i))
			total.Inserted++
		}
	}
	return total, nil
}

// Count returns the number of distinct rows currently stored for
// table, used by tests to assert on invariant 3 (no duplicate rows by
// natural key).
func (m *MemStore) Count(table schema.TableName) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys[table])
}

// Rows returns the stored insert-argument tuples for table, in
// Columns() order, for tests that need to inspect what was persisted.
func (m *MemStore) Rows(table schema.TableName) [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]interface{}(nil), m.dumps[table]...)
}
