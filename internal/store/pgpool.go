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
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/aerosphere/aerosphere/internal/aeroerr"
)

// Pool is the production Store backed by a pgx connection pool. One
// Pool is created at process start and shared across every ingest
// task, matching §5's "no global mutable state outside the registry
// and the connection pool."
type Pool struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection, retrying only the initial
// handshake (never a logical query failure) with an exponential
// backoff, mirroring internal/postgis/postgis.go's
// backoff.Retry(..., backoff.WithMaxRetries(...)) around pgx.Connect.
func Connect(ctx context.Context, connString string) (*Pool, error) {
	var pool *pgxpool.Pool
	err := backoff.Retry(func() error {
		p, err := pgxpool.Connect(ctx, connString)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10), ctx))
	if err != nil {
		return nil, fmt.Errorf("aerosphere: could not connect to database: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Close releases all pooled connections.
func (p *Pool) Close() { p.pool.Close() }

// Upsert implements Store.Upsert using a parameterized multi-row
// INSERT ... ON CONFLICT DO NOTHING (no explicit conflict target), wrapped
// in one transaction per chunk so each chunk is all-or-nothing per
// §4.3 guarantee 1. Connection-level errors propagate to the caller as
// a PersistenceError; the transaction is rolled back by pgx when the
// function returns a non-nil error without committing.
func (p *Pool) Upsert(ctx context.Context, rows RowSet, maxBatch int) (Result, error) {
	var total Result
	cols := rows.Columns()
	for _, bounds := range chunk(rows.Len(), maxBatch) {
		start, end := bounds[0], bounds[1]
		res, err := p.upsertChunk(ctx, rows, cols, start, end)
		if err != nil {
			return total, aeroerr.Wrap(aeroerr.PersistenceError,
				fmt.Sprintf("upsert into %s rows [%d,%d)", rows.Table(), start, end), err)
		}
		total.Add(res)
	}
	return total, nil
}

func (p *Pool) upsertChunk(ctx context.Context, rows RowSet, cols []string, start, end int) (Result, error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback(ctx)

	query, args := buildInsert(string(rows.Table()), cols, rows, start, end)
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}
	inserted := int(tag.RowsAffected())
	n := end - start
	if err := tx.Commit(ctx); err != nil {
		return Result{}, err
	}
	return Result{Inserted: inserted, DuplicateSkipped: n - inserted}, nil
}

// buildInsert renders a single parameterized multi-row INSERT
// statement for rows[start:end], one placeholder group per row and
// "ON CONFLICT DO NOTHING" for idempotent dedup per §4.3 guarantee 2.
// With no conflict target, Postgres skips a row that violates any
// unique index; table migrations (not run by this core — see §6
// "Persisted state layout") declare a unique index over every table's
// natural-key columns, so a skipped row is a natural-key duplicate.
func buildInsert(table string, cols []string, rows RowSet, start, end int) (string, []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (", quoteIdent(table))
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteIdent(c))
	}
	b.WriteString(") VALUES ")

	var args []interface{}
	argN := 1
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		rowArgs := rows.InsertArgs(i)
		for j := range rowArgs {
			if j > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "$%d", argN)
			argN++
		}
		b.WriteByte(')')
		args = append(args, rowArgs...)
	}
	b.WriteString(" ON CONFLICT DO NOTHING")
	return b.String(), args
}

// PingTimeout bounds how long the initial pool acquisition may block
// before the caller gives up, per §5's per-operation timeout policy.
const PingTimeout = 30 * time.Second
