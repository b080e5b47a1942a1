package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Entity names a table whose identifiers are allocated by IDAllocator.
type Entity string

const (
	EntityCompany Entity = "companies"
	EntityUser    Entity = "users"
)

func (e Entity) table() string {
	return string(e)
}

func (e Entity) sequence() string {
	return string(e) + "_seq"
}

// Querier is the subset of *sql.DB and *sql.Tx the store operates on, so
// identifier allocation can run inside the caller's transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// IDAllocator produces monotonically increasing integer identifiers per
// entity. The primary path increments the entity's backing sequence; when
// the sequence is missing it falls back to MAX(id)+1 over the table.
//
// The fallback is not safe under concurrent callers: two concurrent
// fallbacks may compute the same value. This mirrors the behavior the
// schema bootstrap was designed around and is covered by tests as a known
// limitation.
type IDAllocator struct {
	log *slog.Logger
}

func NewIDAllocator(log *slog.Logger) *IDAllocator {
	return &IDAllocator{log: log}
}

// NextID returns the next identifier for the entity. The sequence probe
// uses to_regclass rather than letting nextval fail, because a failed
// statement would abort the surrounding transaction.
func (a *IDAllocator) NextID(ctx context.Context, q Querier, entity Entity) (int, error) {
	var exists bool
	probe := `SELECT to_regclass($1) IS NOT NULL`
	if err := q.QueryRowContext(ctx, probe, entity.sequence()).Scan(&exists); err != nil {
		return 0, err
	}

	var id int
	if exists {
		if err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT nextval('%s')`, entity.sequence())).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	a.log.Warn("sequence unavailable, falling back to MAX+1", "sequence", entity.sequence())

	fallback := fmt.Sprintf(`SELECT COALESCE(MAX(id), 0) + 1 FROM %s`, entity.table())
	if err := q.QueryRowContext(ctx, fallback).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
