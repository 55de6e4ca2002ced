// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/ficdex/internal/platform/apperr"
	"github.com/taibuivan/ficdex/internal/platform/database"
	"github.com/taibuivan/ficdex/internal/platform/database/schema"
	"github.com/taibuivan/ficdex/internal/platform/dberr"
)

// # Results

// Action is what happened to one catalog entry.
type Action string

const (
	ActionCreated Action = "created"
	ActionSkipped Action = "skipped"
	ActionRemoved Action = "removed"
	ActionFailed  Action = "failed"
)

// Outcome reports one entry as the batch progresses.
type Outcome struct {
	Position int
	Total    int
	Spec     Spec
	Action   Action
	Elapsed  time.Duration
	Err      error
}

// Failure pairs an entry with its INDEX_OPERATION_FAILED error.
type Failure struct {
	Name string
	Err  *apperr.AppError
}

// EnsureResult summarises an [Manager.Ensure] run.
type EnsureResult struct {
	Created []string
	Skipped []string
	Errors  []Failure
}

// DropResult summarises an [Manager.Drop] run.
type DropResult struct {
	Removed []string
	Errors  []Failure
}

// Info is an existing index as reported by the store.
type Info struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
	Kind       Kind   `json:"kind"`
}

// Description is the inventory printed by the describe command.
type Description struct {
	Count     int    `json:"count"`
	Indexes   []Info `json:"indexes"`
	SizeBytes int64  `json:"size_bytes"`
}

// # Manager

// Manager creates, inspects and drops the catalog indexes on the story table.
type Manager struct {
	db       *database.DB
	table    string
	catalog  []Spec
	logger   *slog.Logger
	progress func(Outcome)
}

// Option customises a [Manager].
type Option func(*Manager)

// WithCatalog replaces the managed entries.
func WithCatalog(specs []Spec) Option { return func(m *Manager) { m.catalog = specs } }

// WithProgress registers a callback invoked after each entry is processed.
func WithProgress(fn func(Outcome)) Option { return func(m *Manager) { m.progress = fn } }

// NewManager constructs a [Manager] for the dataset table.
func NewManager(db *database.DB, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		db:      db,
		table:   schema.Story.Table,
		catalog: Catalog(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the entries this manager maintains.
func (m *Manager) Catalog() []Spec { return m.catalog }

// Dialect is the SQL dialect of the managed dataset.
func (m *Manager) Dialect() database.Dialect { return m.db.Dialect() }

// ListExisting returns the names of the secondary indexes on the story table.
func (m *Manager) ListExisting(ctx context.Context) (map[string]bool, error) {
	var existing map[string]bool
	err := m.db.Session(ctx, func(conn *sql.Conn) error {
		infos, err := m.list(ctx, conn)
		if err != nil {
			return err
		}
		existing = make(map[string]bool, len(infos))
		for _, info := range infos {
			existing[info.Name] = true
		}
		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "list_indexes")
	}
	return existing, nil
}

/*
Ensure creates every catalog entry that does not exist yet.

Description: Entries already present are skipped unless force is set, in
which case they are dropped and recreated. A failing entry is recorded and
the batch moves on. The table statistics are refreshed at the end so the
planner sees the new indexes.

Parameters:
  - ctx: Context for the whole batch.
  - force: Drop and recreate entries that already exist.

Returns:
  - *EnsureResult: Per-entry outcome, also when err is set.
  - error: Only batch-level failures (the dataset is unreachable or ANALYZE failed).
*/
func (m *Manager) Ensure(ctx context.Context, force bool) (*EnsureResult, error) {
	result := &EnsureResult{Created: []string{}, Skipped: []string{}, Errors: []Failure{}}

	err := m.db.Session(ctx, func(conn *sql.Conn) error {
		infos, err := m.list(ctx, conn)
		if err != nil {
			return err
		}
		existing := make(map[string]bool, len(infos))
		for _, info := range infos {
			existing[info.Name] = true
		}

		for i, spec := range m.catalog {
			outcome := Outcome{Position: i + 1, Total: len(m.catalog), Spec: spec}

			// 1. Skip what is already there
			if existing[spec.Name] && !force {
				outcome.Action = ActionSkipped
				result.Skipped = append(result.Skipped, spec.Name)
				m.report(ctx, outcome)
				continue
			}

			// 2. Create, recreating when forced
			start := time.Now()
			err := m.create(ctx, conn, spec, existing[spec.Name])
			outcome.Elapsed = time.Since(start)

			if err != nil {
				// A cancelled batch is not an entry failure.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failure := apperr.IndexOperationFailed(spec.Name, err)
				outcome.Action, outcome.Err = ActionFailed, failure
				result.Errors = append(result.Errors, Failure{Name: spec.Name, Err: failure})
				m.report(ctx, outcome)
				continue
			}

			outcome.Action = ActionCreated
			result.Created = append(result.Created, spec.Name)
			m.report(ctx, outcome)
		}

		// 3. Refresh planner statistics
		if _, err := conn.ExecContext(ctx, "ANALYZE "+m.table); err != nil {
			return fmt.Errorf("analyze %s: %w", m.table, err)
		}
		return nil
	})
	if err != nil {
		return result, dberr.Wrap(err, "ensure_indexes")
	}
	return result, nil
}

func (m *Manager) create(ctx context.Context, conn *sql.Conn, spec Spec, exists bool) error {
	create, err := spec.CreateSQL(m.db.Dialect(), m.table)
	if err != nil {
		return err
	}

	if exists {
		drop, err := DropSQL(spec.Name)
		if err != nil {
			return err
		}
		if _, err := conn.ExecContext(ctx, drop); err != nil {
			return err
		}
	}

	_, err = conn.ExecContext(ctx, create)
	return err
}

/*
Drop removes the catalog indexes present on the table.

Description: Nothing happens unless confirmed is true. Indexes that are not
in the catalog are left untouched, whoever created them.
*/
func (m *Manager) Drop(ctx context.Context, confirmed bool) (*DropResult, error) {
	result := &DropResult{Removed: []string{}, Errors: []Failure{}}
	if !confirmed {
		return result, nil
	}

	err := m.db.Session(ctx, func(conn *sql.Conn) error {
		infos, err := m.list(ctx, conn)
		if err != nil {
			return err
		}
		existing := make(map[string]bool, len(infos))
		for _, info := range infos {
			existing[info.Name] = true
		}

		for i, spec := range m.catalog {
			if !existing[spec.Name] {
				continue
			}
			outcome := Outcome{Position: i + 1, Total: len(m.catalog), Spec: spec}

			start := time.Now()
			err := m.drop(ctx, conn, spec.Name)
			outcome.Elapsed = time.Since(start)

			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failure := apperr.IndexOperationFailed(spec.Name, err)
				outcome.Action, outcome.Err = ActionFailed, failure
				result.Errors = append(result.Errors, Failure{Name: spec.Name, Err: failure})
				m.report(ctx, outcome)
				continue
			}

			outcome.Action = ActionRemoved
			result.Removed = append(result.Removed, spec.Name)
			m.report(ctx, outcome)
		}
		return nil
	})
	if err != nil {
		return result, dberr.Wrap(err, "drop_indexes")
	}
	return result, nil
}

func (m *Manager) drop(ctx context.Context, conn *sql.Conn, name string) error {
	stmt, err := DropSQL(name)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, stmt)
	return err
}

// Describe lists every secondary index on the table with its kind, plus the
// storage size.
func (m *Manager) Describe(ctx context.Context) (*Description, error) {
	desc := &Description{Indexes: []Info{}}

	err := m.db.Session(ctx, func(conn *sql.Conn) error {
		infos, err := m.list(ctx, conn)
		if err != nil {
			return err
		}
		desc.Indexes = infos
		desc.Count = len(infos)

		query, args := m.db.Dialect().SizeBytes(m.table)
		var size sql.NullInt64
		if err := conn.QueryRowContext(ctx, query, args...).Scan(&size); err != nil {
			return fmt.Errorf("size: %w", err)
		}
		desc.SizeBytes = size.Int64
		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "describe_indexes")
	}
	return desc, nil
}

// list reads the secondary indexes of the table on conn.
func (m *Manager) list(ctx context.Context, conn *sql.Conn) ([]Info, error) {
	query, args := m.db.Dialect().ListIndexes(m.table)
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer rows.Close()

	infos := make([]Info, 0)
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.Name, &info.Definition); err != nil {
			return nil, err
		}
		info.Kind = KindOf(info.Definition)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (m *Manager) report(ctx context.Context, outcome Outcome) {
	attrs := []any{
		slog.String("index", outcome.Spec.Name),
		slog.Duration("elapsed", outcome.Elapsed),
	}

	switch outcome.Action {
	case ActionFailed:
		m.logger.ErrorContext(ctx, "index_failed", append(attrs, slog.Any("error", outcome.Err))...)
	case ActionSkipped:
		m.logger.DebugContext(ctx, "index_skipped", attrs...)
	default:
		m.logger.InfoContext(ctx, "index_"+string(outcome.Action), attrs...)
	}

	if m.progress != nil {
		m.progress(outcome)
	}
}
