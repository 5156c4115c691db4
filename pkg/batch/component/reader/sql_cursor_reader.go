// Package reader provides generic item reader implementations used in batch
// processing.
package reader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// SqlCursorReader is an ItemReader implementation that streams rows from a
// database cursor. It holds the whole result set open and maps one row per
// Read call, so memory use stays flat regardless of result size.
type SqlCursorReader[T any] struct {
	db     *sql.DB
	name   string
	query  string
	args   []any
	mapper func(*sql.Rows) (T, error) // maps the current row to a value of type T
	rows   *sql.Rows
}

// NewSqlCursorReader creates a new SqlCursorReader instance.
func NewSqlCursorReader[T any](db *sql.DB, name string, query string, args []any, mapper func(*sql.Rows) (T, error)) *SqlCursorReader[T] {
	return &SqlCursorReader[T]{
		db:     db,
		name:   name,
		query:  query,
		args:   args,
		mapper: mapper,
	}
}

// Verify that SqlCursorReader implements the port.ItemReader interface.
var _ port.ItemReader[any] = (*SqlCursorReader[any])(nil)

// Open executes the query and obtains the cursor.
func (r *SqlCursorReader[T]) Open(ctx context.Context) error {
	logger.Infof("SqlCursorReader '%s': starting read. Query: %s", r.name, r.query)

	rows, err := r.db.QueryContext(ctx, r.query, r.args...)
	if err != nil {
		return exception.NewBatchError(exception.ModuleReader, fmt.Sprintf("failed to execute query for SqlCursorReader '%s'", r.name), err)
	}
	r.rows = rows
	return nil
}

// Read advances the cursor and maps the next row.
// It returns port.ErrNoMoreItems when the cursor is exhausted.
func (r *SqlCursorReader[T]) Read(ctx context.Context) (T, error) {
	var item T
	if r.rows == nil {
		return item, exception.NewBatchError(exception.ModuleReader, fmt.Sprintf("SqlCursorReader '%s': reader not opened or already closed", r.name), errors.New("reader not initialized"))
	}

	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return item, exception.NewBatchError(exception.ModuleReader, fmt.Sprintf("error during row iteration for SqlCursorReader '%s'", r.name), err)
		}
		return item, port.ErrNoMoreItems
	}

	mappedItem, err := r.mapper(r.rows)
	if err != nil {
		return item, exception.NewBatchError(exception.ModuleReader, fmt.Sprintf("failed to map row for SqlCursorReader '%s'", r.name), err)
	}
	return mappedItem, nil
}

// Close releases the database cursor.
func (r *SqlCursorReader[T]) Close(ctx context.Context) error {
	if r.rows != nil {
		err := r.rows.Close()
		r.rows = nil
		if err != nil {
			return exception.NewBatchError(exception.ModuleReader, fmt.Sprintf("failed to close rows for SqlCursorReader '%s'", r.name), err)
		}
	}
	logger.Debugf("SqlCursorReader '%s': resources closed.", r.name)
	return nil
}
