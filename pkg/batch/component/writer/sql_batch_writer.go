// Package writer provides generic item writer implementations used in batch
// processing.
package writer

import (
	"context"
	"fmt"

	port "orderbatch/pkg/batch/core/port"
	tx "orderbatch/pkg/batch/core/tx"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// SqlBatchWriter is an ItemWriter implementation that executes one
// parameterized statement per item inside the transaction supplied by the
// step. A failing statement fails the whole batch so the step can roll the
// chunk back; items are never partially applied.
type SqlBatchWriter[T any] struct {
	name   string
	query  string
	binder func(T) []any // produces the statement arguments for one item
}

// NewSqlBatchWriter creates a new SqlBatchWriter instance.
func NewSqlBatchWriter[T any](name string, query string, binder func(T) []any) *SqlBatchWriter[T] {
	return &SqlBatchWriter[T]{
		name:   name,
		query:  query,
		binder: binder,
	}
}

// Verify that SqlBatchWriter implements the port.ItemWriter interface.
var _ port.ItemWriter[any] = (*SqlBatchWriter[any])(nil)

// Open prepares the writer for a step execution. The transaction handles
// statement management, so there is nothing to initialize here.
func (w *SqlBatchWriter[T]) Open(ctx context.Context) error {
	logger.Debugf("SqlBatchWriter '%s': opened.", w.name)
	return nil
}

// Write executes the parameterized statement once per item within txn.
func (w *SqlBatchWriter[T]) Write(ctx context.Context, txn tx.Tx, items []T) error {
	if len(items) == 0 {
		return nil
	}
	if txn == nil {
		return exception.NewBatchError(exception.ModuleWriter, fmt.Sprintf("SqlBatchWriter '%s': no transaction supplied", w.name), nil)
	}

	for i, item := range items {
		if _, err := txn.ExecContext(ctx, w.query, w.binder(item)...); err != nil {
			return exception.NewBatchError(exception.ModuleWriter, fmt.Sprintf("failed to write item %d of %d for SqlBatchWriter '%s'", i+1, len(items), w.name), err)
		}
	}

	logger.Debugf("SqlBatchWriter '%s': wrote %d items.", w.name, len(items))
	return nil
}

// Close releases writer resources. The writer holds none of its own.
func (w *SqlBatchWriter[T]) Close(ctx context.Context) error {
	logger.Debugf("SqlBatchWriter '%s': closed.", w.name)
	return nil
}
