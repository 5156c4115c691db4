// Package reader provides the item reader of the order processing job.
package reader

import (
	"context"
	"database/sql"
	"errors"

	"orderbatch/internal/order"
	"orderbatch/internal/step"
	"orderbatch/pkg/batch/component/reader"
	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// pendingOrdersQuery selects the unprocessed orders of the current window.
// The order_date sort keeps processing deterministic across runs.
const pendingOrdersQuery = `
SELECT id, order_number, customer_name, amount, status, order_date, processed_date
FROM orders
WHERE status = 'PENDING'
  AND DATE(order_date) BETWEEN ? AND ?
  AND amount >= ?
ORDER BY order_date`

// PendingOrderReader streams PENDING orders inside the date window given by
// the launch parameters. It resolves its criteria per run via
// SetJobParameters and delegates cursor handling to SqlCursorReader.
type PendingOrderReader struct {
	db       *sql.DB
	params   model.JobParameters
	delegate *reader.SqlCursorReader[*order.Order]
}

// NewPendingOrderReader creates a new PendingOrderReader.
func NewPendingOrderReader(db *sql.DB) *PendingOrderReader {
	return &PendingOrderReader{db: db}
}

// Verify interface conformance.
var (
	_ port.ItemReader[*order.Order] = (*PendingOrderReader)(nil)
	_ port.JobParametersAware       = (*PendingOrderReader)(nil)
)

// SetJobParameters stores the launch parameters of the current run.
func (r *PendingOrderReader) SetJobParameters(params model.JobParameters) {
	r.params = params
}

// Open resolves the selection criteria from the launch parameters and opens
// the cursor.
func (r *PendingOrderReader) Open(ctx context.Context) error {
	criteria, err := step.ResolveCriteria(r.params)
	if err != nil {
		return exception.NewBatchError(exception.ModuleReader, "PendingOrderReader: invalid selection criteria", err)
	}
	logger.Infof("PendingOrderReader: selecting PENDING orders from %s to %s with amount >= %d.",
		criteria.StartDate, criteria.EndDate, criteria.MinAmount)

	r.delegate = reader.NewSqlCursorReader(r.db, "pendingOrderReader", pendingOrdersQuery,
		[]any{criteria.StartDate, criteria.EndDate, criteria.MinAmount}, order.ScanRow)
	return r.delegate.Open(ctx)
}

// Read returns the next pending order, or port.ErrNoMoreItems when the
// window is exhausted.
func (r *PendingOrderReader) Read(ctx context.Context) (*order.Order, error) {
	if r.delegate == nil {
		return nil, exception.NewBatchError(exception.ModuleReader, "PendingOrderReader: reader not opened", errors.New("reader not initialized"))
	}
	return r.delegate.Read(ctx)
}

// Close releases the cursor.
func (r *PendingOrderReader) Close(ctx context.Context) error {
	if r.delegate == nil {
		return nil
	}
	delegate := r.delegate
	r.delegate = nil
	return delegate.Close(ctx)
}
