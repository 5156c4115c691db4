// Package tasklet provides the pre-check tasklet of the order processing job.
package tasklet

import (
	"context"
	"database/sql"

	"orderbatch/internal/step"
	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// pendingCountQuery counts the orders the chunk step is about to select.
const pendingCountQuery = `
SELECT COUNT(*)
FROM orders
WHERE status = 'PENDING'
  AND DATE(order_date) BETWEEN ? AND ?
  AND amount >= ?`

// PendingCountTasklet counts the PENDING orders of the current window before
// the chunk step runs. A query failure fails the step and halts the job; a
// zero count is logged but does not block the run.
type PendingCountTasklet struct {
	db     *sql.DB
	params model.JobParameters
}

// NewPendingCountTasklet creates a new PendingCountTasklet.
func NewPendingCountTasklet(db *sql.DB) *PendingCountTasklet {
	return &PendingCountTasklet{db: db}
}

// Verify interface conformance.
var (
	_ port.Tasklet            = (*PendingCountTasklet)(nil)
	_ port.JobParametersAware = (*PendingCountTasklet)(nil)
)

// SetJobParameters stores the launch parameters of the current run.
func (t *PendingCountTasklet) SetJobParameters(params model.JobParameters) {
	t.params = params
}

// Execute runs the count query and logs the result.
func (t *PendingCountTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	criteria, err := step.ResolveCriteria(t.params)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(exception.ModuleTasklet, "PendingCountTasklet: invalid selection criteria", err)
	}

	var count int64
	row := t.db.QueryRowContext(ctx, pendingCountQuery, criteria.StartDate, criteria.EndDate, criteria.MinAmount)
	if err := row.Scan(&count); err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(exception.ModuleTasklet, "PendingCountTasklet: count query failed", err)
	}

	if count == 0 {
		logger.Infof("PendingCountTasklet: no PENDING orders between %s and %s with amount >= %d.",
			criteria.StartDate, criteria.EndDate, criteria.MinAmount)
	} else {
		logger.Infof("PendingCountTasklet: %d PENDING order(s) between %s and %s with amount >= %d.",
			count, criteria.StartDate, criteria.EndDate, criteria.MinAmount)
	}
	return model.ExitStatusCompleted, nil
}

// Close releases resources. The tasklet holds none of its own.
func (t *PendingCountTasklet) Close(ctx context.Context) error {
	return nil
}
