// Package metrics abstracts the recording of batch execution metrics.
// The abstraction keeps the engine independent of the metrics backend and
// lets tests run with a no-op recorder.
package metrics

import (
	"context"

	model "orderbatch/pkg/batch/core/model"
)

// MetricRecorder is an abstract interface for recording metrics related to
// batch execution.
type MetricRecorder interface {
	// RecordJobStart records the start of a JobExecution.
	RecordJobStart(ctx context.Context, execution *model.JobExecution)

	// RecordJobEnd records the end of a JobExecution.
	RecordJobEnd(ctx context.Context, execution *model.JobExecution)

	// RecordStepStart records the start of a StepExecution.
	RecordStepStart(ctx context.Context, execution *model.StepExecution)

	// RecordStepEnd records the end of a StepExecution.
	RecordStepEnd(ctx context.Context, execution *model.StepExecution)

	// RecordItemRead records the successful reading of an item.
	RecordItemRead(ctx context.Context, jobName, stepName string)

	// RecordItemWrite records the successful writing of items.
	RecordItemWrite(ctx context.Context, jobName, stepName string, count int)

	// RecordChunkCommit records the commit of a chunk.
	RecordChunkCommit(ctx context.Context, jobName, stepName string)

	// RecordChunkRollback records the rollback of a chunk.
	RecordChunkRollback(ctx context.Context, jobName, stepName string)
}
