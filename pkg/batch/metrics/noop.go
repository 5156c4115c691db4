package metrics

import (
	"context"

	model "orderbatch/pkg/batch/core/model"
)

// NoopRecorder is a MetricRecorder that records nothing. It is the default
// recorder and the one used in tests.
type NoopRecorder struct{}

var _ MetricRecorder = (*NoopRecorder)(nil)

// NewNoopRecorder creates a new NoopRecorder.
func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (*NoopRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution)  {}
func (*NoopRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution)    {}
func (*NoopRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {}
func (*NoopRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution)   {}
func (*NoopRecorder) RecordItemRead(ctx context.Context, jobName, stepName string)        {}
func (*NoopRecorder) RecordItemWrite(ctx context.Context, jobName, stepName string, count int) {
}
func (*NoopRecorder) RecordChunkCommit(ctx context.Context, jobName, stepName string)   {}
func (*NoopRecorder) RecordChunkRollback(ctx context.Context, jobName, stepName string) {}
