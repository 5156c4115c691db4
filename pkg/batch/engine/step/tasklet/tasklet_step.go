// Package tasklet implements the single-shot step: run one Tasklet operation
// and record its outcome on the StepExecution.
package tasklet

import (
	"context"
	"time"

	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/repository"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// TaskletStep is a port.Step implementation for tasklet-oriented processing.
type TaskletStep struct {
	name          string
	tasklet       port.Tasklet
	jobRepository repository.JobRepository
}

// NewTaskletStep creates a new TaskletStep instance.
func NewTaskletStep(name string, t port.Tasklet, jobRepository repository.JobRepository) *TaskletStep {
	return &TaskletStep{
		name:          name,
		tasklet:       t,
		jobRepository: jobRepository,
	}
}

// Verify that TaskletStep implements the port.Step interface.
var _ port.Step = (*TaskletStep)(nil)

// StepName returns the step name.
func (s *TaskletStep) StepName() string {
	return s.name
}

// Execute runs the Tasklet logic once and persists the step outcome.
func (s *TaskletStep) Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) (err error) {
	logger.Infof("TaskletStep '%s' executing.", s.name)

	stepExecution.MarkAsStarted()
	if err := s.jobRepository.UpdateStepExecution(ctx, stepExecution); err != nil {
		return exception.NewBatchError(exception.ModuleStep, "failed to update StepExecution status to STARTED", err)
	}

	if aware, ok := s.tasklet.(port.JobParametersAware); ok {
		aware.SetJobParameters(jobExecution.Parameters)
	}

	var exitStatus model.ExitStatus
	exitStatus, err = s.tasklet.Execute(ctx, stepExecution)

	if closeErr := s.tasklet.Close(ctx); closeErr != nil {
		logger.Errorf("TaskletStep '%s': failed to close Tasklet: %v", s.name, closeErr)
		if err == nil {
			err = closeErr
		}
	}

	if err != nil {
		stepExecution.MarkAsFailed(err)
	} else {
		stepExecution.Status = model.BatchStatusCompleted
		stepExecution.ExitStatus = exitStatus
		now := time.Now()
		stepExecution.EndTime = &now
		stepExecution.LastUpdated = now
	}

	if updateErr := s.jobRepository.UpdateStepExecution(ctx, stepExecution); updateErr != nil {
		logger.Errorf("TaskletStep '%s': failed to update final StepExecution state: %v", s.name, updateErr)
		if err == nil {
			err = updateErr
		}
	}

	logger.Infof("TaskletStep '%s' finished. ExitStatus: %s", s.name, stepExecution.ExitStatus)
	return err
}
