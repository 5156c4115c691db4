package repository

import (
	"context"
	"errors"

	model "orderbatch/pkg/batch/core/model"
)

// ErrJobExecutionNotFound is returned when a JobExecution is not found.
var ErrJobExecutionNotFound = errors.New("job execution not found")

// JobExecution defines operations for persisting and retrieving job execution metadata.
type JobExecution interface {
	// SaveJobExecution persists a new JobExecution.
	SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error

	// UpdateJobExecution updates the state of an existing JobExecution.
	UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error

	// FindJobExecutionByID finds a JobExecution by its ID, including its
	// StepExecutions.
	FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error)

	// FindJobExecutionsByJobInstance finds all JobExecutions associated with the
	// specified JobInstance, latest first. StepExecutions are not loaded.
	FindJobExecutionsByJobInstance(ctx context.Context, jobInstance *model.JobInstance) ([]*model.JobExecution, error)
}
