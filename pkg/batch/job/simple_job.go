// Package job provides the job implementation that sequences steps.
package job

import (
	"context"
	"fmt"

	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/metrics"
	"orderbatch/pkg/batch/repository"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// ParametersValidator validates job parameters before a run starts.
type ParametersValidator func(params model.JobParameters) error

// SimpleJob executes its steps strictly in order. The first step failure
// marks the JobExecution FAILED and the remaining steps do not run.
type SimpleJob struct {
	name            string
	steps           []port.Step
	jobRepository   repository.JobRepository
	metricRecorder  metrics.MetricRecorder
	paramsValidator ParametersValidator
}

// NewSimpleJob creates a new SimpleJob with the given ordered steps.
// validator may be nil, in which case all parameters are accepted.
func NewSimpleJob(
	name string,
	steps []port.Step,
	jobRepository repository.JobRepository,
	metricRecorder metrics.MetricRecorder,
	validator ParametersValidator,
) *SimpleJob {
	if metricRecorder == nil {
		metricRecorder = metrics.NewNoopRecorder()
	}
	return &SimpleJob{
		name:            name,
		steps:           steps,
		jobRepository:   jobRepository,
		metricRecorder:  metricRecorder,
		paramsValidator: validator,
	}
}

// Verify that SimpleJob implements the port.Job interface.
var _ port.Job = (*SimpleJob)(nil)

// JobName returns the logical name of the job.
func (j *SimpleJob) JobName() string {
	return j.name
}

// ValidateParameters validates job parameters before job execution.
func (j *SimpleJob) ValidateParameters(params model.JobParameters) error {
	if j.paramsValidator == nil {
		return nil
	}
	return j.paramsValidator(params)
}

// Run executes the job's steps in order against the given JobExecution.
func (j *SimpleJob) Run(ctx context.Context, jobExecution *model.JobExecution, jobParameters model.JobParameters) error {
	logger.Infof("Job '%s' starting (Execution ID: %s). Parameters: %s", j.name, jobExecution.ID, jobParameters.String())

	jobExecution.MarkAsStarted()
	if err := j.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
		return exception.NewBatchError(exception.ModuleJob, "failed to update JobExecution status to STARTED", err)
	}
	j.metricRecorder.RecordJobStart(ctx, jobExecution)

	var runErr error
	for _, step := range j.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = exception.NewBatchError(exception.ModuleJob, fmt.Sprintf("job '%s' cancelled before step '%s'", j.name, step.StepName()), ctxErr)
			break
		}

		stepExecution := model.NewStepExecution(model.NewID(), jobExecution, step.StepName())
		jobExecution.AddStepExecution(stepExecution)
		jobExecution.CurrentStepName = step.StepName()

		if err := j.jobRepository.SaveStepExecution(ctx, stepExecution); err != nil {
			runErr = exception.NewBatchError(exception.ModuleJob, fmt.Sprintf("failed to save StepExecution for step '%s'", step.StepName()), err)
			break
		}
		if err := j.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
			logger.Warnf("Job '%s': failed to record current step '%s': %v", j.name, step.StepName(), err)
		}

		j.metricRecorder.RecordStepStart(ctx, stepExecution)
		stepErr := step.Execute(ctx, jobExecution, stepExecution)
		j.metricRecorder.RecordStepEnd(ctx, stepExecution)

		if stepErr != nil {
			logger.Errorf("Job '%s': step '%s' failed: %v", j.name, step.StepName(), stepErr)
			runErr = exception.NewBatchError(exception.ModuleJob, fmt.Sprintf("step '%s' failed", step.StepName()), stepErr)
			break
		}
		logger.Infof("Job '%s': step '%s' completed.", j.name, step.StepName())
	}

	if runErr != nil {
		jobExecution.MarkAsFailed(runErr)
	} else {
		jobExecution.MarkAsCompleted()
	}

	if err := j.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
		logger.Errorf("Job '%s': failed to update final JobExecution state: %v", j.name, err)
		if runErr == nil {
			runErr = exception.NewBatchError(exception.ModuleJob, "failed to update final JobExecution state", err)
		}
	}
	j.metricRecorder.RecordJobEnd(ctx, jobExecution)

	logger.Infof("Job '%s' finished. Status: %s, ExitStatus: %s", j.name, jobExecution.Status, jobExecution.ExitStatus)
	return runErr
}
