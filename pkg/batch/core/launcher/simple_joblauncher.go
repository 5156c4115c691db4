// Package launcher starts jobs and enforces the execution rules around
// repeated and concurrent launches of the same parameter set.
package launcher

import (
	"context"
	"errors"
	"fmt"

	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	"orderbatch/pkg/batch/repository"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// ErrJobInstanceAlreadyComplete is returned when a job is launched with a
// parameter set whose JobInstance has already completed successfully.
var ErrJobInstanceAlreadyComplete = errors.New("job instance already completed with these parameters")

// ErrJobExecutionAlreadyRunning is returned when a job is launched while an
// execution for the same JobInstance is still in flight.
var ErrJobExecutionAlreadyRunning = errors.New("job execution already running for this job instance")

// SimpleJobLauncher implements port.JobLauncher for local, synchronous
// execution. Each launch resolves or creates the JobInstance for the
// parameter set, creates a JobExecution and runs the job to completion.
type SimpleJobLauncher struct {
	jobRepository repository.JobRepository
	incrementer   port.JobParametersIncrementer
}

// NewSimpleJobLauncher creates a new SimpleJobLauncher.
// incrementer may be nil if callers always supply a launch-unique parameter.
func NewSimpleJobLauncher(repo repository.JobRepository, incrementer port.JobParametersIncrementer) *SimpleJobLauncher {
	return &SimpleJobLauncher{
		jobRepository: repo,
		incrementer:   incrementer,
	}
}

// Verify that SimpleJobLauncher implements the port.JobLauncher interface.
var _ port.JobLauncher = (*SimpleJobLauncher)(nil)

// Launch starts the given job with jobParameters and runs it to completion.
// The returned JobExecution reflects the run outcome; the returned error is
// non-nil both when the launch is rejected and when the run itself fails.
func (l *SimpleJobLauncher) Launch(ctx context.Context, job port.Job, jobParameters model.JobParameters) (*model.JobExecution, error) {
	const op = "SimpleJobLauncher.Launch"
	jobName := job.JobName()
	logger.Infof("Launching Job '%s'. Parameters: %s", jobName, jobParameters.String())

	if err := job.ValidateParameters(jobParameters); err != nil {
		logger.Errorf("Job '%s': JobParameters validation failed: %v", jobName, err)
		return nil, exception.NewBatchError(exception.ModuleLauncher, "JobParameters validation error", err)
	}

	var jobInstance *model.JobInstance

	existingInstance, err := l.jobRepository.FindJobInstanceByJobNameAndParameters(ctx, jobName, jobParameters)
	if err != nil && !errors.Is(err, repository.ErrJobInstanceNotFound) {
		return nil, exception.NewBatchError(exception.ModuleLauncher, op+": failed to search for existing JobInstance", err)
	}

	if existingInstance != nil {
		// Re-submission of a known parameter set: reject if an execution is
		// still running or has already completed.
		executions, findErr := l.jobRepository.FindJobExecutionsByJobInstance(ctx, existingInstance)
		if findErr != nil {
			return nil, exception.NewBatchError(exception.ModuleLauncher, op+": failed to load executions for existing JobInstance", findErr)
		}
		for _, je := range executions {
			if je.Status.IsRunning() {
				logger.Errorf("Job '%s': JobExecution (ID: %s, Status: %s) is still running for JobInstance (ID: %s).", jobName, je.ID, je.Status, existingInstance.ID)
				return nil, ErrJobExecutionAlreadyRunning
			}
			if je.Status == model.BatchStatusCompleted {
				logger.Errorf("Job '%s': JobInstance (ID: %s) already completed. A new launch requires different parameters.", jobName, existingInstance.ID)
				return nil, ErrJobInstanceAlreadyComplete
			}
		}
		jobInstance = existingInstance
		logger.Infof("Creating new JobExecution for existing JobInstance (ID: %s).", existingInstance.ID)
	} else {
		if l.incrementer != nil {
			jobParameters = l.incrementer.GetNext(jobParameters)
			logger.Debugf("Applied JobParametersIncrementer: %s", jobParameters.String())
		}

		jobInstance = model.NewJobInstance(jobName, jobParameters)
		if err := l.jobRepository.SaveJobInstance(ctx, jobInstance); err != nil {
			return nil, exception.NewBatchError(exception.ModuleLauncher, fmt.Sprintf("%s: failed to save new JobInstance for '%s'", op, jobName), err)
		}
		logger.Infof("Created and saved new JobInstance (ID: %s, JobName: %s).", jobInstance.ID, jobName)
	}

	jobExecution := model.NewJobExecution(jobInstance.ID, jobName, jobInstance.Parameters)
	if err := l.jobRepository.SaveJobExecution(ctx, jobExecution); err != nil {
		return nil, exception.NewBatchError(exception.ModuleLauncher, op+": failed to save JobExecution initially", err)
	}
	logger.Debugf("Initially saved JobExecution (ID: %s, Status: %s).", jobExecution.ID, jobExecution.Status)

	runErr := job.Run(ctx, jobExecution, jobInstance.Parameters)
	if runErr != nil {
		return jobExecution, runErr
	}
	return jobExecution, nil
}
