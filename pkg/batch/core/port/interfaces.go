// Package port defines the core interfaces (ports) for the batch application.
// These interfaces abstract the application's capabilities and dependencies,
// allowing for flexible implementation and testing.
package port

import (
	"context"
	"errors"

	model "orderbatch/pkg/batch/core/model"
	tx "orderbatch/pkg/batch/core/tx"
)

// ErrNoMoreItems is returned by ItemReader.Read when the source is exhausted.
var ErrNoMoreItems = errors.New("no more items to read")

// ItemReader is the interface for a data reading component.
// O is the type of item to be read.
type ItemReader[O any] interface {
	// Open opens the underlying resource (e.g. executes the query and obtains
	// a cursor). It must be called before the first Read.
	Open(ctx context.Context) error
	// Read reads the next item. Returns ErrNoMoreItems when the source is
	// exhausted.
	Read(ctx context.Context) (O, error)
	// Close releases the underlying resource.
	Close(ctx context.Context) error
}

// ItemProcessor is the interface for an item processing component.
// I is the type of input item, O is the type of output item.
type ItemProcessor[I, O any] interface {
	// Process transforms an input item into an output item. Returning a nil
	// output with a nil error filters the item out of the chunk.
	Process(ctx context.Context, item I) (O, error)
}

// ItemWriter is the interface for a data writing component.
// I is the type of item to be written.
type ItemWriter[I any] interface {
	// Open prepares the writer for a step execution.
	Open(ctx context.Context) error
	// Write persists a list of items within the given transaction.
	Write(ctx context.Context, tx tx.Tx, items []I) error
	// Close releases writer resources.
	Close(ctx context.Context) error
}

// JobParametersAware is an optional interface for readers, writers and
// tasklets that resolve per-run settings from the launch parameters. Steps
// call SetJobParameters before Open/Execute on each run.
type JobParametersAware interface {
	SetJobParameters(params model.JobParameters)
}

// Tasklet is the interface for a step that performs a single operation.
type Tasklet interface {
	// Execute runs the tasklet's business logic once.
	// Returns an ExitStatus such as ExitStatusCompleted upon success.
	Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error)
	// Close releases resources.
	Close(ctx context.Context) error
}

// Step is the interface for a single step executed within a job.
// It is implemented as chunk-oriented or tasklet-oriented.
type Step interface {
	// Execute runs the business logic of the step. The step is responsible
	// for its own transaction boundaries via the TransactionManager.
	Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error
	// StepName returns the logical name of the step.
	StepName() string
}

// Job is the interface for an executable batch job.
type Job interface {
	// Run executes the job's steps in order against the given JobExecution.
	Run(ctx context.Context, jobExecution *model.JobExecution, jobParameters model.JobParameters) error
	// JobName returns the logical name of the job.
	JobName() string
	// ValidateParameters validates job parameters before job execution.
	ValidateParameters(params model.JobParameters) error
}

// JobLauncher starts a job with a set of parameters and returns the
// resulting JobExecution.
type JobLauncher interface {
	Launch(ctx context.Context, job Job, params model.JobParameters) (*model.JobExecution, error)
}

// JobParametersIncrementer generates the next JobParameters from the current
// ones, typically by adding a run-unique token.
type JobParametersIncrementer interface {
	GetNext(params model.JobParameters) model.JobParameters
}

// TxProvider exposes the transaction manager a step should use for its
// chunk boundaries.
type TxProvider interface {
	TxManager() tx.TransactionManager
}
