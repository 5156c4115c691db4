// Package repository defines the interface for persisting batch execution
// metadata (job instances, job executions, step executions).
package repository

// JobRepository is the interface for persisting and managing batch execution
// metadata. It embeds smaller repository interfaces to separate concerns.
type JobRepository interface {
	JobInstance   // definition in job_instance.go
	JobExecution  // definition in job_execution.go
	StepExecution // definition in step_execution.go

	// Close releases resources (such as database connections) used by the repository.
	Close() error
}
