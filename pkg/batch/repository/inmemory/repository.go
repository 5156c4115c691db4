// Package inmemory provides an in-memory implementation of the JobRepository
// interface. It stores all execution metadata in maps, suitable for testing
// and for deployments where metadata persistence is not required.
package inmemory

import (
	"sync"

	model "orderbatch/pkg/batch/core/model"
	"orderbatch/pkg/batch/repository"
)

// Verify that InMemoryJobRepository implements the JobRepository interface.
var _ repository.JobRepository = (*InMemoryJobRepository)(nil)

// InMemoryJobRepository is an in-memory implementation of the JobRepository
// interface. It holds all job-related data in in-memory maps.
type InMemoryJobRepository struct {
	jobInstances   map[string]*model.JobInstance
	jobExecutions  map[string]*model.JobExecution
	stepExecutions map[string]*model.StepExecution
	mu             sync.RWMutex // protects concurrent access to the maps
}

// NewInMemoryJobRepository creates and initializes a new InMemoryJobRepository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobInstances:   make(map[string]*model.JobInstance),
		jobExecutions:  make(map[string]*model.JobExecution),
		stepExecutions: make(map[string]*model.StepExecution),
	}
}

// Close releases resources used by the repository. The in-memory repository
// holds no external resources, so this always returns nil.
func (r *InMemoryJobRepository) Close() error {
	return nil
}
