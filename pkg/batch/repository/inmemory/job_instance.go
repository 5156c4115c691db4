package inmemory

import (
	"context"
	"fmt"

	model "orderbatch/pkg/batch/core/model"
	"orderbatch/pkg/batch/repository"
)

// SaveJobInstance persists a new JobInstance.
// It returns an error if a JobInstance with the same ID already exists.
func (r *InMemoryJobRepository) SaveJobInstance(ctx context.Context, instance *model.JobInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobInstances[instance.ID]; exists {
		return fmt.Errorf("JobInstance with ID %s already exists", instance.ID)
	}
	r.jobInstances[instance.ID] = instance
	return nil
}

// FindJobInstanceByID finds a JobInstance by its ID.
func (r *InMemoryJobRepository) FindJobInstanceByID(ctx context.Context, id string) (*model.JobInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, ok := r.jobInstances[id]
	if !ok {
		return nil, repository.ErrJobInstanceNotFound
	}
	cloned := *instance
	return &cloned, nil
}

// FindJobInstanceByJobNameAndParameters finds a JobInstance by job name and
// exact parameters, matched by parameters hash.
func (r *InMemoryJobRepository) FindJobInstanceByJobNameAndParameters(ctx context.Context, jobName string, params model.JobParameters) (*model.JobInstance, error) {
	hash, err := params.Hash()
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, instance := range r.jobInstances {
		if instance.JobName == jobName && instance.ParametersHash == hash {
			cloned := *instance
			return &cloned, nil
		}
	}
	return nil, repository.ErrJobInstanceNotFound
}
