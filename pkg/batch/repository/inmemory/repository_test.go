// Package inmemory_test provides unit tests for the in-memory metadata store.
package inmemory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "orderbatch/pkg/batch/core/model"
	"orderbatch/pkg/batch/repository"
	"orderbatch/pkg/batch/repository/inmemory"
)

func testParams(token string) model.JobParameters {
	params := model.NewJobParameters()
	params.Put("timestamp", token)
	return params
}

func TestInMemoryJobRepository_JobInstanceRoundTrip(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	instance := model.NewJobInstance("testJob", testParams("1"))
	require.NoError(t, repo.SaveJobInstance(ctx, instance))

	found, err := repo.FindJobInstanceByID(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, instance.ID, found.ID)
	assert.Equal(t, "testJob", found.JobName)

	byParams, err := repo.FindJobInstanceByJobNameAndParameters(ctx, "testJob", testParams("1"))
	require.NoError(t, err)
	assert.Equal(t, instance.ID, byParams.ID)

	_, err = repo.FindJobInstanceByJobNameAndParameters(ctx, "testJob", testParams("2"))
	assert.ErrorIs(t, err, repository.ErrJobInstanceNotFound)

	_, err = repo.FindJobInstanceByJobNameAndParameters(ctx, "otherJob", testParams("1"))
	assert.ErrorIs(t, err, repository.ErrJobInstanceNotFound)
}

func TestInMemoryJobRepository_DuplicateInstanceIsRejected(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	instance := model.NewJobInstance("testJob", testParams("1"))
	require.NoError(t, repo.SaveJobInstance(ctx, instance))
	assert.Error(t, repo.SaveJobInstance(ctx, instance))
}

func TestInMemoryJobRepository_JobExecutionLifecycle(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	instance := model.NewJobInstance("testJob", testParams("1"))
	require.NoError(t, repo.SaveJobInstance(ctx, instance))

	je := model.NewJobExecution(instance.ID, "testJob", instance.Parameters)
	require.NoError(t, repo.SaveJobExecution(ctx, je))

	je.MarkAsStarted()
	je.MarkAsCompleted()
	require.NoError(t, repo.UpdateJobExecution(ctx, je))

	found, err := repo.FindJobExecutionByID(ctx, je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, found.Status)
	assert.NotNil(t, found.EndTime)
}

func TestInMemoryJobRepository_UpdateUnknownExecutionFails(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	je := model.NewJobExecution(model.NewID(), "testJob", model.NewJobParameters())
	assert.Error(t, repo.UpdateJobExecution(context.Background(), je))
}

func TestInMemoryJobRepository_FindReturnsClones(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	je := model.NewJobExecution(model.NewID(), "testJob", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(ctx, je))

	found, err := repo.FindJobExecutionByID(ctx, je.ID)
	require.NoError(t, err)

	// Mutating the returned copy must not leak into the store.
	found.Status = model.BatchStatusFailed
	again, err := repo.FindJobExecutionByID(ctx, je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusStarting, again.Status)
}

func TestInMemoryJobRepository_ExecutionsSortedLatestFirst(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	instance := model.NewJobInstance("testJob", testParams("1"))
	require.NoError(t, repo.SaveJobInstance(ctx, instance))

	first := model.NewJobExecution(instance.ID, "testJob", instance.Parameters)
	require.NoError(t, repo.SaveJobExecution(ctx, first))
	second := model.NewJobExecution(instance.ID, "testJob", instance.Parameters)
	second.CreateTime = first.CreateTime.Add(1)
	require.NoError(t, repo.SaveJobExecution(ctx, second))

	executions, err := repo.FindJobExecutionsByJobInstance(ctx, instance)
	require.NoError(t, err)
	require.Len(t, executions, 2)
	assert.Equal(t, second.ID, executions[0].ID)
	assert.Equal(t, first.ID, executions[1].ID)
}

func TestInMemoryJobRepository_StepExecutionsAttachedToExecution(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	ctx := context.Background()

	je := model.NewJobExecution(model.NewID(), "testJob", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(ctx, je))

	se := model.NewStepExecution(model.NewID(), je, "stepOne")
	require.NoError(t, repo.SaveStepExecution(ctx, se))

	se.MarkAsStarted()
	se.ReadCount = 7
	require.NoError(t, repo.UpdateStepExecution(ctx, se))

	found, err := repo.FindJobExecutionByID(ctx, je.ID)
	require.NoError(t, err)
	require.Len(t, found.StepExecutions, 1)
	assert.Equal(t, "stepOne", found.StepExecutions[0].StepName)
	assert.Equal(t, 7, found.StepExecutions[0].ReadCount)
}

func TestInMemoryJobRepository_Close(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	assert.NoError(t, repo.Close())
}
