package tasklet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderbatch/internal/step"
	ordertasklet "orderbatch/internal/step/tasklet"
	model "orderbatch/pkg/batch/core/model"
)

const countQueryPattern = `SELECT COUNT\(\*\)`

func countParams() model.JobParameters {
	params := model.NewJobParameters()
	params.Put(step.ParamStartDate, "2025-01-01")
	params.Put(step.ParamEndDate, "2025-01-08")
	params.Put(step.ParamMinAmount, "7000")
	return params
}

func newStepExecution() *model.StepExecution {
	je := model.NewJobExecution(model.NewID(), "testJob", countParams())
	return model.NewStepExecution(model.NewID(), je, "checkPendingOrders")
}

func TestPendingCountTasklet_CountsPendingOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(countQueryPattern).
		WithArgs("2025-01-01", "2025-01-08", 7000).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	tl := ordertasklet.NewPendingCountTasklet(db)
	tl.SetJobParameters(countParams())

	exitStatus, err := tl.Execute(context.Background(), newStepExecution())
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, exitStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingCountTasklet_ZeroCountStillCompletes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(countQueryPattern).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	tl := ordertasklet.NewPendingCountTasklet(db)
	tl.SetJobParameters(countParams())

	exitStatus, err := tl.Execute(context.Background(), newStepExecution())
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, exitStatus)
}

func TestPendingCountTasklet_QueryFailureFailsStep(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(countQueryPattern).
		WillReturnError(errors.New("connection lost"))

	tl := ordertasklet.NewPendingCountTasklet(db)
	tl.SetJobParameters(countParams())

	exitStatus, err := tl.Execute(context.Background(), newStepExecution())
	assert.Error(t, err)
	assert.Equal(t, model.ExitStatusFailed, exitStatus)
}

func TestPendingCountTasklet_InvalidParametersFailStep(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tl := ordertasklet.NewPendingCountTasklet(db)
	tl.SetJobParameters(model.NewJobParameters())

	exitStatus, err := tl.Execute(context.Background(), newStepExecution())
	assert.Error(t, err)
	assert.Equal(t, model.ExitStatusFailed, exitStatus)
}
