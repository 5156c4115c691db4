// Package sql provides a database/sql-backed implementation of the
// JobRepository interface. Metadata is stored in the batch_job_instance,
// batch_job_execution and batch_step_execution tables.
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	model "orderbatch/pkg/batch/core/model"
	"orderbatch/pkg/batch/repository"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// SQLJobRepository implements the repository.JobRepository interface over a
// plain *sql.DB. The parameterized statements below are restricted to the
// syntax shared by MySQL and SQLite.
type SQLJobRepository struct {
	db *sql.DB
}

// Verify that SQLJobRepository implements the JobRepository interface.
var _ repository.JobRepository = (*SQLJobRepository)(nil)

// NewSQLJobRepository creates a new SQLJobRepository over the given database.
func NewSQLJobRepository(db *sql.DB) *SQLJobRepository {
	return &SQLJobRepository{db: db}
}

// Close releases the underlying database connection.
func (r *SQLJobRepository) Close() error {
	return r.db.Close()
}

// --- JobInstance implementation ---

// SaveJobInstance persists a new JobInstance.
func (r *SQLJobRepository) SaveJobInstance(ctx context.Context, instance *model.JobInstance) error {
	const op = "SQLJobRepository.SaveJobInstance"
	entity := fromDomainJobInstance(instance)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO batch_job_instance (id, job_name, parameters, create_time, version, parameters_hash)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.JobName, entity.Parameters, entity.CreateTime, entity.Version, entity.ParametersHash,
	)
	if err != nil {
		return exception.NewBatchError(exception.ModuleRepository, fmt.Sprintf("%s: failed to save JobInstance (ID: %s)", op, instance.ID), err)
	}
	return nil
}

// FindJobInstanceByID finds a JobInstance by its ID.
func (r *SQLJobRepository) FindJobInstanceByID(ctx context.Context, id string) (*model.JobInstance, error) {
	const op = "SQLJobRepository.FindJobInstanceByID"

	row := r.db.QueryRowContext(ctx,
		`SELECT id, job_name, parameters, create_time, version, parameters_hash
		 FROM batch_job_instance WHERE id = ?`, id)

	entity, err := scanJobInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrJobInstanceNotFound
		}
		return nil, exception.NewBatchError(exception.ModuleRepository, fmt.Sprintf("%s: failed to find JobInstance by ID: %s", op, id), err)
	}
	return toDomainJobInstance(entity), nil
}

// FindJobInstanceByJobNameAndParameters finds a JobInstance by job name and
// exact parameters. Candidates are selected by parameters hash and then
// compared parameter by parameter to guard against hash collisions.
func (r *SQLJobRepository) FindJobInstanceByJobNameAndParameters(ctx context.Context, jobName string, params model.JobParameters) (*model.JobInstance, error) {
	const op = "SQLJobRepository.FindJobInstanceByJobNameAndParameters"
	hash, err := params.Hash()
	if err != nil {
		return nil, exception.NewBatchError(exception.ModuleRepository, op+": failed to calculate JobParameters hash", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_name, parameters, create_time, version, parameters_hash
		 FROM batch_job_instance WHERE job_name = ? AND parameters_hash = ?`,
		jobName, hash)
	if err != nil {
		return nil, exception.NewBatchError(exception.ModuleRepository, op+": failed to find JobInstance", err)
	}
	defer rows.Close()

	for rows.Next() {
		entity, scanErr := scanJobInstance(rows)
		if scanErr != nil {
			return nil, exception.NewBatchError(exception.ModuleRepository, op+": failed to scan JobInstance", scanErr)
		}
		domainInstance := toDomainJobInstance(entity)
		if domainInstance.Parameters.Equal(params) {
			return domainInstance, nil
		}
		logger.Warnf("%s: JobInstance (ID: %s) hash matched but parameters mismatched. Possible hash collision.", op, domainInstance.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, exception.NewBatchError(exception.ModuleRepository, op+": row iteration failed", err)
	}

	return nil, repository.ErrJobInstanceNotFound
}

// --- JobExecution implementation ---

// SaveJobExecution persists a new JobExecution.
func (r *SQLJobRepository) SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	const op = "SQLJobRepository.SaveJobExecution"
	entity := fromDomainJobExecution(jobExecution)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO batch_job_execution
		 (id, job_instance_id, job_name, parameters, start_time, end_time, status, exit_status,
		  failures, version, create_time, last_updated, current_step_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.JobInstanceID, entity.JobName, entity.Parameters,
		entity.StartTime, entity.EndTime, entity.Status, entity.ExitStatus,
		entity.Failures, entity.Version, entity.CreateTime, entity.LastUpdated, entity.CurrentStepName,
	)
	if err != nil {
		return exception.NewBatchError(exception.ModuleRepository, fmt.Sprintf("%s: failed to save JobExecution (ID: %s)", op, jobExecution.ID), err)
	}
	return nil
}

// UpdateJobExecution updates the state of an existing JobExecution.
func (r *SQLJobRepository) UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	const op = "SQLJobRepository.UpdateJobExecution"
	jobExecution.Version++
	entity := fromDomainJobExecution(jobExecution)

	res, err := r.db.ExecContext(ctx,
		`UPDATE batch_job_execution
		 SET end_time = ?, status = ?, exit_status = ?, failures = ?, version = ?,
		     last_updated = ?, current_step_name = ?
		 WHERE id = ?`,
		entity.EndTime, entity.Status, entity.ExitStatus, entity.Failures, entity.Version,
		entity.LastUpdated, entity.CurrentStepName, entity.ID,
	)
	if err != nil {
		return exception.NewBatchError(exception.ModuleRepository, fmt.Sprintf("%s: failed to update JobExecution (ID: %s)", op, jobExecution.ID), err)
	}
	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		return repository.ErrJobExecutionNotFound
	}
	return nil
}

// FindJobExecutionByID finds a JobExecution by its ID, including its
// StepExecutions ordered by start time.
func (r *SQLJobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	const op = "SQLJobRepository.FindJobExecutionByID"

	row := r.db.QueryRowContext(ctx,
		`SELECT id, job_instance_id, job_name, parameters, start_time, end_time, status, exit_status,
		        failures, version, create_time, last_updated, current_step_name
		 FROM batch_job_execution WHERE id = ?`, id)

	entity, err := scanJobExecution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrJobExecutionNotFound
		}
		return nil, exception.NewBatchError(exception.ModuleRepository, fmt.Sprintf("%s: failed to find JobExecution by ID: %s", op, id), err)
	}

	jobExecution := toDomainJobExecution(entity)
	steps, err := r.FindStepExecutionsByJobExecutionID(ctx, jobExecution.ID)
	if err != nil {
		return nil, err
	}
	for _, se := range steps {
		se.JobExecution = jobExecution
	}
	jobExecution.StepExecutions = steps
	return jobExecution, nil
}

// FindJobExecutionsByJobInstance finds all JobExecutions of a JobInstance,
// latest first. StepExecutions are not loaded.
func (r *SQLJobRepository) FindJobExecutionsByJobInstance(ctx context.Context, jobInstance *model.JobInstance) ([]*model.JobExecution, error) {
	const op = "SQLJobRepository.FindJobExecutionsByJobInstance"

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_instance_id, job_name, parameters, start_time, end_time, status, exit_status,
		        failures, version, create_time, last_updated, current_step_name
		 FROM batch_job_execution WHERE job_instance_id = ? ORDER BY create_time DESC`,
		jobInstance.ID)
	if err != nil {
		return nil, exception.NewBatchError(exception.ModuleRepository, op+": failed to find JobExecutions", err)
	}
	defer rows.Close()

	var executions []*model.JobExecution
	for rows.Next() {
		entity, scanErr := scanJobExecution(rows)
		if scanErr != nil {
			return nil, exception.NewBatchError(exception.ModuleRepository, op+": failed to scan JobExecution", scanErr)
		}
		executions = append(executions, toDomainJobExecution(entity))
	}
	if err := rows.Err(); err != nil {
		return nil, exception.NewBatchError(exception.ModuleRepository, op+": row iteration failed", err)
	}
	return executions, nil
}

// --- StepExecution implementation ---

// SaveStepExecution persists a new StepExecution.
func (r *SQLJobRepository) SaveStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	const op = "SQLJobRepository.SaveStepExecution"
	entity := fromDomainStepExecution(stepExecution)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO batch_step_execution
		 (id, step_name, job_execution_id, start_time, end_time, status, exit_status, failures,
		  read_count, write_count, commit_count, rollback_count, filter_count, last_updated, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.StepName, entity.JobExecutionID, entity.StartTime, entity.EndTime,
		entity.Status, entity.ExitStatus, entity.Failures,
		entity.ReadCount, entity.WriteCount, entity.CommitCount, entity.RollbackCount, entity.FilterCount,
		entity.LastUpdated, entity.Version,
	)
	if err != nil {
		return exception.NewBatchError(exception.ModuleRepository, fmt.Sprintf("%s: failed to save StepExecution (ID: %s)", op, stepExecution.ID), err)
	}
	return nil
}

// UpdateStepExecution updates the state of an existing StepExecution.
func (r *SQLJobRepository) UpdateStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	const op = "SQLJobRepository.UpdateStepExecution"
	stepExecution.Version++
	entity := fromDomainStepExecution(stepExecution)

	res, err := r.db.ExecContext(ctx,
		`UPDATE batch_step_execution
		 SET end_time = ?, status = ?, exit_status = ?, failures = ?,
		     read_count = ?, write_count = ?, commit_count = ?, rollback_count = ?, filter_count = ?,
		     last_updated = ?, version = ?
		 WHERE id = ?`,
		entity.EndTime, entity.Status, entity.ExitStatus, entity.Failures,
		entity.ReadCount, entity.WriteCount, entity.CommitCount, entity.RollbackCount, entity.FilterCount,
		entity.LastUpdated, entity.Version, entity.ID,
	)
	if err != nil {
		return exception.NewBatchError(exception.ModuleRepository, fmt.Sprintf("%s: failed to update StepExecution (ID: %s)", op, stepExecution.ID), err)
	}
	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		return repository.ErrStepExecutionNotFound
	}
	return nil
}

// FindStepExecutionByID finds a StepExecution by its ID.
func (r *SQLJobRepository) FindStepExecutionByID(ctx context.Context, executionID string) (*model.StepExecution, error) {
	const op = "SQLJobRepository.FindStepExecutionByID"

	row := r.db.QueryRowContext(ctx,
		`SELECT id, step_name, job_execution_id, start_time, end_time, status, exit_status, failures,
		        read_count, write_count, commit_count, rollback_count, filter_count, last_updated, version
		 FROM batch_step_execution WHERE id = ?`, executionID)

	entity, err := scanStepExecution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrStepExecutionNotFound
		}
		return nil, exception.NewBatchError(exception.ModuleRepository, fmt.Sprintf("%s: failed to find StepExecution by ID: %s", op, executionID), err)
	}
	return toDomainStepExecution(entity), nil
}

// FindStepExecutionsByJobExecutionID finds all StepExecutions of a
// JobExecution, ordered by start time.
func (r *SQLJobRepository) FindStepExecutionsByJobExecutionID(ctx context.Context, jobExecutionID string) ([]*model.StepExecution, error) {
	const op = "SQLJobRepository.FindStepExecutionsByJobExecutionID"

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, step_name, job_execution_id, start_time, end_time, status, exit_status, failures,
		        read_count, write_count, commit_count, rollback_count, filter_count, last_updated, version
		 FROM batch_step_execution WHERE job_execution_id = ? ORDER BY start_time`,
		jobExecutionID)
	if err != nil {
		return nil, exception.NewBatchError(exception.ModuleRepository, op+": failed to find StepExecutions", err)
	}
	defer rows.Close()

	executions := make([]*model.StepExecution, 0)
	for rows.Next() {
		entity, scanErr := scanStepExecution(rows)
		if scanErr != nil {
			return nil, exception.NewBatchError(exception.ModuleRepository, op+": failed to scan StepExecution", scanErr)
		}
		executions = append(executions, toDomainStepExecution(entity))
	}
	if err := rows.Err(); err != nil {
		return nil, exception.NewBatchError(exception.ModuleRepository, op+": row iteration failed", err)
	}
	return executions, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJobInstance(row rowScanner) (*JobInstanceEntity, error) {
	var entity JobInstanceEntity
	err := row.Scan(&entity.ID, &entity.JobName, &entity.Parameters,
		&entity.CreateTime, &entity.Version, &entity.ParametersHash)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func scanJobExecution(row rowScanner) (*JobExecutionEntity, error) {
	var entity JobExecutionEntity
	var endTime sql.NullTime
	err := row.Scan(&entity.ID, &entity.JobInstanceID, &entity.JobName, &entity.Parameters,
		&entity.StartTime, &endTime, &entity.Status, &entity.ExitStatus,
		&entity.Failures, &entity.Version, &entity.CreateTime, &entity.LastUpdated, &entity.CurrentStepName)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		entity.EndTime = &endTime.Time
	}
	return &entity, nil
}

func scanStepExecution(row rowScanner) (*StepExecutionEntity, error) {
	var entity StepExecutionEntity
	var endTime sql.NullTime
	err := row.Scan(&entity.ID, &entity.StepName, &entity.JobExecutionID,
		&entity.StartTime, &endTime, &entity.Status, &entity.ExitStatus, &entity.Failures,
		&entity.ReadCount, &entity.WriteCount, &entity.CommitCount, &entity.RollbackCount, &entity.FilterCount,
		&entity.LastUpdated, &entity.Version)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		entity.EndTime = &endTime.Time
	}
	return &entity, nil
}
