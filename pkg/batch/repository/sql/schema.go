package sql

import (
	"context"
	"database/sql"
	"time"

	model "orderbatch/pkg/batch/core/model"
	"orderbatch/pkg/batch/support/exception"
)

// JobInstanceEntity is a schema model used for persistence.
type JobInstanceEntity struct {
	ID             string
	JobName        string
	Parameters     model.JobParameters
	CreateTime     time.Time
	Version        int
	ParametersHash string
}

func (JobInstanceEntity) TableName() string {
	return "batch_job_instance"
}

// JobExecutionEntity is a schema model used for persistence.
type JobExecutionEntity struct {
	ID              string
	JobInstanceID   string
	JobName         string
	Parameters      model.JobParameters
	StartTime       time.Time
	EndTime         *time.Time
	Status          model.JobStatus
	ExitStatus      model.ExitStatus
	Failures        model.FailureList
	Version         int
	CreateTime      time.Time
	LastUpdated     time.Time
	CurrentStepName string
}

func (JobExecutionEntity) TableName() string {
	return "batch_job_execution"
}

// StepExecutionEntity is a schema model used for persistence.
type StepExecutionEntity struct {
	ID             string
	StepName       string
	JobExecutionID string
	StartTime      time.Time
	EndTime        *time.Time
	Status         model.JobStatus
	ExitStatus     model.ExitStatus
	Failures       model.FailureList
	ReadCount      int
	WriteCount     int
	CommitCount    int
	RollbackCount  int
	FilterCount    int
	LastUpdated    time.Time
	Version        int
}

func (StepExecutionEntity) TableName() string {
	return "batch_step_execution"
}

// schemaDDL creates the metadata tables. The column types are restricted to
// the subset that MySQL and SQLite interpret identically.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS batch_job_instance (
		id              VARCHAR(36) PRIMARY KEY,
		job_name        VARCHAR(100) NOT NULL,
		parameters      TEXT NOT NULL,
		create_time     TIMESTAMP NOT NULL,
		version         INTEGER NOT NULL,
		parameters_hash VARCHAR(64) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS batch_job_execution (
		id                VARCHAR(36) PRIMARY KEY,
		job_instance_id   VARCHAR(36) NOT NULL,
		job_name          VARCHAR(100) NOT NULL,
		parameters        TEXT NOT NULL,
		start_time        TIMESTAMP NOT NULL,
		end_time          TIMESTAMP NULL,
		status            VARCHAR(20) NOT NULL,
		exit_status       VARCHAR(20) NOT NULL,
		failures          TEXT NOT NULL,
		version           INTEGER NOT NULL,
		create_time       TIMESTAMP NOT NULL,
		last_updated      TIMESTAMP NOT NULL,
		current_step_name VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS batch_step_execution (
		id               VARCHAR(36) PRIMARY KEY,
		step_name        VARCHAR(100) NOT NULL,
		job_execution_id VARCHAR(36) NOT NULL,
		start_time       TIMESTAMP NOT NULL,
		end_time         TIMESTAMP NULL,
		status           VARCHAR(20) NOT NULL,
		exit_status      VARCHAR(20) NOT NULL,
		failures         TEXT NOT NULL,
		read_count       INTEGER NOT NULL,
		write_count      INTEGER NOT NULL,
		commit_count     INTEGER NOT NULL,
		rollback_count   INTEGER NOT NULL,
		filter_count     INTEGER NOT NULL,
		last_updated     TIMESTAMP NOT NULL,
		version          INTEGER NOT NULL
	)`,
}

// EnsureSchema creates the batch metadata tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return exception.NewBatchError(exception.ModuleRepository, "failed to create batch metadata schema", err)
		}
	}
	return nil
}
