package model

import (
	"fmt"
	"time"

	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// JobInstance is a structure representing the logical execution unit of a job.
// It is identified by the job name and the hash of its parameters.
type JobInstance struct {
	ID             string
	JobName        string
	Parameters     JobParameters
	CreateTime     time.Time
	Version        int
	ParametersHash string
}

// NewJobInstance creates a new instance of JobInstance.
func NewJobInstance(jobName string, params JobParameters) *JobInstance {
	hash, err := params.Hash()
	if err != nil {
		logger.Errorf("Failed to calculate JobParameters hash: %v", err)
		hash = ""
	}
	return &JobInstance{
		ID:             NewID(),
		JobName:        jobName,
		Parameters:     params,
		CreateTime:     time.Now(),
		Version:        0,
		ParametersHash: hash,
	}
}

// JobExecution is a structure representing a single execution attempt of a job.
type JobExecution struct {
	ID              string
	JobInstanceID   string
	JobName         string
	Parameters      JobParameters
	StartTime       time.Time
	EndTime         *time.Time
	Status          JobStatus
	ExitStatus      ExitStatus
	Failures        FailureList
	Version         int
	CreateTime      time.Time
	LastUpdated     time.Time
	StepExecutions  []*StepExecution
	CurrentStepName string
}

// NewJobExecution creates a new instance of JobExecution.
func NewJobExecution(jobInstanceID string, jobName string, params JobParameters) *JobExecution {
	now := time.Now()
	return &JobExecution{
		ID:             NewID(),
		JobInstanceID:  jobInstanceID,
		JobName:        jobName,
		Parameters:     params,
		StartTime:      now,
		Status:         BatchStatusStarting,
		ExitStatus:     ExitStatusUnknown,
		CreateTime:     now,
		LastUpdated:    now,
		Failures:       make(FailureList, 0),
		StepExecutions: make([]*StepExecution, 0),
	}
}

// TransitionTo safely transitions the state of JobExecution.
// Fields other than Status must be set separately by the caller.
func (je *JobExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidJobTransition(je.Status, newStatus) {
		return fmt.Errorf("JobExecution (ID: %s): invalid state transition: %s -> %s", je.ID, je.Status, newStatus)
	}
	je.Status = newStatus
	return nil
}

// MarkAsStarted updates the JobExecution status to STARTED.
func (je *JobExecution) MarkAsStarted() {
	if err := je.TransitionTo(BatchStatusStarted); err != nil {
		logger.Warnf("Could not update JobExecution (ID: %s) status to STARTED: %v", je.ID, err)
		je.Status = BatchStatusStarted
	}
	je.LastUpdated = time.Now()
}

// MarkAsCompleted updates the JobExecution status to COMPLETED.
func (je *JobExecution) MarkAsCompleted() {
	if err := je.TransitionTo(BatchStatusCompleted); err != nil {
		logger.Warnf("Could not update JobExecution (ID: %s) status to COMPLETED: %v", je.ID, err)
		je.Status = BatchStatusCompleted
	}
	je.ExitStatus = ExitStatusCompleted
	now := time.Now()
	je.EndTime = &now
	je.LastUpdated = now
}

// MarkAsFailed updates the JobExecution status to FAILED and records the error.
func (je *JobExecution) MarkAsFailed(err error) {
	if terr := je.TransitionTo(BatchStatusFailed); terr != nil {
		logger.Warnf("Could not update JobExecution (ID: %s) status to FAILED: %v", je.ID, terr)
		je.Status = BatchStatusFailed
	}
	je.ExitStatus = ExitStatusFailed
	now := time.Now()
	je.EndTime = &now
	je.LastUpdated = now
	if err != nil {
		je.AddFailureException(err)
	}
}

// MarkAsStopped updates the JobExecution status to STOPPED.
func (je *JobExecution) MarkAsStopped() {
	if err := je.TransitionTo(BatchStatusStopped); err != nil {
		logger.Warnf("Could not update JobExecution (ID: %s) status to STOPPED: %v", je.ID, err)
		je.Status = BatchStatusStopped
	}
	je.ExitStatus = ExitStatusStopped
	now := time.Now()
	je.EndTime = &now
	je.LastUpdated = now
}

// AddFailureException adds error information to JobExecution. Duplicate
// messages are not added twice.
func (je *JobExecution) AddFailureException(err error) {
	if err == nil {
		return
	}
	errMsg := exception.ExtractErrorMessage(err)

	for _, existing := range je.Failures {
		if existing == errMsg {
			logger.Debugf("Skipped adding duplicate error '%s' to JobExecution (ID: %s).", errMsg, je.ID)
			return
		}
	}

	je.Failures = append(je.Failures, errMsg)
	je.LastUpdated = time.Now()
}

// AddStepExecution adds a StepExecution to JobExecution.
func (je *JobExecution) AddStepExecution(se *StepExecution) {
	je.StepExecutions = append(je.StepExecutions, se)
}

// StepExecution is a structure representing a single execution attempt of a step.
type StepExecution struct {
	ID             string
	StepName       string
	JobExecution   *JobExecution
	JobExecutionID string
	StartTime      time.Time
	EndTime        *time.Time
	Status         JobStatus
	ExitStatus     ExitStatus
	Failures       FailureList
	ReadCount      int
	WriteCount     int
	CommitCount    int
	RollbackCount  int
	FilterCount    int
	LastUpdated    time.Time
	Version        int
}

// NewStepExecution creates a new instance of StepExecution.
func NewStepExecution(id string, jobExecution *JobExecution, stepName string) *StepExecution {
	now := time.Now()
	return &StepExecution{
		ID:             id,
		StepName:       stepName,
		JobExecutionID: jobExecution.ID,
		JobExecution:   jobExecution,
		StartTime:      now,
		Status:         BatchStatusStarting,
		ExitStatus:     ExitStatusUnknown,
		Failures:       make(FailureList, 0),
		LastUpdated:    now,
		Version:        0,
	}
}

// TransitionTo safely transitions the state of StepExecution.
func (se *StepExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidStepTransition(se.Status, newStatus) {
		return fmt.Errorf("StepExecution (ID: %s): invalid state transition: %s -> %s", se.ID, se.Status, newStatus)
	}
	se.Status = newStatus
	return nil
}

// MarkAsStarted updates the StepExecution status to STARTED.
func (se *StepExecution) MarkAsStarted() {
	if err := se.TransitionTo(BatchStatusStarted); err != nil {
		logger.Warnf("Could not update StepExecution (ID: %s) status to STARTED: %v", se.ID, err)
		se.Status = BatchStatusStarted
	}
	se.LastUpdated = time.Now()
}

// MarkAsCompleted updates the StepExecution status to COMPLETED.
func (se *StepExecution) MarkAsCompleted() {
	if err := se.TransitionTo(BatchStatusCompleted); err != nil {
		logger.Warnf("Could not update StepExecution (ID: %s) status to COMPLETED: %v", se.ID, err)
		se.Status = BatchStatusCompleted
	}
	se.ExitStatus = ExitStatusCompleted
	now := time.Now()
	se.EndTime = &now
	se.LastUpdated = now
}

// MarkAsFailed updates the StepExecution status to FAILED and records the error.
func (se *StepExecution) MarkAsFailed(err error) {
	if terr := se.TransitionTo(BatchStatusFailed); terr != nil {
		logger.Warnf("Could not update StepExecution (ID: %s) status to FAILED: %v", se.ID, terr)
		se.Status = BatchStatusFailed
	}
	se.ExitStatus = ExitStatusFailed
	now := time.Now()
	se.EndTime = &now
	se.LastUpdated = now
	if err != nil {
		se.AddFailureException(err)
	}
}

// MarkAsStopped updates the StepExecution status to STOPPED.
func (se *StepExecution) MarkAsStopped() {
	if err := se.TransitionTo(BatchStatusStopped); err != nil {
		logger.Warnf("Could not update StepExecution (ID: %s) status to STOPPED: %v", se.ID, err)
		se.Status = BatchStatusStopped
	}
	se.ExitStatus = ExitStatusStopped
	now := time.Now()
	se.EndTime = &now
	se.LastUpdated = now
}

// AddFailureException adds error information to StepExecution. Duplicate
// messages are not added twice.
func (se *StepExecution) AddFailureException(err error) {
	if err == nil {
		return
	}
	errMsg := exception.ExtractErrorMessage(err)

	for _, existing := range se.Failures {
		if existing == errMsg {
			logger.Debugf("Skipped adding duplicate error '%s' to StepExecution (ID: %s).", errMsg, se.ID)
			return
		}
	}

	se.Failures = append(se.Failures, errMsg)
	se.LastUpdated = time.Now()
}

// DebugString returns a compact debug representation of the StepExecution.
func (se *StepExecution) DebugString() string {
	endTimeStr := "nil"
	if se.EndTime != nil {
		endTimeStr = se.EndTime.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf(
		"&{ID:%s StepName:%s JobExecutionID:%s StartTime:%s EndTime:%s Status:%s ExitStatus:%s Failures:%v ReadCount:%d WriteCount:%d CommitCount:%d RollbackCount:%d FilterCount:%d}",
		se.ID, se.StepName, se.JobExecutionID, se.StartTime.Format(time.RFC3339Nano),
		endTimeStr, se.Status, se.ExitStatus, se.Failures,
		se.ReadCount, se.WriteCount, se.CommitCount, se.RollbackCount, se.FilterCount,
	)
}
