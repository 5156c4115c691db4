package sql

import (
	model "orderbatch/pkg/batch/core/model"
)

func fromDomainJobInstance(ji *model.JobInstance) *JobInstanceEntity {
	if ji == nil {
		return nil
	}
	return &JobInstanceEntity{
		ID:             ji.ID,
		JobName:        ji.JobName,
		Parameters:     ji.Parameters,
		CreateTime:     ji.CreateTime,
		Version:        ji.Version,
		ParametersHash: ji.ParametersHash,
	}
}

func toDomainJobInstance(entity *JobInstanceEntity) *model.JobInstance {
	if entity == nil {
		return nil
	}
	return &model.JobInstance{
		ID:             entity.ID,
		JobName:        entity.JobName,
		Parameters:     entity.Parameters,
		CreateTime:     entity.CreateTime,
		Version:        entity.Version,
		ParametersHash: entity.ParametersHash,
	}
}

func fromDomainJobExecution(je *model.JobExecution) *JobExecutionEntity {
	if je == nil {
		return nil
	}
	return &JobExecutionEntity{
		ID:              je.ID,
		JobInstanceID:   je.JobInstanceID,
		JobName:         je.JobName,
		Parameters:      je.Parameters,
		StartTime:       je.StartTime,
		EndTime:         je.EndTime,
		Status:          je.Status,
		ExitStatus:      je.ExitStatus,
		Failures:        je.Failures,
		Version:         je.Version,
		CreateTime:      je.CreateTime,
		LastUpdated:     je.LastUpdated,
		CurrentStepName: je.CurrentStepName,
	}
}

func toDomainJobExecution(entity *JobExecutionEntity) *model.JobExecution {
	if entity == nil {
		return nil
	}
	je := &model.JobExecution{
		ID:              entity.ID,
		JobInstanceID:   entity.JobInstanceID,
		JobName:         entity.JobName,
		Parameters:      entity.Parameters,
		StartTime:       entity.StartTime,
		EndTime:         entity.EndTime,
		Status:          entity.Status,
		ExitStatus:      entity.ExitStatus,
		Failures:        entity.Failures,
		Version:         entity.Version,
		CreateTime:      entity.CreateTime,
		LastUpdated:     entity.LastUpdated,
		CurrentStepName: entity.CurrentStepName,
	}
	// StepExecutions are loaded separately in the repository layer.
	je.StepExecutions = make([]*model.StepExecution, 0)
	return je
}

func fromDomainStepExecution(se *model.StepExecution) *StepExecutionEntity {
	if se == nil {
		return nil
	}
	return &StepExecutionEntity{
		ID:             se.ID,
		StepName:       se.StepName,
		JobExecutionID: se.JobExecutionID,
		StartTime:      se.StartTime,
		EndTime:        se.EndTime,
		Status:         se.Status,
		ExitStatus:     se.ExitStatus,
		Failures:       se.Failures,
		ReadCount:      se.ReadCount,
		WriteCount:     se.WriteCount,
		CommitCount:    se.CommitCount,
		RollbackCount:  se.RollbackCount,
		FilterCount:    se.FilterCount,
		LastUpdated:    se.LastUpdated,
		Version:        se.Version,
	}
}

func toDomainStepExecution(entity *StepExecutionEntity) *model.StepExecution {
	if entity == nil {
		return nil
	}
	return &model.StepExecution{
		ID:             entity.ID,
		StepName:       entity.StepName,
		JobExecutionID: entity.JobExecutionID,
		StartTime:      entity.StartTime,
		EndTime:        entity.EndTime,
		Status:         entity.Status,
		ExitStatus:     entity.ExitStatus,
		Failures:       entity.Failures,
		ReadCount:      entity.ReadCount,
		WriteCount:     entity.WriteCount,
		CommitCount:    entity.CommitCount,
		RollbackCount:  entity.RollbackCount,
		FilterCount:    entity.FilterCount,
		LastUpdated:    entity.LastUpdated,
		Version:        entity.Version,
		// JobExecution is hydrated by the caller to avoid cycles.
	}
}
