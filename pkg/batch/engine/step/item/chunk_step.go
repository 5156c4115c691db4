// Package item implements the chunk-oriented step: read items one by one,
// transform them, and write them in fixed-size chunks, each chunk inside its
// own transaction.
package item

import (
	"context"
	"errors"
	"io"
	"reflect"

	"github.com/hashicorp/go-multierror"

	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	tx "orderbatch/pkg/batch/core/tx"
	"orderbatch/pkg/batch/metrics"
	"orderbatch/pkg/batch/repository"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// DefaultChunkSize is the chunk size used when the config does not set one.
const DefaultChunkSize = 3

// ChunkConfig holds the tunables of a chunk step.
type ChunkConfig struct {
	// ChunkSize is the number of items accumulated before a flush. Values
	// below 1 fall back to DefaultChunkSize.
	ChunkSize int
}

// ChunkStep is a port.Step implementation for chunk-oriented processing.
// I is the item type produced by the reader, O the type accepted by the writer.
type ChunkStep[I, O any] struct {
	name           string
	reader         port.ItemReader[I]
	processor      port.ItemProcessor[I, O]
	writer         port.ItemWriter[O]
	chunkSize      int
	jobRepository  repository.JobRepository
	txManager      tx.TransactionManager
	metricRecorder metrics.MetricRecorder
}

// NewChunkStep creates a new ChunkStep instance.
func NewChunkStep[I, O any](
	name string,
	reader port.ItemReader[I],
	processor port.ItemProcessor[I, O],
	writer port.ItemWriter[O],
	cfg ChunkConfig,
	jobRepository repository.JobRepository,
	txManager tx.TransactionManager,
	metricRecorder metrics.MetricRecorder,
) *ChunkStep[I, O] {
	chunkSize := cfg.ChunkSize
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	if metricRecorder == nil {
		metricRecorder = metrics.NewNoopRecorder()
	}
	return &ChunkStep[I, O]{
		name:           name,
		reader:         reader,
		processor:      processor,
		writer:         writer,
		chunkSize:      chunkSize,
		jobRepository:  jobRepository,
		txManager:      txManager,
		metricRecorder: metricRecorder,
	}
}

// Verify that ChunkStep implements the port.Step interface.
var _ port.Step = (*ChunkStep[any, any])(nil)

// StepName returns the step name.
func (s *ChunkStep[I, O]) StepName() string {
	return s.name
}

// Execute runs the chunk-oriented step logic. Each chunk is flushed inside
// its own transaction: a failed flush rolls back only the current chunk,
// chunks committed earlier stay committed.
func (s *ChunkStep[I, O]) Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error {
	logger.Infof("ChunkStep '%s' executing.", s.name)

	stepExecution.MarkAsStarted()
	if err := s.jobRepository.UpdateStepExecution(ctx, stepExecution); err != nil {
		return exception.NewBatchError(exception.ModuleStep, "failed to update StepExecution status to STARTED", err)
	}

	// Hand the launch parameters to components that resolve per-run settings.
	for _, component := range []any{s.reader, s.processor, s.writer} {
		if aware, ok := component.(port.JobParametersAware); ok {
			aware.SetJobParameters(jobExecution.Parameters)
		}
	}

	if err := s.reader.Open(ctx); err != nil {
		chunkError := exception.NewBatchError(exception.ModuleStep, "failed to open ItemReader", err)
		return s.finalize(ctx, stepExecution, chunkError)
	}
	if err := s.writer.Open(ctx); err != nil {
		s.reader.Close(ctx)
		chunkError := exception.NewBatchError(exception.ModuleStep, "failed to open ItemWriter", err)
		return s.finalize(ctx, stepExecution, chunkError)
	}

	jobName := jobExecution.JobName
	var chunkError error
	isEOF := false

	for !isEOF && chunkError == nil {
		itemsToWrite := make([]O, 0, s.chunkSize)

		// Accumulate up to chunkSize items.
		for len(itemsToWrite) < s.chunkSize {
			item, readErr := s.reader.Read(ctx)
			if readErr != nil {
				if errors.Is(readErr, port.ErrNoMoreItems) || errors.Is(readErr, io.EOF) {
					isEOF = true
					break
				}
				chunkError = exception.NewBatchError(exception.ModuleStep, "item read failed", readErr)
				break
			}
			stepExecution.ReadCount++
			s.metricRecorder.RecordItemRead(ctx, jobName, s.name)

			processedItem, processErr := s.processor.Process(ctx, item)
			if processErr != nil {
				chunkError = exception.NewBatchError(exception.ModuleStep, "item process failed", processErr)
				break
			}
			if isNilItem(processedItem) {
				stepExecution.FilterCount++
				continue
			}
			itemsToWrite = append(itemsToWrite, processedItem)
		}

		if chunkError != nil || len(itemsToWrite) == 0 {
			break
		}

		// Flush the chunk inside a single transaction.
		txn, beginErr := s.txManager.Begin(ctx, nil)
		if beginErr != nil {
			chunkError = exception.NewBatchError(exception.ModuleStep, "failed to begin transaction for chunk", beginErr)
			break
		}

		if writeErr := s.writer.Write(ctx, txn, itemsToWrite); writeErr != nil {
			if rbErr := s.txManager.Rollback(txn); rbErr != nil {
				logger.Errorf("ChunkStep '%s': rollback failed after write error: %v", s.name, rbErr)
			}
			stepExecution.RollbackCount++
			s.metricRecorder.RecordChunkRollback(ctx, jobName, s.name)
			chunkError = exception.NewBatchError(exception.ModuleStep, "item write failed", writeErr)
			break
		}

		if commitErr := s.txManager.Commit(txn); commitErr != nil {
			stepExecution.RollbackCount++
			s.metricRecorder.RecordChunkRollback(ctx, jobName, s.name)
			chunkError = exception.NewBatchError(exception.ModuleStep, "failed to commit transaction for chunk", commitErr)
			break
		}

		stepExecution.WriteCount += len(itemsToWrite)
		stepExecution.CommitCount++
		s.metricRecorder.RecordItemWrite(ctx, jobName, s.name, len(itemsToWrite))
		s.metricRecorder.RecordChunkCommit(ctx, jobName, s.name)
		logger.Debugf("ChunkStep '%s': committed chunk of %d items (total written: %d).", s.name, len(itemsToWrite), stepExecution.WriteCount)
	}

	// Close components, aggregating close errors with the chunk error.
	var closeErrs *multierror.Error
	if closeErr := s.reader.Close(ctx); closeErr != nil {
		logger.Warnf("ChunkStep '%s': failed to close ItemReader: %v", s.name, closeErr)
		closeErrs = multierror.Append(closeErrs, closeErr)
	}
	if closeErr := s.writer.Close(ctx); closeErr != nil {
		logger.Warnf("ChunkStep '%s': failed to close ItemWriter: %v", s.name, closeErr)
		closeErrs = multierror.Append(closeErrs, closeErr)
	}
	if chunkError == nil && closeErrs != nil {
		chunkError = exception.NewBatchError(exception.ModuleStep, "failed to close chunk components", closeErrs.ErrorOrNil())
	}

	return s.finalize(ctx, stepExecution, chunkError)
}

// finalize records the outcome on the StepExecution and persists it.
func (s *ChunkStep[I, O]) finalize(ctx context.Context, stepExecution *model.StepExecution, chunkError error) error {
	if chunkError != nil {
		stepExecution.MarkAsFailed(chunkError)
	} else {
		stepExecution.MarkAsCompleted()
	}

	if updateErr := s.jobRepository.UpdateStepExecution(ctx, stepExecution); updateErr != nil {
		logger.Errorf("ChunkStep '%s': failed to update final StepExecution state: %v", s.name, updateErr)
		if chunkError == nil {
			chunkError = updateErr
		}
	}

	logger.Infof("ChunkStep '%s' finished. Status: %s, read: %d, written: %d, commits: %d, rollbacks: %d, filtered: %d",
		s.name, stepExecution.Status, stepExecution.ReadCount, stepExecution.WriteCount,
		stepExecution.CommitCount, stepExecution.RollbackCount, stepExecution.FilterCount)
	return chunkError
}

// isNilItem reports whether a processed item is nil, including typed nil
// pointers, which marks the item as filtered.
func isNilItem(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
