// Package item_test provides unit tests for the chunk-oriented step.
package item_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	tx "orderbatch/pkg/batch/core/tx"
	"orderbatch/pkg/batch/engine/step/item"
	"orderbatch/pkg/batch/repository/inmemory"
)

// --- Stubs ---

// stubReader yields a fixed slice of items, optionally failing at a given
// read index.
type stubReader struct {
	items     []int
	pos       int
	failAt    int // 1-based read index that fails; 0 disables
	openErr   error
	setParams model.JobParameters
}

func (r *stubReader) Open(ctx context.Context) error { return r.openErr }
func (r *stubReader) Read(ctx context.Context) (int, error) {
	if r.failAt > 0 && r.pos+1 == r.failAt {
		return 0, errors.New("read failure")
	}
	if r.pos >= len(r.items) {
		return 0, port.ErrNoMoreItems
	}
	item := r.items[r.pos]
	r.pos++
	return item, nil
}
func (r *stubReader) Close(ctx context.Context) error { return nil }
func (r *stubReader) SetJobParameters(params model.JobParameters) {
	r.setParams = params
}

// stubProcessor doubles each item. Items matching filterValue are filtered
// out by returning a nil pointer.
type stubProcessor struct {
	filterValue int
	failValue   int
}

func (p *stubProcessor) Process(ctx context.Context, i int) (*int, error) {
	if p.failValue != 0 && i == p.failValue {
		return nil, errors.New("process failure")
	}
	if p.filterValue != 0 && i == p.filterValue {
		return nil, nil
	}
	out := i * 2
	return &out, nil
}

// stubWriter records the flushed chunks, optionally failing on the n-th
// Write call.
type stubWriter struct {
	chunks      [][]int
	failAtChunk int // 1-based Write call that fails; 0 disables
	calls       int
}

func (w *stubWriter) Open(ctx context.Context) error { return nil }
func (w *stubWriter) Write(ctx context.Context, txn tx.Tx, items []*int) error {
	w.calls++
	if w.failAtChunk > 0 && w.calls == w.failAtChunk {
		return errors.New("write failure")
	}
	chunk := make([]int, 0, len(items))
	for _, it := range items {
		chunk = append(chunk, *it)
	}
	w.chunks = append(w.chunks, chunk)
	return nil
}
func (w *stubWriter) Close(ctx context.Context) error { return nil }

// fakeTx satisfies tx.Tx without touching a database.
type fakeTx struct{}

func (fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

// fakeTxManager counts transaction outcomes.
type fakeTxManager struct {
	begins    int
	commits   int
	rollbacks int
	commitErr error
}

func (m *fakeTxManager) Begin(ctx context.Context, opts *sql.TxOptions) (tx.Tx, error) {
	m.begins++
	return fakeTx{}, nil
}
func (m *fakeTxManager) Commit(t tx.Tx) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	return nil
}
func (m *fakeTxManager) Rollback(t tx.Tx) error {
	m.rollbacks++
	return nil
}

// --- Helpers ---

func newExecutionPair(t *testing.T) (*model.JobExecution, *model.StepExecution, *inmemory.InMemoryJobRepository) {
	t.Helper()
	repo := inmemory.NewInMemoryJobRepository()
	je := model.NewJobExecution(model.NewID(), "testJob", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(context.Background(), je))
	se := model.NewStepExecution(model.NewID(), je, "testStep")
	je.AddStepExecution(se)
	require.NoError(t, repo.SaveStepExecution(context.Background(), se))
	return je, se, repo
}

// --- Tests ---

func TestChunkStep_FlushesInChunkSizedTransactions(t *testing.T) {
	je, se, repo := newExecutionPair(t)
	reader := &stubReader{items: []int{1, 2, 3, 4, 5, 6, 7}}
	writer := &stubWriter{}
	txm := &fakeTxManager{}

	step := item.NewChunkStep[int, *int]("testStep", reader, &stubProcessor{}, writer,
		item.ChunkConfig{ChunkSize: 3}, repo, txm, nil)

	err := step.Execute(context.Background(), je, se)
	require.NoError(t, err)

	// 7 items with chunk size 3: two full chunks and one remainder.
	assert.Equal(t, [][]int{{2, 4, 6}, {8, 10, 12}, {14}}, writer.chunks)
	assert.Equal(t, 7, se.ReadCount)
	assert.Equal(t, 7, se.WriteCount)
	assert.Equal(t, 3, se.CommitCount)
	assert.Equal(t, 0, se.RollbackCount)
	assert.Equal(t, 3, txm.begins)
	assert.Equal(t, model.BatchStatusCompleted, se.Status)
}

func TestChunkStep_EmptySourceCompletesWithoutFlush(t *testing.T) {
	je, se, repo := newExecutionPair(t)
	reader := &stubReader{}
	writer := &stubWriter{}
	txm := &fakeTxManager{}

	step := item.NewChunkStep[int, *int]("testStep", reader, &stubProcessor{}, writer,
		item.ChunkConfig{ChunkSize: 3}, repo, txm, nil)

	err := step.Execute(context.Background(), je, se)
	require.NoError(t, err)

	assert.Empty(t, writer.chunks)
	assert.Equal(t, 0, se.ReadCount)
	assert.Equal(t, 0, se.WriteCount)
	assert.Equal(t, 0, txm.begins)
	assert.Equal(t, model.BatchStatusCompleted, se.Status)
}

func TestChunkStep_WriteFailureRollsBackOnlyCurrentChunk(t *testing.T) {
	je, se, repo := newExecutionPair(t)
	reader := &stubReader{items: []int{1, 2, 3, 4, 5, 6, 7}}
	writer := &stubWriter{failAtChunk: 2}
	txm := &fakeTxManager{}

	step := item.NewChunkStep[int, *int]("testStep", reader, &stubProcessor{}, writer,
		item.ChunkConfig{ChunkSize: 3}, repo, txm, nil)

	err := step.Execute(context.Background(), je, se)
	require.Error(t, err)

	// The first chunk stays committed; the failed chunk is rolled back and
	// nothing after it runs.
	assert.Equal(t, [][]int{{2, 4, 6}}, writer.chunks)
	assert.Equal(t, 3, se.WriteCount)
	assert.Equal(t, 1, se.CommitCount)
	assert.Equal(t, 1, se.RollbackCount)
	assert.Equal(t, 1, txm.rollbacks)
	assert.Equal(t, model.BatchStatusFailed, se.Status)
	assert.NotEmpty(t, se.Failures)
}

func TestChunkStep_ReadFailureFailsStep(t *testing.T) {
	je, se, repo := newExecutionPair(t)
	reader := &stubReader{items: []int{1, 2, 3, 4}, failAt: 2}
	writer := &stubWriter{}
	txm := &fakeTxManager{}

	step := item.NewChunkStep[int, *int]("testStep", reader, &stubProcessor{}, writer,
		item.ChunkConfig{ChunkSize: 3}, repo, txm, nil)

	err := step.Execute(context.Background(), je, se)
	require.Error(t, err)
	assert.Empty(t, writer.chunks)
	assert.Equal(t, model.BatchStatusFailed, se.Status)
}

func TestChunkStep_ProcessFailureFailsStep(t *testing.T) {
	je, se, repo := newExecutionPair(t)
	reader := &stubReader{items: []int{1, 2, 3}}
	writer := &stubWriter{}
	txm := &fakeTxManager{}

	step := item.NewChunkStep[int, *int]("testStep", reader, &stubProcessor{failValue: 2}, writer,
		item.ChunkConfig{ChunkSize: 3}, repo, txm, nil)

	err := step.Execute(context.Background(), je, se)
	require.Error(t, err)
	assert.Empty(t, writer.chunks)
	assert.Equal(t, 0, txm.commits)
	assert.Equal(t, model.BatchStatusFailed, se.Status)
}

func TestChunkStep_FilteredItemsAreCountedNotWritten(t *testing.T) {
	je, se, repo := newExecutionPair(t)
	reader := &stubReader{items: []int{1, 2, 3, 4}}
	writer := &stubWriter{}
	txm := &fakeTxManager{}

	step := item.NewChunkStep[int, *int]("testStep", reader, &stubProcessor{filterValue: 3}, writer,
		item.ChunkConfig{ChunkSize: 3}, repo, txm, nil)

	err := step.Execute(context.Background(), je, se)
	require.NoError(t, err)

	assert.Equal(t, 4, se.ReadCount)
	assert.Equal(t, 3, se.WriteCount)
	assert.Equal(t, 1, se.FilterCount)
}

func TestChunkStep_CommitFailureCountsRollback(t *testing.T) {
	je, se, repo := newExecutionPair(t)
	reader := &stubReader{items: []int{1, 2, 3}}
	writer := &stubWriter{}
	txm := &fakeTxManager{commitErr: errors.New("commit failed")}

	step := item.NewChunkStep[int, *int]("testStep", reader, &stubProcessor{}, writer,
		item.ChunkConfig{ChunkSize: 3}, repo, txm, nil)

	err := step.Execute(context.Background(), je, se)
	require.Error(t, err)
	assert.Equal(t, 0, se.WriteCount)
	assert.Equal(t, 1, se.RollbackCount)
	assert.Equal(t, model.BatchStatusFailed, se.Status)
}

func TestChunkStep_HandsJobParametersToAwareComponents(t *testing.T) {
	je, se, repo := newExecutionPair(t)
	je.Parameters.Put("minAmount", "7000")
	reader := &stubReader{items: []int{1}}
	writer := &stubWriter{}
	txm := &fakeTxManager{}

	step := item.NewChunkStep[int, *int]("testStep", reader, &stubProcessor{}, writer,
		item.ChunkConfig{ChunkSize: 3}, repo, txm, nil)

	require.NoError(t, step.Execute(context.Background(), je, se))

	v, ok := reader.setParams.GetString("minAmount")
	assert.True(t, ok)
	assert.Equal(t, "7000", v)
}

func TestChunkStep_ReaderOpenFailureFailsStep(t *testing.T) {
	je, se, repo := newExecutionPair(t)
	reader := &stubReader{openErr: errors.New("cannot open cursor")}
	writer := &stubWriter{}
	txm := &fakeTxManager{}

	step := item.NewChunkStep[int, *int]("testStep", reader, &stubProcessor{}, writer,
		item.ChunkConfig{ChunkSize: 3}, repo, txm, nil)

	err := step.Execute(context.Background(), je, se)
	require.Error(t, err)
	assert.Equal(t, model.BatchStatusFailed, se.Status)
	assert.Equal(t, 0, txm.begins)
}
