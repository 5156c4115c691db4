package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "orderbatch/pkg/batch/core/model"
)

func TestJobParameters_PutAndGet(t *testing.T) {
	params := model.NewJobParameters()
	params.Put("startDate", "2025-01-01")
	params.Put("minAmount", 7000)

	str, ok := params.GetString("startDate")
	assert.True(t, ok)
	assert.Equal(t, "2025-01-01", str)

	n, ok := params.GetInt("minAmount")
	assert.True(t, ok)
	assert.Equal(t, 7000, n)

	_, ok = params.GetString("missing")
	assert.False(t, ok)
	assert.Nil(t, params.Get("missing"))
}

func TestJobParameters_GetIntConvertsJSONNumbers(t *testing.T) {
	params := model.NewJobParameters()
	// Numbers round-tripped through JSON arrive as float64.
	params.Put("minAmount", float64(7000))

	n, ok := params.GetInt("minAmount")
	assert.True(t, ok)
	assert.Equal(t, 7000, n)
}

func TestJobParameters_HashIsOrderIndependent(t *testing.T) {
	a := model.NewJobParameters()
	a.Put("startDate", "2025-01-01")
	a.Put("endDate", "2025-01-08")
	a.Put("minAmount", "7000")

	b := model.NewJobParameters()
	b.Put("minAmount", "7000")
	b.Put("endDate", "2025-01-08")
	b.Put("startDate", "2025-01-01")

	hashA, err := a.Hash()
	assert.NoError(t, err)
	hashB, err := b.Hash()
	assert.NoError(t, err)
	assert.Equal(t, hashA, hashB)
}

func TestJobParameters_HashDiffersForDifferentValues(t *testing.T) {
	a := model.NewJobParameters()
	a.Put("timestamp", "1")
	b := model.NewJobParameters()
	b.Put("timestamp", "2")

	hashA, err := a.Hash()
	assert.NoError(t, err)
	hashB, err := b.Hash()
	assert.NoError(t, err)
	assert.NotEqual(t, hashA, hashB)
}

func TestJobParameters_CopyIsIndependent(t *testing.T) {
	original := model.NewJobParameters()
	original.Put("key", "value")

	cp := original.Copy()
	cp.Put("key", "changed")
	cp.Put("extra", "new")

	v, _ := original.GetString("key")
	assert.Equal(t, "value", v)
	assert.Nil(t, original.Get("extra"))
	assert.False(t, original.Equal(cp))
}

func TestJobParameters_ValueScanRoundTrip(t *testing.T) {
	params := model.NewJobParameters()
	params.Put("startDate", "2025-01-01")
	params.Put("minAmount", "7000")

	value, err := params.Value()
	assert.NoError(t, err)

	var restored model.JobParameters
	err = restored.Scan(value)
	assert.NoError(t, err)
	assert.True(t, params.Equal(restored))
}

func TestFailureList_ScanNilYieldsEmptyList(t *testing.T) {
	var fl model.FailureList
	err := fl.Scan(nil)
	assert.NoError(t, err)
	assert.NotNil(t, fl)
	assert.Empty(t, fl)
}
