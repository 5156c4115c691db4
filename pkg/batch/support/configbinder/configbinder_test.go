package configbinder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderbatch/pkg/batch/support/configbinder"
)

type sampleConfig struct {
	Name      string `yaml:"name"`
	ChunkSize int    `yaml:"chunk_size"`
	Enabled   bool   `yaml:"enabled"`
}

func TestBindProperties_WeaklyTypedConversion(t *testing.T) {
	var cfg sampleConfig
	props := map[string]string{
		"name":       "processOrderJob",
		"chunk_size": "5",
		"enabled":    "true",
	}

	require.NoError(t, configbinder.BindProperties(props, &cfg))
	assert.Equal(t, "processOrderJob", cfg.Name)
	assert.Equal(t, 5, cfg.ChunkSize)
	assert.True(t, cfg.Enabled)
}

func TestBindProperties_PartialBindKeepsOtherFields(t *testing.T) {
	cfg := sampleConfig{Name: "original", ChunkSize: 3}
	require.NoError(t, configbinder.BindProperties(map[string]string{"chunk_size": "10"}, &cfg))
	assert.Equal(t, "original", cfg.Name)
	assert.Equal(t, 10, cfg.ChunkSize)
}

func TestBindProperties_EmptyMapIsNoOp(t *testing.T) {
	cfg := sampleConfig{Name: "untouched"}
	require.NoError(t, configbinder.BindProperties(nil, &cfg))
	assert.Equal(t, "untouched", cfg.Name)
}

func TestBindProperties_TypeMismatchIsReported(t *testing.T) {
	var cfg sampleConfig
	err := configbinder.BindProperties(map[string]string{"chunk_size": "three"}, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sampleConfig")
}
