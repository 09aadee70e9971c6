package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := DefaultConfig
	return cfg
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Provider = "skynet"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown AI provider")
}

func TestValidateProviderIsCaseInsensitive(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Provider = "Anthropic"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsEmptyModel(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Model = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveLimits(t *testing.T) {
	cfg := validConfig()
	cfg.Workspace.BatchTokenLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Workspace.FileConcurrency = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.AI.RequestConcurrency = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateEmbeddingBoundsCheckedOnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Enabled = false
	cfg.Embedding.MinScore = 3
	assert.NoError(t, cfg.Validate())

	cfg.Embedding.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_score")
}

func TestValidateOverwriteAndMergeExclusive(t *testing.T) {
	cfg := validConfig()
	cfg.Merge.Overwrite = true
	cfg.Merge.Merge = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestGetConfigFileType(t *testing.T) {
	assert.Equal(t, "json", GetConfigFileType("a.json"))
	assert.Equal(t, "yaml", GetConfigFileType("a.yml"))
	assert.Equal(t, "yaml", GetConfigFileType("a.yaml"))
	assert.Equal(t, "", GetConfigFileType("a.toml"))
}
