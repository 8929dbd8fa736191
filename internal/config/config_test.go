package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvAsIntOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestMustGetEnv_Missing(t *testing.T) {
	t.Setenv("NONEXISTENT_REQUIRED_VAR", "")

	_, err := mustGetEnv("NONEXISTENT_REQUIRED_VAR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	t.Setenv("TEST_REQUIRED", "value123")

	val, err := mustGetEnv("TEST_REQUIRED")
	require.NoError(t, err)
	assert.Equal(t, "value123", val)
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b ,,a, c ")
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Empty(t, splitList(" , "))
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("PORT", "")
	t.Setenv("PROXY_PORT", "")
	t.Setenv("MODEL_CANDIDATES", "")
	t.Setenv("ATTEMPT_TIMEOUT_SECONDS", "")
	t.Setenv("SYSTEM_INSTRUCTION", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, DefaultModelCandidates, cfg.ModelCandidates)
	assert.Equal(t, DefaultSystemInstruction, cfg.SystemInstruction)
	assert.Equal(t, 20*time.Second, cfg.AttemptTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("PORT", "")
	t.Setenv("PROXY_PORT", "4000")
	t.Setenv("MODEL_CANDIDATES", "model-b, model-a")
	t.Setenv("ATTEMPT_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, []string{"model-b", "model-a"}, cfg.ModelCandidates)
	assert.Equal(t, 3*time.Second, cfg.AttemptTimeout)
}

func TestValidate(t *testing.T) {
	valid := Config{
		GeminiAPIKey:         "k",
		ModelCandidates:      []string{"m"},
		AttemptTimeout:       time.Second,
		GeminiConcurrentReqs: 1,
	}
	require.NoError(t, valid.Validate())

	noModels := valid
	noModels.ModelCandidates = nil
	assert.Error(t, noModels.Validate())

	badTimeout := valid
	badTimeout.AttemptTimeout = 0
	assert.Error(t, badTimeout.Validate())

	badLimit := valid
	badLimit.RateLimitPerMin = -1
	assert.Error(t, badLimit.Validate())
}
