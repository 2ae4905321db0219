package config_test

import (
	"testing"

	"github.com/sql-trainer/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RUNNER_ENDPOINTS", "hr=https://hr.supabase.co")
	t.Setenv("RUNNER_KEYS", "hr=secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "questions.json", cfg.CatalogPath)
	assert.Equal(t, config.RunnerModeRPC, cfg.Runner.Mode)
	assert.Equal(t, 20, cfg.Runner.MaxRows)
	assert.Equal(t, 3, cfg.Runner.Retries)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EndpointMaps(t *testing.T) {
	t.Setenv("RUNNER_ENDPOINTS", "hr=https://hr.supabase.co,shop=https://shop.supabase.co")
	t.Setenv("RUNNER_KEYS", "hr=key-a,shop=key-b")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://shop.supabase.co", cfg.Runner.Endpoints["shop"])
	assert.Equal(t, "key-b", cfg.Runner.Keys["shop"])
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingKeyForEndpoint(t *testing.T) {
	cfg := config.Config{
		Runner: config.RunnerConfig{
			Mode:      config.RunnerModeRPC,
			Endpoints: map[string]string{"hr": "https://hr.supabase.co"},
			Retries:   3,
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUNNER_KEYS")
}

func TestValidate_JudgeRequiresKeyAndModel(t *testing.T) {
	cfg := config.Config{
		Runner: config.RunnerConfig{
			Mode:    config.RunnerModePostgres,
			DSNs:    map[string]string{"hr": "postgres://localhost/hr"},
			Retries: 3,
		},
		Judge: config.JudgeConfig{URL: "https://api.groq.com/openai/v1/chat/completions"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JUDGE_API_KEY")
	assert.Contains(t, err.Error(), "JUDGE_MODEL")
}

func TestValidate_BadMode(t *testing.T) {
	cfg := config.Config{Runner: config.RunnerConfig{Mode: "carrier-pigeon", Retries: 3}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUNNER_MODE")
}
