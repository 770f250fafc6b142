package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "2025", cfg.LegacyYear)
	assert.Equal(t, []string{"2026"}, cfg.Seasons)
	assert.Equal(t, 4, cfg.DefaultPodSize)
	assert.Equal(t, 8, cfg.MaxPodSize)
	assert.Equal(t, "https://api.scryfall.com", cfg.ScryfallBaseURL)
	assert.Empty(t, cfg.AdminToken)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SEASONS", "2026,2027")
	t.Setenv("DEFAULT_POD_SIZE", "3")
	t.Setenv("ADMIN_TOKEN", "s3cret")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"2026", "2027"}, cfg.Seasons)
	assert.Equal(t, 3, cfg.DefaultPodSize)
	assert.Equal(t, "s3cret", cfg.AdminToken)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"pod too small":        {"DEFAULT_POD_SIZE": "1"},
		"max below default":    {"DEFAULT_POD_SIZE": "6", "MAX_POD_SIZE": "4"},
		"legacy not a year":    {"LEGACY_YEAR": "25"},
		"legacy also a season": {"LEGACY_YEAR": "2026", "SEASONS": "2026"},
		"pod not a number":     {"DEFAULT_POD_SIZE": "four"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(zerolog.Nop())
			assert.Error(t, err)
		})
	}
}
