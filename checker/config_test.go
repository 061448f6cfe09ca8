package checker

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	configPath := filepath.Join("testdata", "config.toml")

	// Set environment variables to override values
	t.Setenv("FLC_LOG_LEVEL", "warn")
	t.Setenv("FLC_CHECK_CONCURRENCY", "2")
	t.Setenv("FLC_OUTPUT_FORMAT", "toml")

	cfg, err := LoadConfig(NewViper(), configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Assert values from config file, overridden by env vars where applicable
	assert.Equal(t, "i18n", cfg.Root)

	assert.Equal(t, slog.LevelWarn, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, true, cfg.Log.AddSource)

	assert.Equal(t, "en-GB", cfg.Check.DefaultLocale)
	assert.Equal(t, true, cfg.Check.Strict)
	assert.Equal(t, true, cfg.Check.Recursive)
	assert.Equal(t, 2, cfg.Check.Concurrency)
	assert.Equal(t, false, cfg.Check.OnlyCheck)

	assert.Equal(t, "toml", cfg.Output.Format)
	assert.Equal(t, false, cfg.Output.Color)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultRoot, cfg.Root)
	assert.Equal(t, slog.LevelWarn, cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, DefaultLocale, cfg.Check.DefaultLocale)
	assert.Equal(t, false, cfg.Check.Strict)
	assert.Equal(t, 8, cfg.Check.Concurrency)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, true, cfg.Output.Color)
}

func TestLoadConfigErrors(t *testing.T) {
	testcases := []struct {
		name string
		env  map[string]string
		path string
	}{
		{
			name: "missing config file",
			path: filepath.Join("testdata", "missing.toml"),
		},
		{
			name: "unknown output format",
			env:  map[string]string{"FLC_OUTPUT_FORMAT": "yaml"},
		},
		{
			name: "non-positive concurrency",
			env:  map[string]string{"FLC_CHECK_CONCURRENCY": "0"},
		},
		{
			name: "unknown log format",
			env:  map[string]string{"FLC_LOG_FORMAT": "xml"},
		},
		{
			name: "invalid log level",
			env:  map[string]string{"FLC_LOG_LEVEL": "loud"},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			_, err := LoadConfig(NewViper(), tc.path)
			assert.Error(t, err)
		})
	}
}
