package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/retrofit/internal/logging"
	"github.com/rshade/retrofit/internal/persist"
)

func TestDefault(t *testing.T) {
	cfg := Default("/base")

	assert.Equal(t, "/base/config.yaml", cfg.ConfigPath())
	assert.Equal(t, "/base/projects", cfg.Storage.Directory)
	assert.Equal(t, persist.DefaultKey, cfg.Storage.ProjectKey)
	assert.InDelta(t, 0.85, cfg.Engine.DefaultTariff, 1e-9)
	assert.InDelta(t, 0.06, cfg.Engine.DiscountRate, 1e-9)
	assert.Zero(t, cfg.Engine.HorizonYears)
	assert.NoError(t, cfg.Validate())
}

func TestNew_ReadsConfigFile(t *testing.T) {
	home := stubHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(`
engine:
  horizon_years: 20
  discount_rate: 0.08
  default_tariff: 0.9
output:
  default_format: json
  precision: 3
`), 0600))

	cfg := New()
	assert.Equal(t, 20, cfg.Engine.HorizonYears)
	assert.InDelta(t, 0.08, cfg.Engine.DiscountRate, 1e-9)
	assert.Equal(t, FormatJSON, cfg.Output.DefaultFormat)
	assert.Equal(t, 3, cfg.Output.Precision)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestNew_MalformedFileFallsBack(t *testing.T) {
	home := stubHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("engine: [unclosed"), 0600))

	cfg := New()
	assert.Equal(t, Default(home).Engine, cfg.Engine)
}

func TestApplyEnvOverrides(t *testing.T) {
	stubHome(t)
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogFile, "/var/log/retrofit.log")
	t.Setenv(EnvOutput, "Table")
	t.Setenv(EnvStoreDir, "/data/projects")

	cfg := New()
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/var/log/retrofit.log", cfg.Logging.File)
	assert.Equal(t, FormatTable, cfg.Output.DefaultFormat)
	assert.Equal(t, "/data/projects", cfg.Storage.Directory)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.SetConfigPath(filepath.Join(dir, "nested", "config.yaml"))
	cfg.Engine.HorizonYears = 12
	cfg.Logging.Level = "warn"
	require.NoError(t, cfg.Save())

	loaded := Default(t.TempDir())
	loaded.SetConfigPath(cfg.ConfigPath())
	require.NoError(t, loaded.Load())
	assert.Equal(t, 12, loaded.Engine.HorizonYears)
	assert.Equal(t, "warn", loaded.Logging.Level)
	assert.Equal(t, cfg.Storage, loaded.Storage)

	missing := Default(t.TempDir())
	assert.Error(t, missing.Load())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"bad format", func(c *Config) { c.Output.DefaultFormat = "xml" }, ErrInvalidFormat},
		{"negative horizon", func(c *Config) { c.Engine.HorizonYears = -1 }, ErrInvalidHorizon},
		{"zero tariff", func(c *Config) { c.Engine.DefaultTariff = 0 }, ErrInvalidTariff},
		{"discount too high", func(c *Config) { c.Engine.DiscountRate = 1.5 }, ErrInvalidDiscount},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	cfg := Default("/x")
	cfg.Storage.Directory = ""
	assert.Error(t, cfg.Validate())
}

func TestToLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "json"}
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputStderr, got.Output)
	assert.Equal(t, "debug", got.Level)
	assert.Equal(t, "json", got.Format)

	lc.File = "/tmp/r.log"
	got = lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, "/tmp/r.log", got.File)
}
