package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GlobalConfig holds the global configuration instance.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects globalConfigInit flag
var globalConfigInit bool       //nolint:gochecknoglobals // Tracks if global config has been initialized

// InitGlobalConfig initializes the global configuration.
func InitGlobalConfig() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	if globalConfigInit {
		return
	}

	GlobalConfig = New()
	globalConfigInit = true
}

// SetGlobalConfig replaces the global configuration, for example after a
// project overlay has been merged.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = cfg
	globalConfigInit = cfg != nil
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = nil
	globalConfigInit = false
}

// GetGlobalConfig returns the global configuration, initializing it if needed.
func GetGlobalConfig() *Config {
	InitGlobalConfig()

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return GlobalConfig
}

// GetDefaultOutputFormat returns the configured default output format.
func GetDefaultOutputFormat() string {
	return GetGlobalConfig().Output.DefaultFormat
}

// GetOutputPrecision returns the configured output precision.
func GetOutputPrecision() int {
	return GetGlobalConfig().Output.Precision
}

// GetLogLevel returns the configured log level.
func GetLogLevel() string {
	return GetGlobalConfig().Logging.Level
}

// GetLogFile returns the configured log file path.
func GetLogFile() string {
	return GetGlobalConfig().Logging.File
}

// EnsureConfigDir ensures the retrofit configuration directory exists.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// EnsureLogDir creates the parent directory of the configured log file, if any.
func EnsureLogDir() error {
	cfg := GetGlobalConfig()
	if cfg.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// GetConfigDir returns the retrofit configuration directory: $RETROFIT_HOME,
// or ~/.retrofit.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".retrofit"), nil
}

// EnsureSubDirs creates the config directory, the project store directory and
// the log directory.
func EnsureSubDirs() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	storeDir := GetGlobalConfig().Storage.Directory
	if err := os.MkdirAll(storeDir, 0700); err != nil {
		return fmt.Errorf("failed to create store directory %q: %w", storeDir, err)
	}

	return EnsureLogDir()
}
