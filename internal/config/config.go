// Package config loads the CLI configuration: engine defaults, project storage,
// logging and output preferences. Values come from built-in defaults, the global
// config file, an optional project overlay and RETROFIT_* environment variables,
// in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rshade/retrofit/internal/calc"
	"github.com/rshade/retrofit/internal/persist"
	"github.com/rshade/retrofit/internal/project"
)

// configFileName is the name of the config file inside a config directory.
const configFileName = "config.yaml"

// Output formats.
const (
	FormatAuto  = "auto"
	FormatTable = "table"
	FormatJSON  = "json"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvHome      = "RETROFIT_HOME"
	EnvLogLevel  = "RETROFIT_LOG_LEVEL"
	EnvLogFormat = "RETROFIT_LOG_FORMAT"
	EnvLogFile   = "RETROFIT_LOG_FILE"
	EnvOutput    = "RETROFIT_OUTPUT"
	EnvStoreDir  = "RETROFIT_STORE_DIR"
)

// Config validation errors.
var (
	ErrInvalidFormat   = errors.New("invalid output format")
	ErrInvalidHorizon  = errors.New("horizon years cannot be negative")
	ErrInvalidTariff   = errors.New("default tariff must be positive")
	ErrInvalidDiscount = errors.New("discount rate must be between 0 and 1")
	ErrInvalidLevel    = errors.New("invalid log level")
)

// validFormats lists the accepted output formats.
var validFormats = []string{FormatAuto, FormatTable, FormatJSON} //nolint:gochecknoglobals // Constant list

// validLevels lists the accepted log levels.
var validLevels = []string{"trace", "debug", "info", "warn", "error"} //nolint:gochecknoglobals // Constant list

// EngineConfig holds the financial defaults applied by the engine.
type EngineConfig struct {
	// HorizonYears overrides module default horizons when set; 0 keeps them.
	HorizonYears int `yaml:"horizon_years" json:"horizon_years"`

	// DiscountRate is used for NPV when the project sets none.
	DiscountRate float64 `yaml:"discount_rate" json:"discount_rate"`

	// DefaultTariff is the fixed price, in yuan/kWh, given to new projects.
	DefaultTariff float64 `yaml:"default_tariff" json:"default_tariff"`
}

// StorageConfig locates the saved working project.
type StorageConfig struct {
	Directory  string `yaml:"directory" json:"directory"`
	ProjectKey string `yaml:"project_key" json:"project_key"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"`
	Precision     int    `yaml:"precision" json:"precision"`
}

// Config is the complete CLI configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine" json:"engine"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Output  OutputConfig  `yaml:"output" json:"output"`

	configPath string
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Engine: EngineConfig{
			DiscountRate:  calc.DefaultDiscountRate,
			DefaultTariff: project.DefaultFixedPrice,
		},
		Storage: StorageConfig{
			Directory:  filepath.Join(dir, "projects"),
			ProjectKey: persist.DefaultKey,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			DefaultFormat: FormatAuto,
			Precision:     2,
		},
		configPath: filepath.Join(dir, configFileName),
	}
}

// New loads the global configuration: defaults, then the config file if it
// exists, then environment overrides. A .env file in the working directory is
// read first. Parse errors in the config file leave the defaults in place.
func New() *Config {
	_ = godotenv.Load()

	dir, err := GetConfigDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), ".retrofit")
	}
	cfg := Default(dir)
	if _, statErr := os.Stat(cfg.configPath); statErr == nil {
		if loadErr := cfg.Load(); loadErr != nil {
			cfg = Default(dir)
		}
	}
	cfg.ApplyEnvOverrides()
	return cfg
}

// ConfigPath returns the config file path.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes where Load and Save read and write.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Load reads the config file over the current values.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", c.configPath, err)
	}
	return nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ApplyEnvOverrides applies RETROFIT_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output.DefaultFormat = strings.ToLower(v)
	}
	if v := os.Getenv(EnvStoreDir); v != "" {
		c.Storage.Directory = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(validFormats, c.Output.DefaultFormat) {
		return fmt.Errorf("%w: %q (valid: %s)", ErrInvalidFormat, c.Output.DefaultFormat, strings.Join(validFormats, ", "))
	}
	if c.Output.Precision < 0 {
		return fmt.Errorf("output precision cannot be negative: %d", c.Output.Precision)
	}
	if c.Engine.HorizonYears < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHorizon, c.Engine.HorizonYears)
	}
	if c.Engine.DefaultTariff <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidTariff, c.Engine.DefaultTariff)
	}
	if c.Engine.DiscountRate < 0 || c.Engine.DiscountRate >= 1 {
		return fmt.Errorf("%w: %g", ErrInvalidDiscount, c.Engine.DiscountRate)
	}
	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Logging.Level)
	}
	if c.Storage.Directory == "" {
		return errors.New("storage directory cannot be empty")
	}
	return nil
}
