// Package config loads cellkpi configuration from defaults, an optional
// YAML file, an optional .env file and CELLKPI_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/blctm/gigagreen/pkg/cellkpi"
	"github.com/blctm/gigagreen/pkg/cellkpi/kpi"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "CELLKPI"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	// Protocol overrides the default KPI windows. Only settable from YAML.
	Protocol *kpi.Protocol `yaml:"protocol,omitempty" ignored:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_if=Output file,required_if=Output both"`
}

// ProcessingConfig controls how workbooks are read and batches run.
type ProcessingConfig struct {
	Sheet     string `yaml:"sheet" envconfig:"SHEET"`
	KeepGoing bool   `yaml:"keep_going" envconfig:"KEEP_GOING"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  64 << 20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stderr",
			FilePath: "logs/cellkpi.log",
		},
	}
}

var validate = validator.New()

// Load builds the configuration. path names a YAML file and may be empty.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the YAML file onto cfg.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate checks field constraints and the protocol, if any.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Protocol != nil {
		return c.Protocol.Validate()
	}
	return nil
}

// ActiveProtocol returns the configured protocol or the default one.
func (c *Config) ActiveProtocol() kpi.Protocol {
	if c.Protocol != nil {
		return *c.Protocol
	}
	return kpi.DefaultProtocol()
}

// PipelineOptions maps the configuration onto pipeline options.
func (c *Config) PipelineOptions(logger *slog.Logger) cellkpi.Options {
	return cellkpi.Options{
		Sheet:     c.Processing.Sheet,
		Protocol:  c.Protocol,
		KeepGoing: c.Processing.KeepGoing,
		Logger:    logger,
	}
}
