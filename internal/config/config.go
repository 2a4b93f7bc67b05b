package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces all environment variables (CPULSE_SERVER_PORT, ...).
const EnvPrefix = "CPULSE"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Dataset  DatasetConfig  `yaml:"dataset" envconfig:"DATASET"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/clinicpulse.log"`
}

// DatasetConfig describes the visit dataset and its column mapping.
// Mapping entries are optional; empty entries fall back to the keyword
// suggestion computed from the file's header row.
type DatasetConfig struct {
	// File is the visit dataset, Excel (.xlsx/.xls) or CSV.
	File string `yaml:"file" envconfig:"FILE" default:"data/visits.xlsx"`
	// Sheet selects a worksheet by name; empty means the first sheet
	// that contains data.
	Sheet   string        `yaml:"sheet" envconfig:"SHEET"`
	Mapping MappingConfig `yaml:"mapping" envconfig:"MAPPING"`
}

// MappingConfig assigns dataset column names to semantic roles.
type MappingConfig struct {
	VisitDate      string `yaml:"visit_date" envconfig:"VISIT_DATE"`
	Department     string `yaml:"department" envconfig:"DEPARTMENT"`
	Doctor         string `yaml:"doctor" envconfig:"DOCTOR"`
	WaitingMinutes string `yaml:"waiting_minutes" envconfig:"WAITING_MINUTES"`
	ArrivalTime    string `yaml:"arrival_time" envconfig:"ARRIVAL_TIME"`
	SeenTime       string `yaml:"seen_time" envconfig:"SEEN_TIME"`
	LicenseExpiry  string `yaml:"license_expiry" envconfig:"LICENSE_EXPIRY"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	DerivedDir string `yaml:"derived_dir" envconfig:"DERIVED_DIR" default:"data/derived"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// PipelineConfig carries the default run parameters. They can be
// overridden per request; these are the values the refresh CLI and the
// initial dashboard load use.
type PipelineConfig struct {
	TargetMinutes int    `yaml:"target_minutes" envconfig:"TARGET_MINUTES" default:"30" validate:"min=1,max=600"`
	DeptThreshold int    `yaml:"dept_threshold" envconfig:"DEPT_THRESHOLD" default:"90" validate:"min=0,max=100"`
	AlertDays     int    `yaml:"alert_days" envconfig:"ALERT_DAYS" default:"30" validate:"min=1,max=365"`
	WaitingMode   string `yaml:"waiting_mode" envconfig:"WAITING_MODE" default:"direct" validate:"oneof=direct timediff"`
	// CountMissingAsNoncompliant switches the denominator policy for
	// visits whose waiting time is unknown. The default excludes them
	// from both numerator and denominator.
	CountMissingAsNoncompliant bool `yaml:"count_missing_as_noncompliant" envconfig:"COUNT_MISSING_AS_NONCOMPLIANT" default:"false"`
}

// Load loads configuration from environment variables and an optional
// YAML file. File values overlay the env/default values field by field.
func Load(configFile string) (*Config, error) {
	var cfg Config

	// Environment variables and struct defaults first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			mergeConfigs(&cfg, fileCfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// mergeConfigs overlays non-zero file values onto the base config.
// Zero values cannot be expressed through the file overlay (a
// dept_threshold of 0, or switching a bool back off); set those via
// the CPULSE_* environment variables, which are applied directly.
func mergeConfigs(base, file *Config) {
	if file.Server.Port != 0 {
		base.Server.Port = file.Server.Port
	}
	if file.Server.ReadTimeout != 0 {
		base.Server.ReadTimeout = file.Server.ReadTimeout
	}
	if file.Server.WriteTimeout != 0 {
		base.Server.WriteTimeout = file.Server.WriteTimeout
	}
	if file.Server.IdleTimeout != 0 {
		base.Server.IdleTimeout = file.Server.IdleTimeout
	}
	if file.Server.ShutdownTimeout != 0 {
		base.Server.ShutdownTimeout = file.Server.ShutdownTimeout
	}
	if file.Server.RateLimit.RPS != 0 {
		base.Server.RateLimit = file.Server.RateLimit
	}
	if file.Logging.Level != "" {
		base.Logging.Level = file.Logging.Level
	}
	if file.Logging.Format != "" {
		base.Logging.Format = file.Logging.Format
	}
	if file.Logging.Output != "" {
		base.Logging.Output = file.Logging.Output
	}
	if file.Logging.FilePath != "" {
		base.Logging.FilePath = file.Logging.FilePath
	}
	if file.Dataset.File != "" {
		base.Dataset.File = file.Dataset.File
	}
	if file.Dataset.Sheet != "" {
		base.Dataset.Sheet = file.Dataset.Sheet
	}
	if file.Dataset.Mapping != (MappingConfig{}) {
		base.Dataset.Mapping = file.Dataset.Mapping
	}
	if file.Paths.DataDir != "" {
		base.Paths.DataDir = file.Paths.DataDir
	}
	if file.Paths.DerivedDir != "" {
		base.Paths.DerivedDir = file.Paths.DerivedDir
	}
	if file.Paths.LogsDir != "" {
		base.Paths.LogsDir = file.Paths.LogsDir
	}
	if file.Pipeline.TargetMinutes != 0 {
		base.Pipeline.TargetMinutes = file.Pipeline.TargetMinutes
	}
	if file.Pipeline.DeptThreshold != 0 {
		base.Pipeline.DeptThreshold = file.Pipeline.DeptThreshold
	}
	if file.Pipeline.AlertDays != 0 {
		base.Pipeline.AlertDays = file.Pipeline.AlertDays
	}
	if file.Pipeline.WaitingMode != "" {
		base.Pipeline.WaitingMode = file.Pipeline.WaitingMode
	}
	if file.Pipeline.CountMissingAsNoncompliant {
		base.Pipeline.CountMissingAsNoncompliant = true
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
