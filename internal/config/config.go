// =============================================================================
// Ventas Ledger - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later wins):
//   1. config.yaml (optional; a missing file means "all defaults")
//   2. VENTAS_* environment variables, e.g. VENTAS_PATHS_INPUT_DIR
//   3. Built-in defaults for anything still unset
//
// The result is validated once on load so that commands can trust it.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "VENTAS"

// DefaultPreviewRows is used when neither the file nor the environment
// sets preview_rows.
const DefaultPreviewRows = 10

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("invalid configuration")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
}

// PathsConfig holds the directories used by the process command.
type PathsConfig struct {
	// InputDir is scanned for *.csv and *.xlsx ledgers.
	// Default: "./input"
	InputDir string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`

	// OutputDir receives cleaned exports and reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`

	// ArchiveDir receives input ledgers after they were processed.
	// Default: "./input_archive"
	ArchiveDir string `yaml:"archive_dir" envconfig:"ARCHIVE_DIR" validate:"required"`
}

// ProcessingConfig controls the pipeline and its outputs.
type ProcessingConfig struct {
	// MaxConcurrency is the number of ledger files processed at once.
	// Each file is still cleaned sequentially.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"min=1,max=64"`

	// PreviewRows is the number of leading rows kept for previews.
	// 0 disables previews.
	// Default: 10
	PreviewRows int `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"min=0"`

	// TopN is the length of the best-selling products list.
	// Default: 5
	TopN int `yaml:"top_n" envconfig:"TOP_N" validate:"min=1"`

	// KeepInputs leaves processed ledgers in the input directory instead
	// of moving them to the archive.
	KeepInputs bool `yaml:"keep_inputs" envconfig:"KEEP_INPUTS"`

	// ArchiveByDate stores archived ledgers under YYYY/MM/DD subdirectories.
	ArchiveByDate bool `yaml:"archive_by_date" envconfig:"ARCHIVE_BY_DATE"`

	// OutputNameFormat names the cleaned export written for each ledger.
	// Placeholders: {original}, {uuid}, {timestamp}, {date}, {time}.
	// Default: "{original}_clean_{timestamp}.csv"
	OutputNameFormat string `yaml:"output_name_format" envconfig:"OUTPUT_NAME_FORMAT" validate:"required"`

	// ExportFileName is the download name used by the API.
	// Default: "ventas_clean.csv"
	ExportFileName string `yaml:"export_file_name" envconfig:"EXPORT_FILE_NAME" validate:"required"`

	// ReportFormats lists the summary reports written next to each export.
	// Supported: "xlsx", "xml". Empty means no reports.
	ReportFormats []string `yaml:"report_formats" envconfig:"REPORT_FORMATS" validate:"dive,oneof=xlsx xml"`
}

// ServerConfig holds the dashboard API settings.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr" envconfig:"ADDR" validate:"required"`

	// SourceFile is the ledger served by the GET endpoints.
	// Default: "ventas_raw.csv"
	SourceFile string `yaml:"source_file" envconfig:"SOURCE_FILE"`

	// ReadTimeout bounds reading a request. Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`

	// WriteTimeout bounds writing a response. Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`

	// MaxBodyBytes caps uploaded ledgers. Default: 10 MiB
	MaxBodyBytes int64 `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" validate:"min=1"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: "info"
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`

	// Format is "text" (console) or "json". Default: "text"
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load builds the configuration from configPath, the environment and the
// defaults, then validates it.
//
// PARAMETERS:
//   - configPath: The YAML file to read. A missing file is not an error.
//
// RETURNS:
//   - The loaded configuration.
//   - An error if the file or environment cannot be parsed, or if the
//     result is invalid (wrapping ErrInvalid).
func Load(configPath string) (*Config, error) {
	cfg := newConfig()

	if configPath != "" {
		if err := loadFile(configPath, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := newConfig()
	applyDefaults(cfg)
	return cfg
}

// newConfig seeds the fields whose zero value is a valid setting, so the
// file and environment can still set them to zero.
func newConfig() *Config {
	return &Config{
		Processing: ProcessingConfig{PreviewRows: DefaultPreviewRows},
	}
}

// loadFile decodes the YAML file into cfg.
func loadFile(configPath string, cfg *Config) error {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Paths.InputDir == "" {
		cfg.Paths.InputDir = "./input"
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = "./output"
	}
	if cfg.Paths.ArchiveDir == "" {
		cfg.Paths.ArchiveDir = "./input_archive"
	}

	if cfg.Processing.MaxConcurrency == 0 {
		cfg.Processing.MaxConcurrency = 4
	}
	if cfg.Processing.TopN == 0 {
		cfg.Processing.TopN = 5
	}
	if cfg.Processing.OutputNameFormat == "" {
		cfg.Processing.OutputNameFormat = "{original}_clean_{timestamp}.csv"
	}
	if cfg.Processing.ExportFileName == "" {
		cfg.Processing.ExportFileName = "ventas_clean.csv"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.SourceFile == "" {
		cfg.Server.SourceFile = "ventas_raw.csv"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 10 << 20
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks the struct tags of the whole configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// WantsReport reports whether format is listed in ReportFormats.
func (p ProcessingConfig) WantsReport(format string) bool {
	for _, f := range p.ReportFormats {
		if f == format {
			return true
		}
	}
	return false
}
