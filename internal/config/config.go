package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/cpa005/internal/convert"
	"github.com/cleared-dev/cpa005/internal/model"
)

// FileName is the config file looked up in the working directory.
const FileName = "cpa005.yaml"

// Config represents the top-level cpa005.yaml configuration.
type Config struct {
	File       FileConfig       `yaml:"file"`
	Output     OutputConfig     `yaml:"output"`
	Validation ValidationConfig `yaml:"validation"`
	Server     ServerConfig     `yaml:"server"`
	History    HistoryConfig    `yaml:"history"`
}

// FileConfig sets values stamped into every generated file.
type FileConfig struct {
	CreationNumber int    `yaml:"creation_number"`
	SundryInfo     string `yaml:"sundry_info"`
}

// OutputConfig controls how files are written.
type OutputConfig struct {
	RecordDelimiter string `yaml:"record_delimiter"`
	Extension       string `yaml:"extension"`
}

// ValidationConfig controls handling of bad payment rows.
type ValidationConfig struct {
	InvalidRows string `yaml:"invalid_rows"` // "abort" or "skip"
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	HistoryDB string `yaml:"history_db"`
}

// HistoryConfig locates the CLI conversion log.
type HistoryConfig struct {
	LogPath string `yaml:"log_path"`
}

// Load reads a cpa005.yaml file from disk. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, returning defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		File: FileConfig{
			CreationNumber: 1,
		},
		Output: OutputConfig{
			RecordDelimiter: convert.DefaultDelimiter,
			Extension:       ".txt",
		},
		Validation: ValidationConfig{
			InvalidRows: string(convert.PolicyAbort),
		},
		Server: ServerConfig{
			Addr:      ":8080",
			HistoryDB: "cpa005.db",
		},
		History: HistoryConfig{
			LogPath: "logs/conversions.csv",
		},
	}
}

// Validate checks values that would otherwise only fail mid-conversion.
func (c *Config) Validate() error {
	if c.File.CreationNumber < 1 || c.File.CreationNumber > 9999 {
		return fmt.Errorf("file.creation_number %d out of range 1-9999", c.File.CreationNumber)
	}
	if _, err := convert.ParsePolicy(c.Validation.InvalidRows); err != nil {
		return fmt.Errorf("validation.invalid_rows: %w", err)
	}
	return nil
}

// ConvertOptions returns conversion options for mode built from c.
func (c *Config) ConvertOptions(mode model.Mode, logger *log.Logger) (convert.Options, error) {
	policy, err := convert.ParsePolicy(c.Validation.InvalidRows)
	if err != nil {
		return convert.Options{}, err
	}
	opts := convert.DefaultOptions(mode)
	opts.Delimiter = c.Output.RecordDelimiter
	opts.FileNumber = c.File.CreationNumber
	opts.SundryInfo = c.File.SundryInfo
	opts.InvalidRows = policy
	opts.Logger = logger
	return opts, nil
}
