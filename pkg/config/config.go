// Package config loads the batch analyzer configuration.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-adtree/pkg/validation"
)

// Output formats for the analysis report
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Default configuration values
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultOutput      = OutputText
	DefaultSinkTimeout = 30 * time.Second
	DefaultS3Prefix    = "reports/"
)

// Config holds the analyzer configuration
type Config struct {
	// Inputs are tree files (.xml, .yaml, .yml) analysed in order
	Inputs []string `yaml:"inputs" validate:"dive,required"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat is json or text
	LogFormat string `yaml:"log_format" validate:"oneof=json text"`

	// Output selects how reports are printed to stdout
	Output string `yaml:"output" validate:"oneof=text json"`

	// ShowPairs prints every defense pair, not only the counts
	ShowPairs bool `yaml:"show_pairs"`

	// Workers bounds how many trees are analysed concurrently
	Workers int `yaml:"workers" validate:"min=0,max=1024"`

	// MetricsAddr serves /metrics when set (e.g. ":9090")
	MetricsAddr string `yaml:"metrics_addr"`

	Report ReportConfig `yaml:"report"`
}

// ReportConfig configures where reports are persisted. Every sink is optional.
type ReportConfig struct {
	// Dir receives one JSON file per analysed tree
	Dir string `yaml:"dir"`

	// Compress stores files snappy-compressed (.json.sz)
	Compress bool `yaml:"compress"`

	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
	S3Region string `yaml:"s3_region"`

	// DatabaseURL is a PostgreSQL connection string
	DatabaseURL string `yaml:"database_url"`

	// Timeout bounds each sink write
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Output:    DefaultOutput,
		Workers:   runtime.NumCPU(),
		Report: ReportConfig{
			S3Prefix: DefaultS3Prefix,
			Timeout:  DefaultSinkTimeout,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// ApplyEnv overrides values from ADTREE_* environment variables. Connection
// strings are usually supplied this way rather than committed to a file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ADTREE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ADTREE_DATABASE_URL"); v != "" {
		c.Report.DatabaseURL = v
	}
	if v := os.Getenv("ADTREE_S3_BUCKET"); v != "" {
		c.Report.S3Bucket = v
	}
	if v := os.Getenv("ADTREE_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	c.normalize()
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(validation.DefaultOr(c.LogLevel, DefaultLogLevel))
	c.LogFormat = strings.ToLower(validation.DefaultOr(c.LogFormat, DefaultLogFormat))
	c.Output = strings.ToLower(validation.DefaultOr(c.Output, DefaultOutput))
	c.Report.Timeout = validation.DefaultOr(c.Report.Timeout, DefaultSinkTimeout)
	c.Workers = validation.DefaultOr(c.Workers, runtime.NumCPU())
}

// Validate checks the configuration, reporting every problem at once
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("Config").
		NonEmpty("Inputs", c.Inputs).
		Custom("fields", func() error { return validation.Struct(c) }).
		When(c.MetricsAddr != "", func(cv *validation.ConfigValidator) {
			cv.Custom("MetricsAddr", func() error {
				_, _, err := net.SplitHostPort(c.MetricsAddr)
				return err
			})
		}).
		When(c.Report.Compress, func(cv *validation.ConfigValidator) {
			cv.Required("Report.Dir", c.Report.Dir)
		}).
		When(c.Report.S3Region != "", func(cv *validation.ConfigValidator) {
			cv.Required("Report.S3Bucket", c.Report.S3Bucket)
		}).
		When(c.Report.DatabaseURL != "", func(cv *validation.ConfigValidator) {
			cv.Custom("Report.DatabaseURL", func() error {
				if !strings.HasPrefix(c.Report.DatabaseURL, "postgres://") &&
					!strings.HasPrefix(c.Report.DatabaseURL, "postgresql://") {
					return errors.New("must be a postgres:// URL")
				}
				return nil
			})
		}).
		Custom("Report.Timeout", func() error {
			if c.Report.Timeout <= 0 {
				return fmt.Errorf("must be positive, got %v", c.Report.Timeout)
			}
			return nil
		})
	return cv.Validate()
}
