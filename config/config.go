// Package config provides configuration management for the report run.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/zalepa/assaultstats/source"
	"github.com/zalepa/assaultstats/stats"
)

// EnvPrefix prefixes every environment override, e.g. ASSAULTSTATS_OUTPUT_DIR.
const EnvPrefix = "ASSAULTSTATS"

// Output formats.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatText   = "text"
	FormatXLSX   = "xlsx"
	FormatCharts = "charts"
)

// AllFormats lists every output format in the order they are written.
var AllFormats = []string{FormatCSV, FormatJSON, FormatText, FormatXLSX, FormatCharts}

// Configuration validation errors.
var (
	ErrBinEdgesOrder = errors.New("analysis.bin_edges must be strictly ascending")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config represents the complete run configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SourceConfig says where the raw table comes from.
type SourceConfig struct {
	// Location is a .csv/.xlsx/.xml path or an http(s) URL of the markup feed.
	Location   string `yaml:"location"`
	FeedURL    string `yaml:"feed_url" validate:"omitempty,url"`
	TimeoutSec int    `yaml:"timeout_sec" validate:"gte=1,lte=600"`
}

// AnalysisConfig holds the derivation and aggregation settings.
type AnalysisConfig struct {
	BinEdges           []int    `yaml:"bin_edges" validate:"len=3,dive,gt=0"`
	CategoryLabels     []string `yaml:"category_labels" validate:"len=4,dive,required"`
	TieLabel           string   `yaml:"tie_label" validate:"required"`
	NoVictimsLabel     string   `yaml:"no_victims_label" validate:"required"`
	Totals             string   `yaml:"totals" validate:"oneof=trust recompute"`
	TopN               int      `yaml:"top_n" validate:"gte=1,lte=100"`
	MaxMissingFraction float64  `yaml:"max_missing_fraction" validate:"gte=0,lte=1"`
	// Strict turns an incompleteness warning into a failed run.
	Strict bool `yaml:"strict"`
}

// OutputConfig defines what is written and where.
type OutputConfig struct {
	Dir           string   `yaml:"dir" validate:"required"`
	Formats       []string `yaml:"formats" validate:"min=1,dive,oneof=csv json text xlsx charts"`
	ChartWidthIn  float64  `yaml:"chart_width_in" validate:"gt=0,lte=40"`
	ChartHeightIn float64  `yaml:"chart_height_in" validate:"gt=0,lte=40"`
	BundlePDF     bool     `yaml:"bundle_pdf"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// envOverrides are read from ASSAULTSTATS_* variables. Unset variables leave
// the file configuration alone.
type envOverrides struct {
	Source    string `envconfig:"SOURCE"`
	FeedURL   string `envconfig:"FEED_URL"`
	OutputDir string `envconfig:"OUTPUT_DIR"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	Totals    string `envconfig:"TOTALS"`
	TopN      int    `envconfig:"TOP_N"`
	Strict    *bool  `envconfig:"STRICT"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	d := stats.DefaultDeriverConfig()
	return &Config{
		Source: SourceConfig{
			FeedURL:    source.DefaultFeedURL,
			TimeoutSec: 30,
		},
		Analysis: AnalysisConfig{
			BinEdges:           d.BinEdges[:],
			CategoryLabels:     d.Labels[:],
			TieLabel:           d.TieLabel,
			NoVictimsLabel:     d.NoVictimsLabel,
			Totals:             string(stats.TotalsTrust),
			TopN:               10,
			MaxMissingFraction: 0.1,
		},
		Output: OutputConfig{
			Dir:           "out",
			Formats:       append([]string(nil), AllFormats...),
			ChartWidthIn:  8,
			ChartHeightIn: 5,
			BundlePDF:     true,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path (if
// path is non-empty), then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}
	if env.Source != "" {
		c.Source.Location = env.Source
	}
	if env.FeedURL != "" {
		c.Source.FeedURL = env.FeedURL
	}
	if env.OutputDir != "" {
		c.Output.Dir = env.OutputDir
	}
	if env.LogLevel != "" {
		c.Logging.Level = strings.ToLower(env.LogLevel)
	}
	if env.Totals != "" {
		c.Analysis.Totals = env.Totals
	}
	if env.TopN != 0 {
		c.Analysis.TopN = env.TopN
	}
	if env.Strict != nil {
		c.Analysis.Strict = *env.Strict
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules the struct tags
// cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for i := 1; i < len(c.Analysis.BinEdges); i++ {
		if c.Analysis.BinEdges[i] <= c.Analysis.BinEdges[i-1] {
			return fmt.Errorf("%w: %v", ErrBinEdgesOrder, c.Analysis.BinEdges)
		}
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Timeout returns the source fetch timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Source.TimeoutSec) * time.Second
}

// HasFormat reports whether format f is enabled.
func (c *Config) HasFormat(f string) bool {
	for _, v := range c.Output.Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Options converts the analysis section into pipeline options. The config
// must have been validated.
func (c *Config) Options() stats.Options {
	d := stats.DeriverConfig{
		TieLabel:       c.Analysis.TieLabel,
		NoVictimsLabel: c.Analysis.NoVictimsLabel,
	}
	copy(d.BinEdges[:], c.Analysis.BinEdges)
	copy(d.Labels[:], c.Analysis.CategoryLabels)
	return stats.Options{
		Deriver: d,
		Totals:  stats.TotalsPolicy(c.Analysis.Totals),
		TopN:    c.Analysis.TopN,
	}
}
