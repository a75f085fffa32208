package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to any setting the config file omits.
const (
	DefaultTopK             = 3
	DefaultAdvisoryEndpoint = "http://localhost:11434"
	DefaultAdvisoryModel    = "llama3.2:3b"
	DefaultAdvisoryTimeout  = 180 * time.Second
	DefaultTriggerScore     = 0.3
	DefaultWorkers          = 4
)

// Config holds all runtime configuration for a claimctl run.
type Config struct {
	DSN         string
	ConfigPath  string
	LogFormat   string // "text" or "json"
	LogLevel    string
	Workers     int
	MetricsFile string
	Output      string // "json" or "text"

	Reference ReferenceConfig `yaml:"reference"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Advisory  AdvisoryConfig  `yaml:"advisory"`
}

// ReferenceConfig locates the read-only reference data loaded at startup.
// History may be a .json, .yaml or .parquet file; it is ignored when a DSN is set.
type ReferenceConfig struct {
	Members       string `yaml:"members"`
	CoverageRules string `yaml:"coverage_rules"`
	FraudRules    string `yaml:"fraud_rules"`
	History       string `yaml:"history"`
	Policies      string `yaml:"policies"`
}

type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// AdvisoryConfig configures the optional language-model collaborator.
type AdvisoryConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	Timeout      time.Duration `yaml:"timeout"`
	TriggerScore float64       `yaml:"trigger_score"`
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Reference ReferenceConfig `yaml:"reference"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Advisory  AdvisoryConfig  `yaml:"advisory"`
}

// Default returns a Config with reference data under data/ and every
// numeric setting at its default.
func Default() Config {
	c := Config{
		LogFormat: "text",
		LogLevel:  "info",
		Workers:   DefaultWorkers,
		Output:    "json",
		Reference: ReferenceConfig{
			Members:       "data/members.json",
			CoverageRules: "data/coverage_rules.json",
			FraudRules:    "data/fraud_rules.json",
			History:       "data/claims_history.json",
			Policies:      "data/policies",
		},
	}
	c.ApplyDefaults()
	return c
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Reference paths present in the file replace the current ones; omitted
// settings keep their defaults.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	mergePath(&c.Reference.Members, yc.Reference.Members)
	mergePath(&c.Reference.CoverageRules, yc.Reference.CoverageRules)
	mergePath(&c.Reference.FraudRules, yc.Reference.FraudRules)
	mergePath(&c.Reference.History, yc.Reference.History)
	mergePath(&c.Reference.Policies, yc.Reference.Policies)

	if yc.Retrieval.TopK != 0 {
		c.Retrieval.TopK = yc.Retrieval.TopK
	}
	c.Advisory.Enabled = yc.Advisory.Enabled
	mergePath(&c.Advisory.Endpoint, yc.Advisory.Endpoint)
	mergePath(&c.Advisory.Model, yc.Advisory.Model)
	if yc.Advisory.Timeout != 0 {
		c.Advisory.Timeout = yc.Advisory.Timeout
	}
	if yc.Advisory.TriggerScore != 0 {
		c.Advisory.TriggerScore = yc.Advisory.TriggerScore
	}

	c.ApplyDefaults()
	return c.Validate()
}

func mergePath(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ApplyDefaults fills zero-valued numeric and advisory settings.
func (c *Config) ApplyDefaults() {
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = DefaultTopK
	}
	if c.Advisory.Endpoint == "" {
		c.Advisory.Endpoint = DefaultAdvisoryEndpoint
	}
	if c.Advisory.Model == "" {
		c.Advisory.Model = DefaultAdvisoryModel
	}
	if c.Advisory.Timeout == 0 {
		c.Advisory.Timeout = DefaultAdvisoryTimeout
	}
	if c.Advisory.TriggerScore == 0 {
		c.Advisory.TriggerScore = DefaultTriggerScore
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
}

// Validate checks settings and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Advisory.Timeout < 0 {
		return fmt.Errorf("advisory.timeout must not be negative, got %s", c.Advisory.Timeout)
	}
	if c.Advisory.TriggerScore < 0 || c.Advisory.TriggerScore > 1 {
		return fmt.Errorf("advisory.trigger_score must be within [0,1], got %v", c.Advisory.TriggerScore)
	}
	if c.Advisory.Enabled && c.Advisory.Endpoint == "" {
		return fmt.Errorf("advisory.endpoint is required when advisory is enabled")
	}
	if c.Workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", c.Workers)
	}
	switch c.Output {
	case "", "json", "text":
	default:
		return fmt.Errorf("--format must be json or text, got %q", c.Output)
	}
	return nil
}

// ValidateWithDSN checks the settings and that a DSN is present.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or CLAIMS_DB_URL is required")
	}
	return nil
}
