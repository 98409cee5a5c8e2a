package scenario

import (
	"fmt"
	"os"

	"github.com/zoobzio/replica"
	"gopkg.in/yaml.v3"
)

// Config selects scenarios and tunes the suite.
type Config struct {
	// Scenarios lists scenario names or indexes; empty runs all.
	Scenarios []string `yaml:"scenarios"`

	// MaxDepth bounds clone recursion; zero leaves it unbounded.
	MaxDepth int `yaml:"max_depth"`

	Performance PerformanceConfig `yaml:"performance"`
}

// PerformanceConfig is the tree depth range of the performance scenario.
type PerformanceConfig struct {
	MinDepth int `yaml:"min_depth"`
	MaxDepth int `yaml:"max_depth"`
}

// LoadConfig loads and parses a YAML config file from the given path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML data into a Config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Performance.MinDepth == 0 {
		cfg.Performance.MinDepth = 10
	}
	if cfg.Performance.MaxDepth == 0 {
		cfg.Performance.MaxDepth = 20
	}
}

// Validate checks ranges and scenario selectors.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Performance.MinDepth < 1 || c.Performance.MinDepth > c.Performance.MaxDepth {
		return fmt.Errorf("performance depth range [%d, %d] is invalid",
			c.Performance.MinDepth, c.Performance.MaxDepth)
	}
	if _, err := Select(c.Scenarios); err != nil {
		return err
	}
	return nil
}

// Suite builds a Suite from the config.
func (c *Config) Suite() *Suite {
	s := NewSuite()
	s.MinDepth = c.Performance.MinDepth
	s.MaxDepth = c.Performance.MaxDepth
	if c.MaxDepth > 0 {
		s.Options = append(s.Options, replica.WithMaxDepth(c.MaxDepth))
	}
	return s
}
