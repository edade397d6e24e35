package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"junksweep/internal/rules"
)

type MetricsCfg struct {
	Port int `yaml:"port" json:"port"`
}

type LoggingCfg struct {
	Dir          string `yaml:"dir" json:"dir"`
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"`
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"`
}

type HistoryCfg struct {
	DatabasePath string `yaml:"database_path" json:"database_path"`
}

type Config struct {
	// Roots to scan. Empty means: enumerate mounted volumes at runtime.
	Roots []string `yaml:"roots" json:"roots"`

	// MaxDepth bounds recursion below each root.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`

	// ProtectedDirectories are added to the safety checker's built-in
	// protected-prefix set for this process only.
	ProtectedDirectories []string `yaml:"protected_directories" json:"protected_directories"`

	// Rules replaces the built-in category table when non-empty.
	Rules []rules.Rule `yaml:"rules" json:"rules"`

	Metrics        MetricsCfg     `yaml:"metrics" json:"metrics"`
	Logging        LoggingCfg     `yaml:"logging" json:"logging"`
	ResourceLimits ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
	History        HistoryCfg     `yaml:"history" json:"history"`
}

var (
	errInvalidRoot     = errors.New("root must be an absolute path")
	errNegativeDepth   = errors.New("max_depth cannot be negative")
	errUnnamedRule     = errors.New("rule must have a name")
	errNegativeRuleAge = errors.New("rule min_age_days cannot be negative")
)

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.MaxDepth < 0 {
		return errNegativeDepth
	}
	c.applyDefaults()

	cleaned := make([]string, 0, len(c.Roots))
	for _, r := range c.Roots {
		cr, err := cleanAbsolute(r)
		if err != nil {
			return err
		}
		cleaned = append(cleaned, cr)
	}
	c.Roots = cleaned

	for i := range c.Rules {
		if c.Rules[i].Name == "" {
			return errUnnamedRule
		}
		if c.Rules[i].MinAgeDays < 0 {
			return fmt.Errorf("rule %s: %w", c.Rules[i].Name, errNegativeRuleAge)
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.MaxDepth == 0 {
		c.MaxDepth = 10
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = 9877
	}
	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30
	}
	if c.ResourceLimits.MaxCPUPercent < 0 {
		c.ResourceLimits.MaxCPUPercent = 0
	}
}

// RuleTable returns the configured category table, or the built-in default.
func (c *Config) RuleTable() []rules.Rule {
	if len(c.Rules) > 0 {
		return c.Rules
	}
	return rules.DefaultRules()
}

func (c *Config) MetricsAddress() string {
	return fmt.Sprintf(":%d", c.Metrics.Port)
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidRoot
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidRoot, p)
	}
	return cp, nil
}
