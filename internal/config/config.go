package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level transfermatch.yaml configuration.
type Config struct {
	User       UserConfig     `yaml:"user"`
	Matching   MatchingConfig `yaml:"matching"`
	Accounts   []Account      `yaml:"accounts,omitempty"`
	Categories []CategoryRule `yaml:"categories,omitempty"`
}

// UserConfig identifies the statement owner. Name variants are prioritized
// during person-name matching, since transfers between the user's own
// accounts name the user on both sides.
type UserConfig struct {
	Names []string `yaml:"names"`
}

// MatchingConfig controls the transfer reconciliation engine.
type MatchingConfig struct {
	// DateToleranceHours is the maximum gap between the two sides of a
	// transfer, covering settlement delays.
	DateToleranceHours int `yaml:"date_tolerance_hours"`
	// ConfidenceThreshold is the minimum confidence for auto-confirmation.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// TieMargin is the confidence gap under which two candidates for the
	// same transaction count as tied and are reported as a conflict.
	TieMargin float64 `yaml:"tie_margin"`
	// MinConfidence is the discard floor: pairs scoring below it are not
	// surfaced at all, not even as potential matches.
	MinConfidence float64 `yaml:"min_confidence"`
	// DefaultPairCategory is the category override applied to both sides
	// of a confirmed transfer.
	DefaultPairCategory string `yaml:"default_pair_category"`
}

// Account maps a statement file to a display name and bank idiom.
type Account struct {
	Name        string `yaml:"name"`
	FilePattern string `yaml:"file_pattern"`
	Format      string `yaml:"format"`
	Idiom       string `yaml:"idiom"`
}

// CategoryRule assigns a category when a description contains a keyword.
// Rules are evaluated in order; the first hit wins. Transfer overrides from
// the reconciliation engine always take precedence over these rules.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Load reads a transfermatch.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
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
func Default(userName string) *Config {
	cfg := &Config{}
	if userName != "" {
		cfg.User.Names = []string{userName}
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero-valued matching knobs so a sparse YAML file
// still yields a usable configuration.
func (c *Config) applyDefaults() {
	if c.Matching.DateToleranceHours == 0 {
		c.Matching.DateToleranceHours = 72
	}
	if c.Matching.ConfidenceThreshold == 0 {
		c.Matching.ConfidenceThreshold = 0.70
	}
	if c.Matching.TieMargin == 0 {
		c.Matching.TieMargin = 0.05
	}
	if c.Matching.MinConfidence == 0 {
		c.Matching.MinConfidence = 0.50
	}
	if c.Matching.DefaultPairCategory == "" {
		c.Matching.DefaultPairCategory = "Balance Correction"
	}
}
