package rules

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrRulePackNotFound is returned when the rule pack file does not exist.
var ErrRulePackNotFound = errors.New("rule pack file not found")

// Settings configures the built-in rule set.
// It is the declarative counterpart of the script-loading mechanism
// the original rule files were distributed with: instead of loading
// rule code at runtime, deployments tune and disable the compiled-in
// rules through a YAML rule pack.
type Settings struct {
	// Disabled lists rule names to leave out of the default set.
	Disabled []string `yaml:"disabled,omitempty"`

	// Thresholds carries per-rule numeric overrides keyed by rule
	// name; each rule documents the keys it understands.
	Thresholds map[string]map[string]float64 `yaml:"thresholds,omitempty"`
}

// DefaultSettings returns settings with no rules disabled and no
// threshold overrides.
func DefaultSettings() Settings {
	return Settings{
		Thresholds: make(map[string]map[string]float64),
	}
}

// LoadSettings reads a rule pack file.
// Returns ErrRulePackNotFound when the file does not exist, so callers
// can distinguish "no pack configured" from a broken pack.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided pack path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, ErrRulePackNotFound
		}
		return Settings{}, fmt.Errorf("failed to read rule pack: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse rule pack: %w", err)
	}
	if s.Thresholds == nil {
		s.Thresholds = make(map[string]map[string]float64)
	}
	return s, nil
}

// IsDisabled reports whether a rule name is disabled by the pack.
func (s Settings) IsDisabled(name string) bool {
	for _, d := range s.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// Threshold returns the override for a rule's threshold key, or the
// fallback when the pack does not set one.
func (s Settings) Threshold(rule, key string, fallback float64) float64 {
	if overrides, ok := s.Thresholds[rule]; ok {
		if v, ok := overrides[key]; ok {
			return v
		}
	}
	return fallback
}
