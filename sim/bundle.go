package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// DefenseBundle is the YAML file layout accepted by --defense-config.
//
//	defense:
//	  name: lockout
//	  max_failures: 3
//	  lockout_time: 300
type DefenseBundle struct {
	Defense DefenseConfig `yaml:"defense"`
}

// LoadDefenseBundle reads and parses a YAML defense configuration file.
// Unknown keys are rejected so a typo cannot silently fall back to a default.
func LoadDefenseBundle(path string) (*DefenseBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading defense config: %w", err)
	}
	var bundle DefenseBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing defense config: %w", err)
	}
	return &bundle, nil
}

// ValidDefenses is the set of recognized defense policy names.
// Shared by Validate() and the sim/defense constructor to avoid duplication.
// An empty name means "none".
var ValidDefenses = map[string]bool{
	"":              true,
	"none":          true,
	"lockout":       true,
	"rate_limit":    true,
	"rate_limit_ip": true,
	"backoff":       true,
	"hybrid":        true,
}

// IsValidDefense returns true if name is a recognized defense policy.
func IsValidDefense(name string) bool {
	return ValidDefenses[name]
}

// Validate checks the policy name and every parameter that is set.
func (c *DefenseConfig) Validate() error {
	if !IsValidDefense(c.Name) {
		return fmt.Errorf("unknown defense %q", c.Name)
	}
	if c.MaxFailures != nil && *c.MaxFailures < 1 {
		return fmt.Errorf("max_failures must be at least 1, got %d", *c.MaxFailures)
	}
	checks := []struct {
		name     string
		value    *float64
		positive bool
	}{
		{"lockout_time", c.LockoutTime, false},
		{"base_delay", c.BaseDelay, true},
		{"max_delay", c.MaxDelay, true},
		{"refill_rate", c.RefillRate, false},
		{"max_tokens", c.MaxTokens, true},
		{"ip_refill_rate", c.IPRefillRate, false},
		{"ip_max_tokens", c.IPMaxTokens, true},
		{"account_refill_rate", c.AccountRefillRate, false},
		{"account_max_tokens", c.AccountMaxTokens, true},
	}
	for _, chk := range checks {
		if chk.value == nil {
			continue
		}
		v := *chk.value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %f", chk.name, v)
		}
		if chk.positive && v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", chk.name, v)
		}
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", chk.name, v)
		}
	}
	if c.BaseDelay != nil && c.MaxDelay != nil && *c.MaxDelay < *c.BaseDelay {
		return fmt.Errorf("max_delay (%f) must not be below base_delay (%f)", *c.MaxDelay, *c.BaseDelay)
	}
	return nil
}
