package cmd

import (
	"github.com/spf13/cobra"

	"github.com/authdefense-sim/authdefense-sim/sim"
)

var (
	// CLI flags for defense selection
	defenseName       string  // Defense policy name
	defenseConfigPath string  // YAML defense config file
	maxFailures       int     // lockout: failures before locking
	lockoutTime       float64 // lockout: lock window (seconds)
	baseDelay         float64 // backoff: first delay (seconds)
	maxDelay          float64 // backoff: delay cap (seconds)
	refillRate        float64 // rate_limit, rate_limit_ip: tokens per second
	maxTokens         float64 // rate_limit, rate_limit_ip: bucket capacity
	ipRefillRate      float64 // hybrid: IP bucket tokens per second
	ipMaxTokens       float64 // hybrid: IP bucket capacity
	accountRefillRate float64 // hybrid: account bucket tokens per second
	accountMaxTokens  float64 // hybrid: account bucket capacity
)

func registerDefenseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&defenseName, "defense", "lockout", "Defense policy (none, lockout, rate_limit, rate_limit_ip, backoff, hybrid)")
	cmd.Flags().StringVar(&defenseConfigPath, "defense-config", "", "YAML file with a defense section; explicit flags override it")
	cmd.Flags().IntVar(&maxFailures, "max-failures", 5, "lockout: consecutive failures before locking")
	cmd.Flags().Float64Var(&lockoutTime, "lockout-time", 300, "lockout: lock window in seconds")
	cmd.Flags().Float64Var(&baseDelay, "base-delay", 1.0, "backoff: delay after the first failure in seconds")
	cmd.Flags().Float64Var(&maxDelay, "max-delay", 60.0, "backoff: maximum delay in seconds")
	cmd.Flags().Float64Var(&refillRate, "refill-rate", 0.5, "rate_limit/rate_limit_ip: tokens refilled per second (rate_limit_ip defaults to 1.0)")
	cmd.Flags().Float64Var(&maxTokens, "max-tokens", 3, "rate_limit/rate_limit_ip: bucket capacity (rate_limit_ip defaults to 5)")
	cmd.Flags().Float64Var(&ipRefillRate, "ip-refill-rate", 1.0, "hybrid: IP bucket tokens per second")
	cmd.Flags().Float64Var(&ipMaxTokens, "ip-max-tokens", 5, "hybrid: IP bucket capacity")
	cmd.Flags().Float64Var(&accountRefillRate, "account-refill-rate", 0.5, "hybrid: account bucket tokens per second")
	cmd.Flags().Float64Var(&accountMaxTokens, "account-max-tokens", 3, "hybrid: account bucket capacity")
}

// resolveDefenseConfig layers the YAML file (if any) under explicitly set flags.
// Only flags the user changed are applied, so unset parameters keep each
// policy's own default.
func resolveDefenseConfig(cmd *cobra.Command) (sim.DefenseConfig, error) {
	var cfg sim.DefenseConfig
	if defenseConfigPath != "" {
		bundle, err := sim.LoadDefenseBundle(defenseConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = bundle.Defense
	}

	flags := cmd.Flags()
	var override sim.DefenseConfig
	if flags.Changed("defense") || cfg.Name == "" {
		override.Name = defenseName
	}
	if flags.Changed("max-failures") {
		override.MaxFailures = &maxFailures
	}
	floatFlags := []struct {
		name string
		dst  **float64
		val  *float64
	}{
		{"lockout-time", &override.LockoutTime, &lockoutTime},
		{"base-delay", &override.BaseDelay, &baseDelay},
		{"max-delay", &override.MaxDelay, &maxDelay},
		{"refill-rate", &override.RefillRate, &refillRate},
		{"max-tokens", &override.MaxTokens, &maxTokens},
		{"ip-refill-rate", &override.IPRefillRate, &ipRefillRate},
		{"ip-max-tokens", &override.IPMaxTokens, &ipMaxTokens},
		{"account-refill-rate", &override.AccountRefillRate, &accountRefillRate},
		{"account-max-tokens", &override.AccountMaxTokens, &accountMaxTokens},
	}
	for _, f := range floatFlags {
		if flags.Changed(f.name) {
			*f.dst = f.val
		}
	}

	cfg = cfg.Merge(override)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
