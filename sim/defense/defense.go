// Package defense implements the brute-force defense policies.
//
// Every policy is constructed fresh per simulation run and exclusively owns its
// state (bucket maps) for that run; account-scoped state (failure counters,
// lock windows) lives in the run's store.AccountStore.
package defense

import (
	"fmt"

	"github.com/authdefense-sim/authdefense-sim/sim"
	"github.com/authdefense-sim/authdefense-sim/sim/store"
)

// Defaults applied when a DefenseConfig field is unset.
const (
	DefaultMaxFailures = 5
	DefaultLockoutTime = 300.0

	DefaultBaseDelay = 1.0
	DefaultMaxDelay  = 60.0

	DefaultAccountRefillRate = 0.5
	DefaultAccountMaxTokens  = 3.0
	DefaultIPRefillRate      = 1.0
	DefaultIPMaxTokens       = 5.0
)

// New creates a defense policy by name for one simulation run.
// Valid names are defined in sim.ValidDefenses (sim/bundle.go).
// An empty name defaults to AllowAll.
// Returns an error on unrecognized names or invalid parameters.
func New(cfg sim.DefenseConfig, clock *sim.Clock, accounts store.AccountStore) (sim.DefensePolicy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("defense config: %w", err)
	}
	switch cfg.Name {
	case "", "none":
		return &AllowAll{}, nil
	case "lockout":
		return NewLockout(clock, accounts,
			intOr(cfg.MaxFailures, DefaultMaxFailures),
			floatOr(cfg.LockoutTime, DefaultLockoutTime)), nil
	case "backoff":
		base := floatOr(cfg.BaseDelay, DefaultBaseDelay)
		maxDelay := floatOr(cfg.MaxDelay, DefaultMaxDelay)
		if maxDelay < base {
			return nil, fmt.Errorf("defense config: max_delay (%f) must not be below base_delay (%f)", maxDelay, base)
		}
		return NewBackoff(clock, accounts, base, maxDelay), nil
	case "rate_limit":
		return NewTokenBucket(clock, ByAccount,
			floatOr(cfg.RefillRate, DefaultAccountRefillRate),
			floatOr(cfg.MaxTokens, DefaultAccountMaxTokens)), nil
	case "rate_limit_ip":
		return NewTokenBucket(clock, BySourceIP,
			floatOr(cfg.RefillRate, DefaultIPRefillRate),
			floatOr(cfg.MaxTokens, DefaultIPMaxTokens)), nil
	case "hybrid":
		return NewHybrid(
			NewTokenBucket(clock, BySourceIP,
				floatOr(cfg.IPRefillRate, DefaultIPRefillRate),
				floatOr(cfg.IPMaxTokens, DefaultIPMaxTokens)),
			NewTokenBucket(clock, ByAccount,
				floatOr(cfg.AccountRefillRate, DefaultAccountRefillRate),
				floatOr(cfg.AccountMaxTokens, DefaultAccountMaxTokens)),
		), nil
	default:
		return nil, fmt.Errorf("unhandled defense %q", cfg.Name)
	}
}

// AllowAll admits every attempt. Used as the undefended baseline.
type AllowAll struct{}

func (a *AllowAll) Check(_, _ string) (bool, string) {
	return true, ""
}

func (a *AllowAll) Update(_, _ string, _ sim.AttemptResult) {}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
