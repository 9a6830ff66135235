package sim

import "github.com/authdefense-sim/authdefense-sim/sim/store"

// AttemptResult is the verification outcome reported to a DefensePolicy.
type AttemptResult string

const (
	AttemptSuccess AttemptResult = "success"
	AttemptFailure AttemptResult = "failure"
)

// Denial reasons returned by DefensePolicy.Check.
const (
	ReasonLocked      = "locked"
	ReasonRateLimited = "rate_limited"
	ReasonBackoff     = "backoff"
)

// DefensePolicy decides whether a login attempt reaches credential verification.
// Two-phase contract: Check runs before verification and may mutate policy state
// (token consumption, lock arming); Update runs only for attempts that Check
// admitted, after verification.
// A denial is a normal return value, never an error.
type DefensePolicy interface {
	Check(username, sourceIP string) (allowed bool, reason string)
	Update(username, sourceIP string, result AttemptResult)
}

// NewDefensePolicyFunc is set by sim/defense's init(). It constructs a fresh
// policy for one simulation run.
var NewDefensePolicyFunc func(cfg DefenseConfig, clock *Clock, accounts store.AccountStore) (DefensePolicy, error)

// NewDefensePolicy builds the policy named in cfg. Unknown names and invalid
// parameters are returned as errors before any simulated time passes.
// Panics if sim/defense has not been imported.
func NewDefensePolicy(cfg DefenseConfig, clock *Clock, accounts store.AccountStore) (DefensePolicy, error) {
	if NewDefensePolicyFunc == nil {
		panic("NewDefensePolicyFunc not registered: import sim/defense to register it")
	}
	return NewDefensePolicyFunc(cfg, clock, accounts)
}
