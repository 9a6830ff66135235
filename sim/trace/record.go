// Package trace records login outcomes for post-run analysis.
// It has no dependencies on sim/ and stores pure data types.
package trace

// Outcome values as written to the logs.
const (
	OutcomeSuccess     = "success"
	OutcomeBadPassword = "bad_password"
	OutcomeBlocked     = "blocked"
)

// Actor kinds as written to the logs.
const (
	KindAttacker = "attacker"
	KindUser     = "user"
)

// OutcomeRecord captures one processed event: who attempted, against which
// account, from where, and what the pipeline decided.
type OutcomeRecord struct {
	Timestamp float64
	ActorName string
	ActorKind string
	Username  string
	SourceIP  string
	Outcome   string
	Reason    string // block reason; empty otherwise
}

// AuthRecord captures one login pipeline invocation as seen by the auth service.
type AuthRecord struct {
	Timestamp float64
	Username  string
	SourceIP  string
	Outcome   string
	Reason    string
}
