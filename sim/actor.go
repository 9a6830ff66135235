package sim

// ActorKind is the declared category of an actor. It is carried on every
// event and outcome record; the simulator never inspects actor internals.
type ActorKind string

const (
	KindAttacker ActorKind = "attacker"
	KindUser     ActorKind = "user"
)

// Credentials is one login attempt's identity and source.
type Credentials struct {
	Username string
	Password string
	SourceIP string
}

// Actor produces login attempts over virtual time.
// Implementations live in sim/actor/. Each actor is owned by exactly one
// Simulator and must not share mutable state with other actors.
type Actor interface {
	// Name identifies the actor in outcome logs (e.g. "brute_force", "normal_user_3").
	Name() string

	// Kind reports whether the actor is an attacker or a normal user.
	Kind() ActorKind

	// NextAttemptTime returns the actor's next desired fire time given the
	// current virtual time. ok=false means the actor is done.
	NextAttemptTime(now float64) (t float64, ok bool)

	// Credentials returns the credentials for the attempt about to be made.
	// It may consume randomness (e.g. a normal user's typo roll).
	Credentials() Credentials

	// RecordResult feeds the pipeline outcome back into the actor.
	// blocked=true means the defense denied the attempt before verification.
	RecordResult(success, blocked bool)
}
