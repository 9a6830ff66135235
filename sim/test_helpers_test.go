package sim

import (
	"github.com/authdefense-sim/authdefense-sim/sim/store"
)

func intPtr(v int) *int             { return &v }
func float64Ptr(v float64) *float64 { return &v }

// scriptedAttacker tries passwords in order at a fixed interval. Blocked
// attempts retry the same password; a success ends the script.
type scriptedAttacker struct {
	name      string
	username  string
	sourceIP  string
	passwords []string
	interval  float64

	next      int
	succeeded bool
	results   []string
}

func newScriptedAttacker(name, username, sourceIP string, passwords []string, interval float64) *scriptedAttacker {
	return &scriptedAttacker{name: name, username: username, sourceIP: sourceIP, passwords: passwords, interval: interval}
}

func (a *scriptedAttacker) Name() string    { return a.name }
func (a *scriptedAttacker) Kind() ActorKind { return KindAttacker }

func (a *scriptedAttacker) NextAttemptTime(now float64) (float64, bool) {
	if a.succeeded || a.next >= len(a.passwords) {
		return 0, false
	}
	return now + a.interval, true
}

func (a *scriptedAttacker) Credentials() Credentials {
	return Credentials{Username: a.username, Password: a.passwords[a.next], SourceIP: a.sourceIP}
}

func (a *scriptedAttacker) RecordResult(success, blocked bool) {
	switch {
	case blocked:
		a.results = append(a.results, "blocked")
		return
	case success:
		a.results = append(a.results, "success")
		a.succeeded = true
	default:
		a.results = append(a.results, "failure")
	}
	a.next++
}

// fixedTimesActor fires at a fixed list of absolute times.
type fixedTimesActor struct {
	name  string
	kind  ActorKind
	creds Credentials
	times []float64
	fired int
}

func (a *fixedTimesActor) Name() string    { return a.name }
func (a *fixedTimesActor) Kind() ActorKind { return a.kind }

func (a *fixedTimesActor) NextAttemptTime(_ float64) (float64, bool) {
	if a.fired >= len(a.times) {
		return 0, false
	}
	return a.times[a.fired], true
}

func (a *fixedTimesActor) Credentials() Credentials { return a.creds }
func (a *fixedTimesActor) RecordResult(_, _ bool)   { a.fired++ }

// denyAll rejects every attempt with a fixed reason and counts calls.
type denyAll struct {
	reason  string
	checks  int
	updates int
}

func (d *denyAll) Check(_, _ string) (bool, string) {
	d.checks++
	return false, d.reason
}

func (d *denyAll) Update(_, _ string, _ AttemptResult) { d.updates++ }

// recordingPolicy admits everything and remembers Update results.
type recordingPolicy struct {
	updates []AttemptResult
}

func (r *recordingPolicy) Check(_, _ string) (bool, string) { return true, "" }

func (r *recordingPolicy) Update(_, _ string, result AttemptResult) {
	r.updates = append(r.updates, result)
}

// countingStore wraps a MemoryStore and counts credential verifications.
type countingStore struct {
	*store.MemoryStore
	verifications int
}

func (c *countingStore) VerifyCredential(username, password string) (bool, error) {
	c.verifications++
	return c.MemoryStore.VerifyCredential(username, password)
}
