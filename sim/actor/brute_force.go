// Package actor implements the attackers and legitimate users that drive a simulation.
package actor

import (
	"fmt"

	"github.com/authdefense-sim/authdefense-sim/sim"
)

// BruteForcer guesses passwords for one account from one source IP at a fixed
// cadence. It stops once a guess succeeds or the list is exhausted.
// Blocked attempts do not consume a guess; the same password is retried next time.
type BruteForcer struct {
	name             string
	target           string
	sourceIP         string
	passwords        []string
	guessesPerSecond float64

	next         int // index of the password to try next
	succeeded    bool
	blockedCount int
}

// NewBruteForcer creates a BruteForcer. guessesPerSecond must be positive.
func NewBruteForcer(name, target, sourceIP string, passwords []string, guessesPerSecond float64) *BruteForcer {
	if guessesPerSecond <= 0 {
		panic(fmt.Sprintf("NewBruteForcer(%s): guessesPerSecond must be positive, got %v", name, guessesPerSecond))
	}
	return &BruteForcer{
		name:             name,
		target:           target,
		sourceIP:         sourceIP,
		passwords:        passwords,
		guessesPerSecond: guessesPerSecond,
	}
}

func (b *BruteForcer) Name() string        { return b.name }
func (b *BruteForcer) Kind() sim.ActorKind { return sim.KindAttacker }

func (b *BruteForcer) NextAttemptTime(now float64) (float64, bool) {
	if b.Done() {
		return 0, false
	}
	return now + 1/b.guessesPerSecond, true
}

func (b *BruteForcer) Credentials() sim.Credentials {
	return sim.Credentials{Username: b.target, Password: b.passwords[b.next], SourceIP: b.sourceIP}
}

func (b *BruteForcer) RecordResult(success, blocked bool) {
	if blocked {
		b.blockedCount++
		return
	}
	if success {
		b.succeeded = true
	}
	b.next++
}

// Done reports whether the attacker has stopped.
func (b *BruteForcer) Done() bool {
	return b.succeeded || b.next >= len(b.passwords)
}

// Succeeded reports whether a guess was accepted.
func (b *BruteForcer) Succeeded() bool { return b.succeeded }

// Guesses returns how many passwords have been consumed.
func (b *BruteForcer) Guesses() int { return b.next }

// BlockedCount returns how many attempts the defense denied.
func (b *BruteForcer) BlockedCount() int { return b.blockedCount }

// NewBotnet creates n low-rate brute forcers against the same target, one per
// source IP (10.0.<i/256>.<i%256>), each limited to passwords.
func NewBotnet(n int, target string, passwords []string, guessesPerSecond float64) []*BruteForcer {
	bots := make([]*BruteForcer, 0, n)
	for i := 0; i < n; i++ {
		bots = append(bots, NewBruteForcer(
			fmt.Sprintf("bot_%d", i),
			target,
			fmt.Sprintf("10.0.%d.%d", i/256, i%256),
			passwords,
			guessesPerSecond,
		))
	}
	return bots
}
