package actor

import (
	"fmt"
	"math/rand"

	"github.com/authdefense-sim/authdefense-sim/sim"
)

// CredentialPair is one leaked (username, password) guess.
type CredentialPair struct {
	Username string
	Password string
}

// LeakModel describes the breach a credential stuffer draws from.
type LeakModel struct {
	NumUsers        int      // accounts user0..user<N-1> are targeted
	LeakProbability float64  // chance a targeted account's true password is in the leak
	GuessPasswords  []string // wrong guesses used when the true password did not leak
	Target          string   // primary target, attacked directly after the user sweep
	TargetPassword  string   // leaked true password of the primary target, tried last
}

// BuildLeakedPairs draws the credential list: one pair per user account, then
// every guess password against the target, then the target's leaked password.
// With no GuessPasswords, users whose password did not leak are left out.
func BuildLeakedPairs(rng *rand.Rand, m LeakModel) []CredentialPair {
	pairs := make([]CredentialPair, 0, m.NumUsers+len(m.GuessPasswords)+1)
	for i := 0; i < m.NumUsers; i++ {
		username, password := UserCredentials(i)
		if rng.Float64() >= m.LeakProbability {
			if len(m.GuessPasswords) == 0 {
				continue
			}
			password = m.GuessPasswords[rng.Intn(len(m.GuessPasswords))]
		}
		pairs = append(pairs, CredentialPair{Username: username, Password: password})
	}
	for _, pw := range m.GuessPasswords {
		pairs = append(pairs, CredentialPair{Username: m.Target, Password: pw})
	}
	pairs = append(pairs, CredentialPair{Username: m.Target, Password: m.TargetPassword})
	return pairs
}

// CredentialStuffer replays a leaked credential list, one pair per attempt,
// from a fresh synthetic source IP each time. It keeps going after a success
// and stops only when the list is exhausted. Blocked attempts retry the same pair.
type CredentialStuffer struct {
	name             string
	pairs            []CredentialPair
	guessesPerSecond float64

	next         int
	successes    int
	blockedCount int
}

// NewCredentialStuffer creates a CredentialStuffer. guessesPerSecond must be positive.
func NewCredentialStuffer(name string, pairs []CredentialPair, guessesPerSecond float64) *CredentialStuffer {
	if guessesPerSecond <= 0 {
		panic(fmt.Sprintf("NewCredentialStuffer(%s): guessesPerSecond must be positive, got %v", name, guessesPerSecond))
	}
	return &CredentialStuffer{name: name, pairs: pairs, guessesPerSecond: guessesPerSecond}
}

func (c *CredentialStuffer) Name() string        { return c.name }
func (c *CredentialStuffer) Kind() sim.ActorKind { return sim.KindAttacker }

func (c *CredentialStuffer) NextAttemptTime(now float64) (float64, bool) {
	if c.next >= len(c.pairs) {
		return 0, false
	}
	return now + 1/c.guessesPerSecond, true
}

func (c *CredentialStuffer) Credentials() sim.Credentials {
	p := c.pairs[c.next]
	return sim.Credentials{
		Username: p.Username,
		Password: p.Password,
		SourceIP: fmt.Sprintf("10.1.%d.%d", c.next/256, c.next%256),
	}
}

func (c *CredentialStuffer) RecordResult(success, blocked bool) {
	if blocked {
		c.blockedCount++
		return
	}
	if success {
		c.successes++
	}
	c.next++
}

// Successes returns how many pairs were accepted.
func (c *CredentialStuffer) Successes() int { return c.successes }

// BlockedCount returns how many attempts the defense denied.
func (c *CredentialStuffer) BlockedCount() int { return c.blockedCount }

// Remaining returns how many pairs have not yet been consumed.
func (c *CredentialStuffer) Remaining() int { return len(c.pairs) - c.next }
