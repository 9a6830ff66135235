package defense

import (
	"github.com/authdefense-sim/authdefense-sim/sim"
)

// KeyFunc picks the identity a TokenBucket is keyed on.
type KeyFunc func(username, sourceIP string) string

// ByAccount keys buckets on the target username.
func ByAccount(username, _ string) string { return username }

// BySourceIP keys buckets on the attempt's source address.
func BySourceIP(_, sourceIP string) string { return sourceIP }

type bucket struct {
	tokens     float64
	lastRefill float64
}

// TokenBucket rate-limits attempts per key with a continuously refilling,
// capped balance. Buckets are created full on first reference to a key.
//
// Update charges the bucket the same way Check does, so an admitted attempt
// costs one token at admission and one more once its outcome is recorded.
type TokenBucket struct {
	clock      *sim.Clock
	key        KeyFunc
	refillRate float64 // tokens per second
	maxTokens  float64
	buckets    map[string]*bucket
}

// NewTokenBucket creates a TokenBucket with the given key, refill rate, and capacity.
func NewTokenBucket(clock *sim.Clock, key KeyFunc, refillRate, maxTokens float64) *TokenBucket {
	return &TokenBucket{
		clock:      clock,
		key:        key,
		refillRate: refillRate,
		maxTokens:  maxTokens,
		buckets:    make(map[string]*bucket),
	}
}

func (tb *TokenBucket) Check(username, sourceIP string) (bool, string) {
	return tb.take(tb.key(username, sourceIP))
}

func (tb *TokenBucket) Update(username, sourceIP string, _ sim.AttemptResult) {
	tb.take(tb.key(username, sourceIP))
}

// Tokens returns the balance stored for key as of its last refill.
func (tb *TokenBucket) Tokens(key string) (float64, bool) {
	b, ok := tb.buckets[key]
	if !ok {
		return 0, false
	}
	return b.tokens, true
}

// take refills key's bucket to the current time and consumes one token if available.
func (tb *TokenBucket) take(key string) (bool, string) {
	now := tb.clock.Now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.maxTokens, lastRefill: now}
		tb.buckets[key] = b
	}

	elapsed := now - b.lastRefill
	b.tokens = min(tb.maxTokens, b.tokens+elapsed*tb.refillRate)
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, ""
	}
	return false, sim.ReasonRateLimited
}
