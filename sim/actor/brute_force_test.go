package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdefense-sim/authdefense-sim/sim"
)

func TestBruteForcer_Cadence(t *testing.T) {
	b := NewBruteForcer("bf", "victim", "10.0.0.1", []string{"a", "b"}, 2)
	next, ok := b.NextAttemptTime(3)
	require.True(t, ok)
	assert.Equal(t, 3.5, next)
	assert.Equal(t, sim.KindAttacker, b.Kind())
}

func TestBruteForcer_BlockedDoesNotConsumeGuess(t *testing.T) {
	// GIVEN a brute forcer on its first password
	b := NewBruteForcer("bf", "victim", "10.0.0.1", []string{"a", "b"}, 1)

	// WHEN the attempt is blocked
	b.RecordResult(false, true)

	// THEN it retries the same password
	assert.Equal(t, "a", b.Credentials().Password)
	assert.Equal(t, 0, b.Guesses())
	assert.Equal(t, 1, b.BlockedCount())
	assert.False(t, b.Done())
}

func TestBruteForcer_StopsOnSuccess(t *testing.T) {
	b := NewBruteForcer("bf", "victim", "10.0.0.1", []string{"a", "b", "c"}, 1)
	b.RecordResult(false, false)
	assert.Equal(t, sim.Credentials{Username: "victim", Password: "b", SourceIP: "10.0.0.1"}, b.Credentials())

	b.RecordResult(true, false)

	assert.True(t, b.Succeeded())
	assert.True(t, b.Done())
	_, ok := b.NextAttemptTime(10)
	assert.False(t, ok)
}

func TestBruteForcer_StopsWhenExhausted(t *testing.T) {
	b := NewBruteForcer("bf", "victim", "10.0.0.1", []string{"a"}, 1)
	b.RecordResult(false, false)
	_, ok := b.NextAttemptTime(1)
	assert.False(t, ok)
	assert.False(t, b.Succeeded())
}

func TestNewBruteForcer_NonPositiveRate_Panics(t *testing.T) {
	assert.Panics(t, func() { NewBruteForcer("bf", "victim", "ip", []string{"a"}, 0) })
}

func TestNewBotnet_DistinctIPs(t *testing.T) {
	bots := NewBotnet(300, "victim", []string{"a"}, 0.1)
	require.Len(t, bots, 300)

	seen := make(map[string]bool)
	for _, b := range bots {
		ip := b.Credentials().SourceIP
		assert.False(t, seen[ip], "duplicate IP %s", ip)
		seen[ip] = true
	}
	assert.Equal(t, "bot_0", bots[0].Name())
	assert.Equal(t, "10.0.0.0", bots[0].Credentials().SourceIP)
	assert.Equal(t, "10.0.1.1", bots[257].Credentials().SourceIP)

	next, _ := bots[0].NextAttemptTime(0)
	assert.InDelta(t, 10.0, next, 1e-9)
}
