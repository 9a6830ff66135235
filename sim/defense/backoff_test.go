package defense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdefense-sim/authdefense-sim/sim"
)

func TestBackoff_Delay_DoublesAndCaps(t *testing.T) {
	b := NewBackoff(sim.NewClock(), nil, 1, 4)
	tests := []struct {
		failures int
		want     float64
	}{
		{1, 1}, {2, 2}, {3, 4}, {4, 4}, {20, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Delay(tt.failures), "failures=%d", tt.failures)
	}
}

func TestBackoff_WindowGrowsWithConsecutiveFailures(t *testing.T) {
	// GIVEN backoff with base 1, max 60
	clock := sim.NewClock()
	accounts := newAccounts(t)
	b := NewBackoff(clock, accounts, 1, 60)

	// WHEN each failure is followed by a retry at the earliest admitted time
	start := 0.0
	for _, delay := range []float64{1, 2, 4, 8} {
		at(t, clock, start)
		fail(t, b, "alice")

		// THEN just inside the window the attempt is denied
		at(t, clock, start+delay-0.01)
		ok, reason := b.Check("alice", "1.2.3.4")
		assert.False(t, ok, "delay %v", delay)
		assert.Equal(t, sim.ReasonBackoff, reason)

		// AND exactly at the window end it is admitted (strict inequality)
		start += delay
		at(t, clock, start)
		ok, _ = b.Check("alice", "1.2.3.4")
		assert.True(t, ok, "delay %v", delay)
	}

	state, err := accounts.GetFailureState("alice")
	require.NoError(t, err)
	assert.Equal(t, 4, state.FailedAttempts)
}

func TestBackoff_SuccessResets(t *testing.T) {
	clock := sim.NewClock()
	accounts := newAccounts(t)
	b := NewBackoff(clock, accounts, 1, 60)

	fail(t, b, "alice")
	at(t, clock, 1)
	fail(t, b, "alice") // window until 3
	at(t, clock, 3)
	ok, _ := b.Check("alice", "1.2.3.4")
	require.True(t, ok)
	b.Update("alice", "1.2.3.4", sim.AttemptSuccess)

	state, err := accounts.GetFailureState("alice")
	require.NoError(t, err)
	assert.Equal(t, 0, state.FailedAttempts)
	assert.Nil(t, state.LockedUntil)

	// the next failure starts from the base delay again
	fail(t, b, "alice")
	state, err = accounts.GetFailureState("alice")
	require.NoError(t, err)
	assert.Equal(t, 4.0, *state.LockedUntil)
}

func TestBackoff_UnknownAccount_Allowed(t *testing.T) {
	b := NewBackoff(sim.NewClock(), newAccounts(t), 1, 60)
	fail(t, b, "nobody")
	ok, _ := b.Check("nobody", "1.2.3.4")
	assert.True(t, ok)
}
