package defense

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/authdefense-sim/authdefense-sim/sim"
	"github.com/authdefense-sim/authdefense-sim/sim/store"
)

// Backoff imposes a delay window after each failure that doubles with every
// consecutive failure, capped at maxDelay. There is no hard lockout.
type Backoff struct {
	clock     *sim.Clock
	accounts  store.AccountStore
	baseDelay float64
	maxDelay  float64
}

// NewBackoff creates a Backoff policy.
func NewBackoff(clock *sim.Clock, accounts store.AccountStore, baseDelay, maxDelay float64) *Backoff {
	return &Backoff{clock: clock, accounts: accounts, baseDelay: baseDelay, maxDelay: maxDelay}
}

// Delay returns the window length after the given number of consecutive failures (≥1).
func (b *Backoff) Delay(failures int) float64 {
	return math.Min(b.maxDelay, b.baseDelay*math.Pow(2, float64(failures-1)))
}

func (b *Backoff) Check(username, _ string) (bool, string) {
	state := failureState(b.accounts, username)
	if state == nil {
		return true, ""
	}
	if state.LockedUntil != nil && b.clock.Now() < *state.LockedUntil {
		return false, sim.ReasonBackoff
	}
	return true, ""
}

func (b *Backoff) Update(username, _ string, result sim.AttemptResult) {
	state := failureState(b.accounts, username)
	if state == nil {
		return
	}
	now := b.clock.Now()
	var err error
	switch result {
	case sim.AttemptSuccess:
		err = b.accounts.UpdateFailureState(username,
			store.SetFailedAttempts(0), store.ClearLockedUntil(), store.ClearLastFailureTime())
	case sim.AttemptFailure:
		failures := state.FailedAttempts + 1
		until := now + b.Delay(failures)
		logrus.Debugf("[t=%.3f] backoff: %q failure %d, window until %.3f", now, username, failures, until)
		err = b.accounts.UpdateFailureState(username,
			store.SetFailedAttempts(failures), store.SetLockedUntil(until), store.SetLastFailureTime(now))
	}
	if err != nil {
		logrus.Errorf("backoff: updating %q: %v", username, err)
	}
}
