package defense

import (
	"github.com/sirupsen/logrus"

	"github.com/authdefense-sim/authdefense-sim/sim"
	"github.com/authdefense-sim/authdefense-sim/sim/store"
)

// Lockout denies an account for a fixed window once its consecutive failures
// reach a threshold.
//
// The threshold is enforced inside Check: the check that observes
// failures >= maxFailures both denies and arms the lock window. Once the window
// expires the counter is still at the threshold, so the next check re-arms it;
// only a recorded success clears the counter.
type Lockout struct {
	clock       *sim.Clock
	accounts    store.AccountStore
	maxFailures int
	lockoutTime float64 // seconds
}

// NewLockout creates a Lockout policy.
func NewLockout(clock *sim.Clock, accounts store.AccountStore, maxFailures int, lockoutTime float64) *Lockout {
	return &Lockout{clock: clock, accounts: accounts, maxFailures: maxFailures, lockoutTime: lockoutTime}
}

func (l *Lockout) Check(username, _ string) (bool, string) {
	state := failureState(l.accounts, username)
	if state == nil {
		return true, ""
	}
	now := l.clock.Now()
	if state.LockedUntil != nil && now < *state.LockedUntil {
		return false, sim.ReasonLocked
	}
	if state.FailedAttempts >= l.maxFailures {
		until := now + l.lockoutTime
		if err := l.accounts.UpdateFailureState(username, store.SetLockedUntil(until)); err != nil {
			logrus.Errorf("lockout: arming lock for %q: %v", username, err)
		}
		logrus.Debugf("[t=%.3f] lockout: %q locked until %.3f after %d failures", now, username, until, state.FailedAttempts)
		return false, sim.ReasonLocked
	}
	return true, ""
}

func (l *Lockout) Update(username, _ string, result sim.AttemptResult) {
	state := failureState(l.accounts, username)
	if state == nil {
		return
	}
	var err error
	switch result {
	case sim.AttemptSuccess:
		err = l.accounts.UpdateFailureState(username,
			store.SetFailedAttempts(0), store.ClearLockedUntil(), store.ClearLastFailureTime())
	case sim.AttemptFailure:
		err = l.accounts.UpdateFailureState(username,
			store.SetFailedAttempts(state.FailedAttempts+1), store.SetLastFailureTime(l.clock.Now()))
	}
	if err != nil {
		logrus.Errorf("lockout: updating %q: %v", username, err)
	}
}

// failureState looks up an account's state. Unknown accounts, and accounts the
// store fails to read, come back nil and are admitted by the caller.
// TODO: unknown usernames bypass lockout and backoff entirely, so username
// enumeration is unthrottled under these policies; decide whether to track them.
func failureState(accounts store.AccountStore, username string) *store.LoginState {
	state, err := accounts.GetFailureState(username)
	if err != nil {
		logrus.Errorf("reading login state for %q: %v; allowing", username, err)
		return nil
	}
	return state
}
