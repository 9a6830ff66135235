package actor

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/authdefense-sim/authdefense-sim/sim"
)

// UserBehavior parameterizes how a normal user logs in.
type UserBehavior struct {
	FirstLoginWindow float64 // first login is uniform in [0, FirstLoginWindow)
	TypoProbability  float64 // chance each attempt uses a mistyped password
	TypoSuffix       string  // appended to the password on a typo
	MaxRetries       int     // immediate retries after failures before giving up
	SuccessInterval  float64 // mean gap to the next login after a success
	SuccessJitter    float64 // next login after success is SuccessInterval ± SuccessJitter
	GiveUpDelay      float64 // wait after exhausting retries
	BlockedCooldown  float64 // wait after being blocked
}

// DefaultUserBehavior returns the behavior used by the standard population.
func DefaultUserBehavior() UserBehavior {
	return UserBehavior{
		FirstLoginWindow: 60,
		TypoProbability:  0.60,
		TypoSuffix:       "X",
		MaxRetries:       4,
		SuccessInterval:  30,
		SuccessJitter:    10,
		GiveUpDelay:      3600,
		BlockedCooldown:  60,
	}
}

// Validate rejects behaviors that would reschedule a user at or before the
// current time, or draw outside a probability.
func (b UserBehavior) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"first_login_window", b.FirstLoginWindow},
		{"typo_probability", b.TypoProbability},
		{"success_interval", b.SuccessInterval},
		{"success_jitter", b.SuccessJitter},
		{"give_up_delay", b.GiveUpDelay},
		{"blocked_cooldown", b.BlockedCooldown},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be finite, got %f", f.name, f.value)
		}
	}
	if b.FirstLoginWindow < 0 {
		return fmt.Errorf("first_login_window must be non-negative, got %f", b.FirstLoginWindow)
	}
	if b.TypoProbability < 0 || b.TypoProbability > 1 {
		return fmt.Errorf("typo_probability must be in [0, 1], got %f", b.TypoProbability)
	}
	if b.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative, got %d", b.MaxRetries)
	}
	if b.SuccessJitter < 0 {
		return fmt.Errorf("success_jitter must be non-negative, got %f", b.SuccessJitter)
	}
	if b.SuccessInterval-b.SuccessJitter <= 0 {
		return fmt.Errorf("success_interval (%f) must exceed success_jitter (%f)", b.SuccessInterval, b.SuccessJitter)
	}
	if b.GiveUpDelay <= 0 {
		return fmt.Errorf("give_up_delay must be positive, got %f", b.GiveUpDelay)
	}
	if b.BlockedCooldown <= 0 {
		return fmt.Errorf("blocked_cooldown must be positive, got %f", b.BlockedCooldown)
	}
	return nil
}

// NormalUser is a legitimate account owner who logs in periodically and
// sometimes mistypes the password.
//
// State machine on each outcome:
//   - success: next login ≈ SuccessInterval ± SuccessJitter later, retries reset
//   - bad password: retry at the same instant, up to MaxRetries, then wait GiveUpDelay
//   - blocked: wait BlockedCooldown, retries reset
type NormalUser struct {
	name     string
	username string
	password string
	sourceIP string
	behavior UserBehavior
	rng      *rand.Rand

	nextLogin    float64
	retryCount   int
	timesBlocked int
	successes    int
}

// NewNormalUser creates a NormalUser and draws its first login time from rng.
func NewNormalUser(name, username, password, sourceIP string, behavior UserBehavior, rng *rand.Rand) *NormalUser {
	u := &NormalUser{
		name:     name,
		username: username,
		password: password,
		sourceIP: sourceIP,
		behavior: behavior,
		rng:      rng,
	}
	u.nextLogin = rng.Float64() * behavior.FirstLoginWindow
	return u
}

func (u *NormalUser) Name() string        { return u.name }
func (u *NormalUser) Kind() sim.ActorKind { return sim.KindUser }

// NextAttemptTime ignores now: a user's schedule is absolute.
func (u *NormalUser) NextAttemptTime(_ float64) (float64, bool) {
	return u.nextLogin, true
}

func (u *NormalUser) Credentials() sim.Credentials {
	password := u.password
	if u.rng.Float64() < u.behavior.TypoProbability {
		password += u.behavior.TypoSuffix
	}
	return sim.Credentials{Username: u.username, Password: password, SourceIP: u.sourceIP}
}

func (u *NormalUser) RecordResult(success, blocked bool) {
	switch {
	case blocked:
		u.timesBlocked++
		u.nextLogin += u.behavior.BlockedCooldown
		u.retryCount = 0
	case success:
		u.successes++
		jitter := u.behavior.SuccessJitter
		u.nextLogin += u.behavior.SuccessInterval + (u.rng.Float64()*2*jitter - jitter)
		u.retryCount = 0
	case u.retryCount < u.behavior.MaxRetries:
		u.retryCount++
	default:
		u.nextLogin += u.behavior.GiveUpDelay
		u.retryCount = 0
	}
}

// Username returns the account this user owns.
func (u *NormalUser) Username() string { return u.username }

// Password returns the user's true password.
func (u *NormalUser) Password() string { return u.password }

// TimesBlocked returns how many of the user's attempts were denied by the defense.
func (u *NormalUser) TimesBlocked() int { return u.timesBlocked }

// Successes returns how many times the user logged in.
func (u *NormalUser) Successes() int { return u.successes }
