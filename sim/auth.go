package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/authdefense-sim/authdefense-sim/sim/store"
	"github.com/authdefense-sim/authdefense-sim/sim/trace"
)

// Outcome is the terminal result of one login attempt.
type Outcome string

const (
	OutcomeSuccess     Outcome = trace.OutcomeSuccess
	OutcomeBadPassword Outcome = trace.OutcomeBadPassword
	OutcomeBlocked     Outcome = trace.OutcomeBlocked
)

// sessionNamespace seeds session tokens. Tokens are UUIDv5 so identical runs
// issue identical tokens.
var sessionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("authdefense-sim/session"))

// LoginResult is returned by AuthService.Login.
type LoginResult struct {
	Outcome Outcome
	Reason  string // block reason when Outcome is OutcomeBlocked
	Token   string // session token when Outcome is OutcomeSuccess
}

// Success reports whether the credentials were accepted.
func (r LoginResult) Success() bool { return r.Outcome == OutcomeSuccess }

// Blocked reports whether the defense denied the attempt before verification.
func (r LoginResult) Blocked() bool { return r.Outcome == OutcomeBlocked }

// AuthService runs the login pipeline for one simulation:
// policy check → credential verification → policy update → log.
type AuthService struct {
	clock    *Clock
	accounts store.AccountStore
	policy   DefensePolicy
	log      trace.AuthSink
}

// NewAuthService wires the pipeline. A nil log discards auth records.
func NewAuthService(clock *Clock, accounts store.AccountStore, policy DefensePolicy, log trace.AuthSink) *AuthService {
	if log == nil {
		log = trace.Discard{}
	}
	return &AuthService{clock: clock, accounts: accounts, policy: policy, log: log}
}

// Login attempts one login at the current virtual time.
// Blocked attempts never reach credential verification or policy update.
// The returned error is only ever a log sink failure.
func (a *AuthService) Login(username, password, sourceIP string) (LoginResult, error) {
	now := a.clock.Now()

	allowed, reason := a.policy.Check(username, sourceIP)
	if !allowed {
		res := LoginResult{Outcome: OutcomeBlocked, Reason: reason}
		return res, a.record(now, username, sourceIP, res)
	}

	correct, err := a.accounts.VerifyCredential(username, password)
	if err != nil {
		logrus.Errorf("verifying credentials for %q: %v; treating as bad password", username, err)
		correct = false
	}

	result := AttemptFailure
	if correct {
		result = AttemptSuccess
	}
	a.policy.Update(username, sourceIP, result)

	res := LoginResult{Outcome: OutcomeBadPassword}
	if correct {
		res = LoginResult{Outcome: OutcomeSuccess, Token: sessionToken(username, sourceIP, now)}
	}
	return res, a.record(now, username, sourceIP, res)
}

func (a *AuthService) record(now float64, username, sourceIP string, res LoginResult) error {
	logrus.Debugf("[t=%.3f] login %s from %s: %s %s", now, username, sourceIP, res.Outcome, res.Reason)
	err := a.log.RecordAuth(trace.AuthRecord{
		Timestamp: now,
		Username:  username,
		SourceIP:  sourceIP,
		Outcome:   string(res.Outcome),
		Reason:    res.Reason,
	})
	if err != nil {
		return fmt.Errorf("recording auth outcome: %w", err)
	}
	return nil
}

func sessionToken(username, sourceIP string, now float64) string {
	return uuid.NewSHA1(sessionNamespace, []byte(fmt.Sprintf("%s|%s|%s", username, sourceIP, trace.FormatTime(now)))).String()
}
