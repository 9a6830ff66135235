// Package store holds simulated user accounts and their failure-tracking state.
// It has no dependencies on sim/; defense policies and the login pipeline
// consume it through the AccountStore interface.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrAccountExists is returned by CreateAccount for a duplicate username.
var ErrAccountExists = errors.New("account already exists")

// LoginState is the per-account failure record used by lockout and backoff.
// One record exists per account from creation on; it is reset, never deleted.
type LoginState struct {
	FailedAttempts  int      `json:"failed_attempts"`
	LockedUntil     *float64 `json:"locked_until,omitempty"`
	LastFailureTime *float64 `json:"last_failure_time,omitempty"`
}

// FieldUpdate sets or clears one LoginState field.
type FieldUpdate func(*LoginState)

// SetFailedAttempts sets the consecutive failure counter.
func SetFailedAttempts(n int) FieldUpdate {
	return func(s *LoginState) { s.FailedAttempts = n }
}

// SetLockedUntil sets the end of the lock window.
func SetLockedUntil(t float64) FieldUpdate {
	return func(s *LoginState) { s.LockedUntil = &t }
}

// ClearLockedUntil removes the lock window.
func ClearLockedUntil() FieldUpdate {
	return func(s *LoginState) { s.LockedUntil = nil }
}

// SetLastFailureTime records when the most recent failure happened.
func SetLastFailureTime(t float64) FieldUpdate {
	return func(s *LoginState) { s.LastFailureTime = &t }
}

// ClearLastFailureTime forgets the most recent failure.
func ClearLastFailureTime() FieldUpdate {
	return func(s *LoginState) { s.LastFailureTime = nil }
}

// AccountStore holds hashed credentials and per-account failure state.
//
// Lookups for an unknown username are not errors: VerifyCredential returns
// false and GetFailureState returns (nil, nil). UpdateFailureState on an
// unknown username is a no-op.
type AccountStore interface {
	CreateAccount(username, password string, createdAt float64) error
	VerifyCredential(username, password string) (bool, error)
	GetFailureState(username string) (*LoginState, error)
	UpdateFailureState(username string, fields ...FieldUpdate) error
}

// HashPassword returns the hex-encoded SHA-256 digest stored for a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s LoginState) clone() *LoginState {
	out := &LoginState{FailedAttempts: s.FailedAttempts}
	if s.LockedUntil != nil {
		t := *s.LockedUntil
		out.LockedUntil = &t
	}
	if s.LastFailureTime != nil {
		t := *s.LastFailureTime
		out.LastFailureTime = &t
	}
	return out
}
