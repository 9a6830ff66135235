package store

import "fmt"

type account struct {
	passwordHash string
	createdAt    float64
}

// MemoryStore is an AccountStore backed by maps. Construct one per trial.
// Not thread-safe; the simulation runs on a single goroutine.
type MemoryStore struct {
	accounts map[string]account
	states   map[string]*LoginState
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]account),
		states:   make(map[string]*LoginState),
	}
}

func (m *MemoryStore) CreateAccount(username, password string, createdAt float64) error {
	if _, ok := m.accounts[username]; ok {
		return fmt.Errorf("creating %q: %w", username, ErrAccountExists)
	}
	m.accounts[username] = account{passwordHash: HashPassword(password), createdAt: createdAt}
	m.states[username] = &LoginState{}
	return nil
}

func (m *MemoryStore) VerifyCredential(username, password string) (bool, error) {
	acct, ok := m.accounts[username]
	if !ok {
		return false, nil
	}
	return acct.passwordHash == HashPassword(password), nil
}

// GetFailureState returns a copy of the account's state, or nil if untracked.
func (m *MemoryStore) GetFailureState(username string) (*LoginState, error) {
	state, ok := m.states[username]
	if !ok {
		return nil, nil
	}
	return state.clone(), nil
}

func (m *MemoryStore) UpdateFailureState(username string, fields ...FieldUpdate) error {
	state, ok := m.states[username]
	if !ok {
		return nil
	}
	for _, f := range fields {
		f(state)
	}
	return nil
}

// Len returns the number of accounts.
func (m *MemoryStore) Len() int {
	return len(m.accounts)
}
