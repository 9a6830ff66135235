package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	usersBucket      = []byte("users")
	loginStateBucket = []byte("login_state")
)

type userRecord struct {
	PasswordHash string  `json:"password_hash"`
	CreatedAt    float64 `json:"created_at"`
}

// BoltStore is an AccountStore persisted in a bbolt file, so a trial's final
// account state can be inspected after the run.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database at path and ensures its buckets exist.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening account store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{usersBucket, loginStateBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close releases the database file.
func (b *BoltStore) Close() error {
	return b.db.Close()
}

func (b *BoltStore) CreateAccount(username, password string, createdAt float64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(usersBucket)
		key := []byte(username)
		if users.Get(key) != nil {
			return fmt.Errorf("creating %q: %w", username, ErrAccountExists)
		}
		user, err := json.Marshal(userRecord{PasswordHash: HashPassword(password), CreatedAt: createdAt})
		if err != nil {
			return err
		}
		if err := users.Put(key, user); err != nil {
			return err
		}
		state, err := json.Marshal(LoginState{})
		if err != nil {
			return err
		}
		return tx.Bucket(loginStateBucket).Put(key, state)
	})
}

func (b *BoltStore) VerifyCredential(username, password string) (bool, error) {
	var ok bool
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(usersBucket).Get([]byte(username))
		if data == nil {
			return nil
		}
		var user userRecord
		if err := json.Unmarshal(data, &user); err != nil {
			return fmt.Errorf("decoding user %q: %w", username, err)
		}
		ok = user.PasswordHash == HashPassword(password)
		return nil
	})
	return ok, err
}

func (b *BoltStore) GetFailureState(username string) (*LoginState, error) {
	var state *LoginState
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(loginStateBucket).Get([]byte(username))
		if data == nil {
			return nil
		}
		state = &LoginState{}
		if err := json.Unmarshal(data, state); err != nil {
			return fmt.Errorf("decoding login state %q: %w", username, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (b *BoltStore) UpdateFailureState(username string, fields ...FieldUpdate) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(loginStateBucket)
		key := []byte(username)
		data := bucket.Get(key)
		if data == nil {
			return nil
		}
		var state LoginState
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("decoding login state %q: %w", username, err)
		}
		for _, f := range fields {
			f(&state)
		}
		out, err := json.Marshal(state)
		if err != nil {
			return err
		}
		return bucket.Put(key, out)
	})
}
