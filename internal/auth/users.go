// Package auth holds the credential store and the rotating token keyring
// behind the API's login and bearer-token endpoints.
package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for unknown users and wrong passwords
// alike, so responses do not reveal which usernames exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore verifies passwords against a bcrypt credential file: a JSON
// object mapping usernames to bcrypt hashes.
type UserStore struct {
	hashes map[string]string
}

// LoadUserStore reads the credential file.
func LoadUserStore(path string) (*UserStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read user store: %w", err)
	}
	var hashes map[string]string
	if err := json.Unmarshal(data, &hashes); err != nil {
		return nil, fmt.Errorf("parse user store %s: %w", path, err)
	}
	return &UserStore{hashes: hashes}, nil
}

// NewUserStore builds a store over an in-memory hash table.
func NewUserStore(hashes map[string]string) *UserStore {
	return &UserStore{hashes: hashes}
}

// Authenticate checks a username/password pair. A bcrypt comparison runs
// even for unknown users to keep response timing uniform.
func (s *UserStore) Authenticate(username, password string) error {
	hash, ok := s.hashes[username]
	if !ok {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Len reports how many users the store holds.
func (s *UserStore) Len() int { return len(s.hashes) }

// dummyHash is a bcrypt hash of an unguessable value, used to equalise the
// cost of rejecting unknown usernames.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("space-query-no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()
