package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature or claim
// validation against every live key.
var ErrInvalidToken = errors.New("invalid token")

const signingKeyLen = 32

// Keyring issues and verifies HMAC bearer tokens over a rotating key pair.
// Rotation demotes the current key to previous, so tokens issued shortly
// before a rotation stay valid for one more rotation interval.
type Keyring struct {
	issuer string
	ttl    time.Duration

	mu       sync.RWMutex
	current  []byte
	previous []byte
}

// NewKeyring creates a keyring with a fresh random signing key.
func NewKeyring(issuer string, ttl time.Duration) (*Keyring, error) {
	key, err := newSigningKey()
	if err != nil {
		return nil, err
	}
	return &Keyring{issuer: issuer, ttl: ttl, current: key}, nil
}

// Rotate replaces the signing key, keeping the old one valid for
// verification until the next rotation.
func (k *Keyring) Rotate() error {
	key, err := newSigningKey()
	if err != nil {
		return err
	}
	k.mu.Lock()
	k.previous = k.current
	k.current = key
	k.mu.Unlock()
	return nil
}

// Issue signs a bearer token for a subject. It returns the token and its
// expiry.
func (k *Keyring) Issue(subject string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(k.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    k.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	k.mu.RLock()
	key := k.current
	k.mu.RUnlock()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify validates a bearer token against the live keys and returns its
// subject.
func (k *Keyring) Verify(token string) (string, error) {
	k.mu.RLock()
	keys := [][]byte{k.current}
	if k.previous != nil {
		keys = append(keys, k.previous)
	}
	k.mu.RUnlock()

	for _, key := range keys {
		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims,
			func(*jwt.Token) (interface{}, error) { return key, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(k.issuer),
			jwt.WithExpirationRequired(),
		)
		if err == nil && parsed.Valid {
			return claims.Subject, nil
		}
	}
	return "", ErrInvalidToken
}

func newSigningKey() ([]byte, error) {
	key := make([]byte, signingKeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return key, nil
}
