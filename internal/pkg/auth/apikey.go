package auth

import (
	"crypto/sha256"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
)

// KeyVerifier checks presented API keys.
type KeyVerifier interface {
	Verify(key string) error
}

// BcryptVerifier verifies API keys against a bcrypt hash.
type BcryptVerifier struct {
	hash []byte

	mu       sync.RWMutex
	accepted map[[sha256.Size]byte]struct{}
}

// NewBcryptVerifier creates verifier for hash.
func NewBcryptVerifier(hash string) *BcryptVerifier {
	return &BcryptVerifier{
		hash:     []byte(strings.TrimSpace(hash)),
		accepted: make(map[[sha256.Size]byte]struct{}),
	}
}

// Verify returns ErrInvalidAPIKey unless key matches the hash. Accepted keys are
// remembered by digest so bcrypt runs once per distinct key.
func (v *BcryptVerifier) Verify(key string) error {
	if key == "" {
		return domainErrors.ErrInvalidAPIKey
	}
	digest := sha256.Sum256([]byte(key))

	v.mu.RLock()
	_, ok := v.accepted[digest]
	v.mu.RUnlock()
	if ok {
		return nil
	}

	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(key)); err != nil {
		return domainErrors.ErrInvalidAPIKey
	}

	v.mu.Lock()
	v.accepted[digest] = struct{}{}
	v.mu.Unlock()
	return nil
}

// HashKey returns bcrypt hash suitable for API_KEY_HASH.
func HashKey(key string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	encoded, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
