package test

import (
	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	pkgAuth "github.com/polkiloo/flashrent/internal/pkg/auth"
)

// KeyVerifierStub accepts a single key.
type KeyVerifierStub struct {
	Key      string
	VerifyFn func(string) error
}

// Verify delegates to VerifyFn or compares against Key.
func (s KeyVerifierStub) Verify(key string) error {
	if s.VerifyFn != nil {
		return s.VerifyFn(key)
	}
	if key == "" || key != s.Key {
		return domainErrors.ErrInvalidAPIKey
	}
	return nil
}

var _ pkgAuth.KeyVerifier = KeyVerifierStub{}
