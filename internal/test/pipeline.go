package test

import (
	"context"
	"sync"

	"github.com/polkiloo/flashrent/internal/domain/model"
)

// GranterStub replaces the energy delegation service.
type GranterStub struct {
	mu       sync.Mutex
	Fn       func(context.Context, model.DelegationRequest) (string, error)
	Requests []model.DelegationRequest
}

// DelegateEnergy records the request and returns Fn's outcome or a fixed tx id.
func (s *GranterStub) DelegateEnergy(ctx context.Context, req model.DelegationRequest) (string, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()
	if s.Fn != nil {
		return s.Fn(ctx, req)
	}
	return "delegation-tx", nil
}

// Calls returns number of delegation attempts.
func (s *GranterStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// LockerStub records acquired keys and can refuse locking.
type LockerStub struct {
	mu       sync.Mutex
	Err      error
	Acquired []string
	Released []string
}

// Lock records key acquisition.
func (s *LockerStub) Lock(ctx context.Context, key string) (func(), error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	s.Acquired = append(s.Acquired, key)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.Released = append(s.Released, key)
		s.mu.Unlock()
	}, nil
}
