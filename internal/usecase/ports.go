package usecase

import (
	"context"
	"time"

	"github.com/polkiloo/flashrent/internal/domain/model"
)

// EnergyGranter performs the on-chain energy delegation and returns its transaction id.
type EnergyGranter interface {
	DelegateEnergy(ctx context.Context, req model.DelegationRequest) (string, error)
}

// Locker serializes pipeline runs sharing a key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Recorder receives pipeline outcomes.
type Recorder interface {
	OrderCreated(networkID string)
	OrderUpdated(networkID string)
	OrderRejected(networkID, reason string)
	DelegationFinished(networkID string, succeeded bool, energy int64, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) OrderCreated(string)                                   {}
func (nopRecorder) OrderUpdated(string)                                   {}
func (nopRecorder) OrderRejected(string, string)                          {}
func (nopRecorder) DelegationFinished(string, bool, int64, time.Duration) {}

func paymentLockKey(txID string) string {
	return "payment:" + txID
}

func orderLockKey(number string) string {
	return "order:" + number
}
