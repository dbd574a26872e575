package handlers

import (
	"context"

	"github.com/polkiloo/flashrent/internal/domain/model"
)

// PaymentFacade accepts observed payments into the intake queue.
type PaymentFacade interface {
	SubmitPayment(ctx context.Context, event model.PaymentEvent) (*model.PaymentEvent, bool, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Order(ctx context.Context, number string) (*model.Order, error)
	Redelegate(ctx context.Context, orderID int64) (*model.Order, error)
}

// HealthChecker reports whether dependencies are reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FlashRentFacade aggregates the full set of operations used across handlers.
type FlashRentFacade interface {
	PaymentFacade
	OrderFacade
	HealthChecker
}
