package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/flashrent/internal/domain/model"
)

// PaymentFacadeStub provides controllable behaviour for payment intake endpoints.
type PaymentFacadeStub struct {
	SubmitFn func(context.Context, model.PaymentEvent) (*model.PaymentEvent, bool, error)
}

// SubmitPayment delegates to SubmitFn or accepts the event as new.
func (s PaymentFacadeStub) SubmitPayment(ctx context.Context, event model.PaymentEvent) (*model.PaymentEvent, bool, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, event)
	}
	event.ID = 1
	event.Status = model.PaymentEventQueued
	return &event, true, nil
}

// OrderFacadeStub simulates order lookups and operator retries.
type OrderFacadeStub struct {
	OrderFn      func(context.Context, string) (*model.Order, error)
	RedelegateFn func(context.Context, int64) (*model.Order, error)
}

// Order returns configured order or a completed sample.
func (s OrderFacadeStub) Order(ctx context.Context, number string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, number)
	}
	return SampleOrder(1, number, model.OrderStatusCompleted), nil
}

// Redelegate returns configured result or a completed sample.
func (s OrderFacadeStub) Redelegate(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.RedelegateFn != nil {
		return s.RedelegateFn(ctx, orderID)
	}
	return SampleOrder(orderID, "FL1700000000000ABC123", model.OrderStatusCompleted), nil
}

// HealthStub reports configured health.
type HealthStub struct {
	Err error
}

// HealthCheck returns Err.
func (s HealthStub) HealthCheck(context.Context) error { return s.Err }

// FlashRentFacadeStub aggregates facade dependencies for HTTP layer tests.
type FlashRentFacadeStub struct {
	PaymentFacadeStub
	OrderFacadeStub
	HealthStub
}

// SampleOrder builds a fully populated order for presentation tests.
func SampleOrder(id int64, number string, status model.OrderStatus) *model.Order {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := created.Add(time.Hour)
	order := &model.Order{
		ID:              id,
		OrderNumber:     number,
		NetworkID:       "mainnet",
		TargetAddress:   "TTarget",
		PaymentTxID:     "tx-1",
		OrderType:       model.OrderTypeEnergyFlash,
		PaymentAmount:   decimal.NewFromInt(30),
		CalculatedUnits: 3,
		ResourceAmount:  198900,
		Price:           decimal.NewFromInt(30),
		PaymentStatus:   model.PaymentStatusPaid,
		Status:          status,
		ExpiresAt:       &expires,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	switch status {
	case model.OrderStatusCompleted:
		amount := order.ResourceAmount
		txID := "delegation-tx"
		order.DelegatedResourceAmount = &amount
		order.DelegationTxID = &txID
		order.CompletedAt = &created
	case model.OrderStatusFailed:
		msg := "delegation unavailable"
		order.ErrorMessage = &msg
		order.RetryCount = 1
	}
	return order
}

// WorkerFacadeStub mimics worker interactions with the flash-rent facade.
type WorkerFacadeStub struct {
	Events    [][]model.PaymentEvent
	EventsFn  func(context.Context, int) ([]model.PaymentEvent, error)
	ProcessFn func(context.Context, model.PaymentEvent) (*model.Order, error)
	MarkErr   error

	Processed map[int64]int64
	Rejected  map[int64]string

	mu              sync.Mutex
	eventsCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// EventsForProcessing returns batches from configured queue.
func (s *WorkerFacadeStub) EventsForProcessing(ctx context.Context, limit int) ([]model.PaymentEvent, error) {
	if s.EventsFn != nil {
		return s.EventsFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.eventsCallCount, 1)
	if int(call) <= len(s.Events) {
		return s.Events[call-1], nil
	}
	return nil, nil
}

// ProcessPayment returns configured order or a completed one keyed by event id.
func (s *WorkerFacadeStub) ProcessPayment(ctx context.Context, event model.PaymentEvent) (*model.Order, error) {
	if s.ProcessFn != nil {
		return s.ProcessFn(ctx, event)
	}
	return SampleOrder(event.ID*10, "FL1700000000000ABC123", model.OrderStatusCompleted), nil
}

// MarkEventProcessed records processed events.
func (s *WorkerFacadeStub) MarkEventProcessed(ctx context.Context, eventID, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkErr != nil {
		return s.MarkErr
	}
	if s.Processed == nil {
		s.Processed = make(map[int64]int64)
	}
	s.Processed[eventID] = orderID
	return nil
}

// MarkEventRejected records rejected events.
func (s *WorkerFacadeStub) MarkEventRejected(ctx context.Context, eventID int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkErr != nil {
		return s.MarkErr
	}
	if s.Rejected == nil {
		s.Rejected = make(map[int64]string)
	}
	s.Rejected[eventID] = reason
	return nil
}
