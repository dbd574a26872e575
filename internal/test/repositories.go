package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
)

// OrderRepositoryStub keeps orders in memory with the same transition rules as the SQL store.
// Fn hooks override the in-memory behaviour when set.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	orders map[int64]*model.Order
	next   int64

	InsertErr        error
	UpdateErr        error
	MarkCompletedErr error
	MarkFailedErr    error
	GetByIDFn        func(context.Context, int64) (*model.Order, error)

	Inserts   []model.OrderDraft
	Updates   []model.OrderDraft
	Completed int
	Failed    int
}

// NewOrderRepositoryStub constructs empty repository stub.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{orders: make(map[int64]*model.Order), next: 1}
}

// Put stores order as is, assigning an id when missing.
func (s *OrderRepositoryStub) Put(order model.Order) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.next
	}
	if order.ID >= s.next {
		s.next = order.ID + 1
	}
	stored := order
	s.orders[order.ID] = &stored
	return copyOrder(&stored)
}

// Insert creates pending_delegation order unless the payment tx was already used.
func (s *OrderRepositoryStub) Insert(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inserts = append(s.Inserts, draft)
	if s.InsertErr != nil {
		return nil, s.InsertErr
	}
	for _, o := range s.orders {
		if o.PaymentTxID == draft.PaymentTxID || o.OrderNumber == draft.OrderNumber {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	now := time.Now()
	expires := draft.ExpiresAt
	order := &model.Order{
		ID:                s.next,
		OrderNumber:       draft.OrderNumber,
		NetworkID:         draft.NetworkID,
		TargetAddress:     draft.TargetAddress,
		PaymentTxID:       draft.PaymentTxID,
		OrderType:         model.OrderTypeEnergyFlash,
		PaymentAmount:     draft.PaymentAmount,
		CalculatedUnits:   draft.Calculation.Units,
		ResourceAmount:    draft.Calculation.ResourceAmount,
		Price:             draft.Calculation.Price,
		PaymentStatus:     model.PaymentStatusPaid,
		Status:            model.OrderStatusPendingDelegation,
		ProcessingDetails: draft.Details,
		ExpiresAt:         &expires,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.next++
	s.orders[order.ID] = order
	return copyOrder(order), nil
}

// Update overwrites computed facts and re-enters pending_delegation.
func (s *OrderRepositoryStub) Update(ctx context.Context, orderID int64, draft model.OrderDraft) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Updates = append(s.Updates, draft)
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	order, ok := s.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	expires := draft.ExpiresAt
	order.TargetAddress = draft.TargetAddress
	order.PaymentAmount = draft.PaymentAmount
	order.CalculatedUnits = draft.Calculation.Units
	order.ResourceAmount = draft.Calculation.ResourceAmount
	order.Price = draft.Calculation.Price
	order.Status = model.OrderStatusPendingDelegation
	order.ProcessingDetails = draft.Details
	order.ExpiresAt = &expires
	order.UpdatedAt = time.Now()
	return copyOrder(order), nil
}

// MarkCompleted records a successful delegation.
func (s *OrderRepositoryStub) MarkCompleted(ctx context.Context, orderID int64, delegatedAmount int64, delegationTxID string, details model.ProcessingDetails) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkCompletedErr != nil {
		return nil, s.MarkCompletedErr
	}
	order, ok := s.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	now := time.Now()
	order.Status = model.OrderStatusCompleted
	order.DelegatedResourceAmount = &delegatedAmount
	order.DelegationTxID = &delegationTxID
	order.CompletedAt = &now
	order.ProcessingDetails = details
	order.UpdatedAt = now
	s.Completed++
	return copyOrder(order), nil
}

// MarkFailed records a failed delegation, appending the message and bumping retry_count.
func (s *OrderRepositoryStub) MarkFailed(ctx context.Context, orderID int64, errorMessage string, details model.ProcessingDetails) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkFailedErr != nil {
		return nil, s.MarkFailedErr
	}
	order, ok := s.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	msg := errorMessage
	if order.ErrorMessage != nil && *order.ErrorMessage != "" {
		msg = *order.ErrorMessage + "\n" + errorMessage
	}
	order.Status = model.OrderStatusFailed
	order.ErrorMessage = &msg
	order.RetryCount++
	order.ProcessingDetails = details
	order.UpdatedAt = time.Now()
	s.Failed++
	return copyOrder(order), nil
}

// GetByID returns stored order copy.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return copyOrder(order), nil
}

// GetByNumber returns stored order copy by order number.
func (s *OrderRepositoryStub) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderNumber == number {
			return copyOrder(o), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// GetByPaymentTxID returns stored order copy created for the payment tx.
func (s *OrderRepositoryStub) GetByPaymentTxID(ctx context.Context, txID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.PaymentTxID == txID {
			return copyOrder(o), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func copyOrder(o *model.Order) *model.Order {
	c := *o
	return &c
}

// PricingConfigRepositoryStub returns a fixed raw configuration document.
type PricingConfigRepositoryStub struct {
	Config map[string]any
	Err    error
	Calls  int
}

// ActiveConfig returns configured document or error.
func (s *PricingConfigRepositoryStub) ActiveConfig(ctx context.Context, networkID, mode string) (map[string]any, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Config == nil {
		return nil, domainErrors.ErrNotFound
	}
	return s.Config, nil
}

// SettingsRepositoryStub returns fixed setting values.
type SettingsRepositoryStub struct {
	Settings map[string]string
	Err      error
	Calls    int
}

// Values returns the subset of configured values matching keys.
func (s *SettingsRepositoryStub) Values(ctx context.Context, keys ...string) (map[string]string, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	result := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.Settings[k]; ok {
			result[k] = v
		}
	}
	return result, nil
}

// PaymentEventRepositoryStub records intake queue interactions.
type PaymentEventRepositoryStub struct {
	mu sync.Mutex

	EnqueueFn func(context.Context, model.PaymentEvent) (*model.PaymentEvent, bool, error)
	Batch     []model.PaymentEvent
	SelectErr error
	MarkErr   error

	Processed map[int64]int64
	Rejected  map[int64]string
}

// Enqueue delegates to EnqueueFn or accepts the event as new.
func (s *PaymentEventRepositoryStub) Enqueue(ctx context.Context, event model.PaymentEvent) (*model.PaymentEvent, bool, error) {
	if s.EnqueueFn != nil {
		return s.EnqueueFn(ctx, event)
	}
	event.ID = 1
	event.Status = model.PaymentEventQueued
	return &event, true, nil
}

// SelectBatchForProcessing hands out the configured batch once.
func (s *PaymentEventRepositoryStub) SelectBatchForProcessing(ctx context.Context, limit int) ([]model.PaymentEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SelectErr != nil {
		return nil, s.SelectErr
	}
	if limit > len(s.Batch) {
		limit = len(s.Batch)
	}
	batch := s.Batch[:limit]
	s.Batch = s.Batch[limit:]
	return batch, nil
}

// MarkProcessed records processed event.
func (s *PaymentEventRepositoryStub) MarkProcessed(ctx context.Context, eventID, orderID int64) error {
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

// MarkRejected records rejected event.
func (s *PaymentEventRepositoryStub) MarkRejected(ctx context.Context, eventID int64, reason string) error {
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
