package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/domain/model"
	"github.com/polkiloo/flashrent/internal/domain/repository"
)

// OrderCreator turns a fresh payment into a delegated order.
type OrderCreator struct {
	pricer
	numbers *OrderNumberGenerator
	orders  repository.OrderRepository
	locker  Locker
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrderCreator constructs OrderCreator.
func NewOrderCreator(
	configs *ConfigProvider,
	calculator *UnitCalculator,
	numbers *OrderNumberGenerator,
	orders repository.OrderRepository,
	delegator *ResourceDelegator,
	locker Locker,
	recorder Recorder,
	logger *zap.Logger,
) *OrderCreator {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &OrderCreator{
		pricer:  pricer{configs: configs, calculator: calculator, delegator: delegator, recorder: recorder},
		numbers: numbers,
		orders:  orders,
		locker:  locker,
		logger:  logger.Named("order_creator"),
		now:     time.Now,
	}
}

// Create validates and prices the payment, persists a new order and delegates energy for it.
// Errors are returned only before the order row exists; afterwards the returned order's
// status tells the outcome.
func (c *OrderCreator) Create(ctx context.Context, params model.PaymentParams) (*model.Order, error) {
	if err := ValidatePayment(params); err != nil {
		return nil, err
	}

	unlockPayment, err := c.locker.Lock(ctx, paymentLockKey(params.TxID))
	if err != nil {
		return nil, fmt.Errorf("lock payment %s: %w", params.TxID, err)
	}
	defer unlockPayment()

	prep, err := c.price(ctx, params)
	if err != nil {
		return nil, err
	}

	number, err := c.numbers.Generate()
	if err != nil {
		return nil, err
	}
	unlockOrder, err := c.locker.Lock(ctx, orderLockKey(number))
	if err != nil {
		return nil, fmt.Errorf("lock order %s: %w", number, err)
	}
	defer unlockOrder()

	draft := prep.draft(c.now(), number, params, model.ProcessingDetails{
		Stage:       model.StageCreated,
		PaymentTxID: params.TxID,
	})
	order, err := c.orders.Insert(ctx, draft)
	if err != nil {
		return nil, err
	}
	c.recorder.OrderCreated(params.NetworkID)
	c.logger.Info("order created",
		zap.String("order", order.OrderNumber),
		zap.String("network", params.NetworkID),
		zap.Int64("units", prep.calc.Units),
		zap.Int64("energy", prep.calc.ResourceAmount),
	)

	req := prep.delegationRequest(params)
	req.OrderNumber = order.OrderNumber
	return c.delegator.Delegate(ctx, order, req), nil
}
