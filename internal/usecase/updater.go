package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
	"github.com/polkiloo/flashrent/internal/domain/repository"
)

var updatableStatuses = map[model.OrderStatus]struct{}{
	model.OrderStatusPending:           {},
	model.OrderStatusPendingDelegation: {},
	model.OrderStatusProcessing:        {},
}

// OrderUpdater recomputes and re-delegates an existing order.
type OrderUpdater struct {
	pricer
	orders repository.OrderRepository
	locker Locker
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderUpdater constructs OrderUpdater.
func NewOrderUpdater(
	configs *ConfigProvider,
	calculator *UnitCalculator,
	orders repository.OrderRepository,
	delegator *ResourceDelegator,
	locker Locker,
	recorder Recorder,
	logger *zap.Logger,
) *OrderUpdater {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &OrderUpdater{
		pricer: pricer{configs: configs, calculator: calculator, delegator: delegator, recorder: recorder},
		orders: orders,
		locker: locker,
		logger: logger.Named("order_updater"),
		now:    time.Now,
	}
}

// Update re-prices the payment against the existing order, keeping its id and number,
// and delegates again. Under the order lock the order must still be open or failed.
func (u *OrderUpdater) Update(ctx context.Context, params model.UpdateParams) (*model.Order, error) {
	return u.update(ctx, params, func(current *model.Order) error {
		if current.Status == model.OrderStatusFailed || u.CanBeUpdated(current, u.now()) {
			return nil
		}
		return fmt.Errorf("%w: order %s is %s", domainErrors.ErrOrderNotUpdatable, current.OrderNumber, current.Status)
	})
}

// Redelegate re-drives an order with its stored payment facts. Completed orders are refused.
func (u *OrderUpdater) Redelegate(ctx context.Context, orderID int64) (*model.Order, error) {
	existing, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	params := model.UpdateParams{
		ExistingOrderID: existing.ID,
		PaymentParams: model.PaymentParams{
			FromAddress: existing.TargetAddress,
			Amount:      existing.PaymentAmount,
			NetworkID:   existing.NetworkID,
			TxID:        existing.PaymentTxID,
		},
	}
	return u.update(ctx, params, func(current *model.Order) error {
		if current.Status == model.OrderStatusCompleted {
			return fmt.Errorf("%w: order %s is completed", domainErrors.ErrOrderNotUpdatable, current.OrderNumber)
		}
		return nil
	})
}

func (u *OrderUpdater) update(ctx context.Context, params model.UpdateParams, guard func(*model.Order) error) (*model.Order, error) {
	if err := ValidatePayment(params.PaymentParams); err != nil {
		return nil, err
	}

	existing, err := u.orders.GetByID(ctx, params.ExistingOrderID)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", params.ExistingOrderID, err)
	}

	unlock, err := u.locker.Lock(ctx, orderLockKey(existing.OrderNumber))
	if err != nil {
		return nil, fmt.Errorf("lock order %s: %w", existing.OrderNumber, err)
	}
	defer unlock()

	// Re-read under the lock: a run we waited for may have delegated already.
	current, err := u.orders.GetByID(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", existing.ID, err)
	}
	if err := guard(current); err != nil {
		return nil, err
	}

	prep, err := u.price(ctx, params.PaymentParams)
	if err != nil {
		return nil, err
	}

	// Order number and payment tx id are immutable; the update tx goes to the audit trail.
	pricedFor := params.PaymentParams
	pricedFor.TxID = current.PaymentTxID
	draft := prep.draft(u.now(), current.OrderNumber, pricedFor, model.ProcessingDetails{
		Stage:       model.StageUpdated,
		PaymentTxID: current.PaymentTxID,
		UpdateTxID:  params.TxID,
	})
	order, err := u.orders.Update(ctx, current.ID, draft)
	if err != nil {
		return nil, err
	}
	u.recorder.OrderUpdated(params.NetworkID)
	u.logger.Info("order updated",
		zap.String("order", order.OrderNumber),
		zap.String("update_tx", params.TxID),
		zap.Int64("energy", prep.calc.ResourceAmount),
	)

	req := prep.delegationRequest(params.PaymentParams)
	req.OrderNumber = order.OrderNumber
	return u.delegator.Delegate(ctx, order, req), nil
}

// CanBeUpdated reports whether order is still open for a payment-driven update at now.
func (u *OrderUpdater) CanBeUpdated(order *model.Order, now time.Time) bool {
	if order == nil {
		return false
	}
	if _, ok := updatableStatuses[order.Status]; !ok {
		return false
	}
	return order.ExpiresAt == nil || now.Before(*order.ExpiresAt)
}

// NeedsUpdate compares the stored payment facts with the new ones.
func (u *OrderUpdater) NeedsUpdate(order *model.Order, newAmount decimal.Decimal, newAddress string) (bool, string) {
	if !order.PaymentAmount.Equal(newAmount) {
		return true, fmt.Sprintf("payment amount changed: %s -> %s", order.PaymentAmount.String(), newAmount.String())
	}
	if order.TargetAddress != newAddress {
		return true, "target address changed"
	}
	return false, ""
}
