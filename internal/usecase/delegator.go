package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/domain/model"
	"github.com/polkiloo/flashrent/internal/domain/repository"
)

var errEmptyDelegationTx = errors.New("delegation returned empty transaction id")

// ResourceDelegator calls the energy granter and records the terminal order transition.
type ResourceDelegator struct {
	granter  EnergyGranter
	orders   repository.OrderRepository
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewResourceDelegator constructs ResourceDelegator.
func NewResourceDelegator(granter EnergyGranter, orders repository.OrderRepository, recorder Recorder, logger *zap.Logger) *ResourceDelegator {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ResourceDelegator{
		granter:  granter,
		orders:   orders,
		recorder: recorder,
		logger:   logger.Named("delegator"),
		now:      time.Now,
	}
}

// Delegate grants energy for order and returns it completed or failed. It never fails:
// a delegation error is recorded on the order, and a failed terminal write is logged and
// applied to the returned copy.
func (d *ResourceDelegator) Delegate(ctx context.Context, order *model.Order, req model.DelegationRequest) *model.Order {
	started := d.now()
	txID, err := d.granter.DelegateEnergy(ctx, req)
	if err == nil && strings.TrimSpace(txID) == "" {
		err = errEmptyDelegationTx
	}
	elapsed := d.now().Sub(started)

	// Terminal writes must land even when the caller has gone away.
	writeCtx := context.WithoutCancel(ctx)
	if err != nil {
		d.recorder.DelegationFinished(req.NetworkID, false, 0, elapsed)
		return d.fail(writeCtx, order, err.Error())
	}
	d.recorder.DelegationFinished(req.NetworkID, true, req.ResourceAmount, elapsed)
	return d.complete(writeCtx, order, req.ResourceAmount, txID)
}

func (d *ResourceDelegator) complete(ctx context.Context, order *model.Order, amount int64, txID string) *model.Order {
	now := d.now()
	details := order.ProcessingDetails
	details.Stage = model.StageCompleted
	details.RecordedAt = now
	details.Delegation = &model.DelegationSnapshot{TxID: txID, Amount: amount}
	details.Error = ""

	updated, err := d.orders.MarkCompleted(ctx, order.ID, amount, txID, details)
	if err == nil {
		d.logger.Info("energy delegated",
			zap.String("order", order.OrderNumber),
			zap.Int64("energy", amount),
			zap.String("tx", txID),
		)
		return updated
	}

	d.logger.Error("record completed delegation failed",
		zap.String("order", order.OrderNumber),
		zap.String("tx", txID),
		zap.Error(err),
	)
	local := *order
	local.Status = model.OrderStatusCompleted
	local.DelegatedResourceAmount = &amount
	local.DelegationTxID = &txID
	local.CompletedAt = &now
	local.ProcessingDetails = details
	local.UpdatedAt = now
	return &local
}

func (d *ResourceDelegator) fail(ctx context.Context, order *model.Order, message string) *model.Order {
	now := d.now()
	details := order.ProcessingDetails
	details.Stage = model.StageFailed
	details.RecordedAt = now
	details.Delegation = nil
	details.Error = message

	updated, err := d.orders.MarkFailed(ctx, order.ID, message, details)
	if err == nil {
		d.logger.Warn("energy delegation failed",
			zap.String("order", order.OrderNumber),
			zap.Int("retry_count", updated.RetryCount),
			zap.String("reason", message),
		)
		return updated
	}

	d.logger.Error("record failed delegation failed",
		zap.String("order", order.OrderNumber),
		zap.String("reason", message),
		zap.Error(err),
	)
	local := *order
	local.Status = model.OrderStatusFailed
	if local.ErrorMessage != nil && *local.ErrorMessage != "" {
		message = *local.ErrorMessage + "\n" + message
	}
	local.ErrorMessage = &message
	local.RetryCount++
	local.ProcessingDetails = details
	local.UpdatedAt = now
	return &local
}

// ValidateParams rejects delegation requests that cannot succeed.
func (d *ResourceDelegator) ValidateParams(targetAddress string, resourceAmount int64, expiryHours decimal.Decimal, networkID string) model.Validation {
	switch {
	case strings.TrimSpace(targetAddress) == "":
		return model.Invalid("target address is required")
	case resourceAmount <= 0:
		return model.Invalid("resource amount must be positive")
	case !expiryHours.IsPositive():
		return model.Invalid("expiry hours must be positive")
	case strings.TrimSpace(networkID) == "":
		return model.Invalid("network id is required")
	}
	return model.Valid()
}
