package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
)

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// ValidatePayment checks the shape of an observed payment before any lookup.
func ValidatePayment(p model.PaymentParams) error {
	switch {
	case strings.TrimSpace(p.FromAddress) == "":
		return fmt.Errorf("%w: from address is required", domainErrors.ErrInvalidPayment)
	case strings.TrimSpace(p.TxID) == "":
		return fmt.Errorf("%w: tx id is required", domainErrors.ErrInvalidPayment)
	case strings.TrimSpace(p.NetworkID) == "":
		return fmt.Errorf("%w: network id is required", domainErrors.ErrInvalidPayment)
	case !p.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", domainErrors.ErrInvalidPayment)
	}
	return nil
}

// expiryAfter saturates at MaxResourceExpiryHours so the duration cannot wrap.
func expiryAfter(now time.Time, hours decimal.Decimal) time.Time {
	if hours.GreaterThan(maxExpiryHours) {
		hours = maxExpiryHours
	}
	return now.Add(time.Duration(hours.Mul(nanosPerHour).IntPart()))
}

// prepared is a priced payment ready to be persisted and delegated.
type prepared struct {
	config *model.PricingConfig
	calc   model.Calculation
}

func (p prepared) delegationRequest(params model.PaymentParams) model.DelegationRequest {
	return model.DelegationRequest{
		TargetAddress:  params.FromAddress,
		ResourceAmount: p.calc.ResourceAmount,
		ExpiryHours:    p.config.ResourceExpiryHours,
		NetworkID:      params.NetworkID,
		TxID:           params.TxID,
	}
}

func (p prepared) draft(now time.Time, number string, params model.PaymentParams, details model.ProcessingDetails) model.OrderDraft {
	details.RecordedAt = now
	details.PaymentAmount = params.Amount.String()
	details.Config = model.NewConfigSnapshot(p.config)
	details.Calculation = model.NewCalculationInputs(p.calc)
	return model.OrderDraft{
		OrderNumber:   number,
		TargetAddress: params.FromAddress,
		PaymentAmount: params.Amount,
		NetworkID:     params.NetworkID,
		PaymentTxID:   params.TxID,
		Calculation:   p.calc,
		Config:        p.config,
		ExpiresAt:     expiryAfter(now, p.config.ResourceExpiryHours),
		Details:       details,
	}
}

// pricer runs the pre-commit steps shared by creation and update.
type pricer struct {
	configs    *ConfigProvider
	calculator *UnitCalculator
	delegator  *ResourceDelegator
	recorder   Recorder
}

func (p pricer) price(ctx context.Context, params model.PaymentParams) (prepared, error) {
	cfg := p.configs.GetConfig(ctx, params.NetworkID)
	// One settings lookup per order serves both validation and calculation.
	perUnit := p.calculator.ResourceCost(ctx).PerUnit()
	if v := p.configs.Validate(cfg, perUnit); !v.Valid {
		p.recorder.OrderRejected(params.NetworkID, "config")
		return prepared{}, fmt.Errorf("%w %s: %s", domainErrors.ErrConfigInvalid, params.NetworkID, v.Reason)
	}

	calc := p.calculator.calculateWith(params.Amount, cfg, perUnit)
	if !calc.Valid {
		p.recorder.OrderRejected(params.NetworkID, "calculation")
		return prepared{}, fmt.Errorf("%w: %s", domainErrors.ErrCalculationInvalid, calc.Reason)
	}

	prep := prepared{config: cfg, calc: calc}
	req := prep.delegationRequest(params)
	if v := p.delegator.ValidateParams(req.TargetAddress, req.ResourceAmount, req.ExpiryHours, req.NetworkID); !v.Valid {
		p.recorder.OrderRejected(params.NetworkID, "delegation_params")
		return prepared{}, fmt.Errorf("%w: %s", domainErrors.ErrInvalidPayment, v.Reason)
	}
	return prep, nil
}
