package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/domain/model"
	"github.com/polkiloo/flashrent/internal/domain/repository"
)

// UnitCalculator converts paid amounts into purchasable units and energy.
type UnitCalculator struct {
	settings repository.SettingsRepository
	logger   *zap.Logger
}

// NewUnitCalculator constructs UnitCalculator.
func NewUnitCalculator(settings repository.SettingsRepository, logger *zap.Logger) *UnitCalculator {
	return &UnitCalculator{settings: settings, logger: logger.Named("calculator")}
}

// CalculateUnits returns floor(amount / price per unit) clamped to [0, MaxUnits].
func (c *UnitCalculator) CalculateUnits(amount decimal.Decimal, cfg *model.PricingConfig) int64 {
	if cfg == nil || !cfg.PricePerUnit.IsPositive() || !amount.IsPositive() {
		return 0
	}
	if cfg.MaxUnits <= 0 {
		return 0
	}
	// Clamp before IntPart, which wraps past int64.
	quotient, _ := amount.QuoRem(cfg.PricePerUnit, 0)
	if quotient.GreaterThanOrEqual(decimal.NewFromInt(cfg.MaxUnits)) {
		return cfg.MaxUnits
	}
	return quotient.IntPart()
}

// ResourceCost reads the per-unit energy settings. It is never cached and never fails:
// missing or unusable values fall back to model.DefaultResourceCost.
func (c *UnitCalculator) ResourceCost(ctx context.Context) model.ResourceCost {
	cost := model.DefaultResourceCost

	values, err := c.settings.Values(ctx, model.SettingStandardEnergy, model.SettingBufferPercentage)
	if err != nil {
		c.logger.Warn("resource cost settings unavailable, using defaults", zap.Error(err))
		return cost
	}

	if raw, ok := values[model.SettingStandardEnergy]; ok {
		if v, err := decimal.NewFromString(raw); err == nil && v.IsPositive() {
			cost.StandardEnergy = v.Round(0).IntPart()
		} else {
			c.logger.Warn("invalid standard energy setting", zap.String("value", raw))
		}
	}
	if raw, ok := values[model.SettingBufferPercentage]; ok {
		if v, err := decimal.NewFromString(raw); err == nil && !v.IsNegative() {
			cost.BufferPercentage = v
		} else {
			c.logger.Warn("invalid buffer percentage setting", zap.String("value", raw))
		}
	}
	return cost
}

// CalculateResourceAmount returns the energy for units and the per-unit cost used.
func (c *UnitCalculator) CalculateResourceAmount(ctx context.Context, units int64) (int64, int64) {
	perUnit := c.ResourceCost(ctx).PerUnit()
	return units * perUnit, perUnit
}

// Validate checks a calculation outcome.
func (c *UnitCalculator) Validate(paid decimal.Decimal, units, resourceAmount int64) model.Validation {
	if units == 0 {
		return model.Invalid(fmt.Sprintf("Insufficient payment amount: %s", paid.String()))
	}
	if resourceAmount <= 0 {
		return model.Invalid("resource amount must be positive")
	}
	return model.Valid()
}

// PerformFullCalculation composes unit, energy and price computation. Units and energy
// are reported even when the result is invalid.
func (c *UnitCalculator) PerformFullCalculation(ctx context.Context, amount decimal.Decimal, cfg *model.PricingConfig) model.Calculation {
	if cfg == nil {
		return model.Calculation{Reason: "config not found"}
	}
	return c.calculateWith(amount, cfg, c.ResourceCost(ctx).PerUnit())
}

// calculateWith is PerformFullCalculation with the per-unit energy already looked up.
func (c *UnitCalculator) calculateWith(amount decimal.Decimal, cfg *model.PricingConfig, perUnit int64) model.Calculation {
	units := c.CalculateUnits(amount, cfg)
	resourceAmount := units * perUnit
	validation := c.Validate(amount, units, resourceAmount)

	return model.Calculation{
		Units:          units,
		ResourceAmount: resourceAmount,
		PerUnitCost:    perUnit,
		Price:          decimal.NewFromInt(units).Mul(cfg.PricePerUnit),
		Valid:          validation.Valid,
		Reason:         validation.Reason,
	}
}
