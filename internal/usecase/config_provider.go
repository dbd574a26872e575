package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
	"github.com/polkiloo/flashrent/internal/domain/repository"
)

var (
	priceAliases   = []string{"price_per_unit", "single_price", "price"}
	maxUnitAliases = []string{"max_units", "max_transactions", "max_count"}
	expiryAliases  = []string{"resource_expiry_hours", "expiry_hours", "duration_hours"}
	addressAliases = []string{"payment_address", "receive_address"}
)

var defaultExpiryHours = decimal.NewFromInt(1)

// ConfigProvider loads the active flash-rent price configuration of a network.
type ConfigProvider struct {
	configs repository.PricingConfigRepository
	logger  *zap.Logger
}

// NewConfigProvider constructs ConfigProvider.
func NewConfigProvider(configs repository.PricingConfigRepository, logger *zap.Logger) *ConfigProvider {
	return &ConfigProvider{configs: configs, logger: logger.Named("config_provider")}
}

// GetConfig returns nil when no usable configuration exists. Lookup errors are logged only.
func (p *ConfigProvider) GetConfig(ctx context.Context, networkID string) *model.PricingConfig {
	raw, err := p.configs.ActiveConfig(ctx, networkID, model.ModeEnergyFlash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			p.logger.Warn("no active price config", zap.String("network", networkID))
		} else {
			p.logger.Error("load price config failed", zap.String("network", networkID), zap.Error(err))
		}
		return nil
	}

	cfg, err := p.Normalize(networkID, raw)
	if err != nil {
		p.logger.Error("malformed price config", zap.String("network", networkID), zap.Error(err))
		return nil
	}
	return cfg
}

// Normalize resolves legacy field aliases into the canonical configuration shape.
func (p *ConfigProvider) Normalize(networkID string, raw map[string]any) (*model.PricingConfig, error) {
	cfg := &model.PricingConfig{
		NetworkID:           networkID,
		Mode:                model.ModeEnergyFlash,
		ResourceExpiryHours: defaultExpiryHours,
	}

	if v, key, ok := lookup(raw, priceAliases); ok {
		price, err := toDecimal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		cfg.PricePerUnit = price
	}
	if v, key, ok := lookup(raw, maxUnitAliases); ok {
		units, err := toDecimal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		cfg.MaxUnits = units.Floor().IntPart()
	}
	if v, key, ok := lookup(raw, expiryAliases); ok {
		hours, err := toDecimal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		cfg.ResourceExpiryHours = hours
	}
	if v, _, ok := lookup(raw, addressAliases); ok {
		if s, isString := v.(string); isString {
			cfg.PaymentAddress = strings.TrimSpace(s)
		}
	}
	return cfg, nil
}

// MaxResourceExpiryHours bounds the delegation window a config may ask for.
const MaxResourceExpiryHours = 24 * 365

var (
	maxExpiryHours = decimal.NewFromInt(MaxResourceExpiryHours)
	maxEnergy      = decimal.NewFromInt(math.MaxInt64)
)

// Validate reports whether cfg can drive an order when one unit is worth perUnit energy.
func (p *ConfigProvider) Validate(cfg *model.PricingConfig, perUnit int64) model.Validation {
	switch {
	case cfg == nil:
		return model.Invalid("config not found")
	case !cfg.PricePerUnit.IsPositive():
		return model.Invalid("price per unit must be positive")
	case cfg.MaxUnits <= 0:
		return model.Invalid("max units must be positive")
	case perUnit <= 0:
		return model.Invalid("resource amount per unit must be positive")
	case decimal.NewFromInt(cfg.MaxUnits).Mul(decimal.NewFromInt(perUnit)).GreaterThan(maxEnergy):
		return model.Invalid("max units exceed the deliverable resource amount")
	case !cfg.ResourceExpiryHours.IsPositive():
		return model.Invalid("resource expiry hours must be positive")
	case cfg.ResourceExpiryHours.GreaterThan(maxExpiryHours):
		return model.Invalid(fmt.Sprintf("resource expiry hours must not exceed %d", MaxResourceExpiryHours))
	}
	return model.Valid()
}

func lookup(raw map[string]any, aliases []string) (any, string, bool) {
	for _, key := range aliases {
		if v, ok := raw[key]; ok && v != nil {
			return v, key, true
		}
	}
	return nil, "", false
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case decimal.Decimal:
		return n, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported value %T", v)
	}
}
