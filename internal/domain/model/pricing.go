package model

import "github.com/shopspring/decimal"

// ModeEnergyFlash identifies the flash-rent product in price configuration.
const ModeEnergyFlash = "energy_flash"

// PricingConfig is the normalized active price configuration of a network.
type PricingConfig struct {
	NetworkID           string
	Mode                string
	PricePerUnit        decimal.Decimal
	MaxUnits            int64
	ResourceExpiryHours decimal.Decimal
	PaymentAddress      string
}

// Setting keys describing per-unit energy cost.
const (
	SettingStandardEnergy   = "standard_energy"
	SettingBufferPercentage = "buffer_percentage"
)

// ResourceCost describes how much energy a single purchased unit is worth.
type ResourceCost struct {
	StandardEnergy   int64
	BufferPercentage decimal.Decimal
}

// DefaultResourceCost is used whenever settings are unavailable or incomplete.
var DefaultResourceCost = ResourceCost{
	StandardEnergy:   65000,
	BufferPercentage: decimal.NewFromInt(2),
}

var hundred = decimal.NewFromInt(100)

// PerUnit returns round(StandardEnergy * (1 + BufferPercentage/100)).
func (c ResourceCost) PerUnit() int64 {
	factor := decimal.NewFromInt(1).Add(c.BufferPercentage.Div(hundred))
	return decimal.NewFromInt(c.StandardEnergy).Mul(factor).Round(0).IntPart()
}

// Calculation is the outcome of converting a payment into units and energy.
type Calculation struct {
	Units          int64
	ResourceAmount int64
	PerUnitCost    int64
	Price          decimal.Decimal
	Valid          bool
	Reason         string
}

// Validation reports whether an input passed a check and why not.
type Validation struct {
	Valid  bool
	Reason string
}

// Valid returns a passing validation.
func Valid() Validation {
	return Validation{Valid: true}
}

// Invalid returns a failing validation with reason.
func Invalid(reason string) Validation {
	return Validation{Reason: reason}
}
