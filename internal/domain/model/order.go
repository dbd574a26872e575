package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes delegation lifecycle.
type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "pending"
	OrderStatusPendingDelegation OrderStatus = "pending_delegation"
	OrderStatusProcessing        OrderStatus = "processing"
	OrderStatusCompleted         OrderStatus = "completed"
	OrderStatusFailed            OrderStatus = "failed"
)

// PaymentStatus describes payment state of an order.
type PaymentStatus string

const PaymentStatusPaid PaymentStatus = "paid"

// OrderTypeEnergyFlash is the only order type produced by the flash-rent pipeline.
const OrderTypeEnergyFlash = "energy_flash"

// Processing stages recorded in ProcessingDetails.
const (
	StageCreated   = "created"
	StageUpdated   = "updated"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// Order is a flash-rent energy order.
type Order struct {
	ID                      int64
	OrderNumber             string
	NetworkID               string
	TargetAddress           string
	PaymentTxID             string
	OrderType               string
	PaymentAmount           decimal.Decimal
	CalculatedUnits         int64
	ResourceAmount          int64
	Price                   decimal.Decimal
	PaymentStatus           PaymentStatus
	Status                  OrderStatus
	DelegatedResourceAmount *int64
	DelegationTxID          *string
	CompletedAt             *time.Time
	ErrorMessage            *string
	RetryCount              int
	ProcessingDetails       ProcessingDetails
	ExpiresAt               *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// ProcessingDetails is the audit snapshot stored with every transition.
type ProcessingDetails struct {
	Stage         string              `json:"stage"`
	RecordedAt    time.Time           `json:"recorded_at"`
	PaymentTxID   string              `json:"payment_tx_id,omitempty"`
	UpdateTxID    string              `json:"update_tx_id,omitempty"`
	PaymentAmount string              `json:"payment_amount,omitempty"`
	Config        *ConfigSnapshot     `json:"config,omitempty"`
	Calculation   *CalculationInputs  `json:"calculation,omitempty"`
	Delegation    *DelegationSnapshot `json:"delegation,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// ConfigSnapshot records the price configuration used for a transition.
type ConfigSnapshot struct {
	PricePerUnit        string `json:"price_per_unit"`
	MaxUnits            int64  `json:"max_units"`
	ResourceExpiryHours string `json:"resource_expiry_hours"`
	PaymentAddress      string `json:"payment_address,omitempty"`
}

// CalculationInputs records the calculation used for a transition.
type CalculationInputs struct {
	Units          int64  `json:"units"`
	PerUnitCost    int64  `json:"per_unit_cost"`
	ResourceAmount int64  `json:"resource_amount"`
	Price          string `json:"price"`
}

// DelegationSnapshot records delegation outcome.
type DelegationSnapshot struct {
	TxID   string `json:"tx_id,omitempty"`
	Amount int64  `json:"amount"`
}

// NewConfigSnapshot captures cfg for audit.
func NewConfigSnapshot(cfg *PricingConfig) *ConfigSnapshot {
	if cfg == nil {
		return nil
	}
	return &ConfigSnapshot{
		PricePerUnit:        cfg.PricePerUnit.String(),
		MaxUnits:            cfg.MaxUnits,
		ResourceExpiryHours: cfg.ResourceExpiryHours.String(),
		PaymentAddress:      cfg.PaymentAddress,
	}
}

// NewCalculationInputs captures calc for audit.
func NewCalculationInputs(calc Calculation) *CalculationInputs {
	return &CalculationInputs{
		Units:          calc.Units,
		PerUnitCost:    calc.PerUnitCost,
		ResourceAmount: calc.ResourceAmount,
		Price:          calc.Price.String(),
	}
}

// OrderDraft carries the facts written by insert and update.
type OrderDraft struct {
	OrderNumber   string
	TargetAddress string
	PaymentAmount decimal.Decimal
	NetworkID     string
	PaymentTxID   string
	Calculation   Calculation
	Config        *PricingConfig
	ExpiresAt     time.Time
	Details       ProcessingDetails
}

// DelegationRequest describes energy to delegate for an order.
type DelegationRequest struct {
	TargetAddress  string
	ResourceAmount int64
	ExpiryHours    decimal.Decimal
	NetworkID      string
	TxID           string
	OrderNumber    string
}

// PaymentParams describes an observed incoming payment.
type PaymentParams struct {
	FromAddress string
	Amount      decimal.Decimal
	NetworkID   string
	TxID        string
}

// UpdateParams describes a payment referencing an existing order.
type UpdateParams struct {
	ExistingOrderID int64
	PaymentParams
}
