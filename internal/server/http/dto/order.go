package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderResponse is the public view of a flash-rent order.
type OrderResponse struct {
	ID                      int64           `json:"id"`
	OrderNumber             string          `json:"order_number"`
	NetworkID               string          `json:"network_id"`
	TargetAddress           string          `json:"target_address"`
	PaymentTxID             string          `json:"payment_tx_id"`
	OrderType               string          `json:"order_type"`
	PaymentAmount           decimal.Decimal `json:"payment_amount"`
	CalculatedUnits         int64           `json:"calculated_units"`
	ResourceAmount          int64           `json:"resource_amount"`
	Price                   decimal.Decimal `json:"price"`
	PaymentStatus           string          `json:"payment_status"`
	Status                  string          `json:"status"`
	DelegatedResourceAmount *int64          `json:"delegated_resource_amount,omitempty"`
	DelegationTxID          *string         `json:"delegation_tx_id,omitempty"`
	CompletedAt             *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage            *string         `json:"error_message,omitempty"`
	RetryCount              int             `json:"retry_count"`
	ExpiresAt               *time.Time      `json:"expires_at,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// ErrorResponse carries a client-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
