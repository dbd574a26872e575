package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest describes an observed payment pushed by the chain watcher.
// Amount accepts both JSON numbers and numeric strings.
type PaymentRequest struct {
	FromAddress     string          `json:"from_address" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	NetworkID       string          `json:"network_id" binding:"required"`
	TxID            string          `json:"tx_id" binding:"required"`
	ExistingOrderID *int64          `json:"existing_order_id,omitempty"`
}

// PaymentResponse acknowledges a queued payment.
type PaymentResponse struct {
	EventID    int64     `json:"event_id"`
	TxID       string    `json:"tx_id"`
	Status     string    `json:"status"`
	Duplicate  bool      `json:"duplicate"`
	ReceivedAt time.Time `json:"received_at"`
}
