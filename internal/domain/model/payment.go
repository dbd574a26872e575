package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEventStatus describes intake queue state.
type PaymentEventStatus string

const (
	PaymentEventQueued     PaymentEventStatus = "queued"
	PaymentEventProcessing PaymentEventStatus = "processing"
	PaymentEventProcessed  PaymentEventStatus = "processed"
	PaymentEventRejected   PaymentEventStatus = "rejected"
)

// PaymentEvent is an observed payment waiting to be turned into an order.
type PaymentEvent struct {
	ID              int64
	TxID            string
	FromAddress     string
	NetworkID       string
	Amount          decimal.Decimal
	ExistingOrderID *int64
	Status          PaymentEventStatus
	OrderID         *int64
	Error           *string
	ReceivedAt      time.Time
	ProcessedAt     *time.Time
}

// Params converts the event into pipeline input.
func (e PaymentEvent) Params() PaymentParams {
	return PaymentParams{
		FromAddress: e.FromAddress,
		Amount:      e.Amount,
		NetworkID:   e.NetworkID,
		TxID:        e.TxID,
	}
}
