package repository

import (
	"context"

	"github.com/polkiloo/flashrent/internal/domain/model"
)

// PaymentEventRepository stores observed payments until the pipeline picks them up.
type PaymentEventRepository interface {
	Enqueue(ctx context.Context, event model.PaymentEvent) (*model.PaymentEvent, bool, error)
	SelectBatchForProcessing(ctx context.Context, limit int) ([]model.PaymentEvent, error)
	MarkProcessed(ctx context.Context, eventID, orderID int64) error
	MarkRejected(ctx context.Context, eventID int64, reason string) error
}
