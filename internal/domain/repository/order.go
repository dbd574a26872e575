package repository

import (
	"context"

	"github.com/polkiloo/flashrent/internal/domain/model"
)

// OrderRepository describes persistence operations with flash-rent orders.
type OrderRepository interface {
	Insert(ctx context.Context, draft model.OrderDraft) (*model.Order, error)
	Update(ctx context.Context, orderID int64, draft model.OrderDraft) (*model.Order, error)
	MarkCompleted(ctx context.Context, orderID int64, delegatedAmount int64, delegationTxID string, details model.ProcessingDetails) (*model.Order, error)
	MarkFailed(ctx context.Context, orderID int64, errorMessage string, details model.ProcessingDetails) (*model.Order, error)
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	GetByPaymentTxID(ctx context.Context, txID string) (*model.Order, error)
}
