package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
)

const orderColumns = `id, order_number, network_id, target_address, payment_tx_id, order_type,
       payment_amount, calculated_units, resource_amount, price, payment_status, status,
       delegated_resource_amount, delegation_tx_id, completed_at, error_message, retry_count,
       processing_details, expires_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o       model.Order
		details []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.NetworkID, &o.TargetAddress, &o.PaymentTxID, &o.OrderType,
		&o.PaymentAmount, &o.CalculatedUnits, &o.ResourceAmount, &o.Price, &o.PaymentStatus, &o.Status,
		&o.DelegatedResourceAmount, &o.DelegationTxID, &o.CompletedAt, &o.ErrorMessage, &o.RetryCount,
		&details, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &o.ProcessingDetails); err != nil {
			return nil, fmt.Errorf("decode processing details: %w", err)
		}
	}
	return &o, nil
}

func encodeDetails(details model.ProcessingDetails) ([]byte, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode processing details: %w", err)
	}
	return raw, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	return err
}

func (r *orderRepository) Insert(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	query := `INSERT INTO orders (order_number, network_id, target_address, payment_tx_id, order_type,
                   payment_amount, calculated_units, resource_amount, price, payment_status, status,
                   processing_details, expires_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
              RETURNING ` + orderColumns

	details, err := encodeDetails(draft.Details)
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query,
		draft.OrderNumber, draft.NetworkID, draft.TargetAddress, draft.PaymentTxID, model.OrderTypeEnergyFlash,
		draft.PaymentAmount, draft.Calculation.Units, draft.Calculation.ResourceAmount, draft.Calculation.Price,
		model.PaymentStatusPaid, model.OrderStatusPendingDelegation,
		details, draft.ExpiresAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: payment %s", domainErrors.ErrAlreadyExists, draft.PaymentTxID)
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Update(ctx context.Context, orderID int64, draft model.OrderDraft) (*model.Order, error) {
	query := `UPDATE orders
              SET target_address=$1, payment_amount=$2, calculated_units=$3, resource_amount=$4, price=$5,
                  status=$6, processing_details=$7, expires_at=$8, updated_at=NOW()
              WHERE id=$9
              RETURNING ` + orderColumns

	details, err := encodeDetails(draft.Details)
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query,
		draft.TargetAddress, draft.PaymentAmount, draft.Calculation.Units, draft.Calculation.ResourceAmount,
		draft.Calculation.Price, model.OrderStatusPendingDelegation, details, draft.ExpiresAt, orderID,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepository) MarkCompleted(ctx context.Context, orderID int64, delegatedAmount int64, delegationTxID string, details model.ProcessingDetails) (*model.Order, error) {
	query := `UPDATE orders
              SET status=$1, delegated_resource_amount=$2, delegation_tx_id=$3, completed_at=NOW(),
                  processing_details=$4, updated_at=NOW()
              WHERE id=$5
              RETURNING ` + orderColumns

	raw, err := encodeDetails(details)
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query,
		model.OrderStatusCompleted, delegatedAmount, delegationTxID, raw, orderID,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

// MarkFailed increments retry_count in SQL so concurrent failures are never lost.
func (r *orderRepository) MarkFailed(ctx context.Context, orderID int64, errorMessage string, details model.ProcessingDetails) (*model.Order, error) {
	query := `UPDATE orders
              SET status=$1,
                  error_message = CASE
                      WHEN error_message IS NULL OR error_message = '' THEN $2::text
                      ELSE error_message || E'\n' || $2::text
                  END,
                  retry_count = retry_count + 1,
                  processing_details=$3, updated_at=NOW()
              WHERE id=$4
              RETURNING ` + orderColumns

	raw, err := encodeDetails(details)
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query,
		model.OrderStatusFailed, errorMessage, raw, orderID,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepository) GetByPaymentTxID(ctx context.Context, txID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_tx_id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, txID))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, number))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}
