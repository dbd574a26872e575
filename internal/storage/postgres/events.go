package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/flashrent/internal/domain/model"
)

const eventColumns = `id, tx_id, from_address, network_id, amount, existing_order_id, status, order_id, error, received_at, processed_at`

func scanEvent(row pgx.Row) (*model.PaymentEvent, error) {
	var e model.PaymentEvent
	err := row.Scan(&e.ID, &e.TxID, &e.FromAddress, &e.NetworkID, &e.Amount, &e.ExistingOrderID,
		&e.Status, &e.OrderID, &e.Error, &e.ReceivedAt, &e.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *paymentEventRepository) Enqueue(ctx context.Context, event model.PaymentEvent) (*model.PaymentEvent, bool, error) {
	query := `INSERT INTO payment_events (tx_id, from_address, network_id, amount, existing_order_id, status)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (tx_id) DO NOTHING
              RETURNING ` + eventColumns
	created, err := scanEvent(r.storage.pool.QueryRow(ctx, query,
		event.TxID, event.FromAddress, event.NetworkID, event.Amount, event.ExistingOrderID, model.PaymentEventQueued,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := scanEvent(r.storage.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM payment_events WHERE tx_id=$1`, event.TxID))
	if err != nil {
		return nil, false, notFound(err)
	}
	return existing, false, nil
}

// SelectBatchForProcessing claims queued events and events whose worker vanished.
func (r *paymentEventRepository) SelectBatchForProcessing(ctx context.Context, limit int) ([]model.PaymentEvent, error) {
	selectQuery := `SELECT ` + eventColumns + `
                    FROM payment_events
                    WHERE status = 'queued'
                       OR (status = 'processing' AND updated_at < NOW() - INTERVAL '5 minutes')
                    ORDER BY received_at
                    LIMIT $1
                    FOR UPDATE SKIP LOCKED`

	var events []model.PaymentEvent
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}

		for rows.Next() {
			e, err := scanEvent(rows)
			if err != nil {
				rows.Close()
				return err
			}
			events = append(events, *e)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range events {
			if _, err := tx.Exec(ctx, `UPDATE payment_events SET status='processing', updated_at=NOW() WHERE id=$1`, events[i].ID); err != nil {
				return err
			}
			events[i].Status = model.PaymentEventProcessing
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *paymentEventRepository) MarkProcessed(ctx context.Context, eventID, orderID int64) error {
	const query = `UPDATE payment_events
                   SET status=$1, order_id=$2, error=NULL, processed_at=NOW(), updated_at=NOW()
                   WHERE id=$3`
	_, err := r.storage.pool.Exec(ctx, query, model.PaymentEventProcessed, orderID, eventID)
	return err
}

func (r *paymentEventRepository) MarkRejected(ctx context.Context, eventID int64, reason string) error {
	const query = `UPDATE payment_events
                   SET status=$1, error=$2, processed_at=NOW(), updated_at=NOW()
                   WHERE id=$3`
	_, err := r.storage.pool.Exec(ctx, query, model.PaymentEventRejected, reason, eventID)
	return err
}
