package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
)

var orderColumnNames = []string{
	"id", "order_number", "network_id", "target_address", "payment_tx_id", "order_type",
	"payment_amount", "calculated_units", "resource_amount", "price", "payment_status", "status",
	"delegated_resource_amount", "delegation_tx_id", "completed_at", "error_message", "retry_count",
	"processing_details", "expires_at", "created_at", "updated_at",
}

type orderRowOpts struct {
	status    model.OrderStatus
	retry     int
	errMsg    *string
	txID      *string
	delegated *int64
	details   []byte
}

func orderRows(id int64, opts orderRowOpts) *pgxmockv3.Rows {
	now := time.Now()
	expires := now.Add(time.Hour)
	var completedAt *time.Time
	if opts.status == model.OrderStatusCompleted {
		completedAt = &now
	}
	details := opts.details
	if details == nil {
		details = []byte(`{"stage":"created"}`)
	}
	return pgxmockv3.NewRows(orderColumnNames).AddRow(
		id, "FL1700000000000ABC123", "mainnet", "TTarget", "tx-1", model.OrderTypeEnergyFlash,
		decimal.NewFromInt(30), int64(3), int64(198900), decimal.NewFromInt(30), model.PaymentStatusPaid, opts.status,
		opts.delegated, opts.txID, completedAt, opts.errMsg, opts.retry,
		details, &expires, now, now,
	)
}

func sampleDraft() model.OrderDraft {
	return model.OrderDraft{
		OrderNumber:   "FL1700000000000ABC123",
		TargetAddress: "TTarget",
		PaymentAmount: decimal.NewFromInt(30),
		NetworkID:     "mainnet",
		PaymentTxID:   "tx-1",
		Calculation:   model.Calculation{Units: 3, ResourceAmount: 198900, PerUnitCost: 66300, Price: decimal.NewFromInt(30), Valid: true},
		ExpiresAt:     time.Now().Add(time.Hour),
		Details:       model.ProcessingDetails{Stage: model.StageCreated},
	}
}

func TestOrderRepositoryInsert(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	draft := sampleDraft()

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(draft.OrderNumber, "mainnet", "TTarget", "tx-1", model.OrderTypeEnergyFlash,
			pgxmockv3.AnyArg(), int64(3), int64(198900), pgxmockv3.AnyArg(),
			model.PaymentStatusPaid, model.OrderStatusPendingDelegation, pgxmockv3.AnyArg(), pgxmockv3.AnyArg()).
		WillReturnRows(orderRows(7, orderRowOpts{status: model.OrderStatusPendingDelegation}))

	order, err := repo.Insert(context.Background(), draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 7 || order.Status != model.OrderStatusPendingDelegation || order.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.ProcessingDetails.Stage != model.StageCreated {
		t.Fatalf("expected decoded processing details, got %+v", order.ProcessingDetails)
	}
	if !order.PaymentAmount.Equal(decimal.NewFromInt(30)) || order.CalculatedUnits != 3 {
		t.Fatalf("unexpected computed facts: %+v", order)
	}

	mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Insert(context.Background(), draft); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists error, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO orders").WillReturnError(errors.New("insert"))
	if _, err := repo.Insert(context.Background(), draft); err == nil || errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected raw error, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO orders").WillReturnRows(orderRows(8, orderRowOpts{status: model.OrderStatusPendingDelegation, details: []byte("{bad")}))
	if _, err := repo.Insert(context.Background(), draft); err == nil || !strings.Contains(err.Error(), "processing details") {
		t.Fatalf("expected details decode error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryUpdate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	draft := sampleDraft()

	mock.ExpectQuery("UPDATE orders").
		WithArgs("TTarget", pgxmockv3.AnyArg(), int64(3), int64(198900), pgxmockv3.AnyArg(),
			model.OrderStatusPendingDelegation, pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), int64(7)).
		WillReturnRows(orderRows(7, orderRowOpts{status: model.OrderStatusPendingDelegation, retry: 2}))

	order, err := repo.Update(context.Background(), 7, draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 7 || order.RetryCount != 2 || order.OrderNumber != draft.OrderNumber {
		t.Fatalf("unexpected order: %+v", order)
	}

	mock.ExpectQuery("UPDATE orders").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Update(context.Background(), 99, draft); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryMarkCompleted(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	txID := "deleg-tx"
	amount := int64(198900)
	mock.ExpectQuery("UPDATE orders").
		WithArgs(model.OrderStatusCompleted, amount, txID, pgxmockv3.AnyArg(), int64(7)).
		WillReturnRows(orderRows(7, orderRowOpts{status: model.OrderStatusCompleted, txID: &txID, delegated: &amount}))

	order, err := repo.MarkCompleted(context.Background(), 7, amount, txID, model.ProcessingDetails{Stage: model.StageCompleted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusCompleted || order.DelegationTxID == nil || *order.DelegationTxID != txID {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.CompletedAt == nil || order.DelegatedResourceAmount == nil || *order.DelegatedResourceAmount != amount {
		t.Fatalf("expected delegation facts, got %+v", order)
	}

	mock.ExpectQuery("UPDATE orders").WillReturnError(errors.New("down"))
	if _, err := repo.MarkCompleted(context.Background(), 7, amount, txID, model.ProcessingDetails{}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryMarkFailedIncrementsInSQL(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	msg := "timeout"
	mock.ExpectQuery(`retry_count = retry_count \+ 1`).
		WithArgs(model.OrderStatusFailed, "timeout", pgxmockv3.AnyArg(), int64(7)).
		WillReturnRows(orderRows(7, orderRowOpts{status: model.OrderStatusFailed, retry: 1, errMsg: &msg}))

	order, err := repo.MarkFailed(context.Background(), 7, "timeout", model.ProcessingDetails{Stage: model.StageFailed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusFailed || order.RetryCount != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.ErrorMessage == nil || *order.ErrorMessage != "timeout" {
		t.Fatalf("expected error message, got %v", order.ErrorMessage)
	}

	mock.ExpectQuery("UPDATE orders").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.MarkFailed(context.Background(), 8, "x", model.ProcessingDetails{}); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGet(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(7)).
		WillReturnRows(orderRows(7, orderRowOpts{status: model.OrderStatusFailed}))
	order, err := repo.GetByID(context.Background(), 7)
	if err != nil || order.ID != 7 {
		t.Fatalf("unexpected order: %+v err=%v", order, err)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(8)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 8); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(9)).WillReturnError(errors.New("fail"))
	if _, err := repo.GetByID(context.Background(), 9); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE order_number=").WithArgs("FL1700000000000ABC123").
		WillReturnRows(orderRows(7, orderRowOpts{status: model.OrderStatusCompleted}))
	order, err = repo.GetByNumber(context.Background(), "FL1700000000000ABC123")
	if err != nil || order.OrderNumber != "FL1700000000000ABC123" {
		t.Fatalf("unexpected order: %+v err=%v", order, err)
	}

	mock.ExpectQuery("FROM orders WHERE order_number=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByNumber(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE payment_tx_id=").WithArgs("tx-1").
		WillReturnRows(orderRows(7, orderRowOpts{status: model.OrderStatusPendingDelegation}))
	order, err = repo.GetByPaymentTxID(context.Background(), "tx-1")
	if err != nil || order.PaymentTxID != "tx-1" || order.ID != 7 {
		t.Fatalf("unexpected order: %+v err=%v", order, err)
	}

	mock.ExpectQuery("FROM orders WHERE payment_tx_id=").WithArgs("tx-missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByPaymentTxID(context.Background(), "tx-missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
