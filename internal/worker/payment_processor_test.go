package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
	testhelpers "github.com/polkiloo/flashrent/internal/test"
)

func event(id int64) model.PaymentEvent {
	return model.PaymentEvent{
		ID:          id,
		TxID:        testhelpers.RandomTxID(),
		FromAddress: testhelpers.RandomTronAddress(),
		NetworkID:   "mainnet",
		Amount:      decimal.NewFromInt(30),
		Status:      model.PaymentEventProcessing,
	}
}

func waitFor(t *testing.T, facade *testhelpers.WorkerFacadeStub, done func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		facade.Lock()
		ok := done()
		facade.Unlock()
		if ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for payment processing")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewPaymentProcessorDefaults(t *testing.T) {
	proc := NewPaymentProcessor(&testhelpers.WorkerFacadeStub{}, 0, 0, 0, zap.NewNop())
	if proc.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", proc.batchSize)
	}
	if proc.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", proc.workers)
	}
	if proc.pollInterval != time.Second {
		t.Fatalf("expected poll interval default to 1s, got %v", proc.pollInterval)
	}
}

func TestPaymentProcessorProcessesEvents(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{Events: [][]model.PaymentEvent{{event(1), event(2)}}}
	proc := NewPaymentProcessor(facade, 5*time.Millisecond, 2, 2, zap.NewNop())

	proc.Start(context.Background())
	waitFor(t, facade, func() bool { return len(facade.Processed) == 2 })
	proc.Stop()

	if facade.Processed[1] != 10 || facade.Processed[2] != 20 {
		t.Fatalf("unexpected processed map: %v", facade.Processed)
	}
	if len(facade.Rejected) != 0 {
		t.Fatalf("unexpected rejections: %v", facade.Rejected)
	}
}

func TestPaymentProcessorFailedDelegationIsProcessed(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		Events: [][]model.PaymentEvent{{event(3)}},
		ProcessFn: func(ctx context.Context, e model.PaymentEvent) (*model.Order, error) {
			return testhelpers.SampleOrder(33, "FL1700000000000ABC123", model.OrderStatusFailed), nil
		},
	}
	proc := NewPaymentProcessor(facade, 5*time.Millisecond, 1, 1, zap.NewNop())

	proc.Start(context.Background())
	waitFor(t, facade, func() bool { return len(facade.Processed) == 1 })
	proc.Stop()

	if facade.Processed[3] != 33 {
		t.Fatalf("expected failed order to close the event, got %v", facade.Processed)
	}
}

func TestPaymentProcessorRejectsPreCommitErrors(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		Events: [][]model.PaymentEvent{{event(4)}},
		ProcessFn: func(ctx context.Context, e model.PaymentEvent) (*model.Order, error) {
			return nil, fmt.Errorf("%w: Insufficient payment amount: 5", domainErrors.ErrCalculationInvalid)
		},
	}
	proc := NewPaymentProcessor(facade, 5*time.Millisecond, 1, 1, zap.NewNop())

	proc.Start(context.Background())
	waitFor(t, facade, func() bool { return len(facade.Rejected) == 1 })
	proc.Stop()

	if facade.Rejected[4] != "calculation invalid: Insufficient payment amount: 5" {
		t.Fatalf("unexpected rejection reason: %q", facade.Rejected[4])
	}
}

func TestPaymentProcessorLeavesTransientFailures(t *testing.T) {
	calls := make(chan struct{}, 4)
	facade := &testhelpers.WorkerFacadeStub{
		Events: [][]model.PaymentEvent{{event(5)}},
		ProcessFn: func(ctx context.Context, e model.PaymentEvent) (*model.Order, error) {
			calls <- struct{}{}
			return nil, errors.New("connection reset")
		},
	}
	proc := NewPaymentProcessor(facade, 5*time.Millisecond, 1, 1, zap.NewNop())

	proc.Start(context.Background())
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for processing attempt")
	}
	proc.Stop()

	facade.Lock()
	defer facade.Unlock()
	if len(facade.Processed) != 0 || len(facade.Rejected) != 0 {
		t.Fatalf("transient failure must not close the event: processed=%v rejected=%v", facade.Processed, facade.Rejected)
	}
}

func TestPaymentProcessorStopIsIdempotent(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		EventsFn: func(context.Context, int) ([]model.PaymentEvent, error) {
			return nil, errors.New("db down")
		},
	}
	proc := NewPaymentProcessor(facade, time.Millisecond, 1, 1, zap.NewNop())
	proc.Start(context.Background())
	proc.Start(context.Background())
	time.Sleep(5 * time.Millisecond)
	proc.Stop()
	proc.Stop()
}

func TestRejected(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("%w: x", domainErrors.ErrInvalidPayment), true},
		{fmt.Errorf("%w mainnet: price", domainErrors.ErrConfigInvalid), true},
		{domainErrors.ErrAlreadyExists, true},
		{fmt.Errorf("order 7: %w", domainErrors.ErrNotFound), true},
		{domainErrors.ErrOrderNotUpdatable, true},
		{context.DeadlineExceeded, false},
		{errors.New("lock payment:tx: not acquired"), false},
	}
	for _, tt := range tests {
		if got := Rejected(tt.err); got != tt.want {
			t.Fatalf("Rejected(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
