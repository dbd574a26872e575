package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
)

// PaymentFacade exposes the subset of application functionality required by the worker.
type PaymentFacade interface {
	EventsForProcessing(ctx context.Context, limit int) ([]model.PaymentEvent, error)
	ProcessPayment(ctx context.Context, event model.PaymentEvent) (*model.Order, error)
	MarkEventProcessed(ctx context.Context, eventID, orderID int64) error
	MarkEventRejected(ctx context.Context, eventID int64, reason string) error
}

// rejections are pipeline errors raised before any delegation; retrying the event cannot help.
var rejections = []error{
	domainErrors.ErrInvalidPayment,
	domainErrors.ErrConfigInvalid,
	domainErrors.ErrCalculationInvalid,
	domainErrors.ErrAlreadyExists,
	domainErrors.ErrNotFound,
	domainErrors.ErrOrderNotUpdatable,
}

// Rejected reports whether err means the payment event should be closed as rejected.
func Rejected(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// PaymentProcessor polls queued payment events and runs them through the order pipeline concurrently.
type PaymentProcessor struct {
	facade       PaymentFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *zap.Logger

	jobs   chan model.PaymentEvent
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentProcessor constructs payment processor worker pool.
func NewPaymentProcessor(facade PaymentFacade, pollInterval time.Duration, batchSize, workers int, logger *zap.Logger) *PaymentProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &PaymentProcessor{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger.Named("payment_processor"),
		jobs:         make(chan model.PaymentEvent, batchSize*workers),
	}
}

// Start launches background processing. ctx should outlive the fx start hook.
func (p *PaymentProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop cancels polling and waits for in-flight events to finish.
func (p *PaymentProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PaymentProcessor) fetchAndDispatch(ctx context.Context) {
	events, err := p.facade.EventsForProcessing(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("fetch payment events failed", zap.Error(err))
		}
		return
	}
	for _, event := range events {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- event:
		}
	}
}

func (p *PaymentProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleEvent(ctx, event)
		}
	}
}

func (p *PaymentProcessor) handleEvent(ctx context.Context, event model.PaymentEvent) {
	log := p.logger.With(zap.Int64("event", event.ID), zap.String("tx", event.TxID))

	order, err := p.facade.ProcessPayment(ctx, event)
	// The order row is already written; closing the event must not be lost to shutdown.
	markCtx := context.WithoutCancel(ctx)
	if err != nil {
		if !Rejected(err) {
			// Left in processing; the queue hands it out again once it goes stale.
			log.Error("payment processing failed", zap.Error(err))
			return
		}
		log.Warn("payment rejected", zap.Error(err))
		if err := p.facade.MarkEventRejected(markCtx, event.ID, err.Error()); err != nil {
			log.Error("mark event rejected failed", zap.Error(err))
		}
		return
	}

	if err := p.facade.MarkEventProcessed(markCtx, event.ID, order.ID); err != nil {
		log.Error("mark event processed failed", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}
	log.Info("payment processed",
		zap.Int64("order_id", order.ID),
		zap.String("order", order.OrderNumber),
		zap.String("status", string(order.Status)),
	)
}
