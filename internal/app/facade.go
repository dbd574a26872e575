package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
	"github.com/polkiloo/flashrent/internal/domain/repository"
	"github.com/polkiloo/flashrent/internal/usecase"
)

// HealthChecker reports backing store availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// IntakeRecorder counts payment submissions.
type IntakeRecorder interface {
	PaymentReceived(networkID string, duplicate bool)
}

type nopIntake struct{}

func (nopIntake) PaymentReceived(string, bool) {}

// FlashRentFacade fronts the order pipeline for the HTTP layer and the payment worker.
type FlashRentFacade struct {
	creator *usecase.OrderCreator
	updater *usecase.OrderUpdater
	numbers *usecase.OrderNumberGenerator
	orders  repository.OrderRepository
	events  repository.PaymentEventRepository
	health  HealthChecker
	intake  IntakeRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// FacadeParams lists facade dependencies.
type FacadeParams struct {
	fx.In

	Creator *usecase.OrderCreator
	Updater *usecase.OrderUpdater
	Numbers *usecase.OrderNumberGenerator
	Orders  repository.OrderRepository
	Events  repository.PaymentEventRepository
	Health  HealthChecker
	Intake  IntakeRecorder `optional:"true"`
	Logger  *zap.Logger
}

// NewFlashRentFacade constructs FlashRentFacade.
func NewFlashRentFacade(p FacadeParams) *FlashRentFacade {
	intake := p.Intake
	if intake == nil {
		intake = nopIntake{}
	}
	return &FlashRentFacade{
		creator: p.Creator,
		updater: p.Updater,
		numbers: p.Numbers,
		orders:  p.Orders,
		events:  p.Events,
		health:  p.Health,
		intake:  intake,
		logger:  p.Logger.Named("facade"),
		now:     time.Now,
	}
}

// SubmitPayment queues an observed payment. The flag is false when the tx was already queued.
func (f *FlashRentFacade) SubmitPayment(ctx context.Context, event model.PaymentEvent) (*model.PaymentEvent, bool, error) {
	if err := usecase.ValidatePayment(event.Params()); err != nil {
		return nil, false, err
	}
	stored, created, err := f.events.Enqueue(ctx, event)
	if err != nil {
		return nil, false, err
	}
	f.intake.PaymentReceived(event.NetworkID, !created)
	return stored, created, nil
}

// ProcessPayment turns a queued event into an order. Events that reference an order
// update it when it is still open and the payment differs from what is stored.
func (f *FlashRentFacade) ProcessPayment(ctx context.Context, event model.PaymentEvent) (*model.Order, error) {
	if event.ExistingOrderID == nil {
		return f.create(ctx, event)
	}

	orderID := *event.ExistingOrderID
	existing, err := f.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", orderID, err)
	}
	if !f.updater.CanBeUpdated(existing, f.now()) {
		return nil, fmt.Errorf("%w: order %s is %s", domainErrors.ErrOrderNotUpdatable, existing.OrderNumber, existing.Status)
	}
	needs, reason := f.updater.NeedsUpdate(existing, event.Amount, event.FromAddress)
	if !needs {
		return existing, nil
	}
	f.logger.Info("updating order", zap.String("order", existing.OrderNumber), zap.String("reason", reason))

	return f.updater.Update(ctx, model.UpdateParams{ExistingOrderID: orderID, PaymentParams: event.Params()})
}

// create resolves a repeated creation to the order already made for the payment, so an
// event picked up again after a crash between insert and marking still closes.
func (f *FlashRentFacade) create(ctx context.Context, event model.PaymentEvent) (*model.Order, error) {
	order, err := f.creator.Create(ctx, event.Params())
	if !errors.Is(err, domainErrors.ErrAlreadyExists) {
		return order, err
	}
	existing, lookupErr := f.orders.GetByPaymentTxID(ctx, event.TxID)
	if lookupErr != nil {
		return nil, err
	}
	log := f.logger.With(zap.String("order", existing.OrderNumber), zap.String("tx", event.TxID))
	if existing.Status == model.OrderStatusPendingDelegation {
		// Delegation outcome unknown; never re-delegated automatically.
		log.Warn("payment already has an order stuck before delegation, redelegate to finish it", zap.Int64("order_id", existing.ID))
	} else {
		log.Info("payment already has an order", zap.String("status", string(existing.Status)))
	}
	return existing, nil
}

// Order returns order by its public number.
func (f *FlashRentFacade) Order(ctx context.Context, number string) (*model.Order, error) {
	if !f.numbers.Validate(number) {
		return nil, domainErrors.ErrInvalidOrderNumber
	}
	return f.orders.GetByNumber(ctx, number)
}

// Redelegate re-drives a stored order through pricing and delegation.
func (f *FlashRentFacade) Redelegate(ctx context.Context, orderID int64) (*model.Order, error) {
	return f.updater.Redelegate(ctx, orderID)
}

func (f *FlashRentFacade) EventsForProcessing(ctx context.Context, limit int) ([]model.PaymentEvent, error) {
	return f.events.SelectBatchForProcessing(ctx, limit)
}

func (f *FlashRentFacade) MarkEventProcessed(ctx context.Context, eventID, orderID int64) error {
	return f.events.MarkProcessed(ctx, eventID, orderID)
}

func (f *FlashRentFacade) MarkEventRejected(ctx context.Context, eventID int64, reason string) error {
	return f.events.MarkRejected(ctx, eventID, reason)
}

func (f *FlashRentFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
