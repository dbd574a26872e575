package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/domain/repository"
)

const uniqueViolation = "23505"

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

var connectBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 15 * time.Second
	return b
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *zap.Logger
}

type orderRepository struct {
	storage *Storage
}

type pricingConfigRepository struct {
	storage *Storage
}

type settingsRepository struct {
	storage *Storage
}

type paymentEventRepository struct {
	storage *Storage
}

// New connects to the database, waiting for it to come up, and initializes schema.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.waitReady(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

func (s *Storage) waitReady(ctx context.Context) error {
	attempt := 0
	ping := func() error {
		attempt++
		return s.pool.Ping(ctx)
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("database not ready", zap.Int("attempt", attempt), zap.Duration("retry_in", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(connectBackOff(), ctx), notify); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) PricingConfigs() repository.PricingConfigRepository {
	return &pricingConfigRepository{storage: s}
}

func (s *Storage) Settings() repository.SettingsRepository {
	return &settingsRepository{storage: s}
}

func (s *Storage) PaymentEvents() repository.PaymentEventRepository {
	return &paymentEventRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            order_number TEXT UNIQUE NOT NULL,
            network_id TEXT NOT NULL,
            target_address TEXT NOT NULL,
            payment_tx_id TEXT UNIQUE NOT NULL,
            order_type TEXT NOT NULL,
            payment_amount NUMERIC(36, 6) NOT NULL,
            calculated_units BIGINT NOT NULL,
            resource_amount BIGINT NOT NULL,
            price NUMERIC(36, 6) NOT NULL,
            payment_status TEXT NOT NULL,
            status TEXT NOT NULL,
            delegated_resource_amount BIGINT,
            delegation_tx_id TEXT,
            completed_at TIMESTAMPTZ,
            error_message TEXT,
            retry_count INTEGER NOT NULL DEFAULT 0,
            processing_details JSONB,
            expires_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS price_configs (
            id SERIAL PRIMARY KEY,
            network_id TEXT NOT NULL,
            mode_type TEXT NOT NULL,
            config JSONB NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS system_settings (
            setting_key TEXT PRIMARY KEY,
            setting_value TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payment_events (
            id BIGSERIAL PRIMARY KEY,
            tx_id TEXT UNIQUE NOT NULL,
            from_address TEXT NOT NULL,
            network_id TEXT NOT NULL,
            amount NUMERIC(36, 6) NOT NULL,
            existing_order_id BIGINT,
            status TEXT NOT NULL,
            order_id BIGINT,
            error TEXT,
            received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            processed_at TIMESTAMPTZ,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_price_configs_active ON price_configs(network_id, mode_type) WHERE is_active`,
		`CREATE INDEX IF NOT EXISTS idx_payment_events_status ON payment_events(status, received_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
