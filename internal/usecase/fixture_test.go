package usecase

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/domain/model"
	"github.com/polkiloo/flashrent/internal/test"
)

var fixedNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

type pipelineFixture struct {
	configs  *test.PricingConfigRepositoryStub
	settings *test.SettingsRepositoryStub
	orders   *test.OrderRepositoryStub
	granter  *test.GranterStub
	locker   *test.LockerStub

	provider   *ConfigProvider
	calculator *UnitCalculator
	numbers    *OrderNumberGenerator
	delegator  *ResourceDelegator
	creator    *OrderCreator
	updater    *OrderUpdater
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	logger := zap.NewNop()

	f := &pipelineFixture{
		configs: &test.PricingConfigRepositoryStub{Config: map[string]any{
			"single_price":     "10",
			"max_transactions": json.Number("5"),
			"expiry_hours":     json.Number("1"),
			"receive_address":  "TPaymentAddress",
		}},
		settings: &test.SettingsRepositoryStub{Settings: map[string]string{
			model.SettingStandardEnergy:   "65000",
			model.SettingBufferPercentage: "2",
		}},
		orders:  test.NewOrderRepositoryStub(),
		granter: &test.GranterStub{},
		locker:  &test.LockerStub{},
	}

	f.provider = NewConfigProvider(f.configs, logger)
	f.calculator = NewUnitCalculator(f.settings, logger)
	f.numbers = NewOrderNumberGenerator()
	f.numbers.now = func() time.Time { return fixedNow }
	f.delegator = NewResourceDelegator(f.granter, f.orders, nil, logger)
	f.creator = NewOrderCreator(f.provider, f.calculator, f.numbers, f.orders, f.delegator, f.locker, nil, logger)
	f.creator.now = func() time.Time { return fixedNow }
	f.updater = NewOrderUpdater(f.provider, f.calculator, f.orders, f.delegator, f.locker, nil, logger)
	f.updater.now = func() time.Time { return fixedNow }
	return f
}

func payment(txID string, amount int64) model.PaymentParams {
	return model.PaymentParams{
		FromAddress: "TBuyerAddress",
		Amount:      decimal.NewFromInt(amount),
		NetworkID:   "mainnet",
		TxID:        txID,
	}
}
