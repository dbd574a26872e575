package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"pending", OrderStatusPending, "pending"},
		{"pending delegation", OrderStatusPendingDelegation, "pending_delegation"},
		{"processing", OrderStatusProcessing, "processing"},
		{"completed", OrderStatusCompleted, "completed"},
		{"failed", OrderStatusFailed, "failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestResourceCostPerUnit(t *testing.T) {
	cases := []struct {
		name string
		cost ResourceCost
		want int64
	}{
		{"default", DefaultResourceCost, 66300},
		{"no buffer", ResourceCost{StandardEnergy: 65000, BufferPercentage: decimal.Zero}, 65000},
		{"rounds half up", ResourceCost{StandardEnergy: 1, BufferPercentage: decimal.NewFromInt(50)}, 2},
		{"fractional buffer", ResourceCost{StandardEnergy: 32000, BufferPercentage: decimal.RequireFromString("2.5")}, 32800},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cost.PerUnit(); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSnapshots(t *testing.T) {
	if NewConfigSnapshot(nil) != nil {
		t.Fatal("expected nil snapshot for nil config")
	}
	cfg := &PricingConfig{PricePerUnit: decimal.RequireFromString("2.5"), MaxUnits: 10, ResourceExpiryHours: decimal.NewFromInt(1), PaymentAddress: "TPay"}
	snap := NewConfigSnapshot(cfg)
	if snap.PricePerUnit != "2.5" || snap.MaxUnits != 10 || snap.ResourceExpiryHours != "1" || snap.PaymentAddress != "TPay" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	inputs := NewCalculationInputs(Calculation{Units: 2, PerUnitCost: 66300, ResourceAmount: 132600, Price: decimal.NewFromInt(5)})
	if inputs.Units != 2 || inputs.ResourceAmount != 132600 || inputs.Price != "5" {
		t.Fatalf("unexpected inputs: %+v", inputs)
	}
}

func TestPaymentEventParams(t *testing.T) {
	ev := PaymentEvent{TxID: "tx", FromAddress: "TFrom", NetworkID: "mainnet", Amount: decimal.NewFromInt(3)}
	p := ev.Params()
	if p.TxID != "tx" || p.FromAddress != "TFrom" || p.NetworkID != "mainnet" || !p.Amount.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected params: %+v", p)
	}
}
