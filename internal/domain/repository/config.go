package repository

import "context"

// PricingConfigRepository reads raw price configuration documents.
type PricingConfigRepository interface {
	ActiveConfig(ctx context.Context, networkID, mode string) (map[string]any, error)
}

// SettingsRepository reads system-wide settings.
type SettingsRepository interface {
	Values(ctx context.Context, keys ...string) (map[string]string, error)
}
