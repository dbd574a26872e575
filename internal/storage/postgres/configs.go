package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

func (r *pricingConfigRepository) ActiveConfig(ctx context.Context, networkID, mode string) (map[string]any, error) {
	const query = `SELECT config FROM price_configs
                   WHERE network_id=$1 AND mode_type=$2 AND is_active
                   ORDER BY updated_at DESC
                   LIMIT 1`
	var raw []byte
	if err := r.storage.pool.QueryRow(ctx, query, networkID, mode).Scan(&raw); err != nil {
		return nil, notFound(err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	doc := make(map[string]any)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode price config: %w", err)
	}
	return doc, nil
}

func (r *settingsRepository) Values(ctx context.Context, keys ...string) (map[string]string, error) {
	const query = `SELECT setting_key, setting_value FROM system_settings WHERE setting_key = ANY($1)`
	rows, err := r.storage.pool.Query(ctx, query, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
