package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/wkbadge/pkg/domain"
)

// SettingRepository handles key-value persistence of store items
type SettingRepository struct {
	db *sqlx.DB
}

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Load reads all stored items
func (r *SettingRepository) Load(ctx context.Context) (domain.Items, error) {
	var rows []settingRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT key, value FROM settings"); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	res := make(domain.Items, len(rows))
	for _, row := range rows {
		res[row.Key] = json.RawMessage(row.Value)
	}
	return res, nil
}

// Save upserts all given items in a single transaction
func (r *SettingRepository) Save(ctx context.Context, items domain.Items) error {
	if len(items) == 0 {
		return nil
	}
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	return inTx(ctx, r.db, "save settings", func(tx *sqlx.Tx) error {
		for key, value := range items {
			if _, err := tx.ExecContext(ctx, query, key, string(value)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes given keys
func (r *SettingRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return inTx(ctx, r.db, "delete settings", func(tx *sqlx.Tx) error {
		query, args, err := sqlx.In("DELETE FROM settings WHERE key IN (?)", keys)
		if err != nil {
			return &criticalError{err: err}
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
		return err
	})
}

// Purge removes all items
func (r *SettingRepository) Purge(ctx context.Context) error {
	return inTx(ctx, r.db, "purge settings", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM settings")
		return err
	})
}
