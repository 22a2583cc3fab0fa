package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gadgeski/bugmemo-sub000/internal/store"
)

// Setting keys persisted for the app shell
const (
	SettingLanguage       = "language"
	SettingFontScale      = "editor_font_scale"
	SettingLastQuery      = "last_query"
	SettingSelectedFolder = "selected_folder"
	SettingGistToken      = "gist_token"
)

// SettingsRepository is a simple key-value store over the settings table
type SettingsRepository struct {
	db       *sql.DB
	notifier *store.Notifier
}

func NewSettingsRepository(db *sql.DB, notifier *store.Notifier) *SettingsRepository {
	return &SettingsRepository{db: db, notifier: notifier}
}

// Get returns the stored value for key, or "" when unset
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Put stores value under key, overwriting any previous value
func (r *SettingsRepository) Put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return err
	}

	if r.notifier != nil {
		r.notifier.Notify(store.TableSettings)
	}
	return nil
}

// Delete removes a key; missing keys are a no-op
func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}

	if r.notifier != nil {
		r.notifier.Notify(store.TableSettings)
	}
	return nil
}
