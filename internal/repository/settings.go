package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// DefaultHistoricalWindowYears applies until the user picks a window.
const DefaultHistoricalWindowYears = 5

const keyHistoricalWindow = "historical_window_years"

type settingsRepo struct {
	db *sql.DB
}

func (r *settingsRepo) GetHistoricalWindow(ctx context.Context) (int, error) {
	value, err := r.GetValue(ctx, keyHistoricalWindow)
	if errors.Is(err, ErrNotFound) {
		return DefaultHistoricalWindowYears, nil
	}
	if err != nil {
		return 0, err
	}
	years, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", keyHistoricalWindow, err)
	}
	return years, nil
}

func (r *settingsRepo) SetHistoricalWindow(ctx context.Context, years int) error {
	return r.SetValue(ctx, keyHistoricalWindow, strconv.Itoa(years))
}

func (r *settingsRepo) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (r *settingsRepo) SetValue(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

func (r *settingsRepo) DeleteValue(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}
