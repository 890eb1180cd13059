package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CredentialKey is the settings key of the Firecrawl API key.
const CredentialKey = "firecrawl.apiKey"

// GetSetting returns the value stored under key and whether it exists.
func (s *StateDB) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *StateDB) SetSetting(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO settings (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, formatTimestamp(time.Now())); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key. Deleting a missing key is not an error.
func (s *StateDB) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// Credential returns the stored API key, or "" when none is stored.
func (s *StateDB) Credential(ctx context.Context) (string, error) {
	value, _, err := s.GetSetting(ctx, CredentialKey)
	return value, err
}

// SetCredential stores the API key.
func (s *StateDB) SetCredential(ctx context.Context, apiKey string) error {
	return s.SetSetting(ctx, CredentialKey, apiKey)
}

// ClearCredential removes the stored API key.
func (s *StateDB) ClearCredential(ctx context.Context) error {
	return s.DeleteSetting(ctx, CredentialKey)
}
