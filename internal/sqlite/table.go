package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

var (
	_ types.Table = (*settingsTable)(nil)
	_ types.Table = (*snapshotsTable)(nil)
)

// timeLayout keeps a fixed fraction width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// settingsTable stores types.Setting rows keyed by Setting.Key.
type settingsTable struct {
	backend *Backend
}

// Get returns the *types.Setting stored under key.
func (t *settingsTable) Get(key string) (any, error) {
	if key == "" {
		return nil, types.ErrInvalidKey
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	row := t.backend.db.QueryRow("SELECT key, value, updated_at FROM settings WHERE key = ?", key)
	return scanSetting(row)
}

// Set upserts a *types.Setting. An empty key falls back to Setting.Key.
func (t *settingsTable) Set(key string, data any) (string, error) {
	s, ok := data.(*types.Setting)
	if !ok || s == nil {
		return "", types.ErrInvalidData
	}
	if key == "" {
		key = s.Key
	}
	if key == "" {
		return "", types.ErrInvalidKey
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	s.Key = key
	s.UpdatedAt = t.backend.now()
	_, err := t.backend.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.Key, s.Value, s.UpdatedAt.Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("saving setting %s: %w", key, err)
	}
	return key, nil
}

// Delete removes the setting stored under key.
func (t *settingsTable) Delete(key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}
	return execDelete(t.backend.db, "DELETE FROM settings WHERE key = ?", key)
}

// Fetch returns every setting, ordered by key. The only supported filter
// key is "key".
func (t *settingsTable) Fetch(filter map[string]any) ([]any, error) {
	query := "SELECT key, value, updated_at FROM settings"
	var args []any
	if v, ok := filter["key"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE key = ?"
		args = append(args, s)
	}
	query += " ORDER BY key"

	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching settings: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// snapshotsTable stores one types.SchemaSnapshot per locale.
type snapshotsTable struct {
	backend *Backend
}

// Get returns the *types.SchemaSnapshot with the given snapshot id.
func (t *snapshotsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	row := t.backend.db.QueryRow(
		"SELECT snapshot_id, locale, blocks, fetched_at FROM schema_snapshots WHERE snapshot_id = ?", id)
	return scanSnapshot(row)
}

// Set stores a *types.SchemaSnapshot, replacing any snapshot for the same
// locale. A new UUID v7 is generated when id and SnapshotID are both empty.
func (t *snapshotsTable) Set(id string, data any) (string, error) {
	s, ok := data.(*types.SchemaSnapshot)
	if !ok || s == nil || s.Locale == "" {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = s.SnapshotID
	}
	if id == "" {
		id = generateUUID()
	}
	blocks, err := json.Marshal(s.Blocks)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot blocks: %w", err)
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	s.SnapshotID = id
	if s.FetchedAt.IsZero() {
		s.FetchedAt = t.backend.now()
	}
	s.FetchedAt = s.FetchedAt.UTC()
	_, err = t.backend.db.Exec(
		`INSERT INTO schema_snapshots (snapshot_id, locale, blocks, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(locale) DO UPDATE SET snapshot_id = excluded.snapshot_id,
		   blocks = excluded.blocks, fetched_at = excluded.fetched_at`,
		s.SnapshotID, s.Locale, string(blocks), s.FetchedAt.Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("saving schema snapshot: %w", err)
	}
	return id, nil
}

// Delete removes the snapshot with the given id.
func (t *snapshotsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrStoreDetached
	}
	return execDelete(t.backend.db, "DELETE FROM schema_snapshots WHERE snapshot_id = ?", id)
}

// Fetch returns snapshots, newest first. Supported filter key: "locale".
func (t *snapshotsTable) Fetch(filter map[string]any) ([]any, error) {
	query := "SELECT snapshot_id, locale, blocks, fetched_at FROM schema_snapshots"
	var args []any
	if v, ok := filter["locale"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE locale = ?"
		args = append(args, s)
	}
	query += " ORDER BY fetched_at DESC"

	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching schema snapshots: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSetting(row scanner) (*types.Setting, error) {
	var s types.Setting
	var updatedAt string
	err := row.Scan(&s.Key, &s.Value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning setting: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing setting updated_at: %w", err)
	}
	return &s, nil
}

func scanSnapshot(row scanner) (*types.SchemaSnapshot, error) {
	var s types.SchemaSnapshot
	var blocks, fetchedAt string
	err := row.Scan(&s.SnapshotID, &s.Locale, &blocks, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning schema snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(blocks), &s.Blocks); err != nil {
		return nil, fmt.Errorf("decoding snapshot blocks: %w", err)
	}
	if s.FetchedAt, err = time.Parse(timeLayout, fetchedAt); err != nil {
		return nil, fmt.Errorf("parsing snapshot fetched_at: %w", err)
	}
	return &s, nil
}

func execDelete(db *sql.DB, query string, id string) error {
	res, err := db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}
