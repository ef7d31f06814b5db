package types

import "time"

// Well-known setting keys.
const (
	// SettingLocale holds the active locale code.
	SettingLocale = "DEFAULT_LANGUAGE"
)

// Setting is a key/value pair kept in client-side storage. The key doubles as
// the entity ID.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SchemaSnapshot is the last schema fetched from the backend for a locale,
// kept so the console can render offline.
type SchemaSnapshot struct {
	SnapshotID string    `json:"snapshot_id"`
	Locale     string    `json:"locale"`
	Blocks     []Block   `json:"blocks"`
	FetchedAt  time.Time `json:"fetched_at"`
}
