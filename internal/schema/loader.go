package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Fetcher retrieves the schema blocks for a locale from the backend.
type Fetcher interface {
	FetchSchema(ctx context.Context, locale string) ([]types.Block, error)
}

// Loader fetches schemas and keeps the last good one per locale in the
// schema_snapshots table so the console can start without the backend.
type Loader struct {
	fetcher   Fetcher
	snapshots types.Table
	log       *slog.Logger
}

// NewLoader creates a Loader. snapshots may be nil to disable caching.
func NewLoader(fetcher Fetcher, snapshots types.Table, log *slog.Logger) *Loader {
	return &Loader{fetcher: fetcher, snapshots: snapshots, log: log}
}

// Load returns the registry for locale. A network failure falls back to
// the stored snapshot for the same locale; without one the fetch error is
// returned.
func (l *Loader) Load(ctx context.Context, locale string) (*Registry, error) {
	blocks, err := l.fetcher.FetchSchema(ctx, locale)
	if err != nil {
		if !errors.Is(err, types.ErrNetwork) {
			return nil, err
		}
		snap, snapErr := l.latest(locale)
		if snapErr != nil {
			return nil, err
		}
		l.log.Warn("schema fetch failed, using stored snapshot",
			"locale", locale, "fetched_at", snap.FetchedAt, "error", err)
		return NewRegistry(locale, snap.Blocks)
	}

	reg, err := NewRegistry(locale, blocks)
	if err != nil {
		return nil, err
	}
	if l.snapshots != nil {
		if _, err := l.snapshots.Set("", &types.SchemaSnapshot{Locale: locale, Blocks: blocks}); err != nil {
			l.log.Warn("storing schema snapshot failed", "locale", locale, "error", err)
		}
	}
	return reg, nil
}

func (l *Loader) latest(locale string) (*types.SchemaSnapshot, error) {
	if l.snapshots == nil {
		return nil, types.ErrNotFound
	}
	rows, err := l.snapshots.Fetch(map[string]any{"locale": locale})
	if err != nil {
		return nil, fmt.Errorf("reading schema snapshots: %w", err)
	}
	if len(rows) == 0 {
		return nil, types.ErrNotFound
	}
	snap, ok := rows[0].(*types.SchemaSnapshot)
	if !ok {
		return nil, types.ErrInvalidData
	}
	return snap, nil
}
