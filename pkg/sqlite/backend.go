// Package sqlite exposes the SQLite-backed types.Store while keeping the
// implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/clientdesk/internal/sqlite"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// NewStore creates a detached SQLite store.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.StoreConfig{
//	    Backend: types.BackendSQLite,
//	    DataDir: dataDir,
//	})
//	defer store.Detach()
func NewStore() types.Store {
	return sqlite.NewBackend()
}
