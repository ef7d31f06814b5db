package types

import "errors"

// Table provides uniform CRUD operations for a single entity type in local
// storage. Get and Fetch return any; callers type-assert to the concrete
// entity struct.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used (generated or provided).
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table.
	Fetch(filter map[string]any) ([]any, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidKey    = errors.New("invalid setting key")
	ErrInvalidFilter = errors.New("invalid filter value type")
)

// Schema and codec errors.
var (
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	ErrDuplicateSlug        = errors.New("duplicate field slug")
	ErrUnknownField         = errors.New("unknown field")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidNumber        = errors.New("invalid number")
	ErrInvalidChoice        = errors.New("value does not match any choice")
)

// Filter errors.
var (
	ErrEmptyFilterGroup      = errors.New("filter group has no conditions")
	ErrFieldNotFilterable    = errors.New("field is not filterable")
	ErrOperatorNotApplicable = errors.New("operator not valid for field type")
	ErrInvalidBucket         = errors.New("invalid condition bucket")
	ErrConditionNotFound     = errors.New("condition not found")
	ErrFilterNotFound        = errors.New("filter group not found")
	ErrValidation            = errors.New("validation failed")
)

// ErrNetwork marks failures talking to the backend: transport errors and
// non-2xx responses.
var ErrNetwork = errors.New("backend request failed")
