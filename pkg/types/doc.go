// Package types defines the entity types shared by the clientdesk engine:
// field descriptors, editable records, filter groups and sort state, plus the
// Store and Table interfaces of client-side storage and the standard error
// values.
package types
