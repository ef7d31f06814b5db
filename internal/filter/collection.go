package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// GroupUpdater persists a changed filter group.
type GroupUpdater interface {
	UpdateFilterGroup(ctx context.Context, g types.FilterGroup) (types.FilterGroup, error)
}

// Collection is the set of saved filter groups for a listing. At most one
// group is the default, and at most one is applied. Safe for concurrent use.
type Collection struct {
	mu      sync.Mutex
	groups  []types.FilterGroup
	applied string
	updater GroupUpdater
}

// NewCollection wraps groups as loaded from the backend. If the backend
// reports several defaults only the first is kept.
func NewCollection(groups []types.FilterGroup, updater GroupUpdater) *Collection {
	c := &Collection{groups: append([]types.FilterGroup(nil), groups...), updater: updater}
	seen := false
	for i := range c.groups {
		if c.groups[i].IsDefault {
			if seen {
				c.groups[i].IsDefault = false
			}
			seen = true
		}
	}
	return c
}

// Groups returns a copy of the groups in backend order.
func (c *Collection) Groups() []types.FilterGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.FilterGroup(nil), c.groups...)
}

// Get returns the group with id.
func (c *Collection) Get(id string) (types.FilterGroup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.groups[i], true
	}
	return types.FilterGroup{}, false
}

// Default returns the default group, if any.
func (c *Collection) Default() (types.FilterGroup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.defaultLocked(); i >= 0 {
		return c.groups[i], true
	}
	return types.FilterGroup{}, false
}

func (c *Collection) indexLocked(id string) int {
	for i, g := range c.groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) defaultLocked() int {
	for i, g := range c.groups {
		if g.IsDefault {
			return i
		}
	}
	return -1
}

// SetDefault makes id the default group. The new default is saved first,
// then the previous default is unset. Local state changes only after the
// first save succeeds and never holds two defaults. If the second save
// fails the error is returned and the backend may still list the old group
// as default until the user retries.
func (c *Collection) SetDefault(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", types.ErrFilterNotFound, id)
	}
	if c.groups[i].IsDefault {
		return nil
	}
	prev := c.defaultLocked()

	target := c.groups[i]
	target.IsDefault = true
	saved, err := c.updater.UpdateFilterGroup(ctx, target)
	if err != nil {
		return fmt.Errorf("setting default filter %q: %w", id, err)
	}
	saved.IsDefault = true
	c.groups[i] = saved
	if prev < 0 {
		return nil
	}

	old := c.groups[prev]
	old.IsDefault = false
	c.groups[prev] = old
	if _, err := c.updater.UpdateFilterGroup(ctx, old); err != nil {
		return fmt.Errorf("clearing previous default filter %q: %w", old.ID, err)
	}
	return nil
}

// ClearDefault unsets the current default, if any.
func (c *Collection) ClearDefault(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.defaultLocked()
	if i < 0 {
		return nil
	}
	g := c.groups[i]
	g.IsDefault = false
	saved, err := c.updater.UpdateFilterGroup(ctx, g)
	if err != nil {
		return fmt.Errorf("clearing default filter %q: %w", g.ID, err)
	}
	saved.IsDefault = false
	c.groups[i] = saved
	return nil
}

// Apply selects id as the applied group. An empty id reverts to the
// default.
func (c *Collection) Apply(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != "" && c.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %q", types.ErrFilterNotFound, id)
	}
	c.applied = id
	return nil
}

// Applied returns the explicitly applied group, else the default group.
func (c *Collection) Applied() (types.FilterGroup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.applied != "" {
		if i := c.indexLocked(c.applied); i >= 0 {
			return c.groups[i], true
		}
	}
	if i := c.defaultLocked(); i >= 0 {
		return c.groups[i], true
	}
	return types.FilterGroup{}, false
}

// Replace inserts or replaces g after the backend saved it. A saved
// default clears the flag on every other group.
func (c *Collection) Replace(g types.FilterGroup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g.IsDefault {
		for i := range c.groups {
			c.groups[i].IsDefault = false
		}
	}
	if i := c.indexLocked(g.ID); i >= 0 {
		c.groups[i] = g
		return
	}
	c.groups = append(c.groups, g)
}

// Remove drops id after the backend deleted it.
func (c *Collection) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", types.ErrFilterNotFound, id)
	}
	c.groups = append(c.groups[:i], c.groups[i+1:]...)
	if c.applied == id {
		c.applied = ""
	}
	return nil
}
