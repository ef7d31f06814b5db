package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// filterGroupBody is the create/update body for a filter group.
type filterGroupBody struct {
	GroupID    string                  `json:"filter_group_id,omitempty"`
	Name       string                  `json:"filter_name"`
	IsDefault  bool                    `json:"fg_default"`
	Default    bool                    `json:"default"`
	Conditions []types.FilterCondition `json:"filters"`
}

func newFilterGroupBody(g types.FilterGroup) filterGroupBody {
	conds := g.Conditions
	if conds == nil {
		conds = []types.FilterCondition{}
	}
	return filterGroupBody{
		GroupID:    g.ID,
		Name:       g.Name,
		IsDefault:  g.IsDefault,
		Default:    g.IsDefault,
		Conditions: conds,
	}
}

// ListFilterGroups reads the saved filter groups.
func (c *Client) ListFilterGroups(ctx context.Context) ([]types.FilterGroup, error) {
	var groups []types.FilterGroup
	err := c.do(ctx, call{method: http.MethodGet, path: pathFilters}, &groups)
	return groups, err
}

// CreateFilterGroup saves a new group. The returned group carries the id
// assigned by the backend when it reports one.
func (c *Client) CreateFilterGroup(ctx context.Context, g types.FilterGroup) (types.FilterGroup, error) {
	g.ID = ""
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodPost, path: pathFilters, body: newFilterGroupBody(g)}, &raw); err != nil {
		return types.FilterGroup{}, err
	}
	return mergeGroup(g, raw), nil
}

// UpdateFilterGroup saves changes to an existing group.
func (c *Client) UpdateFilterGroup(ctx context.Context, g types.FilterGroup) (types.FilterGroup, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodPut, path: pathFilters, body: newFilterGroupBody(g)}, &raw); err != nil {
		return types.FilterGroup{}, err
	}
	return mergeGroup(g, raw), nil
}

// DeleteFilterGroup removes group id.
func (c *Client) DeleteFilterGroup(ctx context.Context, id string) error {
	body := map[string]string{"filter_group_id": id}
	return c.do(ctx, call{method: http.MethodDelete, path: pathFilters, body: body}, nil)
}

// FilterOptions reads the operator catalog.
func (c *Client) FilterOptions(ctx context.Context) ([]types.OperatorSet, error) {
	var sets []types.OperatorSet
	err := c.do(ctx, call{method: http.MethodGet, path: pathFilterOptions}, &sets)
	return sets, err
}

// mergeGroup prefers the group echoed by the backend and falls back to
// what was sent when the response carries no group.
func mergeGroup(sent types.FilterGroup, raw json.RawMessage) types.FilterGroup {
	var got types.FilterGroup
	if len(raw) == 0 || json.Unmarshal(raw, &got) != nil || got.ID == "" {
		return sent
	}
	if got.Name == "" {
		got.Name = sent.Name
	}
	if got.Conditions == nil {
		got.Conditions = sent.Conditions
	}
	return got
}
