package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func statusPath(id string) string {
	return pathStatuses + url.PathEscape(id) + "/"
}

type statusBody struct {
	Name string `json:"name"`
}

// ListRequestStatuses reads the request statuses.
func (c *Client) ListRequestStatuses(ctx context.Context) ([]types.RequestStatus, error) {
	var env envelope
	if err := c.do(ctx, call{method: http.MethodGet, path: pathStatuses}, &env); err != nil {
		return nil, err
	}
	if err := env.err(); err != nil {
		return nil, err
	}
	var out []types.RequestStatus
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return nil, fmt.Errorf("%w: decoding request statuses: %w", types.ErrNetwork, err)
		}
	}
	return out, nil
}

// CreateRequestStatus adds a status and returns it as stored.
func (c *Client) CreateRequestStatus(ctx context.Context, name string) (types.RequestStatus, error) {
	var s types.RequestStatus
	err := c.do(ctx, call{method: http.MethodPost, path: pathStatuses, body: statusBody{Name: name}}, &s)
	return s, err
}

// UpdateRequestStatus renames status id.
func (c *Client) UpdateRequestStatus(ctx context.Context, id, name string) (types.RequestStatus, error) {
	var s types.RequestStatus
	err := c.do(ctx, call{method: http.MethodPut, path: statusPath(id), body: statusBody{Name: name}}, &s)
	return s, err
}

// DeleteRequestStatus removes status id.
func (c *Client) DeleteRequestStatus(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: statusPath(id)}, nil)
}
