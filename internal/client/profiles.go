package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// ListProfiles reads the netfree profiles, ordered by id.
func (c *Client) ListProfiles(ctx context.Context) ([]types.Profile, error) {
	var env envelope
	if err := c.do(ctx, call{method: http.MethodGet, path: pathProfiles}, &env); err != nil {
		return nil, err
	}
	if err := env.err(); err != nil {
		return nil, err
	}
	var out []types.Profile
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return nil, fmt.Errorf("%w: decoding profiles: %w", types.ErrNetwork, err)
		}
	}
	return out, nil
}
