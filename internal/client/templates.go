package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// ListTemplates reads the email templates.
func (c *Client) ListTemplates(ctx context.Context) ([]types.EmailTemplate, error) {
	var env envelope
	if err := c.do(ctx, call{method: http.MethodGet, path: pathTemplates}, &env); err != nil {
		return nil, err
	}
	if err := env.err(); err != nil {
		return nil, err
	}
	var out []types.EmailTemplate
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return nil, fmt.Errorf("%w: decoding templates: %w", types.ErrNetwork, err)
		}
	}
	return out, nil
}

// CloneTemplate duplicates template id under a generated name.
func (c *Client) CloneTemplate(ctx context.Context, id string) error {
	var env envelope
	body := map[string]string{"id": id}
	if err := c.do(ctx, call{method: http.MethodPost, path: pathTemplateClone, body: body}, &env); err != nil {
		return err
	}
	return env.err()
}

// DeleteTemplate removes template id.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	var env envelope
	q := url.Values{"id": {id}}
	if err := c.do(ctx, call{method: http.MethodDelete, path: pathTemplates, query: q}, &env); err != nil {
		return err
	}
	return env.err()
}
