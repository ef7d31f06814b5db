package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Backend paths.
const (
	pathClients       = "/clients/"
	pathFields        = "/clients/fields/"
	pathExport        = "/clients/export/"
	pathImport        = "/clients/import/"
	pathFilters       = "/clients/filters/"
	pathFilterOptions = "/clients/filter-options/"
	pathTemplates     = "/crm/template/"
	pathTemplateClone = "/crm/template-clone/"
	pathProfiles      = "/crm/netfree-categories-profile/"
	pathStatuses      = "/crm/request-status/"
)

func clientPath(id string) string {
	return pathClients + url.PathEscape(id) + "/"
}

// ListClients reads one listing page. params carries page, page_size, lang,
// search_<slug> and filter_ids.
func (c *Client) ListClients(ctx context.Context, params url.Values) (types.Page, error) {
	var page types.Page
	err := c.do(ctx, call{method: http.MethodGet, path: pathClients, query: params}, &page)
	return page, err
}

// FetchSchema reads the field blocks for locale.
func (c *Client) FetchSchema(ctx context.Context, locale string) ([]types.Block, error) {
	var out struct {
		Result []types.Block `json:"result"`
	}
	q := url.Values{}
	if locale != "" {
		q.Set("lang", locale)
	}
	if err := c.do(ctx, call{method: http.MethodGet, path: pathFields, query: q}, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

type fieldFlag struct {
	ID      string `json:"id"`
	Display bool   `json:"display"`
}

// SaveFieldDisplay persists the column visibility of one field.
func (c *Client) SaveFieldDisplay(ctx context.Context, fieldID string, display bool) error {
	body := map[string]any{"fields": []fieldFlag{{ID: fieldID, Display: display}}}
	return c.do(ctx, call{method: http.MethodPut, path: pathFields, body: body}, nil)
}

// GetClient reads one entity.
func (c *Client) GetClient(ctx context.Context, id string) (types.EditableRecord, error) {
	var rec types.EditableRecord
	err := c.do(ctx, call{method: http.MethodGet, path: clientPath(id)}, &rec)
	return rec, err
}

// CreateClient creates an entity and returns it as stored. The backend
// rejects a payload without a profile.
func (c *Client) CreateClient(ctx context.Context, p types.Payload) (types.EditableRecord, error) {
	var rec types.EditableRecord
	err := c.do(ctx, call{method: http.MethodPost, path: pathClients, body: p}, &rec)
	return rec, err
}

// UpdateClient sends changed values for entity id.
func (c *Client) UpdateClient(ctx context.Context, id string, p types.Payload) error {
	return c.do(ctx, call{method: http.MethodPut, path: clientPath(id), body: p}, nil)
}

// DeleteClient removes entity id.
func (c *Client) DeleteClient(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: clientPath(id)}, nil)
}

// ExportClients returns the backend's CSV export.
func (c *Client) ExportClients(ctx context.Context) ([]byte, error) {
	var data []byte
	err := c.do(ctx, call{method: http.MethodGet, path: pathExport}, &data)
	return data, err
}

// ImportClients creates one entity per row. Rows are keyed by slug and
// already normalized.
func (c *Client) ImportClients(ctx context.Context, rows []map[string]any) error {
	body := map[string]any{"clientsData": rows}
	return c.do(ctx, call{method: http.MethodPost, path: pathImport, body: body}, nil)
}
