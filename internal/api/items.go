package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/roach88/storefront/internal/catalog"
)

// ListItems fetches the full catalog.
func (c *Client) ListItems(ctx context.Context) ([]catalog.Record, error) {
	var out []catalog.Record
	err := c.doJSON(ctx, request{
		op:     "list items",
		method: http.MethodGet,
		path:   "/items",
	}, &out)
	return out, err
}

// ItemsByCategory fetches the items of one category.
func (c *Client) ItemsByCategory(ctx context.Context, name string) ([]catalog.Record, error) {
	var out []catalog.Record
	err := c.doJSON(ctx, request{
		op:     "items by category",
		method: http.MethodGet,
		path:   "/items/category/" + url.PathEscape(name),
	}, &out)
	return out, err
}

// Search runs a free-text item search.
func (c *Client) Search(ctx context.Context, text string) ([]catalog.Record, error) {
	var out []catalog.Record
	err := c.doJSON(ctx, request{
		op:     "search",
		method: http.MethodGet,
		path:   "/items/search",
		query:  url.Values{"query": {text}},
	}, &out)
	return out, err
}

// Suggestions returns item names completing prefix.
func (c *Client) Suggestions(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	err := c.doJSON(ctx, request{
		op:     "suggestions",
		method: http.MethodGet,
		path:   "/items/search/suggestions",
		query:  url.Values{"query": {prefix}},
	}, &out)
	if out == nil && err == nil {
		out = []string{}
	}
	return out, err
}

// ExactName resolves items whose name matches exactly.
func (c *Client) ExactName(ctx context.Context, name string) ([]catalog.Record, error) {
	var out []catalog.Record
	err := c.doJSON(ctx, request{
		op:     "exact name",
		method: http.MethodGet,
		path:   "/items/search/exact",
		query:  url.Values{"itemName": {name}},
	}, &out)
	return out, err
}
