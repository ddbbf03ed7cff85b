package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Profile fetches the authenticated user's account.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var out Profile
	err := c.doJSON(ctx, request{
		op:     "profile",
		method: http.MethodGet,
		path:   "/user/profile",
		auth:   true,
	}, &out)
	return out, err
}

// Addresses lists the authenticated user's saved addresses.
func (c *Client) Addresses(ctx context.Context) ([]Address, error) {
	var out []Address
	err := c.doJSON(ctx, request{
		op:     "addresses",
		method: http.MethodGet,
		path:   "/user/addresses",
		auth:   true,
	}, &out)
	return out, err
}

// AddAddress saves a delivery address and returns it with its assigned id.
func (c *Client) AddAddress(ctx context.Context, a Address) (Address, error) {
	var out Address
	err := c.doJSON(ctx, request{
		op:     "add address",
		method: http.MethodPost,
		path:   "/user/addresses",
		body:   a,
		auth:   true,
	}, &out)
	return out, err
}

// PlaceOrder submits an order for the authenticated user.
func (c *Client) PlaceOrder(ctx context.Context, o OrderRequest) (Order, error) {
	var out Order
	err := c.doJSON(ctx, request{
		op:     "place order",
		method: http.MethodPost,
		path:   "/orders",
		body:   o,
		auth:   true,
	}, &out)
	return out, err
}

// Orders lists the authenticated user's orders.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := c.doJSON(ctx, request{
		op:     "orders",
		method: http.MethodGet,
		path:   "/orders",
		auth:   true,
	}, &out)
	return out, err
}

// Order fetches one order by id.
func (c *Client) Order(ctx context.Context, id string) (Order, error) {
	var out Order
	err := c.doJSON(ctx, request{
		op:     "order",
		method: http.MethodGet,
		path:   "/orders/" + url.PathEscape(id),
		auth:   true,
	}, &out)
	return out, err
}

// Format renders an address on one line, skipping empty parts.
func (a Address) Format() string {
	parts := []string{a.FullName, a.AddressLine1, a.AddressLine2, a.City, a.State}
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	line := strings.Join(kept, ", ")
	if a.Pincode != "" {
		line += " - " + a.Pincode
	}
	return line
}
