package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Register creates an account. The backend answers with a plain text
// message, which is returned as is. Registration alone establishes no
// session.
func (c *Client) Register(ctx context.Context, r Registration) (string, error) {
	data, err := c.do(ctx, request{
		op:       "register",
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     r,
		fallback: "Registration failed",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, request{
		op:       "login",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     creds,
		fallback: "Login failed",
	}, &out)
	if err != nil {
		return TokenResponse{}, err
	}
	if out.Token == "" {
		return TokenResponse{}, fmt.Errorf("login: response carried no token")
	}
	return out, nil
}

// Ping calls the CORS probe and returns its plain text body.
func (c *Client) Ping(ctx context.Context) (string, error) {
	data, err := c.do(ctx, request{
		op:     "ping",
		method: http.MethodGet,
		path:   "/auth/test",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
