// Package testutil holds helpers shared by package tests.
package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/storefront/internal/mockapi"
)

// StartBackend serves a mock backend over a real HTTP listener for the
// duration of the test and returns it with its API base URL.
//
// Passwords are hashed at bcrypt.MinCost; opts may override that.
func StartBackend(t testing.TB, opts ...mockapi.Option) (*mockapi.Server, string) {
	t.Helper()

	opts = append([]mockapi.Option{mockapi.WithBcryptCost(bcrypt.MinCost)}, opts...)
	srv := mockapi.New(opts...)

	ts := httptest.NewServer(adaptor.FiberApp(srv.App()))
	t.Cleanup(ts.Close)

	return srv, ts.URL + "/api"
}
