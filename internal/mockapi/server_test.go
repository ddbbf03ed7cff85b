package mockapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/ident"
	"github.com/roach88/storefront/internal/mockapi"
	"github.com/roach88/storefront/internal/testutil"
)

func newServer(t *testing.T, opts ...mockapi.Option) *mockapi.Server {
	t.Helper()
	opts = append([]mockapi.Option{mockapi.WithBcryptCost(bcrypt.MinCost)}, opts...)
	return mockapi.New(opts...)
}

// call sends a request through fiber's in-memory test transport.
func call(t *testing.T, srv *mockapi.Server, method, target, body, token string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeRecords(t *testing.T, data []byte) []catalog.Record {
	t.Helper()
	var out []catalog.Record
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func names(records []catalog.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ItemName)
	}
	return out
}

func login(t *testing.T, srv *mockapi.Server, email, password string) string {
	t.Helper()
	status, data := call(t, srv, http.MethodPost, "/api/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, status, string(data))

	var tok api.TokenResponse
	require.NoError(t, json.Unmarshal(data, &tok))
	assert.Equal(t, "Bearer", tok.TokenType)
	return tok.Token
}

func TestItems_Queries(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"all", "/api/items", names(mockapi.SeedItems())},
		{"category", "/api/items/category/Kids", []string{"Chuck Taylor All Star"}},
		{"category case-insensitive", "/api/items/category/kids", []string{"Chuck Taylor All Star"}},
		{"category escaped", "/api/items/category/Home%20%26%20Living", []string{}},
		{"search by brand", "/api/items/search?query=nike", []string{"Air Max 270"}},
		{"search no match", "/api/items/search?query=zzz", []string{}},
		{"exact", "/api/items/search/exact?itemName=old%20skool", []string{"Old Skool"}},
		{"exact partial is no match", "/api/items/search/exact?itemName=Old", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := call(t, srv, http.MethodGet, tt.target, "", "")
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.want, names(decodeRecords(t, data)))
		})
	}
}

func TestSuggestions(t *testing.T) {
	srv := newServer(t)

	status, data := call(t, srv, http.MethodGet, "/api/items/search/suggestions?query=st", "", "")
	require.Equal(t, http.StatusOK, status)

	var got []string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"Chuck Taylor All Star", "Ultraboost 22"}, got)
}

func TestFailCatalog(t *testing.T) {
	srv := newServer(t)
	srv.FailCatalog(1)

	status, data := call(t, srv, http.MethodGet, "/api/items", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(data), "Service unavailable")

	status, _ = call(t, srv, http.MethodGet, "/api/items", "", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newServer(t)

	status, data := call(t, srv, http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"a@b.com","password":"secret1","phone":"5551234567"}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User registered successfully", string(data))

	status, data = call(t, srv, http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"A@B.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(data), "already registered")

	token := login(t, srv, "a@b.com", "secret1")
	assert.NotEmpty(t, token)

	status, data = call(t, srv, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(data), "Invalid email or password")
}

func TestProtectedEndpoints_RequireToken(t *testing.T) {
	srv := newServer(t)

	for _, target := range []string{"/api/user/profile", "/api/user/addresses", "/api/orders"} {
		status, _ := call(t, srv, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnauthorized, status, target)

		status, _ = call(t, srv, http.MethodGet, target, "", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, status, target)
	}
}

func TestRotateSecret_InvalidatesTokens(t *testing.T) {
	srv := newServer(t)
	require.NoError(t, srv.AddUser("Ada", "a@b.com", "secret1", ""))
	token := login(t, srv, "a@b.com", "secret1")

	status, _ := call(t, srv, http.MethodGet, "/api/user/profile", "", token)
	require.Equal(t, http.StatusOK, status)

	srv.RotateSecret("another")
	status, _ = call(t, srv, http.MethodGet, "/api/user/profile", "", token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTokenExpiry(t *testing.T) {
	clock := testutil.NewManualClock(time.Time{})
	srv := newServer(t, mockapi.WithClock(clock.Now), mockapi.WithTokenTTL(time.Minute))
	require.NoError(t, srv.AddUser("Ada", "a@b.com", "secret1", ""))
	token := login(t, srv, "a@b.com", "secret1")

	clock.Advance(2 * time.Minute)
	status, _ := call(t, srv, http.MethodGet, "/api/user/profile", "", token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestOrders(t *testing.T) {
	clock := testutil.NewManualClock(time.Time{})
	srv := newServer(t,
		mockapi.WithIDs(ident.NewFixedGenerator("order-1")),
		mockapi.WithClock(clock.Now),
	)
	require.NoError(t, srv.AddUser("Ada", "a@b.com", "secret1", "5551234567"))
	token := login(t, srv, "a@b.com", "secret1")

	status, data := call(t, srv, http.MethodPost, "/api/user/addresses",
		`{"fullName":"Ada","addressLine1":"1 Main St","city":"Springfield","state":"IL","pincode":"62701"}`, token)
	require.Equal(t, http.StatusCreated, status, string(data))
	var addr api.Address
	require.NoError(t, json.Unmarshal(data, &addr))
	assert.True(t, addr.IsDefault, "first address becomes default")

	status, data = call(t, srv, http.MethodPost, "/api/orders",
		`{"items":[{"itemId":1,"quantity":1}],"deliveryAddress":"1 Main St","paymentMethod":"credit_card","totalAmount":12999}`, token)
	require.Equal(t, http.StatusCreated, status, string(data))

	var order api.Order
	require.NoError(t, json.Unmarshal(data, &order))
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "ORD-1-001", order.OrderNumber)
	assert.True(t, testutil.Epoch.Equal(order.CreatedAt))

	status, data = call(t, srv, http.MethodGet, "/api/orders/order-1", "", token)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"orderNumber":"ORD-1-001"`)

	status, _ = call(t, srv, http.MethodGet, "/api/orders/missing", "", token)
	assert.Equal(t, http.StatusNotFound, status)

	status, data = call(t, srv, http.MethodPost, "/api/orders",
		`{"items":[],"deliveryAddress":"x"}`, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(data), "no items")
}

func TestProbe(t *testing.T) {
	srv := newServer(t)
	status, data := call(t, srv, http.MethodGet, "/api/auth/test", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CORS is working!", string(data))
}
