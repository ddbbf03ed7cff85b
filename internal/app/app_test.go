package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/ident"
	"github.com/roach88/storefront/internal/mockapi"
	"github.com/roach88/storefront/internal/route"
	"github.com/roach88/storefront/internal/session"
	"github.com/roach88/storefront/internal/state"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/testutil"
)

func newTestApp(t *testing.T, opts ...Option) (*App, *mockapi.Server, config.Config) {
	t.Helper()

	srv, base := testutil.StartBackend(t)
	require.NoError(t, srv.AddUser("Ada", "ada@example.com", "secret1", "5551234567"))

	cfg := config.Default()
	cfg.APIURL = base
	cfg.DBPath = filepath.Join(t.TempDir(), "storefront.db")

	opts = append([]Option{WithIDs(ident.NewFixedGenerator("id"))}, opts...)
	a, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, srv, cfg
}

func login(t *testing.T, a *App) {
	t.Helper()
	_, err := a.Session.Login(context.Background(), session.LoginForm{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
}

func TestStart_ResetsSessionAndLoadsCatalog(t *testing.T) {
	_, base := testutil.StartBackend(t)
	cfg := config.Default()
	cfg.APIURL = base
	cfg.DBPath = filepath.Join(t.TempDir(), "storefront.db")
	ctx := context.Background()

	db, err := store.Open(cfg.DBPath)
	require.NoError(t, err)
	require.NoError(t, db.SaveSession(ctx, "stale-token", state.User{ID: "u0"}))
	require.NoError(t, db.Close())

	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Start(ctx))

	st := a.Store.GetState()
	assert.False(t, st.Session.IsAuthenticated)
	assert.True(t, st.FetchStatus.FetchDone)
	assert.False(t, st.FetchStatus.CurrentlyFetching)
	assert.Len(t, st.Catalog, len(mockapi.SeedItems()))

	loc := a.Location()
	assert.Equal(t, route.ViewAuth, loc.View, "home is protected")
	assert.Equal(t, "/", loc.RedirectedFrom)

	db, err = store.Open(cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()
	token, user, err := db.LoadSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestStart_CatalogFailureIsRetryable(t *testing.T) {
	a, srv, _ := newTestApp(t)
	srv.FailCatalog(1)
	ctx := context.Background()

	err := a.Start(ctx)
	require.Error(t, err)
	assert.True(t, api.IsRetryable(err))

	st := a.Store.GetState()
	assert.False(t, st.FetchStatus.FetchDone)
	assert.Empty(t, st.Catalog)

	require.NoError(t, a.Query.Retry(ctx))
	assert.True(t, a.Store.GetState().FetchStatus.FetchDone)
}

func TestOpen_FollowsSession(t *testing.T) {
	a, _, _ := newTestApp(t, WithPersister(store.NewMemory()))
	ctx := context.Background()
	require.NoError(t, a.Start(ctx))

	d, err := a.Open("/bag")
	require.NoError(t, err)
	assert.Equal(t, route.ViewAuth, d.View)

	login(t, a)
	assert.Equal(t, route.ViewHome, a.Location().View, "login leaves the auth view")

	d, err = a.Open("/bag")
	require.NoError(t, err)
	assert.Equal(t, route.ViewBag, d.View)

	require.NoError(t, a.Session.Logout(ctx))
	loc := a.Location()
	assert.Equal(t, route.ViewAuth, loc.View, "logout leaves protected views")
	assert.Equal(t, "/bag", loc.RedirectedFrom)

	_, err = a.Open("/missing")
	assert.ErrorIs(t, err, route.ErrNotFound)
}

func TestPlaceOrder(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	login(t, a)

	_, err := a.PlaceOrder(ctx, Checkout{})
	assert.ErrorIs(t, err, ErrEmptyBag)

	require.NoError(t, a.ToggleBag(1))
	require.NoError(t, a.ToggleBag(3))

	_, err = a.PlaceOrder(ctx, Checkout{})
	assert.ErrorIs(t, err, ErrNoAddress)
	assert.Len(t, a.Store.GetState().Bag, 2, "bag kept on failure")

	_, err = a.Client.AddAddress(ctx, api.Address{
		FullName: "Ada", AddressLine1: "1 Loop Rd", City: "Pune", State: "MH", Pincode: "411001",
	})
	require.NoError(t, err)

	total := a.Bag().Total
	order, err := a.PlaceOrder(ctx, Checkout{PaymentMethod: PaymentUPI})
	require.NoError(t, err)
	assert.Equal(t, "PLACED", order.Status)
	assert.Equal(t, PaymentUPI, order.PaymentMethod)
	assert.Equal(t, "Ada, 1 Loop Rd, Pune, MH - 411001", order.DeliveryAddress)
	assert.InDelta(t, total, order.TotalAmount, 0.001)
	assert.Equal(t, []api.OrderLine{{ItemID: 1, Quantity: 1}, {ItemID: 3, Quantity: 1}}, order.OrderItems)

	assert.Empty(t, a.Store.GetState().Bag, "bag cleared wholesale")
	loc := a.Location()
	assert.Equal(t, route.ViewOrderConfirmation, loc.View)
	assert.Equal(t, order.ID, loc.Params["orderId"])
}

func TestPlaceOrder_TotalCoversEveryLine(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	login(t, a)
	_, err := a.Client.AddAddress(ctx, api.Address{
		FullName: "Ada", AddressLine1: "1 Loop Rd", City: "Pune", State: "MH", Pincode: "411001",
	})
	require.NoError(t, err)

	// A repeated entry, and an entry the narrowed listing hides.
	require.NoError(t, a.AddToBag(1))
	require.NoError(t, a.AddToBag(1))
	require.NoError(t, a.AddToBag(2))
	require.NoError(t, a.Query.SubmitSearch(ctx, "Nike"))
	require.Equal(t, 1, a.Bag().Hidden)

	order, err := a.PlaceOrder(ctx, Checkout{})
	require.NoError(t, err)
	assert.Len(t, order.OrderItems, 3)
	assert.InDelta(t, 12999.0+12999.0+18999.0, order.TotalAmount, 0.001)
	assert.Empty(t, a.Store.GetState().Bag)
}

func TestPlaceOrder_UnknownPrice(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	login(t, a)

	require.NoError(t, a.AddToBag(1))
	require.NoError(t, a.Store.Dispatch(state.AddToBag{ID: 99}))

	_, err := a.PlaceOrder(ctx, Checkout{})
	assert.ErrorIs(t, err, ErrUnknownPrice)
	assert.Equal(t, []int64{1, 99}, a.Store.GetState().Bag, "bag kept on failure")
}

func TestPlaceOrder_UnauthorizedEndsSession(t *testing.T) {
	a, srv, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	login(t, a)
	require.NoError(t, a.ToggleBag(2))
	_, err := a.Open("/order-summary")
	require.NoError(t, err)

	srv.RotateSecret("rotated")
	_, err = a.PlaceOrder(ctx, Checkout{})
	require.ErrorIs(t, err, api.ErrUnauthorized)

	assert.False(t, a.Store.GetState().Session.IsAuthenticated)
	assert.Equal(t, route.ViewAuth, a.Location().View)
	assert.Equal(t, []int64{2}, a.Store.GetState().Bag, "bag survives session end")
}

func TestViews(t *testing.T) {
	a, _, _ := newTestApp(t, WithPersister(store.NewMemory()))
	ctx := context.Background()
	require.NoError(t, a.Start(ctx))

	require.NoError(t, a.ToggleBag(1))
	require.NoError(t, a.ToggleBag(2))
	require.NoError(t, a.ToggleWishlist(5))

	bag := a.Bag()
	require.Len(t, bag.Items, 2)
	assert.InDelta(t, bag.Items[0].CurrentPrice+bag.Items[1].CurrentPrice, bag.Total, 0.001)
	assert.Zero(t, bag.Hidden)

	// Narrow the catalog; membership survives, the view hides the rest.
	require.NoError(t, a.Query.SubmitSearch(ctx, "Nike"))
	bag = a.Bag()
	assert.Len(t, bag.Items, 1)
	assert.Equal(t, 1, bag.Hidden)
	assert.Equal(t, []int64{1, 2}, a.Store.GetState().Bag)
	assert.Empty(t, a.Wishlist())

	require.NoError(t, a.ToggleBag(1))
	assert.Equal(t, []int64{2}, a.Store.GetState().Bag)
	require.NoError(t, a.ToggleWishlist(5))
	assert.Empty(t, a.Store.GetState().Wishlist)
}

func TestBagDedup(t *testing.T) {
	tests := []struct {
		dedup bool
		want  []int64
	}{
		{false, []int64{4, 4}},
		{true, []int64{4}},
	}
	for _, tt := range tests {
		a, _, _ := newTestApp(t, WithPersister(store.NewMemory()), WithBagDedup(tt.dedup))
		require.NoError(t, a.Store.Dispatch(state.AddToBag{ID: 4}))
		require.NoError(t, a.Store.Dispatch(state.AddToBag{ID: 4}))
		assert.Equal(t, tt.want, a.Store.GetState().Bag, "dedup=%v", tt.dedup)
	}
}

func TestNew_BadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.APIURL = "ftp://nowhere"
	_, err := New(cfg, WithPersister(store.NewMemory()))
	assert.Error(t, err)
}
