// Package app wires the storefront core: state store, backend client,
// session controller, query orchestrator and route guard.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/ident"
	"github.com/roach88/storefront/internal/query"
	"github.com/roach88/storefront/internal/route"
	"github.com/roach88/storefront/internal/session"
	"github.com/roach88/storefront/internal/state"
	"github.com/roach88/storefront/internal/store"
)

type options struct {
	persist    session.Persister
	ids        ident.Generator
	httpClient *http.Client
	bagDedup   bool
	routes     []route.Route
	now        func() time.Time
}

// Option configures New.
type Option func(*options)

// WithPersister mirrors the session somewhere other than the SQLite file
// named by the config.
func WithPersister(p session.Persister) Option {
	return func(o *options) { o.persist = p }
}

// WithIDs sets the generator for request and user ids.
func WithIDs(gen ident.Generator) Option {
	return func(o *options) { o.ids = gen }
}

// WithHTTPClient sets the client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithBagDedup makes repeated bag adds of the same id a no-op.
func WithBagDedup(dedup bool) Option {
	return func(o *options) { o.bagDedup = dedup }
}

// WithRoutes replaces the default route table.
func WithRoutes(routes []route.Route) Option {
	return func(o *options) { o.routes = routes }
}

// WithClock sets the time source for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// App is one storefront session: one process, one user.
type App struct {
	Store   *state.Store
	Client  *api.Client
	Session *session.Controller
	Query   *query.Orchestrator
	Guard   *route.Guard

	closers []io.Closer
	unsub   func()

	mu       sync.Mutex
	location route.Decision
	authed   bool
	prices   map[int64]float64 // last current price seen per item id
}

// New builds the object graph. Nothing talks to the backend until Start.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{ids: ident.UUIDv7Generator{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []api.Option{
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRequestIDs(o.ids),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	client, err := api.New(cfg.APIURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	routes := o.routes
	if routes == nil {
		routes = route.DefaultRoutes()
	}
	guard, err := route.NewGuard(routes)
	if err != nil {
		return nil, err
	}

	a := &App{Client: client, Guard: guard, prices: make(map[int64]float64)}

	persist := o.persist
	if persist == nil {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		a.closers = append(a.closers, db)
		persist = db
	}

	a.Store = state.New(state.WithBagDedup(o.bagDedup))
	a.Session = session.New(a.Store, client, persist,
		session.WithIDs(o.ids),
		session.WithClock(o.now),
	)
	client.SetTokenSource(a.Session.Token)
	client.SetUnauthorizedHandler(a.Session.Invalidate)

	a.Query = query.New(a.Store, client,
		query.WithSuggestTTL(cfg.SuggestTTL),
		query.WithMinSuggestChars(cfg.SuggestMinChars),
	)

	a.unsub = a.Store.Subscribe(a.onState)
	return a, nil
}

// Start runs the startup sequence: forced session reset, initial catalog
// load, then the home view. A failed catalog load is recorded for Retry
// and reported, but the app stays usable.
func (a *App) Start(ctx context.Context) error {
	initErr := a.Session.Initialize(ctx)
	if initErr != nil {
		slog.Error("session reset incomplete", "error", initErr)
	}

	loadErr := a.Query.LoadInitial(ctx)

	if _, err := a.Open("/"); err != nil {
		return errors.Join(initErr, loadErr, err)
	}
	return errors.Join(initErr, loadErr)
}

// Open navigates to path through the route guard.
func (a *App) Open(path string) (route.Decision, error) {
	authed := a.Store.GetState().Session.IsAuthenticated
	d, err := a.Guard.Resolve(path, authed)
	if err != nil {
		return route.Decision{}, err
	}

	a.mu.Lock()
	a.location = d
	a.authed = authed
	a.mu.Unlock()

	if d.Redirected() {
		slog.Debug("route redirected", "from", d.RedirectedFrom, "to", d.Path)
	}
	return d, nil
}

// Location returns the view currently shown.
func (a *App) Location() route.Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

// onState remembers the prices of every listed item and re-runs the guard
// for the current view when the session flips, so logging out leaves
// protected views and logging in leaves the auth view.
func (a *App) onState(st state.State) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, it := range st.Catalog {
		a.prices[it.ID] = it.CurrentPrice
	}

	authed := st.Session.IsAuthenticated
	if authed == a.authed || a.location.Path == "" {
		a.authed = authed
		return
	}
	a.authed = authed

	d, err := a.Guard.Resolve(a.location.Path, authed)
	if err != nil {
		return
	}
	a.location = d
}

// Close releases the session store.
func (a *App) Close() error {
	if a.unsub != nil {
		a.unsub()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
