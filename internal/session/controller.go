// Package session implements the session lifecycle: startup reset, sign in,
// sign up, sign out and forced invalidation.
//
// The controller is the only writer of both the session domain and the
// persistent session mirror, and keeps the two in lockstep. A fresh process
// never inherits a session: Initialize deletes whatever was persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/ident"
	"github.com/roach88/storefront/internal/state"
)

var (
	// ErrInProgress is returned when a sign-in or sign-up is already in flight.
	ErrInProgress = errors.New("authentication already in progress")

	// ErrAlreadyAuthenticated is returned by Login and Register while a
	// session is active.
	ErrAlreadyAuthenticated = errors.New("already signed in")
)

// Status is the lifecycle position of the session.
type Status int

const (
	Anonymous Status = iota
	Authenticating
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Backend is the slice of the API client the controller calls.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (api.TokenResponse, error)
	Register(ctx context.Context, r api.Registration) (string, error)
}

// Persister mirrors the session outside the state store.
type Persister interface {
	SaveSession(ctx context.Context, token string, user state.User) error
	LoadSession(ctx context.Context) (string, *state.User, error)
	ClearSession(ctx context.Context) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithIDs sets the generator for synthesized user ids.
func WithIDs(gen ident.Generator) Option {
	return func(c *Controller) {
		c.ids = gen
	}
}

// WithClock sets the time source used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller drives the session state machine.
//
// Thread-safety: Controller is safe for concurrent use. At most one
// sign-in or sign-up runs at a time. Store subscribers are notified while
// the controller holds its lock and must not call back into it.
type Controller struct {
	store   *state.Store
	backend Backend
	persist Persister
	ids     ident.Generator
	now     func() time.Time

	mu     sync.Mutex
	status Status
	claims TokenInfo // of the active token; zero when opaque
}

// New creates a Controller in the Anonymous state. Call Initialize before use.
func New(store *state.Store, backend Backend, persist Persister, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		backend: backend,
		persist: persist,
		ids:     ident.UUIDv7Generator{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Token returns the bearer token of the active session, or "". A token
// whose expiry claim has passed ends the session instead of being sent.
// It has the api.TokenSource signature.
func (c *Controller) Token() string {
	token := c.store.GetState().Session.Token
	if token == "" {
		return ""
	}

	c.mu.Lock()
	expired := c.claims.Expired(c.now())
	c.mu.Unlock()
	if !expired {
		return token
	}

	slog.Info("session token expired")
	c.Invalidate(context.Background(), token)
	return ""
}

// Initialize forces the Anonymous state and deletes any persisted session.
// The session domain is reset even when the mirror cannot be cleared; the
// error is returned so startup can report it.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, user, loadErr := c.persist.LoadSession(ctx)
	if token != "" || user != nil {
		slog.Info("discarding persisted session at startup")
	}
	if loadErr != nil {
		slog.Warn("persisted session unreadable", "error", loadErr)
	}

	clearErr := c.persist.ClearSession(ctx)
	if err := c.store.Dispatch(state.InitializeSession{}); err != nil {
		return fmt.Errorf("initialize session: %w", err)
	}
	c.status = Anonymous
	c.claims = TokenInfo{}

	if clearErr != nil {
		return fmt.Errorf("initialize session: %w", clearErr)
	}
	return nil
}

// Login validates the form, authenticates and establishes the session.
// On any failure the session stays anonymous.
func (c *Controller) Login(ctx context.Context, form LoginForm) (state.User, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := form.Validate(); err != nil {
		return state.User{}, err
	}
	if err := c.begin(); err != nil {
		return state.User{}, err
	}

	user := state.User{
		ID:    c.ids.Generate(),
		Name:  localPart(form.Email),
		Email: form.Email,
	}
	return c.authenticate(ctx, form.Email, form.Password, user)
}

// Register validates the form, creates the account and then signs in with
// the same credentials. Registration alone establishes no session.
func (c *Controller) Register(ctx context.Context, form RegisterForm) (state.User, error) {
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = NormalizePhone(form.Phone)
	if err := form.Validate(); err != nil {
		return state.User{}, err
	}
	if err := c.begin(); err != nil {
		return state.User{}, err
	}

	_, err := c.backend.Register(ctx, api.Registration{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Phone:    form.Phone,
	})
	if err != nil {
		c.fail()
		slog.Error("registration failed", "email", form.Email, "error", err)
		return state.User{}, err
	}
	slog.Info("registered", "email", form.Email)

	user := state.User{
		ID:    c.ids.Generate(),
		Name:  form.Name,
		Email: form.Email,
		Phone: form.Phone,
	}
	return c.authenticate(ctx, form.Email, form.Password, user)
}

// Logout clears the session domain and the persisted mirror. Both are
// attempted regardless of the other's outcome.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.end(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	slog.Info("signed out")
	return nil
}

// Invalidate ends the session after the backend rejected token. A
// rejection of a token other than the active one (a response to a call
// made by an earlier session) is ignored.
// It has the api.UnauthorizedHandler signature.
func (c *Controller) Invalidate(ctx context.Context, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.store.GetState().Session.Token
	if current == "" {
		return
	}
	if token != current {
		slog.Debug("ignoring rejection of a superseded token")
		return
	}
	if err := c.endLocked(ctx); err != nil {
		slog.Error("session invalidation incomplete", "error", err)
		return
	}
	slog.Warn("session invalidated by backend")
}

// begin moves Anonymous to Authenticating.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case Authenticating:
		return ErrInProgress
	case Authenticated:
		return ErrAlreadyAuthenticated
	}
	c.status = Authenticating
	return nil
}

// fail returns an in-flight attempt to Anonymous.
func (c *Controller) fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = Anonymous
}

// authenticate exchanges credentials for a token, persists the session and
// only then dispatches it, so the mirror never lags the domain.
func (c *Controller) authenticate(ctx context.Context, email, password string, user state.User) (state.User, error) {
	tok, err := c.backend.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		c.fail()
		slog.Error("login failed", "email", email, "error", err)
		return state.User{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.persist.SaveSession(ctx, tok.Token, user); err != nil {
		c.status = Anonymous
		return state.User{}, fmt.Errorf("persist session: %w", err)
	}
	if err := c.store.Dispatch(state.Login{User: user, Token: tok.Token}); err != nil {
		c.status = Anonymous
		if clearErr := c.persist.ClearSession(ctx); clearErr != nil {
			slog.Error("persisted session left behind", "error", clearErr)
		}
		return state.User{}, fmt.Errorf("establish session: %w", err)
	}
	c.status = Authenticated
	c.claims = inspect(tok.Token)

	slog.Info("signed in", "email", email, "user_id", user.ID)
	return user, nil
}

// end clears domain and mirror and returns to Anonymous.
func (c *Controller) end(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endLocked(ctx)
}

// Caller must hold c.mu.
func (c *Controller) endLocked(ctx context.Context) error {
	dispatchErr := c.store.Dispatch(state.Logout{})
	clearErr := c.persist.ClearSession(ctx)
	c.status = Anonymous
	c.claims = TokenInfo{}
	return errors.Join(dispatchErr, clearErr)
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
