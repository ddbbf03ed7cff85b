// Package mockapi is an in-process stand-in for the storefront backend.
//
// It serves the REST surface the client consumes under /api: the item
// queries, register/login with bcrypt-hashed passwords and HS256 JWTs, and
// the bearer-protected profile, address and order endpoints. It is used by
// tests, by the scenario harness and by `storefront mock-server`.
package mockapi

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/ident"
)

// DefaultTokenTTL is the lifetime of issued tokens.
const DefaultTokenTTL = time.Hour

// Option configures a Server.
type Option func(*Server)

// WithItems replaces the seeded catalog.
func WithItems(items []catalog.Record) Option {
	return func(s *Server) {
		s.items = append([]catalog.Record(nil), items...)
	}
}

// WithSecret sets the HMAC key tokens are signed with.
func WithSecret(secret string) Option {
	return func(s *Server) {
		s.secret = []byte(secret)
	}
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		s.bcryptCost = cost
	}
}

// WithIDs sets the generator for order ids.
func WithIDs(gen ident.Generator) Option {
	return func(s *Server) {
		s.ids = gen
	}
}

// WithClock sets the time source for token and order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = d
	}
}

// account is a registered user.
type account struct {
	id           int64
	name         string
	email        string
	phone        string
	passwordHash []byte
	addresses    []api.Address
	orders       []api.Order
}

// Server holds the mock backend's in-memory data.
//
// Thread-safety: all handlers lock mu; Server is safe for concurrent use.
type Server struct {
	mu         sync.Mutex
	items      []catalog.Record
	accounts   map[string]*account // by lower-cased email
	nextUserID int64
	nextAddrID int64

	// catalogFailures is the number of upcoming item requests that fail
	// with 503.
	catalogFailures int

	secret     []byte
	bcryptCost int
	tokenTTL   time.Duration
	ids        ident.Generator
	now        func() time.Time

	app *fiber.App
}

// New creates a Server with the seeded catalog and no accounts.
func New(opts ...Option) *Server {
	s := &Server{
		items:      SeedItems(),
		accounts:   make(map[string]*account),
		nextUserID: 1,
		nextAddrID: 1,
		secret:     []byte("storefront-mock-secret"),
		bcryptCost: bcrypt.DefaultCost,
		tokenTTL:   DefaultTokenTTL,
		ids:        ident.UUIDv7Generator{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "storefront-mock",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	s.routes(s.app.Group("/api"))
	return s
}

// App returns the fiber application serving the backend.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops a server started with Listen.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// FailCatalog makes the next n item requests answer 503.
func (s *Server) FailCatalog(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogFailures = n
}

// RotateSecret invalidates every token issued so far.
func (s *Server) RotateSecret(secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(secret)
}

// AddUser registers an account directly, bypassing the HTTP surface.
func (s *Server) AddUser(name, email, password, phone string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.createAccount(name, email, phone, hash)
	return nil
}

func (s *Server) routes(r fiber.Router) {
	items := r.Group("/items", s.catalogGate)
	items.Get("/", s.listItems)
	items.Get("/category/:name", s.itemsByCategory)
	items.Get("/search/suggestions", s.suggestions)
	items.Get("/search/exact", s.exactName)
	items.Get("/search", s.search)

	auth := r.Group("/auth")
	auth.Post("/register", s.register)
	auth.Post("/login", s.login)
	auth.Get("/test", s.probe)

	user := r.Group("/user", s.requireToken)
	user.Get("/profile", s.profile)
	user.Get("/addresses", s.addresses)
	user.Post("/addresses", s.addAddress)

	orders := r.Group("/orders", s.requireToken)
	orders.Post("/", s.placeOrder)
	orders.Get("/", s.listOrders)
	orders.Get("/:id", s.getOrder)
}

// errorHandler renders every unhandled error as {"message": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}
