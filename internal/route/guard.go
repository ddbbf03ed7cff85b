// Package route gates views on session state.
//
// Resolve is a pure function of the requested path and whether the session
// is authenticated. It decides before a view is shown and never looks at
// the view's own state.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotFound is returned for paths no route matches.
var ErrNotFound = errors.New("no such view")

// View names.
const (
	ViewHome              = "home"
	ViewAuth              = "auth"
	ViewBag               = "bag"
	ViewWishlist          = "wishlist"
	ViewProfile           = "profile"
	ViewOrderSummary      = "order-summary"
	ViewOrderConfirmation = "order-confirmation"
	ViewOrders            = "orders"
)

// Access says who may open a route.
type Access int

const (
	// Public routes open for everyone.
	Public Access = iota
	// Protected routes require an authenticated session.
	Protected
	// GuestOnly routes are for anonymous sessions; signed-in users are
	// sent home.
	GuestOnly
)

// Route maps a path pattern to a view. Pattern segments starting with ':'
// capture a parameter.
type Route struct {
	View    string
	Pattern string
	Access  Access
}

// DefaultRoutes is the storefront's route table.
func DefaultRoutes() []Route {
	return []Route{
		{View: ViewHome, Pattern: "/", Access: Protected},
		{View: ViewAuth, Pattern: "/auth", Access: GuestOnly},
		{View: ViewBag, Pattern: "/bag", Access: Protected},
		{View: ViewWishlist, Pattern: "/wishlist", Access: Protected},
		{View: ViewProfile, Pattern: "/profile", Access: Protected},
		{View: ViewOrderSummary, Pattern: "/order-summary", Access: Protected},
		{View: ViewOrderConfirmation, Pattern: "/order-confirmation/:orderId", Access: Protected},
		{View: ViewOrders, Pattern: "/orders", Access: Protected},
	}
}

// Decision is the outcome of resolving a path.
type Decision struct {
	// View is the view to show.
	View string `json:"view"`
	// Path is where the user ends up, the requested path unless redirected.
	Path string `json:"path"`
	// Params holds captured path parameters of the shown view.
	Params map[string]string `json:"params,omitempty"`
	// RedirectedFrom is the requested path when a redirect happened.
	RedirectedFrom string `json:"redirectedFrom,omitempty"`
}

// Redirected reports whether the requested view was replaced.
func (d Decision) Redirected() bool {
	return d.RedirectedFrom != ""
}

// Guard resolves paths against a route table.
type Guard struct {
	routes   []Route
	authPath string
	homePath string
}

// NewGuard builds a Guard. Routes for the auth and home views must exist.
func NewGuard(routes []Route) (*Guard, error) {
	g := &Guard{routes: append([]Route(nil), routes...)}
	for _, r := range routes {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("route %s: pattern %q must start with /", r.View, r.Pattern)
		}
		switch r.View {
		case ViewAuth:
			g.authPath = r.Pattern
		case ViewHome:
			g.homePath = r.Pattern
		}
	}
	if g.authPath == "" || g.homePath == "" {
		return nil, errors.New("route table needs both an auth and a home route")
	}
	return g, nil
}

// MustDefault returns a Guard over DefaultRoutes.
func MustDefault() *Guard {
	g, err := NewGuard(DefaultRoutes())
	if err != nil {
		panic(err)
	}
	return g
}

// Resolve decides which view to show for path.
func (g *Guard) Resolve(path string, authenticated bool) (Decision, error) {
	clean := normalize(path)
	for _, r := range g.routes {
		params, ok := match(r.Pattern, clean)
		if !ok {
			continue
		}

		switch {
		case r.Access == Protected && !authenticated:
			return g.redirect(g.authPath, clean), nil
		case r.Access == GuestOnly && authenticated:
			return g.redirect(g.homePath, clean), nil
		}
		return Decision{View: r.View, Path: clean, Params: params}, nil
	}
	return Decision{}, fmt.Errorf("%w: %s", ErrNotFound, clean)
}

// Protected reports whether path requires a session. Unknown paths are
// reported as not protected.
func (g *Guard) Protected(path string) bool {
	clean := normalize(path)
	for _, r := range g.routes {
		if _, ok := match(r.Pattern, clean); ok {
			return r.Access == Protected
		}
	}
	return false
}

func (g *Guard) redirect(to, from string) Decision {
	for _, r := range g.routes {
		if r.Pattern == to {
			return Decision{View: r.View, Path: to, RedirectedFrom: from}
		}
	}
	return Decision{Path: to, RedirectedFrom: from}
}

// normalize strips query, fragment and trailing slashes.
func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	return path
}

// match compares pattern and path segment by segment.
func match(pattern, path string) (map[string]string, bool) {
	ps := segments(pattern)
	xs := segments(path)
	if len(ps) != len(xs) {
		return nil, false
	}

	var params map[string]string
	for i, p := range ps {
		if strings.HasPrefix(p, ":") {
			v, err := url.PathUnescape(xs[i])
			if err != nil || v == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = v
			continue
		}
		if p != xs[i] {
			return nil, false
		}
	}
	return params, true
}

func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
