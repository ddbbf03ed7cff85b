package state

import (
	"github.com/roach88/storefront/internal/catalog"
)

// Intent is a request to transition exactly one domain.
type Intent interface {
	// Domain names the domain whose transition function handles the intent.
	Domain() Domain
	// Name is a stable identifier used in logs and traces.
	Name() string
}

// ReplaceCatalog swaps the visible catalog for Items in a single step.
type ReplaceCatalog struct {
	Items []catalog.Item
}

func (ReplaceCatalog) Domain() Domain { return DomainCatalog }
func (ReplaceCatalog) Name() string   { return "catalog/replace" }

// MarkFetchingStarted opens the initial-load window.
type MarkFetchingStarted struct{}

func (MarkFetchingStarted) Domain() Domain { return DomainFetchStatus }
func (MarkFetchingStarted) Name() string   { return "fetchStatus/started" }

// MarkFetchingFinished closes the initial-load window, on success or failure.
type MarkFetchingFinished struct{}

func (MarkFetchingFinished) Domain() Domain { return DomainFetchStatus }
func (MarkFetchingFinished) Name() string   { return "fetchStatus/finished" }

// MarkFetchDone records that the initial load succeeded.
type MarkFetchDone struct{}

func (MarkFetchDone) Domain() Domain { return DomainFetchStatus }
func (MarkFetchDone) Name() string   { return "fetchStatus/done" }

// AddToBag appends an item id to the bag.
type AddToBag struct {
	ID int64
}

func (AddToBag) Domain() Domain { return DomainBag }
func (AddToBag) Name() string   { return "bag/add" }

// RemoveFromBag removes every occurrence of an item id from the bag.
type RemoveFromBag struct {
	ID int64
}

func (RemoveFromBag) Domain() Domain { return DomainBag }
func (RemoveFromBag) Name() string   { return "bag/remove" }

// ClearBag empties the bag, e.g. after an order is placed.
type ClearBag struct{}

func (ClearBag) Domain() Domain { return DomainBag }
func (ClearBag) Name() string   { return "bag/clear" }

// AddToWishlist adds an item id unless it is already a member.
type AddToWishlist struct {
	ID int64
}

func (AddToWishlist) Domain() Domain { return DomainWishlist }
func (AddToWishlist) Name() string   { return "wishlist/add" }

// RemoveFromWishlist removes an item id from the wishlist.
type RemoveFromWishlist struct {
	ID int64
}

func (RemoveFromWishlist) Domain() Domain { return DomainWishlist }
func (RemoveFromWishlist) Name() string   { return "wishlist/remove" }

// ClearWishlist empties the wishlist.
type ClearWishlist struct{}

func (ClearWishlist) Domain() Domain { return DomainWishlist }
func (ClearWishlist) Name() string   { return "wishlist/clear" }

// Login establishes an authenticated session.
type Login struct {
	User  User
	Token string
}

func (Login) Domain() Domain { return DomainSession }
func (Login) Name() string   { return "session/login" }

// Logout returns the session to anonymous.
type Logout struct{}

func (Logout) Domain() Domain { return DomainSession }
func (Logout) Name() string   { return "session/logout" }

// InitializeSession resets the session at process start.
type InitializeSession struct{}

func (InitializeSession) Domain() Domain { return DomainSession }
func (InitializeSession) Name() string   { return "session/initialize" }
