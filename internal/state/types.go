package state

import (
	"github.com/roach88/storefront/internal/catalog"
)

// Domain names one independently transitioned slice of the State.
type Domain string

const (
	DomainCatalog     Domain = "catalog"
	DomainFetchStatus Domain = "fetchStatus"
	DomainBag         Domain = "bag"
	DomainWishlist    Domain = "wishlist"
	DomainSession     Domain = "session"
)

// State is an immutable snapshot of all five domains.
type State struct {
	Catalog     []catalog.Item `json:"catalog"`
	FetchStatus FetchStatus    `json:"fetchStatus"`
	Bag         []int64        `json:"bag"`
	Wishlist    []int64        `json:"wishlist"`
	Session     Session        `json:"session"`

	// Version counts applied intents. It starts at 0 for a fresh store.
	Version int64 `json:"version"`
}

// FetchStatus tracks the initial catalog load.
type FetchStatus struct {
	CurrentlyFetching bool `json:"currentlyFetching"`
	FetchDone         bool `json:"fetchDone"`
}

// Session is the authentication state.
//
// INVARIANT: IsAuthenticated is true if and only if Token is non-empty and
// User is non-nil.
type Session struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            *User  `json:"user"`
	Token           string `json:"-"`
}

// User is the locally synthesized account record held by a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// initialState is the state of a fresh process.
func initialState() State {
	return State{
		Catalog:  []catalog.Item{},
		Bag:      []int64{},
		Wishlist: []int64{},
	}
}
