// Package state holds the storefront's single in-memory source of truth.
//
// The Store owns five domains: catalog, fetchStatus, bag, wishlist and
// session. Each domain advances only through its own transition function,
// which is pure: it maps (current domain state, intent) to a new domain
// state and performs no I/O.
//
// DISPATCH MODEL:
//
// Dispatch is the only way to mutate a Store. Dispatches are serialized, so
// every mutation is a single synchronous step, and subscribers are notified
// in the dispatching goroutine before Dispatch returns. Network results
// arriving on other goroutines therefore race only on which of them gets to
// perform that step last; the query package decides that.
//
// SNAPSHOTS:
//
// GetState returns a value snapshot. Transition functions never modify a
// slice in place, they always build a new one, so a snapshot stays valid
// after later dispatches. Callers must treat snapshot slices as read-only.
//
// A Store is an ordinary value built with New. There is no package-level
// instance; tests create as many isolated stores as they need.
package state
