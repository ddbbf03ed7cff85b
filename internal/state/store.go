package state

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Subscriber is called after every applied intent with the new snapshot.
//
// Subscribers run in the dispatching goroutine while dispatches are held.
// A subscriber must not call Dispatch on the same Store.
type Subscriber func(State)

// Option configures a Store.
type Option func(*Store)

// WithBagDedup makes AddToBag a no-op when the id is already in the bag.
//
// The default (false) keeps the bag as a plain list that may hold an id more
// than once, unlike the wishlist which always deduplicates.
func WithBagDedup(dedup bool) Option {
	return func(s *Store) {
		s.bagDedup = dedup
	}
}

// WithInitialState seeds a store, typically in tests.
func WithInitialState(st State) Option {
	return func(s *Store) {
		s.state = st
	}
}

// Store is the single-writer state container.
//
// Thread-safety model:
//   - Dispatch(): safe from any goroutine; dispatches are serialized
//   - GetState(): safe from any goroutine, never blocks on subscribers
//   - Subscribe(): safe from any goroutine
type Store struct {
	// dispatchMu serializes apply+notify so subscribers observe states in
	// the order they were produced.
	dispatchMu sync.Mutex

	mu       sync.RWMutex
	state    State
	subs     map[int]Subscriber
	nextSub  int
	bagDedup bool
}

// New creates a Store holding the fresh-process state.
func New(opts ...Option) *Store {
	s := &Store{
		state: initialState(),
		subs:  make(map[int]Subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns the current snapshot.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
// Subscribers are notified in registration order.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies the transition function of in's domain and notifies
// subscribers. On error the state is left unchanged and nobody is notified.
func (s *Store) Dispatch(in Intent) error {
	if in == nil {
		return fmt.Errorf("dispatch: nil intent")
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.RLock()
	cur := s.state
	s.mu.RUnlock()

	next, err := s.apply(cur, in)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", in.Name(), err)
	}
	next.Version = cur.Version + 1

	s.mu.Lock()
	s.state = next
	subs := s.subscribersLocked()
	s.mu.Unlock()

	slog.Debug("intent applied",
		"intent", in.Name(),
		"domain", in.Domain(),
		"version", next.Version,
	)

	for _, fn := range subs {
		fn(next)
	}
	return nil
}

// apply routes in to the transition function of its domain.
func (s *Store) apply(cur State, in Intent) (State, error) {
	next := cur
	var err error

	switch in.Domain() {
	case DomainCatalog:
		next.Catalog, err = reduceCatalog(cur.Catalog, in)
	case DomainFetchStatus:
		next.FetchStatus, err = reduceFetchStatus(cur.FetchStatus, in)
	case DomainBag:
		next.Bag, err = reduceBag(cur.Bag, in, s.bagDedup)
	case DomainWishlist:
		next.Wishlist, err = reduceWishlist(cur.Wishlist, in)
	case DomainSession:
		next.Session, err = reduceSession(cur.Session, in)
	default:
		err = &IntentError{Domain: in.Domain(), Intent: in.Name()}
	}
	if err != nil {
		return cur, err
	}
	return next, nil
}

// subscribersLocked returns subscribers in registration order.
// Caller must hold s.mu.
func (s *Store) subscribersLocked() []Subscriber {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.subs[id])
	}
	return out
}
