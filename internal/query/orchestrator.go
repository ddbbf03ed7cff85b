// Package query turns catalog and suggestion queries into backend calls and
// reconciles their results into the state store.
//
// Requests are numbered per lane by a logical clock. Catalog queries (load
// all, category, search, exact name) share one lane because they all
// replace the same catalog; suggestion lookups have their own. A response
// is applied only if no newer request was issued on its lane since, so a
// slow response can never overwrite a newer one. Superseded responses are
// dropped without surfacing an error.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/state"
)

var (
	// ErrEmptyQuery is returned for blank search text. No request is sent.
	ErrEmptyQuery = errors.New("empty query")

	// ErrNothingToRetry is returned by Retry when the last catalog query
	// did not fail.
	ErrNothingToRetry = errors.New("nothing to retry")
)

const (
	// MinSuggestChars is the shortest prefix that triggers a lookup.
	MinSuggestChars = 2

	// DefaultSuggestTTL is how long suggestion results are reused.
	DefaultSuggestTTL = 30 * time.Second
)

// Backend is the slice of the API client the orchestrator calls.
type Backend interface {
	ListItems(ctx context.Context) ([]catalog.Record, error)
	ItemsByCategory(ctx context.Context, name string) ([]catalog.Record, error)
	Search(ctx context.Context, text string) ([]catalog.Record, error)
	Suggestions(ctx context.Context, prefix string) ([]string, error)
	ExactName(ctx context.Context, name string) ([]catalog.Record, error)
}

// Kind names a catalog query.
type Kind string

const (
	KindInitial  Kind = "initial"
	KindAll      Kind = "all"
	KindCategory Kind = "category"
	KindSearch   Kind = "search"
	KindExact    Kind = "exact"
)

// Query is one catalog query.
type Query struct {
	Kind Kind   `json:"kind"`
	Arg  string `json:"arg,omitempty"`
}

func (q Query) String() string {
	if q.Arg == "" {
		return string(q.Kind)
	}
	return fmt.Sprintf("%s(%q)", q.Kind, q.Arg)
}

// SearchState is the search bar: typed text, the active category and the
// suggestion dropdown.
type SearchState struct {
	Text            string   `json:"text"`
	ActiveCategory  string   `json:"activeCategory,omitempty"`
	Suggestions     []string `json:"suggestions"`
	ShowSuggestions bool     `json:"showSuggestions"`

	// Searching is true while a suggestion lookup is in flight.
	Searching bool `json:"searching"`
	// Loading is true while a catalog query is in flight.
	Loading bool `json:"loading"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSuggestTTL sets how long suggestion results are cached. Zero disables
// the cache.
func WithSuggestTTL(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.suggestTTL = d
	}
}

// WithMinSuggestChars raises the suggestion threshold. Values below
// MinSuggestChars are ignored.
func WithMinSuggestChars(n int) Option {
	return func(o *Orchestrator) {
		if n > MinSuggestChars {
			o.minChars = n
		}
	}
}

// Orchestrator issues catalog and suggestion queries.
//
// Thread-safety: all methods are safe for concurrent use. Overlapping
// catalog queries are allowed; the latest issued one wins.
type Orchestrator struct {
	store   *state.Store
	backend Backend

	catalogLane *lane
	suggestLane *lane

	suggestTTL time.Duration
	minChars   int
	cache      *cache.Cache
	flight     singleflight.Group

	mu             sync.Mutex
	search         SearchState
	catalogPending int
	suggestPending int
	lastFailed     *Query
	initial        chan struct{} // open while the initial load runs
}

// New creates an Orchestrator writing into store.
func New(store *state.Store, backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		backend:     backend,
		catalogLane: newLane("catalog"),
		suggestLane: newLane("suggest"),
		suggestTTL:  DefaultSuggestTTL,
		minChars:    MinSuggestChars,
		search:      SearchState{Suggestions: []string{}},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.suggestTTL > 0 {
		o.cache = cache.New(o.suggestTTL, 2*o.suggestTTL)
	}
	return o
}

// Search returns a copy of the search bar state.
func (o *Orchestrator) Search() SearchState {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.search
	s.Suggestions = append([]string{}, o.search.Suggestions...)
	s.Searching = o.suggestPending > 0
	s.Loading = o.catalogPending > 0
	return s
}

// LastFailed returns the catalog query Retry would repeat, if any.
func (o *Orchestrator) LastFailed() (Query, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastFailed == nil {
		return Query{}, false
	}
	return *o.lastFailed, true
}

// LoadInitial performs the initial catalog load. It is a no-op once the
// load has succeeded or while it is running. On failure fetchDone stays
// false so the load can be retried.
func (o *Orchestrator) LoadInitial(ctx context.Context) error {
	o.mu.Lock()
	if o.initial != nil || o.store.GetState().FetchStatus.FetchDone {
		o.mu.Unlock()
		return nil
	}
	done := make(chan struct{})
	o.initial = done
	seq := o.catalogLane.issue()
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.initial = nil
		o.mu.Unlock()
		close(done)
	}()

	if err := o.store.Dispatch(state.MarkFetchingStarted{}); err != nil {
		return err
	}

	q := Query{Kind: KindInitial}
	items, err := o.fetch(ctx, q)
	if err != nil {
		if dispatchErr := o.store.Dispatch(state.MarkFetchingFinished{}); dispatchErr != nil {
			err = errors.Join(err, dispatchErr)
		}
		o.failed(q)
		slog.Error("initial catalog load failed", "error", err)
		return fmt.Errorf("initial load: %w", err)
	}

	// The window closes whether or not a newer query superseded this one.
	if err := errors.Join(
		o.store.Dispatch(state.MarkFetchDone{}),
		o.store.Dispatch(state.MarkFetchingFinished{}),
	); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	var applyErr error
	applied := o.catalogLane.commit(seq, func() {
		applyErr = o.store.Dispatch(state.ReplaceCatalog{Items: items})
		o.succeeded()
	})
	if applyErr != nil {
		return fmt.Errorf("initial load: %w", applyErr)
	}
	if !applied {
		slog.Debug("initial catalog superseded", "seq", seq, "latest", o.catalogLane.clock.Current())
		return nil
	}

	slog.Info("catalog loaded", "items", len(items))
	return nil
}

// ShowAll reloads every item. On success the search text and the active
// category are cleared.
func (o *Orchestrator) ShowAll(ctx context.Context) error {
	return o.run(ctx, Query{Kind: KindAll}, func() {
		o.search.Text = ""
		o.search.ActiveCategory = ""
	})
}

// SelectCategory shows the items of one category. The search text is
// cleared immediately; the category becomes active on success.
func (o *Orchestrator) SelectCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return ErrEmptyQuery
	}

	o.mu.Lock()
	o.search.Text = ""
	o.mu.Unlock()
	o.hideSuggestions()

	return o.run(ctx, Query{Kind: KindCategory, Arg: name}, func() {
		o.search.ActiveCategory = name
	})
}

// SubmitSearch runs a free-text search. Submitting clears the active
// category; blank text is rejected with ErrEmptyQuery.
func (o *Orchestrator) SubmitSearch(ctx context.Context, text string) error {
	text = norm.NFC.String(text)
	q := strings.TrimSpace(text)
	if q == "" {
		return ErrEmptyQuery
	}

	o.mu.Lock()
	o.search.Text = text
	o.search.ActiveCategory = ""
	o.mu.Unlock()
	o.hideSuggestions()

	return o.run(ctx, Query{Kind: KindSearch, Arg: q}, nil)
}

// PickSuggestion fills the search text with s and shows the items with
// exactly that name.
func (o *Orchestrator) PickSuggestion(ctx context.Context, s string) error {
	s = norm.NFC.String(s)
	if strings.TrimSpace(s) == "" {
		return ErrEmptyQuery
	}

	o.mu.Lock()
	o.search.Text = s
	o.mu.Unlock()
	o.hideSuggestions()

	return o.run(ctx, Query{Kind: KindExact, Arg: s}, nil)
}

// Type records text typed into the search bar. Clearing the text reloads
// all items; anything else looks up suggestions.
func (o *Orchestrator) Type(ctx context.Context, text string) error {
	text = norm.NFC.String(text)

	o.mu.Lock()
	o.search.Text = text
	o.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		o.hideSuggestions()
		return o.run(ctx, Query{Kind: KindAll}, func() {
			o.search.ActiveCategory = ""
		})
	}
	return o.Suggest(ctx, text)
}

// Retry repeats the last failed catalog query.
func (o *Orchestrator) Retry(ctx context.Context) error {
	q, ok := o.LastFailed()
	if !ok {
		return ErrNothingToRetry
	}

	switch q.Kind {
	case KindInitial:
		return o.LoadInitial(ctx)
	case KindAll:
		return o.ShowAll(ctx)
	case KindCategory:
		return o.SelectCategory(ctx, q.Arg)
	case KindSearch:
		return o.SubmitSearch(ctx, q.Arg)
	case KindExact:
		return o.PickSuggestion(ctx, q.Arg)
	default:
		return fmt.Errorf("retry: unknown query kind %q", q.Kind)
	}
}

// run issues a user catalog query and applies its result if it is still
// the latest. onApply updates the search state under o.mu.
func (o *Orchestrator) run(ctx context.Context, q Query, onApply func()) error {
	seq, err := o.admit(ctx)
	if err != nil {
		return err
	}

	o.pending(&o.catalogPending, 1)
	items, err := o.fetch(ctx, q)
	o.pending(&o.catalogPending, -1)

	if err != nil {
		if !o.catalogLane.authoritative(seq) {
			slog.Debug("discarding superseded failure", "query", q.String(), "seq", seq, "error", err)
			return nil
		}
		o.failed(q)
		slog.Error("catalog query failed", "query", q.String(), "error", err)
		return err
	}

	var applyErr error
	applied := o.catalogLane.commit(seq, func() {
		applyErr = o.store.Dispatch(state.ReplaceCatalog{Items: items})
		if applyErr != nil {
			return
		}
		o.mu.Lock()
		if onApply != nil {
			onApply()
		}
		o.mu.Unlock()
		o.succeeded()
	})
	if !applied {
		slog.Debug("discarding stale response",
			"lane", o.catalogLane.name,
			"query", q.String(),
			"seq", seq,
			"latest", o.catalogLane.clock.Current(),
		)
		return nil
	}
	return applyErr
}

// fetch calls the backend for q, collapsing identical concurrent calls,
// and maps and validates the payload as a whole.
func (o *Orchestrator) fetch(ctx context.Context, q Query) ([]catalog.Item, error) {
	key := "catalog:" + string(q.Kind) + ":" + q.Arg
	v, shared, err := o.do(ctx, key, func(ctx context.Context) (any, error) {
		switch q.Kind {
		case KindInitial, KindAll:
			return o.backend.ListItems(ctx)
		case KindCategory:
			return o.backend.ItemsByCategory(ctx, q.Arg)
		case KindSearch:
			return o.backend.Search(ctx, q.Arg)
		case KindExact:
			return o.backend.ExactName(ctx, q.Arg)
		default:
			return nil, fmt.Errorf("unknown query kind %q", q.Kind)
		}
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("shared in-flight response", "query", q.String())
	}

	items := catalog.FromRecords(v.([]catalog.Record))
	if err := catalog.Validate(items); err != nil {
		return nil, fmt.Errorf("%s: invalid catalog payload: %w", q, err)
	}
	return items, nil
}

// do runs fn once for all concurrent callers of key. The shared call runs
// on a context detached from any one caller's cancellation; each caller
// stops waiting when its own ctx ends.
func (o *Orchestrator) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, bool, error) {
	detached := context.WithoutCancel(ctx)
	ch := o.flight.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case r := <-ch:
		return r.Val, r.Shared, r.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// admit waits while the initial load runs and then stamps the query. The
// check and the stamp happen under o.mu, the same lock LoadInitial holds
// while it opens its window, so a user query is never numbered between the
// two.
func (o *Orchestrator) admit(ctx context.Context) (int64, error) {
	for {
		o.mu.Lock()
		done := o.initial
		if done == nil {
			seq := o.catalogLane.issue()
			o.mu.Unlock()
			return seq, nil
		}
		o.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (o *Orchestrator) pending(counter *int, delta int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*counter += delta
}

func (o *Orchestrator) failed(q Query) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastFailed = &q
}

func (o *Orchestrator) succeeded() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastFailed = nil
}
