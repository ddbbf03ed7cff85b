package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/catalog"
)

// bogusIntent claims a domain that does not exist.
type bogusIntent struct{}

func (bogusIntent) Domain() Domain { return "nope" }
func (bogusIntent) Name() string   { return "nope/bogus" }

// misroutedIntent claims the catalog domain but is not a catalog intent.
type misroutedIntent struct{}

func (misroutedIntent) Domain() Domain { return DomainCatalog }
func (misroutedIntent) Name() string   { return "catalog/misrouted" }

func testItems(ids ...int64) []catalog.Item {
	items := make([]catalog.Item, len(ids))
	for i, id := range ids {
		items[i] = catalog.Item{ID: id, Name: "item", CurrentPrice: float64(id * 10), OriginalPrice: float64(id * 20)}
	}
	return items
}

func TestNew_FreshProcessState(t *testing.T) {
	s := New()
	st := s.GetState()

	assert.Empty(t, st.Catalog)
	assert.Equal(t, FetchStatus{}, st.FetchStatus)
	assert.Empty(t, st.Bag)
	assert.Empty(t, st.Wishlist)
	assert.False(t, st.Session.IsAuthenticated)
	assert.Equal(t, int64(0), st.Version)
}

func TestStores_AreIsolated(t *testing.T) {
	a := New()
	b := New()

	require.NoError(t, a.Dispatch(AddToBag{ID: 1}))

	assert.Equal(t, []int64{1}, a.GetState().Bag)
	assert.Empty(t, b.GetState().Bag)
}

func TestRemoval_IsIdempotent(t *testing.T) {
	priors := [][]int64{
		{},
		{1},
		{1, 2, 3},
		{2, 2, 3},
	}

	for _, prior := range priors {
		t.Run("bag", func(t *testing.T) {
			s := New()
			for _, id := range prior {
				require.NoError(t, s.Dispatch(AddToBag{ID: id}))
			}
			before := s.GetState().Bag

			require.NoError(t, s.Dispatch(RemoveFromBag{ID: 99}))
			assert.Equal(t, before, s.GetState().Bag)
		})

		t.Run("wishlist", func(t *testing.T) {
			s := New()
			for _, id := range prior {
				require.NoError(t, s.Dispatch(AddToWishlist{ID: id}))
			}
			before := s.GetState().Wishlist

			require.NoError(t, s.Dispatch(RemoveFromWishlist{ID: 99}))
			assert.Equal(t, before, s.GetState().Wishlist)
		})
	}
}

func TestRemoval_FiltersEveryOccurrence(t *testing.T) {
	s := New()
	for _, id := range []int64{4, 5, 4} {
		require.NoError(t, s.Dispatch(AddToBag{ID: id}))
	}

	require.NoError(t, s.Dispatch(RemoveFromBag{ID: 4}))
	assert.Equal(t, []int64{5}, s.GetState().Bag)
}

func TestWishlist_Dedup(t *testing.T) {
	s := New()
	require.NoError(t, s.Dispatch(AddToWishlist{ID: 7}))
	require.NoError(t, s.Dispatch(AddToWishlist{ID: 7}))

	assert.Equal(t, []int64{7}, s.GetState().Wishlist)
}

func TestBag_DuplicatePolicy(t *testing.T) {
	t.Run("default keeps duplicates", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Dispatch(AddToBag{ID: 7}))
		require.NoError(t, s.Dispatch(AddToBag{ID: 7}))
		assert.Equal(t, []int64{7, 7}, s.GetState().Bag)
	})

	t.Run("dedup option", func(t *testing.T) {
		s := New(WithBagDedup(true))
		require.NoError(t, s.Dispatch(AddToBag{ID: 7}))
		require.NoError(t, s.Dispatch(AddToBag{ID: 7}))
		assert.Equal(t, []int64{7}, s.GetState().Bag)
	})
}

func TestClearBag_LeavesWishlist(t *testing.T) {
	s := New()
	require.NoError(t, s.Dispatch(AddToBag{ID: 1}))
	require.NoError(t, s.Dispatch(AddToWishlist{ID: 1}))

	require.NoError(t, s.Dispatch(ClearBag{}))

	st := s.GetState()
	assert.Empty(t, st.Bag)
	assert.Equal(t, []int64{1}, st.Wishlist)
}

func TestReplaceCatalog_ReplacesWholesale(t *testing.T) {
	s := New()
	require.NoError(t, s.Dispatch(ReplaceCatalog{Items: testItems(1, 2, 3)}))
	require.NoError(t, s.Dispatch(ReplaceCatalog{Items: testItems(4)}))

	st := s.GetState()
	require.Len(t, st.Catalog, 1)
	assert.Equal(t, int64(4), st.Catalog[0].ID)
}

func TestReplaceCatalog_CopiesInput(t *testing.T) {
	s := New()
	items := testItems(1, 2)
	require.NoError(t, s.Dispatch(ReplaceCatalog{Items: items}))

	items[0].Name = "mutated"
	assert.Equal(t, "item", s.GetState().Catalog[0].Name)
}

func TestMembership_SurvivesCatalogReplacement(t *testing.T) {
	s := New()
	require.NoError(t, s.Dispatch(ReplaceCatalog{Items: testItems(1, 2)}))
	require.NoError(t, s.Dispatch(AddToBag{ID: 2}))
	require.NoError(t, s.Dispatch(ReplaceCatalog{Items: testItems(3)}))

	st := s.GetState()
	assert.Equal(t, []int64{2}, st.Bag)
	assert.Empty(t, st.BagItems())
}

func TestFetchStatus_Transitions(t *testing.T) {
	s := New()

	require.NoError(t, s.Dispatch(MarkFetchingStarted{}))
	assert.Equal(t, FetchStatus{CurrentlyFetching: true}, s.GetState().FetchStatus)

	require.NoError(t, s.Dispatch(MarkFetchDone{}))
	require.NoError(t, s.Dispatch(MarkFetchingFinished{}))
	assert.Equal(t, FetchStatus{FetchDone: true}, s.GetState().FetchStatus)
}

func TestSession_Invariant(t *testing.T) {
	s := New()

	err := s.Dispatch(Login{User: User{Email: "a@b.com"}})
	require.Error(t, err)
	assert.False(t, s.GetState().Session.IsAuthenticated)

	require.NoError(t, s.Dispatch(Login{User: User{ID: "u1", Email: "a@b.com"}, Token: "tok"}))
	sess := s.GetState().Session
	assert.True(t, sess.IsAuthenticated)
	require.NotNil(t, sess.User)
	assert.Equal(t, "a@b.com", sess.User.Email)
	assert.Equal(t, "tok", sess.Token)

	require.NoError(t, s.Dispatch(Logout{}))
	assert.Equal(t, Session{}, s.GetState().Session)

	require.NoError(t, s.Dispatch(Login{User: User{ID: "u1"}, Token: "tok"}))
	require.NoError(t, s.Dispatch(InitializeSession{}))
	assert.Equal(t, Session{}, s.GetState().Session)
}

func TestDispatch_RejectsUnknownIntents(t *testing.T) {
	s := New()

	var ie *IntentError
	err := s.Dispatch(bogusIntent{})
	require.ErrorAs(t, err, &ie)

	err = s.Dispatch(misroutedIntent{})
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "catalog/misrouted", ie.Intent)

	require.Error(t, s.Dispatch(nil))

	assert.Equal(t, int64(0), s.GetState().Version, "failed dispatches must not advance the state")
}

func TestSnapshots_AreStable(t *testing.T) {
	s := New()
	require.NoError(t, s.Dispatch(AddToWishlist{ID: 1}))
	snap := s.GetState()

	require.NoError(t, s.Dispatch(AddToWishlist{ID: 2}))
	require.NoError(t, s.Dispatch(RemoveFromWishlist{ID: 1}))

	assert.Equal(t, []int64{1}, snap.Wishlist)
	assert.Equal(t, []int64{2}, s.GetState().Wishlist)
}

func TestSubscribe_NotifiedSynchronouslyInOrder(t *testing.T) {
	s := New()

	var calls []string
	s.Subscribe(func(st State) { calls = append(calls, "first") })
	unsub := s.Subscribe(func(st State) { calls = append(calls, "second") })

	require.NoError(t, s.Dispatch(AddToBag{ID: 1}))
	assert.Equal(t, []string{"first", "second"}, calls)

	unsub()
	require.NoError(t, s.Dispatch(AddToBag{ID: 2}))
	assert.Equal(t, []string{"first", "second", "first"}, calls)
}

func TestSubscribe_SeesNewState(t *testing.T) {
	s := New()

	var seen []int64
	s.Subscribe(func(st State) { seen = st.Bag })

	require.NoError(t, s.Dispatch(AddToBag{ID: 3}))
	assert.Equal(t, []int64{3}, seen)
}

func TestSubscribe_NotNotifiedOnError(t *testing.T) {
	s := New()
	called := false
	s.Subscribe(func(State) { called = true })

	require.Error(t, s.Dispatch(bogusIntent{}))
	assert.False(t, called)
}

func TestDispatch_ConcurrentIsSerialized(t *testing.T) {
	s := New()
	const goroutines = 50

	var versions []int64
	var mu sync.Mutex
	s.Subscribe(func(st State) {
		mu.Lock()
		versions = append(versions, st.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = s.Dispatch(AddToBag{ID: id})
		}(int64(i))
	}
	wg.Wait()

	assert.Len(t, s.GetState().Bag, goroutines)
	require.Len(t, versions, goroutines)
	for i, v := range versions {
		assert.Equal(t, int64(i+1), v, "subscribers must observe versions in order")
	}
}

func TestSelectors(t *testing.T) {
	s := New()
	require.NoError(t, s.Dispatch(ReplaceCatalog{Items: testItems(1, 2, 3)}))
	require.NoError(t, s.Dispatch(AddToBag{ID: 3}))
	require.NoError(t, s.Dispatch(AddToBag{ID: 1}))
	require.NoError(t, s.Dispatch(AddToBag{ID: 42}))
	require.NoError(t, s.Dispatch(AddToWishlist{ID: 2}))

	st := s.GetState()
	assert.True(t, st.InBag(42))
	assert.True(t, st.InWishlist(2))
	assert.False(t, st.InWishlist(1))

	bag := st.BagItems()
	require.Len(t, bag, 2)
	assert.Equal(t, int64(1), bag[0].ID, "catalog order is kept")
	assert.Equal(t, int64(3), bag[1].ID)
	assert.Equal(t, 40.0, st.BagTotal())

	wish := st.WishlistItems()
	require.Len(t, wish, 1)
	assert.Equal(t, int64(2), wish[0].ID)
}
