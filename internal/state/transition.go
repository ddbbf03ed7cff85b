package state

import (
	"fmt"

	"github.com/roach88/storefront/internal/catalog"
)

// Each transition function below is pure and total over the intents of its
// domain. An intent routed to the wrong domain is a programming error and is
// reported as *IntentError rather than silently ignored.

func reduceCatalog(cur []catalog.Item, in Intent) ([]catalog.Item, error) {
	switch in := in.(type) {
	case ReplaceCatalog:
		next := make([]catalog.Item, len(in.Items))
		copy(next, in.Items)
		return next, nil
	default:
		return cur, unknownIntent(DomainCatalog, in)
	}
}

func reduceFetchStatus(cur FetchStatus, in Intent) (FetchStatus, error) {
	switch in.(type) {
	case MarkFetchingStarted:
		cur.CurrentlyFetching = true
		return cur, nil
	case MarkFetchingFinished:
		cur.CurrentlyFetching = false
		return cur, nil
	case MarkFetchDone:
		cur.FetchDone = true
		return cur, nil
	default:
		return cur, unknownIntent(DomainFetchStatus, in)
	}
}

// reduceBag appends without deduplicating unless dedup is set. See
// WithBagDedup.
func reduceBag(cur []int64, in Intent, dedup bool) ([]int64, error) {
	switch in := in.(type) {
	case AddToBag:
		if dedup && contains(cur, in.ID) {
			return cur, nil
		}
		return appendID(cur, in.ID), nil
	case RemoveFromBag:
		return without(cur, in.ID), nil
	case ClearBag:
		return []int64{}, nil
	default:
		return cur, unknownIntent(DomainBag, in)
	}
}

func reduceWishlist(cur []int64, in Intent) ([]int64, error) {
	switch in := in.(type) {
	case AddToWishlist:
		if contains(cur, in.ID) {
			return cur, nil
		}
		return appendID(cur, in.ID), nil
	case RemoveFromWishlist:
		return without(cur, in.ID), nil
	case ClearWishlist:
		return []int64{}, nil
	default:
		return cur, unknownIntent(DomainWishlist, in)
	}
}

func reduceSession(cur Session, in Intent) (Session, error) {
	switch in := in.(type) {
	case Login:
		if in.Token == "" {
			return cur, fmt.Errorf("session/login: token is required")
		}
		user := in.User
		return Session{IsAuthenticated: true, User: &user, Token: in.Token}, nil
	case Logout, InitializeSession:
		return Session{}, nil
	default:
		return cur, unknownIntent(DomainSession, in)
	}
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// appendID never aliases cur, so snapshots holding cur stay unchanged.
func appendID(cur []int64, id int64) []int64 {
	next := make([]int64, len(cur), len(cur)+1)
	copy(next, cur)
	return append(next, id)
}

func without(cur []int64, id int64) []int64 {
	if !contains(cur, id) {
		return cur
	}
	next := make([]int64, 0, len(cur))
	for _, v := range cur {
		if v != id {
			next = append(next, v)
		}
	}
	return next
}
