package app

import (
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/state"
)

// BagView is the bag as the bag view shows it.
type BagView struct {
	Items []catalog.Item `json:"items"`
	Total float64        `json:"total"`
	// Hidden counts bag entries whose item is not in the visible catalog.
	Hidden int `json:"hidden"`
}

// Bag joins bag membership with the visible catalog.
func (a *App) Bag() BagView {
	st := a.Store.GetState()
	items := st.BagItems()
	return BagView{
		Items:  items,
		Total:  st.BagTotal(),
		Hidden: countMissing(st.Bag, st.Catalog),
	}
}

// Wishlist joins wishlist membership with the visible catalog.
func (a *App) Wishlist() []catalog.Item {
	return a.Store.GetState().WishlistItems()
}

// AddToBag adds id to the bag. Whether a repeated add is kept follows the
// store's bag dedup setting.
func (a *App) AddToBag(id int64) error {
	return a.Store.Dispatch(state.AddToBag{ID: id})
}

// RemoveFromBag removes every entry of id from the bag.
func (a *App) RemoveFromBag(id int64) error {
	return a.Store.Dispatch(state.RemoveFromBag{ID: id})
}

// ToggleBag adds id to the bag or removes it when present.
func (a *App) ToggleBag(id int64) error {
	if a.Store.GetState().InBag(id) {
		return a.Store.Dispatch(state.RemoveFromBag{ID: id})
	}
	return a.Store.Dispatch(state.AddToBag{ID: id})
}

// ToggleWishlist adds id to the wishlist or removes it when present.
func (a *App) ToggleWishlist(id int64) error {
	if a.Store.GetState().InWishlist(id) {
		return a.Store.Dispatch(state.RemoveFromWishlist{ID: id})
	}
	return a.Store.Dispatch(state.AddToWishlist{ID: id})
}

func countMissing(ids []int64, items []catalog.Item) int {
	visible := make(map[int64]struct{}, len(items))
	for _, it := range items {
		visible[it.ID] = struct{}{}
	}
	n := 0
	for _, id := range ids {
		if _, ok := visible[id]; !ok {
			n++
		}
	}
	return n
}
