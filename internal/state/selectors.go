package state

import (
	"github.com/roach88/storefront/internal/catalog"
)

// InBag reports whether id is in the bag.
func (st State) InBag(id int64) bool { return contains(st.Bag, id) }

// InWishlist reports whether id is in the wishlist.
func (st State) InWishlist(id int64) bool { return contains(st.Wishlist, id) }

// BagItems joins bag membership with the visible catalog. Members that are
// not in the current catalog are skipped; they stay in the bag.
func (st State) BagItems() []catalog.Item {
	return join(st.Catalog, st.Bag)
}

// WishlistItems joins wishlist membership with the visible catalog.
func (st State) WishlistItems() []catalog.Item {
	return join(st.Catalog, st.Wishlist)
}

// BagTotal sums the current price of BagItems.
func (st State) BagTotal() float64 {
	var total float64
	for _, it := range st.BagItems() {
		total += it.CurrentPrice
	}
	return total
}

// join keeps catalog order, matching how the views list items.
func join(items []catalog.Item, ids []int64) []catalog.Item {
	out := make([]catalog.Item, 0, len(ids))
	for _, it := range items {
		if contains(ids, it.ID) {
			out = append(out, it)
		}
	}
	return out
}
