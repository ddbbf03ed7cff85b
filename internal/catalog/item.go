package catalog

import (
	"fmt"
)

// Item is a product as the storefront shows it.
type Item struct {
	ID              int64   `json:"id"`
	ImageRef        string  `json:"image"`
	Brand           string  `json:"company"`
	Name            string  `json:"item_name"`
	CurrentPrice    float64 `json:"current_price"`
	OriginalPrice   float64 `json:"original_price"`
	DiscountPercent int     `json:"discount_percentage"`
	Rating          Rating  `json:"rating"`
	Category        string  `json:"category,omitempty"`
}

// Rating is the aggregate review score of an item.
type Rating struct {
	Stars float64 `json:"stars"`
	Count int     `json:"count"`
}

// Record is the item shape returned by the backend's /items endpoints.
type Record struct {
	ID                 int64   `json:"id"`
	Image              string  `json:"image"`
	Company            string  `json:"company"`
	ItemName           string  `json:"itemName"`
	CurrentPrice       float64 `json:"currentPrice"`
	OriginalPrice      float64 `json:"originalPrice"`
	DiscountPercentage int     `json:"discountPercentage"`
	RatingStars        float64 `json:"ratingStars"`
	RatingCount        int     `json:"ratingCount"`
	Category           string  `json:"category,omitempty"`
}

// FromRecord maps a backend record onto an Item.
func FromRecord(r Record) Item {
	return Item{
		ID:              r.ID,
		ImageRef:        r.Image,
		Brand:           r.Company,
		Name:            r.ItemName,
		CurrentPrice:    r.CurrentPrice,
		OriginalPrice:   r.OriginalPrice,
		DiscountPercent: r.DiscountPercentage,
		Rating: Rating{
			Stars: r.RatingStars,
			Count: r.RatingCount,
		},
		Category: r.Category,
	}
}

// FromRecords maps a whole response payload. The result is never nil so an
// empty response still replaces the visible catalog.
func FromRecords(records []Record) []Item {
	items := make([]Item, 0, len(records))
	for _, r := range records {
		items = append(items, FromRecord(r))
	}
	return items
}

// ToRecord is the inverse of FromRecord.
func ToRecord(it Item) Record {
	return Record{
		ID:                 it.ID,
		Image:              it.ImageRef,
		Company:            it.Brand,
		ItemName:           it.Name,
		CurrentPrice:       it.CurrentPrice,
		OriginalPrice:      it.OriginalPrice,
		DiscountPercentage: it.DiscountPercent,
		RatingStars:        it.Rating.Stars,
		RatingCount:        it.Rating.Count,
		Category:           it.Category,
	}
}

// Validate checks the invariants of a loaded set: unique ids, current price
// not above original price, stars within 0-5 and a non-negative count.
func Validate(items []Item) error {
	seen := make(map[int64]bool, len(items))
	for i, it := range items {
		if seen[it.ID] {
			return fmt.Errorf("item[%d]: duplicate id %d", i, it.ID)
		}
		seen[it.ID] = true

		if it.CurrentPrice > it.OriginalPrice {
			return fmt.Errorf("item[%d] id=%d: current price %.2f exceeds original price %.2f",
				i, it.ID, it.CurrentPrice, it.OriginalPrice)
		}
		if it.Rating.Stars < 0 || it.Rating.Stars > 5 {
			return fmt.Errorf("item[%d] id=%d: rating stars %.1f out of range 0-5", i, it.ID, it.Rating.Stars)
		}
		if it.Rating.Count < 0 {
			return fmt.Errorf("item[%d] id=%d: negative rating count %d", i, it.ID, it.Rating.Count)
		}
	}
	return nil
}

// Index returns the items keyed by id.
func Index(items []Item) map[int64]Item {
	idx := make(map[int64]Item, len(items))
	for _, it := range items {
		idx[it.ID] = it
	}
	return idx
}
