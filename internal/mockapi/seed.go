package mockapi

import "github.com/roach88/storefront/internal/catalog"

// SeedItems is the catalog served when no items are supplied.
func SeedItems() []catalog.Record {
	return []catalog.Record{
		{ID: 1, Image: "images/1.jpg", Company: "Nike", ItemName: "Air Max 270", CurrentPrice: 12999, OriginalPrice: 15999, DiscountPercentage: 19, RatingStars: 4.5, RatingCount: 120, Category: "Men"},
		{ID: 2, Image: "images/2.jpg", Company: "Adidas", ItemName: "Ultraboost 22", CurrentPrice: 18999, OriginalPrice: 21999, DiscountPercentage: 14, RatingStars: 4.3, RatingCount: 89, Category: "Women"},
		{ID: 3, Image: "images/3.jpg", Company: "Puma", ItemName: "RS-X Reinvention", CurrentPrice: 8999, OriginalPrice: 11999, DiscountPercentage: 25, RatingStars: 4.1, RatingCount: 67, Category: "Men"},
		{ID: 4, Image: "images/4.jpg", Company: "Reebok", ItemName: "Classic Leather", CurrentPrice: 5999, OriginalPrice: 7999, DiscountPercentage: 25, RatingStars: 4.4, RatingCount: 156, Category: "Women"},
		{ID: 5, Image: "images/5.jpg", Company: "Converse", ItemName: "Chuck Taylor All Star", CurrentPrice: 3999, OriginalPrice: 4999, DiscountPercentage: 20, RatingStars: 4.6, RatingCount: 234, Category: "Kids"},
		{ID: 6, Image: "images/6.jpg", Company: "Vans", ItemName: "Old Skool", CurrentPrice: 4999, OriginalPrice: 6499, DiscountPercentage: 23, RatingStars: 4.2, RatingCount: 98, Category: "Studio"},
		{ID: 7, Image: "images/7.jpg", Company: "New Balance", ItemName: "574 Core", CurrentPrice: 7999, OriginalPrice: 9999, DiscountPercentage: 20, RatingStars: 4.3, RatingCount: 112, Category: "Men"},
		{ID: 8, Image: "images/8.jpg", Company: "Fila", ItemName: "Disruptor II", CurrentPrice: 6999, OriginalPrice: 8999, DiscountPercentage: 22, RatingStars: 4.0, RatingCount: 76, Category: "Women"},
	}
}
