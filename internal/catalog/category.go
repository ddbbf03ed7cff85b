package catalog

// Categories offered in the navigation bar, in display order.
var Categories = []string{
	"Men",
	"Women",
	"Kids",
	"Home & Living",
	"Beauty",
	"Studio",
}

// IsKnownCategory reports whether name is one of Categories.
func IsKnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
