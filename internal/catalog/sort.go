package catalog

import (
	"sort"

	"github.com/angelmondragon/omnicart-backend/pkg/enums"
)

// Sort returns a sorted copy of items. The input slice is never reordered.
// Ties keep their catalog order.
func Sort(items []Product, key enums.SortKey) []Product {
	out := make([]Product, len(items))
	copy(out, items)

	var less func(a, b Product) bool
	switch key {
	case enums.SortKeyPriceLow:
		less = func(a, b Product) bool { return a.Price < b.Price }
	case enums.SortKeyPriceHigh:
		less = func(a, b Product) bool { return a.Price > b.Price }
	case enums.SortKeyNewest:
		less = func(a, b Product) bool { return a.Date.After(b.Date.Time) }
	case enums.SortKeyRating:
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	default:
		less = func(a, b Product) bool {
			if a.Featured != b.Featured {
				return a.Featured
			}
			return a.Rating > b.Rating
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
