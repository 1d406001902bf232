package enums

import "strings"

// SortKey selects the comparator applied to a catalog listing.
type SortKey string

const (
	SortKeyFeatured  SortKey = "featured"
	SortKeyPriceLow  SortKey = "price-low"
	SortKeyPriceHigh SortKey = "price-high"
	SortKeyNewest    SortKey = "newest"
	SortKeyRating    SortKey = "rating"
)

// DefaultSortKey is applied when a listing is requested without a key.
const DefaultSortKey = SortKeyFeatured

var validSortKeys = []SortKey{
	SortKeyFeatured,
	SortKeyPriceLow,
	SortKeyPriceHigh,
	SortKeyNewest,
	SortKeyRating,
}

// String implements fmt.Stringer.
func (k SortKey) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SortKey.
func (k SortKey) IsValid() bool {
	for _, candidate := range validSortKeys {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseSortKey never fails: unknown or empty input resolves to DefaultSortKey.
func ParseSortKey(value string) SortKey {
	normalized := SortKey(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized
	}
	return DefaultSortKey
}

// SortKeys returns the recognised keys in display order.
func SortKeys() []SortKey {
	keys := make([]SortKey, len(validSortKeys))
	copy(keys, validSortKeys)
	return keys
}
