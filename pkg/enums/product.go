package enums

import (
	"fmt"
	"strings"
)

// ProductBadge is the marketing label shown on a product card.
// The empty value means the product carries no badge.
type ProductBadge string

const (
	ProductBadgeNone     ProductBadge = ""
	ProductBadgeNew      ProductBadge = "NEW"
	ProductBadgeTrending ProductBadge = "TRENDING"
	ProductBadgeLimited  ProductBadge = "LIMITED"
)

var validProductBadges = []ProductBadge{
	ProductBadgeNone,
	ProductBadgeNew,
	ProductBadgeTrending,
	ProductBadgeLimited,
}

// String implements fmt.Stringer.
func (b ProductBadge) String() string {
	return string(b)
}

// IsValid reports whether the value is a known ProductBadge.
func (b ProductBadge) IsValid() bool {
	for _, candidate := range validProductBadges {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseProductBadge converts raw input into a ProductBadge. Matching ignores case.
func ParseProductBadge(value string) (ProductBadge, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validProductBadges {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product badge %q", value)
}
