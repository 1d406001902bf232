package enums

import "strings"

// ViewMode is the listing layout requested by the storefront.
type ViewMode string

const (
	ViewModeGrid ViewMode = "grid"
	ViewModeList ViewMode = "list"
)

// ParseViewMode falls back to grid for unknown values.
func ParseViewMode(value string) ViewMode {
	if ViewMode(strings.ToLower(strings.TrimSpace(value))) == ViewModeList {
		return ViewModeList
	}
	return ViewModeGrid
}

// ListingSurface picks the reveal page size for a listing.
type ListingSurface string

const (
	ListingSurfaceCollection ListingSurface = "collection"
	ListingSurfaceHome       ListingSurface = "home"
)

// ParseListingSurface falls back to the collection grid for unknown values.
func ParseListingSurface(value string) ListingSurface {
	if ListingSurface(strings.ToLower(strings.TrimSpace(value))) == ListingSurfaceHome {
		return ListingSurfaceHome
	}
	return ListingSurfaceCollection
}
