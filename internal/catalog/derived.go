package catalog

import "strings"

// DerivedCollection is a named predicate over a stored base collection.
type DerivedCollection struct {
	Name        string
	Base        string
	Description string
	Match       func(Product) bool
}

var derivedCollections = []DerivedCollection{
	{
		Name:        "oversized",
		Base:        "polos",
		Description: "Relaxed, roomy fits cut from our polo range.",
		Match:       isOversized,
	},
}

func isOversized(p Product) bool {
	return strings.Contains(strings.ToLower(p.Fit), "oversize")
}

// DerivedCollections returns the registered derived views.
func DerivedCollections() []DerivedCollection {
	out := make([]DerivedCollection, len(derivedCollections))
	copy(out, derivedCollections)
	return out
}

func derivedByName(name string) (DerivedCollection, bool) {
	for _, d := range derivedCollections {
		if d.Name == name {
			return d, true
		}
	}
	return DerivedCollection{}, false
}

// filter keeps base order so positional related-product truncation stays stable.
func (d DerivedCollection) filter(base []Product) []Product {
	out := make([]Product, 0, len(base))
	for _, p := range base {
		if d.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
