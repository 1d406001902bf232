package catalog

import (
	"context"
	"strings"

	"github.com/angelmondragon/omnicart-backend/pkg/enums"
)

// Filter narrows products to a collection and a case-insensitive search term
// matched against name, description and tags. Empty arguments match everything.
func Filter(products []Product, collection, term string) []Product {
	collection = normalizeCollection(collection)
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if collection != "" && p.Collection != collection {
			continue
		}
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesTerm(p Product, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}


// Search returns a flat, sorted product list across collections. category
// may name a stored or derived collection; term matches name, description and tags.
func (s *Store) Search(ctx context.Context, category, term string, key enums.SortKey) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var products []Product
	if category = normalizeCollection(category); category != "" {
		list, err := s.Products(category)
		if err != nil {
			return nil, err
		}
		products = list
	} else {
		products = s.All()
	}
	return Sort(Filter(products, "", term), key), nil
}
