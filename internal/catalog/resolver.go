package catalog

import (
	"context"

	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
)

type productReader interface {
	Products(collection string) ([]Product, error)
	Find(ref ProductRef) (Product, error)
}

// Detail is a product page: the product plus its related products.
type Detail struct {
	Product Product    `json:"product"`
	Stars   StarRating `json:"stars"`
	Images  []string   `json:"images"`
	Related []Product  `json:"related"`
}

// Resolver builds product detail views.
type Resolver struct {
	store        productReader
	relatedCount int
}

// NewResolver returns a resolver that lists up to relatedCount related products.
func NewResolver(store productReader, relatedCount int) *Resolver {
	if relatedCount < 0 {
		relatedCount = 0
	}
	return &Resolver{store: store, relatedCount: relatedCount}
}

// Resolve finds a product by its id field in collection and attaches related
// products: the first relatedCount others of the same collection, in catalog order.
func (r *Resolver) Resolve(ctx context.Context, collection string, id int) (*Detail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	product, err := r.store.Find(ProductRef{Collection: collection, ID: id})
	if err != nil {
		return nil, err
	}
	siblings, err := r.store.Products(collection)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}

	related := make([]Product, 0, r.relatedCount)
	for _, p := range siblings {
		if len(related) >= r.relatedCount {
			break
		}
		if p.ID == product.ID && p.Collection == product.Collection {
			continue
		}
		related = append(related, p)
	}

	return &Detail{
		Product: product,
		Stars:   Stars(product.Rating),
		Images:  product.Images(),
		Related: related,
	}, nil
}
