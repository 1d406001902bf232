package catalog

import (
	"context"
	"time"

	"github.com/angelmondragon/omnicart-backend/pkg/config"
	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	"github.com/angelmondragon/omnicart-backend/pkg/pagination"
)

// ListingRequest asks for the next reveal of a collection listing.
type ListingRequest struct {
	Collection string
	Sort       enums.SortKey
	Surface    enums.ListingSurface
	Cursor     *pagination.ListCursor
}

// ListingPage is one reveal step. Items holds only the newly revealed products.
type ListingPage struct {
	Collection   Collection
	Sort         enums.SortKey
	Items        []Product
	Displayed    int
	Total        int
	Exhausted    bool
	NextCursor   string
	ResultsLabel string
}

// ShowLoadMore reports whether the storefront should render a "load more" control.
func (p ListingPage) ShowLoadMore() bool {
	return !p.Exhausted
}

type collectionLister interface {
	productReader
	Collections() []Collection
}

// Lister pages collection listings with the reveal controller.
type Lister struct {
	store       collectionLister
	gridSize    int
	homeSize    int
	revealDelay time.Duration
}

// NewLister builds a lister from catalog configuration.
func NewLister(store collectionLister, cfg config.CatalogConfig) *Lister {
	return &Lister{
		store:       store,
		gridSize:    cfg.GridPageSize,
		homeSize:    cfg.HomePageSize,
		revealDelay: cfg.RevealDelay,
	}
}

// PageSize returns the reveal batch size for a surface.
func (l *Lister) PageSize(surface enums.ListingSurface) int {
	if surface == enums.ListingSurfaceHome {
		return l.homeSize
	}
	return l.gridSize
}

// Reveal sorts the collection and reveals the page after the cursor. A cursor
// issued for another collection or sort key restarts from the beginning.
// Cancelling ctx during the reveal delay returns ctx.Err() and no page.
func (l *Lister) Reveal(ctx context.Context, req ListingRequest) (*ListingPage, error) {
	name := normalizeCollection(req.Collection)
	products, err := l.store.Products(name)
	if err != nil {
		return nil, err
	}
	sortKey := req.Sort
	if !sortKey.IsValid() {
		sortKey = enums.DefaultSortKey
	}

	ctrl := pagination.NewController(Sort(products, sortKey), l.PageSize(req.Surface))
	ctrl.Restore(pagination.ResumeFrom(req.Cursor, name, sortKey.String()))

	items, exhausted, err := ctrl.RevealNextAfter(ctx, l.revealDelay)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Product{}
	}

	page := &ListingPage{
		Collection:   l.describe(name, len(products)),
		Sort:         sortKey,
		Items:        items,
		Displayed:    ctrl.DisplayedCount(),
		Total:        ctrl.Total(),
		Exhausted:    exhausted,
		ResultsLabel: ctrl.ResultsLabel(),
	}
	if !exhausted {
		page.NextCursor = pagination.EncodeListCursor(pagination.ListCursor{
			Collection: name,
			Sort:       sortKey.String(),
			Displayed:  ctrl.DisplayedCount(),
		})
	}
	return page, nil
}

func (l *Lister) describe(name string, count int) Collection {
	for _, c := range l.store.Collections() {
		if c.Name == name {
			return c
		}
	}
	return Collection{Name: name, Description: DefaultCollectionDescription, Count: count}
}
