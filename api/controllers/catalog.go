package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/omnicart-backend/api/responses"
	"github.com/angelmondragon/omnicart-backend/api/validators"
	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/pagination"
)

const maxSearchTermLen = 100

type collectionsReader interface {
	Collections() []catalog.Collection
}

type listingRevealer interface {
	Reveal(ctx context.Context, req catalog.ListingRequest) (*catalog.ListingPage, error)
}

type detailResolver interface {
	Resolve(ctx context.Context, collection string, id int) (*catalog.Detail, error)
}

type productSearcher interface {
	Search(ctx context.Context, category, term string, key enums.SortKey) ([]catalog.Product, error)
}

// productView is a catalog product with its rendered star rating.
type productView struct {
	catalog.Product
	Stars  catalog.StarRating `json:"stars"`
	Images []string           `json:"images"`
}

func newProductViews(products []catalog.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, productView{Product: p, Stars: catalog.Stars(p.Rating), Images: p.Images()})
	}
	return out
}

type listingResponse struct {
	Collection   catalog.Collection `json:"collection"`
	Sort         enums.SortKey      `json:"sort"`
	View         enums.ViewMode     `json:"view"`
	Items        []productView      `json:"items"`
	Displayed    int                `json:"displayed"`
	Total        int                `json:"total"`
	Exhausted    bool               `json:"exhausted"`
	ShowLoadMore bool               `json:"show_load_more"`
	NextCursor   string             `json:"next_cursor,omitempty"`
	ResultsLabel string             `json:"results_label"`
}

type detailResponse struct {
	Product productView   `json:"product"`
	Related []productView `json:"related"`
}

type searchResponse struct {
	Sort     enums.SortKey `json:"sort"`
	Count    int           `json:"count"`
	Products []productView `json:"products"`
}

// CollectionsList returns every stored and derived collection with its count.
func CollectionsList(store collectionsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"collections": store.Collections()})
	}
}

// CollectionListing reveals the next page of a sorted collection. Changing the
// sort key invalidates the cursor and restarts the reveal.
func CollectionListing(lister listingRevealer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		cursor, err := pagination.ParseListCursor(query.Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		page, err := lister.Reveal(r.Context(), catalog.ListingRequest{
			Collection: chi.URLParam(r, "collection"),
			Sort:       enums.ParseSortKey(query.Get("sort")),
			Surface:    enums.ParseListingSurface(query.Get("surface")),
			Cursor:     cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listingResponse{
			Collection:   page.Collection,
			Sort:         page.Sort,
			View:         enums.ParseViewMode(query.Get("view")),
			Items:        newProductViews(page.Items),
			Displayed:    page.Displayed,
			Total:        page.Total,
			Exhausted:    page.Exhausted,
			ShowLoadMore: page.ShowLoadMore(),
			NextCursor:   page.NextCursor,
			ResultsLabel: page.ResultsLabel,
		})
	}
}

// ProductDetail resolves a product by its id field within a collection.
func ProductDetail(resolver detailResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathInt(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := resolver.Resolve(r.Context(), chi.URLParam(r, "collection"), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := newProductViews([]catalog.Product{detail.Product})
		responses.WriteSuccess(w, detailResponse{
			Product: views[0],
			Related: newProductViews(detail.Related),
		})
	}
}

// ProductSearch lists products across collections, optionally narrowed to a
// category and a case-insensitive search term.
func ProductSearch(searcher productSearcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		sortKey := enums.ParseSortKey(query.Get("sort"))
		category := validators.SanitizeString(query.Get("category"), maxSearchTermLen)
		if strings.EqualFold(category, "all") {
			category = ""
		}
		term := validators.SanitizeString(query.Get("search"), maxSearchTermLen)

		products, err := searcher.Search(r.Context(), category, term, sortKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, searchResponse{
			Sort:     sortKey,
			Count:    len(products),
			Products: newProductViews(products),
		})
	}
}
