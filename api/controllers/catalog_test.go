package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/pkg/config"
)

func newCatalogStore(t *testing.T) *catalog.Store {
	t.Helper()
	polos := make([]catalog.Product, 0, 8)
	for i := 1; i <= 8; i++ {
		polos = append(polos, catalog.Product{
			ID:      i,
			Name:    fmt.Sprintf("Polo %d", i),
			Price:   int64(500 + i*100),
			Rating:  3.5,
			Tags:    []string{"casual"},
			InStock: true,
		})
	}
	store, err := catalog.NewStoreFromData(&catalog.Data{Collections: []catalog.CollectionData{
		{Name: "polos", Description: "Polos", Products: polos},
		{Name: "bottoms", Products: []catalog.Product{
			{ID: 1, Name: "Chinos", Price: 1799, Rating: 4.4, Tags: []string{"cotton"}, InStock: true},
		}},
	}})
	require.NoError(t, err)
	return store
}

type listingBody struct {
	Items []struct {
		ID    int `json:"id"`
		Stars struct {
			Full int `json:"full"`
			Half int `json:"half"`
		} `json:"stars"`
	} `json:"items"`
	Displayed    int    `json:"displayed"`
	Total        int    `json:"total"`
	Exhausted    bool   `json:"exhausted"`
	ShowLoadMore bool   `json:"show_load_more"`
	NextCursor   string `json:"next_cursor"`
	ResultsLabel string `json:"results_label"`
	View         string `json:"view"`
}

func TestCollectionListingRevealsInPages(t *testing.T) {
	store := newCatalogStore(t)
	handler := CollectionListing(catalog.NewLister(store, config.CatalogConfig{GridPageSize: 6, HomePageSize: 3}), testLogger())

	first := serve(handler, newRequest(http.MethodGet, "/?sort=price-low", requestOpts{params: map[string]string{"collection": "polos"}}))
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	var page listingBody
	decodeEnvelope(t, first, &page)
	assert.Len(t, page.Items, 6)
	assert.Equal(t, 1, page.Items[0].ID)
	assert.Equal(t, 6, page.Displayed)
	assert.Equal(t, 8, page.Total)
	assert.True(t, page.ShowLoadMore)
	assert.Equal(t, "grid", page.View)
	assert.Equal(t, "Showing 6 of 8 products", page.ResultsLabel)
	assert.Equal(t, 3, page.Items[0].Stars.Full)
	assert.Equal(t, 1, page.Items[0].Stars.Half)
	require.NotEmpty(t, page.NextCursor)

	second := serve(handler, newRequest(http.MethodGet, "/?sort=price-low&cursor="+page.NextCursor, requestOpts{params: map[string]string{"collection": "polos"}}))
	require.Equal(t, http.StatusOK, second.Code)
	var next listingBody
	decodeEnvelope(t, second, &next)
	assert.Len(t, next.Items, 2)
	assert.True(t, next.Exhausted)
	assert.False(t, next.ShowLoadMore)
	assert.Empty(t, next.NextCursor)
}

func TestCollectionListingHomeSurfaceAndListView(t *testing.T) {
	store := newCatalogStore(t)
	handler := CollectionListing(catalog.NewLister(store, config.CatalogConfig{GridPageSize: 6, HomePageSize: 3}), testLogger())

	rec := serve(handler, newRequest(http.MethodGet, "/?surface=home&view=list", requestOpts{params: map[string]string{"collection": "polos"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	var page listingBody
	decodeEnvelope(t, rec, &page)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, "list", page.View)
}

func TestCollectionListingErrors(t *testing.T) {
	store := newCatalogStore(t)
	handler := CollectionListing(catalog.NewLister(store, config.CatalogConfig{GridPageSize: 6, HomePageSize: 3}), testLogger())

	badCursor := serve(handler, newRequest(http.MethodGet, "/?cursor=***", requestOpts{params: map[string]string{"collection": "polos"}}))
	assert.Equal(t, http.StatusBadRequest, badCursor.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, badCursor))

	unknown := serve(handler, newRequest(http.MethodGet, "/", requestOpts{params: map[string]string{"collection": "hats"}}))
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestProductDetailLooksUpByID(t *testing.T) {
	store := newCatalogStore(t)
	handler := ProductDetail(catalog.NewResolver(store, 4), testLogger())

	rec := serve(handler, newRequest(http.MethodGet, "/", requestOpts{params: map[string]string{"collection": "polos", "productId": "3"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Product struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"product"`
		Related []struct {
			ID int `json:"id"`
		} `json:"related"`
	}
	decodeEnvelope(t, rec, &body)
	assert.Equal(t, 3, body.Product.ID)
	assert.Equal(t, "Polo 3", body.Product.Name)
	require.Len(t, body.Related, 4)
	for _, related := range body.Related {
		assert.NotEqual(t, 3, related.ID)
	}

	missing := serve(handler, newRequest(http.MethodGet, "/", requestOpts{params: map[string]string{"collection": "polos", "productId": "99"}}))
	assert.Equal(t, http.StatusNotFound, missing.Code)

	notInt := serve(handler, newRequest(http.MethodGet, "/", requestOpts{params: map[string]string{"collection": "polos", "productId": "abc"}}))
	assert.Equal(t, http.StatusBadRequest, notInt.Code)
}

func TestProductSearch(t *testing.T) {
	store := newCatalogStore(t)
	handler := ProductSearch(store, testLogger())

	rec := serve(handler, newRequest(http.MethodGet, "/?category=all&search=COTTON", requestOpts{}))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count    int `json:"count"`
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
	}
	decodeEnvelope(t, rec, &body)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Chinos", body.Products[0].Name)

	scoped := serve(handler, newRequest(http.MethodGet, "/?category=polos", requestOpts{}))
	require.Equal(t, http.StatusOK, scoped.Code)
	decodeEnvelope(t, scoped, &body)
	assert.Equal(t, 8, body.Count)
}

func TestCollectionsList(t *testing.T) {
	rec := serve(CollectionsList(newCatalogStore(t)), newRequest(http.MethodGet, "/", requestOpts{}))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Collections []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"collections"`
	}
	decodeEnvelope(t, rec, &body)
	counts := map[string]int{}
	for _, c := range body.Collections {
		counts[c.Name] = c.Count
	}
	assert.Equal(t, 8, counts["polos"])
	assert.Equal(t, 1, counts["bottoms"])
}
