package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/omnicart-backend/internal/cart"
	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/internal/pricing"
	"github.com/angelmondragon/omnicart-backend/pkg/clientstate"
	"github.com/angelmondragon/omnicart-backend/pkg/config"
)

func newCartFixture(t *testing.T) (*cart.Service, *pricing.Calculator) {
	t.Helper()
	svc, err := cart.NewService(cart.ServiceParams{
		Products: newCatalogStore(t),
		State:    clientstate.NewMemoryStore(0),
		Logger:   testLogger(),
	})
	require.NoError(t, err)
	calc := pricing.NewCalculator(config.PricingConfig{
		PromoCodes:            map[string]int{"OMNI10": 10},
		FreeShippingThreshold: 999,
		FlatShippingFee:       99,
	})
	return svc, calc
}

type cartBody struct {
	Items []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	ItemCount int `json:"item_count"`
	Totals    struct {
		Subtotal int64 `json:"subtotal"`
		Shipping int64 `json:"shipping"`
		Total    int64 `json:"total"`
	} `json:"totals"`
}

func TestCartAddUpdateRemove(t *testing.T) {
	svc, calc := newCartFixture(t)
	logg := testLogger()

	added := serve(CartAddItem(svc, calc, logg), newRequest(http.MethodPost, "/", requestOpts{
		visitor: "v1",
		body:    `{"collection":"polos","product_id":1,"quantity":2}`,
	}))
	require.Equal(t, http.StatusOK, added.Code, added.Body.String())
	var body cartBody
	decodeEnvelope(t, added, &body)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 2, body.ItemCount)
	assert.Equal(t, int64(1200), body.Totals.Subtotal)
	assert.Equal(t, int64(0), body.Totals.Shipping)

	lineID := body.Items[0].ID
	updated := serve(CartUpdateItem(svc, calc, logg), newRequest(http.MethodPatch, "/", requestOpts{
		visitor: "v1",
		params:  map[string]string{"lineId": lineID},
		body:    `{"delta":-5}`,
	}))
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	decodeEnvelope(t, updated, &body)
	assert.Equal(t, 1, body.Items[0].Quantity)
	assert.Equal(t, int64(99), body.Totals.Shipping)

	removed := serve(CartRemoveItem(svc, calc, logg), newRequest(http.MethodDelete, "/", requestOpts{
		visitor: "v1",
		params:  map[string]string{"lineId": lineID},
	}))
	require.Equal(t, http.StatusOK, removed.Code)
	decodeEnvelope(t, removed, &body)
	assert.Empty(t, body.Items)
	assert.Equal(t, int64(0), body.Totals.Total)
}

func TestCartAddRejectsBadInput(t *testing.T) {
	svc, calc := newCartFixture(t)
	handler := CartAddItem(svc, calc, testLogger())

	missingID := serve(handler, newRequest(http.MethodPost, "/", requestOpts{visitor: "v1", body: `{"collection":"polos"}`}))
	assert.Equal(t, http.StatusBadRequest, missingID.Code)

	unknownField := serve(handler, newRequest(http.MethodPost, "/", requestOpts{visitor: "v1", body: `{"collection":"polos","product_id":1,"color":"red"}`}))
	assert.Equal(t, http.StatusBadRequest, unknownField.Code)

	unknownProduct := serve(handler, newRequest(http.MethodPost, "/", requestOpts{visitor: "v1", body: `{"collection":"polos","product_id":42}`}))
	assert.Equal(t, http.StatusNotFound, unknownProduct.Code)

	noSession := serve(handler, newRequest(http.MethodPost, "/", requestOpts{body: `{"collection":"polos","product_id":1}`}))
	assert.Equal(t, http.StatusBadRequest, noSession.Code)
}

func TestCartUpdateRequiresDelta(t *testing.T) {
	svc, calc := newCartFixture(t)

	rec := serve(CartUpdateItem(svc, calc, testLogger()), newRequest(http.MethodPatch, "/", requestOpts{
		visitor: "v1",
		params:  map[string]string{"lineId": "polos:1:"},
		body:    `{"delta":0}`,
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRemoveUnknownLine(t *testing.T) {
	svc, calc := newCartFixture(t)

	rec := serve(CartRemoveItem(svc, calc, testLogger()), newRequest(http.MethodDelete, "/", requestOpts{
		visitor: "v1",
		params:  map[string]string{"lineId": "missing"},
	}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartClearAndGet(t *testing.T) {
	svc, calc := newCartFixture(t)
	logg := testLogger()
	_, err := svc.AddToCart(newRequest(http.MethodGet, "/", requestOpts{}).Context(), "v1", catalog.ProductRef{Collection: "polos", ID: 2}, "", 1)
	require.NoError(t, err)

	cleared := serve(CartClear(svc, logg), newRequest(http.MethodDelete, "/", requestOpts{visitor: "v1"}))
	assert.Equal(t, http.StatusNoContent, cleared.Code)

	got := serve(CartGet(svc, calc, logg), newRequest(http.MethodGet, "/", requestOpts{visitor: "v1"}))
	require.Equal(t, http.StatusOK, got.Code)
	var body cartBody
	decodeEnvelope(t, got, &body)
	assert.Zero(t, body.ItemCount)
}
