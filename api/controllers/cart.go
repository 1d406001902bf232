package controllers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/omnicart-backend/api/responses"
	"github.com/angelmondragon/omnicart-backend/api/validators"
	"github.com/angelmondragon/omnicart-backend/internal/cart"
	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/internal/checkout"
	"github.com/angelmondragon/omnicart-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
)

type cartService interface {
	Get(ctx context.Context, session string) (*cart.Cart, error)
	AddToCart(ctx context.Context, session string, ref catalog.ProductRef, size string, quantity int) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, session, lineID string, delta int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, session, lineID string) (*cart.Cart, error)
	Clear(ctx context.Context, session string) error
}

type totalsCalculator interface {
	ComputeTotals(lines []pricing.Line, promoCode string) (pricing.Totals, pricing.PromoResult)
}

type quoter interface {
	Quote(ctx context.Context, session, promoCode string) (*checkout.Quote, error)
}

type cartResponse struct {
	*cart.Cart
	Totals pricing.Totals `json:"totals"`
}

type addCartItemRequest struct {
	Collection string `json:"collection" validate:"required,max=64"`
	ProductID  *int   `json:"product_id" validate:"required,gte=0"`
	Size       string `json:"size" validate:"max=16"`
	Quantity   int    `json:"quantity" validate:"gte=0,lte=10"`
}

type updateCartItemRequest struct {
	Delta int `json:"delta" validate:"required,gte=-10,lte=10"`
}

type quoteRequest struct {
	PromoCode string `json:"promo_code" validate:"max=32"`
}

func newCartResponse(current *cart.Cart, calc totalsCalculator) cartResponse {
	totals, _ := calc.ComputeTotals(current.PricingLines(), "")
	return cartResponse{Cart: current, Totals: totals}
}

// CartGet returns the visitor's cart with promo-free totals.
func CartGet(svc cartService, calc totalsCalculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		current, err := svc.Get(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(current, calc))
	}
}

// CartAddItem adds a product, merging with an existing line of the same size.
func CartAddItem(svc cartService, calc totalsCalculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ref := catalog.ProductRef{Collection: body.Collection, ID: *body.ProductID}
		current, err := svc.AddToCart(r.Context(), session, ref, body.Size, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(current, calc))
	}
}

// CartUpdateItem moves a line's quantity by delta.
func CartUpdateItem(svc cartService, calc totalsCalculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		current, err := svc.UpdateQuantity(r.Context(), session, lineID, body.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(current, calc))
	}
}

// CartRemoveItem deletes a line.
func CartRemoveItem(svc cartService, calc totalsCalculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := lineIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		current, err := svc.RemoveItem(r.Context(), session, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(current, calc))
	}
}

// CartClear empties the cart.
func CartClear(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), session); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// CartQuote prices the cart with an optional promo code. An unknown code is
// reported in the body with applied=false, not as an error status.
func CartQuote(svc quoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Quote(r.Context(), session, body.PromoCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func lineIDParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "lineId")
	lineID, err := url.PathUnescape(raw)
	if err != nil || lineID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cart line id").WithDetails(map[string]string{"lineId": raw})
	}
	return lineID, nil
}
