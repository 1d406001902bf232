package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/omnicart-backend/api/responses"
	"github.com/angelmondragon/omnicart-backend/api/validators"
	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
)

type wishlistService interface {
	Toggle(ctx context.Context, session string, ref catalog.ProductRef) (bool, error)
	List(ctx context.Context, session string) ([]catalog.ProductRef, error)
	Products(ctx context.Context, session string) ([]catalog.Product, error)
}

type wishlistResponse struct {
	Items    []catalog.ProductRef `json:"items"`
	Products []productView        `json:"products"`
}

type toggleWishlistRequest struct {
	Collection string `json:"collection" validate:"required,max=64"`
	ID         *int   `json:"id" validate:"required,gte=0"`
}

func loadWishlist(ctx context.Context, svc wishlistService, session string) (*wishlistResponse, error) {
	refs, err := svc.List(ctx, session)
	if err != nil {
		return nil, err
	}
	products, err := svc.Products(ctx, session)
	if err != nil {
		return nil, err
	}
	return &wishlistResponse{Items: refs, Products: newProductViews(products)}, nil
}

// WishlistGet lists the saved products in the order they were added.
func WishlistGet(svc wishlistService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := loadWishlist(r.Context(), svc, session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

// WishlistToggle adds the product when absent and removes it when present.
func WishlistToggle(svc wishlistService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body toggleWishlistRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		added, err := svc.Toggle(r.Context(), session, catalog.ProductRef{Collection: body.Collection, ID: *body.ID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := loadWishlist(r.Context(), svc, session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"added": added, "wishlist": payload})
	}
}
