package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/omnicart-backend/api/responses"
	"github.com/angelmondragon/omnicart-backend/api/validators"
	"github.com/angelmondragon/omnicart-backend/internal/checkout"
	"github.com/angelmondragon/omnicart-backend/internal/orders"
	"github.com/angelmondragon/omnicart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/pagination"
)

type orderPlacer interface {
	PlaceOrder(ctx context.Context, session string, userID *uuid.UUID, input checkout.OrderInput) (*models.Order, error)
}

type orderReader interface {
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderList, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDetail, error)
}

// OrderPlace runs checkout for the visitor's cart. Guests may check out; a
// signed-in shopper's order is linked to their account.
func OrderPlace(svc orderPlacer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input checkout.OrderInput
		if err := validators.DecodeJSON(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.PlaceOrder(r.Context(), session, optionalUser(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orders.ToDetail(order))
	}
}

// OrdersMine pages the signed-in shopper's orders, newest first.
func OrdersMine(svc orderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListMine(r.Context(), userID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderGet returns one of the shopper's orders.
func OrderGet(svc orderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		detail, err := svc.Get(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
