package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/omnicart-backend/api/middleware"
	"github.com/angelmondragon/omnicart-backend/api/responses"
	"github.com/angelmondragon/omnicart-backend/api/validators"
	"github.com/angelmondragon/omnicart-backend/internal/auth"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
)

const accessTokenHeader = "X-OmniCart-Token"

type authService interface {
	Register(ctx context.Context, visitorSession string, req auth.RegisterRequest) (*auth.AuthResponse, error)
	Login(ctx context.Context, visitorSession string, req auth.LoginRequest) (*auth.AuthResponse, error)
	Logout(ctx context.Context, visitorSession, accessID string) error
}

// AuthRegister creates an account and signs the visitor in.
func AuthRegister(svc authService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Register(r.Context(), session, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set(accessTokenHeader, result.AccessToken)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc authService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Login(r.Context(), session, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set(accessTokenHeader, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the access session and clears the visitor's sign-in
// keys. Cart and wishlist survive.
func AuthLogout(svc authService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := visitorSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Logout(r.Context(), session, middleware.AccessIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}
