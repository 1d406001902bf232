package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/omnicart-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
)

// visitorSession returns the session resolved by the VisitorSession middleware.
func visitorSession(r *http.Request) (string, error) {
	session := middleware.VisitorSessionFromContext(r.Context())
	if session == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "visitor session required").
			WithDetails(map[string]string{"header": middleware.VisitorSessionHeader})
	}
	return session, nil
}

func requireUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}

func optionalUser(r *http.Request) *uuid.UUID {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	return &userID
}
