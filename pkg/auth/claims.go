package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload is what the caller supplies when minting. An empty JTI
// is replaced by a random one.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Name   string
	Email  string
	JTI    string
}

// AccessTokenClaims is the body of a shopper access token. The jti doubles
// as the key of the server-side session.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

var errSubjectMismatch = errors.New("token subject does not match user_id")

// Validate runs after the registered claims checks during parsing.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errMissingUser
	}
	if c.Subject != "" && c.Subject != c.UserID.String() {
		return errSubjectMismatch
	}
	if c.ID == "" {
		return errors.New("token has no jti")
	}
	return nil
}
