package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/omnicart-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       *string        `json:"phone,omitempty"`
	Address     models.Address `json:"address"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
}

// FromModel maps a stored user to its public view.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Address:     u.Address,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToModel builds the row for a new account. Emails are stored lower-cased.
func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:         strings.TrimSpace(c.Name),
		Email:        strings.ToLower(strings.TrimSpace(c.Email)),
		PasswordHash: c.PasswordHash,
	}
}

// UpdateProfileRequest is a partial profile update. Nil fields are left as is.
// A new password needs the current one.
type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,digits10"`
	Address         *string `json:"address,omitempty" validate:"omitempty,max=200"`
	Apartment       *string `json:"apartment,omitempty" validate:"omitempty,max=200"`
	City            *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State           *string `json:"state,omitempty" validate:"omitempty,max=100"`
	Pincode         *string `json:"pincode,omitempty" validate:"omitempty,pincode"`
	Password        *string `json:"password,omitempty" validate:"omitempty,password_complexity"`
	CurrentPassword *string `json:"current_password,omitempty" validate:"required_with=Password"`
}
