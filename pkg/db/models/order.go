package models

import (
	"time"

	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem is a cart line frozen at checkout.
type OrderItem struct {
	LineID     string `json:"line_id"`
	Collection string `json:"collection"`
	ProductID  int    `json:"product_id"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	Size       string `json:"size,omitempty"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
}

// ShippingAddress is the recipient block captured at checkout.
type ShippingAddress struct {
	FirstName string `gorm:"column:first_name" json:"first_name"`
	LastName  string `gorm:"column:last_name" json:"last_name"`
	Address
}

// Order is a placed storefront order. UserID is nil for guest checkouts.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID         *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	VisitorSession string              `gorm:"column:visitor_session;not null"`
	Status         enums.OrderStatus   `gorm:"column:status;not null"`
	Email          string              `gorm:"column:email;not null"`
	Phone          string              `gorm:"column:phone;not null"`
	Shipping       ShippingAddress     `gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null"`
	CardLast4      *string             `gorm:"column:card_last4"`
	Items          []OrderItem         `gorm:"column:items;type:jsonb;serializer:json;not null"`
	Subtotal       int64               `gorm:"column:subtotal;not null"`
	PromoCode      *string             `gorm:"column:promo_code"`
	DiscountPct    int                 `gorm:"column:discount_pct;not null;default:0"`
	DiscountAmount int64               `gorm:"column:discount_amount;not null;default:0"`
	ShippingFee    int64               `gorm:"column:shipping_fee;not null;default:0"`
	Total          int64               `gorm:"column:total;not null"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the caller did not.
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
