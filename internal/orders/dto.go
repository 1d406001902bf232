package orders

import (
	"time"

	"github.com/angelmondragon/omnicart-backend/pkg/db/models"
	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	"github.com/google/uuid"
)

// OrderSummary is one row of the "my orders" list.
type OrderSummary struct {
	ID            uuid.UUID           `json:"id"`
	Status        enums.OrderStatus   `json:"status"`
	ItemCount     int                 `json:"item_count"`
	Total         int64               `json:"total"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderDetail is the full view of a placed order.
type OrderDetail struct {
	ID             uuid.UUID              `json:"id"`
	Status         enums.OrderStatus      `json:"status"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	Shipping       models.ShippingAddress `json:"shipping_address"`
	PaymentMethod  enums.PaymentMethod    `json:"payment_method"`
	CardLast4      *string                `json:"card_last4,omitempty"`
	Items          []models.OrderItem     `json:"items"`
	Subtotal       int64                  `json:"subtotal"`
	PromoCode      *string                `json:"promo_code,omitempty"`
	DiscountPct    int                    `json:"discount_pct"`
	DiscountAmount int64                  `json:"discount"`
	ShippingFee    int64                  `json:"shipping"`
	Total          int64                  `json:"total"`
	CreatedAt      time.Time              `json:"created_at"`
}

func toSummary(order models.Order) OrderSummary {
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}
	return OrderSummary{
		ID:            order.ID,
		Status:        order.Status,
		ItemCount:     count,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
	}
}

// ToDetail maps a stored order to its public view.
func ToDetail(order *models.Order) *OrderDetail {
	items := order.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return &OrderDetail{
		ID:             order.ID,
		Status:         order.Status,
		Email:          order.Email,
		Phone:          order.Phone,
		Shipping:       order.Shipping,
		PaymentMethod:  order.PaymentMethod,
		CardLast4:      order.CardLast4,
		Items:          items,
		Subtotal:       order.Subtotal,
		PromoCode:      order.PromoCode,
		DiscountPct:    order.DiscountPct,
		DiscountAmount: order.DiscountAmount,
		ShippingFee:    order.ShippingFee,
		Total:          order.Total,
		CreatedAt:      order.CreatedAt,
	}
}
