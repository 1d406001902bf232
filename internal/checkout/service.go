package checkout

import (
	"context"

	"github.com/angelmondragon/omnicart-backend/internal/cart"
	"github.com/angelmondragon/omnicart-backend/internal/notifications"
	"github.com/angelmondragon/omnicart-backend/internal/pricing"
	pkgcheckout "github.com/angelmondragon/omnicart-backend/pkg/checkout"
	"github.com/angelmondragon/omnicart-backend/pkg/db/models"
	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
	"github.com/google/uuid"
)

const (
	msgPromoApplied = "Promo code applied!"
	msgOrderPlaced  = "Order placed successfully! Thank you for shopping with us."
	msgCartEmpty    = "Your cart is empty"
)

type cartStore interface {
	Get(ctx context.Context, session string) (*cart.Cart, error)
	ClearOrdered(ctx context.Context, session string, ordered []cart.Line) error
}

type orderWriter interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Cart     cartStore
	Pricing  *pricing.Calculator
	Orders   orderWriter
	Notifier notifications.Sink
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
}

// Service prices carts and turns them into orders.
type Service struct {
	cart    cartStore
	pricing *pricing.Calculator
	orders  orderWriter
	notify  notifications.Sink
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart service is required")
	}
	if params.Pricing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "price calculator is required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository is required")
	}
	return &Service{
		cart:    params.Cart,
		pricing: params.Pricing,
		orders:  params.Orders,
		notify:  params.Notifier,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Quote is a priced view of the current cart.
type Quote struct {
	Cart   *cart.Cart          `json:"cart"`
	Totals pricing.Totals      `json:"totals"`
	Promo  pricing.PromoResult `json:"promo"`
}

// Quote prices the visitor's cart with an optional promo code. An unknown
// code still yields totals, without a discount, and an error notification.
func (s *Service) Quote(ctx context.Context, session, promoCode string) (*Quote, error) {
	current, err := s.cart.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	totals, promo := s.pricing.ComputeTotals(current.PricingLines(), promoCode)
	switch {
	case promo.Rejected():
		s.show(ctx, session, pricing.ReasonInvalidPromo, enums.NotificationSeverityError)
	case promo.Applied:
		s.show(ctx, session, msgPromoApplied, enums.NotificationSeveritySuccess)
	}
	return &Quote{Cart: current, Totals: totals, Promo: promo}, nil
}

// PlaceOrder validates the form, prices the cart, persists the order and
// removes the ordered lines from the cart. Items added while the order was
// being written stay in the cart. userID is nil for guest checkout. Nothing
// changes when validation fails.
func (s *Service) PlaceOrder(ctx context.Context, session string, userID *uuid.UUID, input OrderInput) (*models.Order, error) {
	input.normalize()
	if err := ValidateOrderInput(input); err != nil {
		s.show(ctx, session, formErrorMessage, enums.NotificationSeverityError)
		return nil, err
	}

	current, err := s.cart.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgCartEmpty)
	}

	totals, promo := s.pricing.ComputeTotals(current.PricingLines(), input.PromoCode)
	if promo.Rejected() {
		s.show(ctx, session, pricing.ReasonInvalidPromo, enums.NotificationSeverityError)
		return nil, pkgerrors.New(pkgerrors.CodeInvalidPromo, pricing.ReasonInvalidPromo).
			WithDetails(map[string]any{"promo_code": input.PromoCode})
	}

	order := buildOrder(session, userID, input, current, totals, promo)
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	if err := s.cart.ClearOrdered(ctx, session, current.Lines); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{
			"visitor_session": session,
			"order_id":        created.ID.String(),
		}), "clear cart after order", err)
	}
	s.metrics.IncMutation("order_placed")
	s.show(ctx, session, msgOrderPlaced, enums.NotificationSeveritySuccess)
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id": created.ID.String(),
			"total":    created.Total,
			"items":    totals.ItemCount,
		}), "order placed")
	}
	return created, nil
}

func buildOrder(session string, userID *uuid.UUID, input OrderInput, current *cart.Cart, totals pricing.Totals, promo pricing.PromoResult) *models.Order {
	items := make([]models.OrderItem, 0, len(current.Lines))
	for _, line := range current.Lines {
		items = append(items, models.OrderItem{
			LineID:     line.ID,
			Collection: line.Collection,
			ProductID:  line.ProductID,
			Name:       line.Name,
			Image:      line.Image,
			Size:       line.Size,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
		})
	}

	order := &models.Order{
		UserID:         userID,
		VisitorSession: session,
		Status:         enums.OrderStatusPlaced,
		Email:          input.Email,
		Phone:          input.Phone,
		Shipping: models.ShippingAddress{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Address: models.Address{
				Line1:   input.Address,
				Line2:   input.Apartment,
				City:    input.City,
				State:   input.State,
				Pincode: input.Pincode,
			},
		},
		PaymentMethod:  input.PaymentMethod,
		Items:          items,
		Subtotal:       totals.Subtotal,
		DiscountPct:    totals.DiscountPct,
		DiscountAmount: totals.Discount,
		ShippingFee:    totals.Shipping,
		Total:          totals.Total,
	}
	if input.PaymentMethod == enums.PaymentMethodCard {
		last4 := pkgcheckout.CardLast4(input.CardNumber)
		order.CardLast4 = &last4
	}
	if promo.Applied {
		code := promo.Code
		order.PromoCode = &code
	}
	return order
}

func (s *Service) show(ctx context.Context, session, message string, severity enums.NotificationSeverity) {
	if s.notify == nil {
		return
	}
	s.notify.Show(ctx, session, message, severity)
}
