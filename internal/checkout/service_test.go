package checkout

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/angelmondragon/omnicart-backend/internal/cart"
	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/internal/notifications"
	"github.com/angelmondragon/omnicart-backend/internal/orders"
	"github.com/angelmondragon/omnicart-backend/internal/pricing"
	"github.com/angelmondragon/omnicart-backend/pkg/clientstate"
	"github.com/angelmondragon/omnicart-backend/pkg/config"
	"github.com/angelmondragon/omnicart-backend/pkg/db/models"
	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	svc     *Service
	cart    *cart.Service
	emitter *notifications.Emitter
	db      *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	store, err := catalog.NewStoreFromData(&catalog.Data{Collections: []catalog.CollectionData{{
		Name: "polos",
		Products: []catalog.Product{
			{ID: 1, Name: "Classic Polo", Price: 600, Sizes: []string{"M"}, InStock: true},
		},
	}}})
	require.NoError(t, err)

	emitter := notifications.NewEmitter(config.NotificationsConfig{MaxStack: 10}, logg, nil)
	t.Cleanup(emitter.Close)

	cartSvc, err := cart.NewService(cart.ServiceParams{
		Products: store,
		State:    clientstate.NewMemoryStore(0),
		Notifier: emitter,
		Logger:   logg,
	})
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file:checkout_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}))

	svc, err := NewService(ServiceParams{
		Cart: cartSvc,
		Pricing: pricing.NewCalculator(config.PricingConfig{
			PromoCodes:            map[string]int{"OMNI10": 10},
			FreeShippingThreshold: 999,
			FlatShippingFee:       99,
			Currency:              "INR",
		}),
		Orders:   orders.NewRepository(db),
		Notifier: emitter,
		Logger:   logg,
	})
	require.NoError(t, err)
	return fixture{svc: svc, cart: cartSvc, emitter: emitter, db: db}
}

func validInput() OrderInput {
	return OrderInput{
		Email:         "shopper@example.com",
		Phone:         "9876543210",
		FirstName:     "Asha",
		LastName:      "Rao",
		Address:       "12 MG Road",
		City:          "Bengaluru",
		State:         "KA",
		Pincode:       "560001",
		PaymentMethod: enums.PaymentMethodCOD,
	}
}

func (f fixture) lastMessage(t *testing.T, session string) notifications.Notification {
	t.Helper()
	active := f.emitter.Active(session)
	require.NotEmpty(t, active)
	return active[len(active)-1]
}

func TestQuotePromoNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddToCart(ctx, "v1", catalog.ProductRef{Collection: "polos", ID: 1}, "M", 1)
	require.NoError(t, err)

	quote, err := f.svc.Quote(ctx, "v1", "omni10")
	require.NoError(t, err)
	assert.True(t, quote.Promo.Applied)
	assert.Equal(t, int64(60), quote.Totals.Discount)
	assert.Equal(t, int64(99), quote.Totals.Shipping)
	assert.Equal(t, int64(639), quote.Totals.Total)
	assert.Equal(t, "Promo code applied!", f.lastMessage(t, "v1").Message)

	quote, err = f.svc.Quote(ctx, "v1", "NOPE")
	require.NoError(t, err)
	assert.False(t, quote.Promo.Applied)
	assert.Equal(t, "Invalid promo code", quote.Promo.Reason)
	assert.Equal(t, int64(699), quote.Totals.Total)
	last := f.lastMessage(t, "v1")
	assert.Equal(t, "Invalid promo code", last.Message)
	assert.Equal(t, enums.NotificationSeverityError, last.Severity)
}

func TestPlaceOrderPersistsAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddToCart(ctx, "v1", catalog.ProductRef{Collection: "polos", ID: 1}, "M", 2)
	require.NoError(t, err)

	userID := uuid.New()
	input := validInput()
	input.PaymentMethod = enums.PaymentMethodCard
	input.CardNumber = "4111 1111 1111 4242"
	input.CardName = "Asha Rao"
	input.ExpiryDate = "09/29"
	input.CVV = "123"
	input.PromoCode = "omni10"

	order, err := f.svc.PlaceOrder(ctx, "v1", &userID, input)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPlaced, order.Status)
	assert.Equal(t, int64(1200), order.Subtotal)
	assert.Equal(t, int64(120), order.DiscountAmount)
	assert.Equal(t, int64(0), order.ShippingFee)
	assert.Equal(t, int64(1080), order.Total)
	require.NotNil(t, order.CardLast4)
	assert.Equal(t, "4242", *order.CardLast4)
	require.NotNil(t, order.PromoCode)
	assert.Equal(t, "OMNI10", *order.PromoCode)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, "id = ?", order.ID).Error)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "polos:1:M", stored.Items[0].LineID)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, userID, *stored.UserID)

	current, err := f.cart.Get(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, current.IsEmpty())
	assert.Equal(t, "Order placed successfully! Thank you for shopping with us.", f.lastMessage(t, "v1").Message)
}

func TestPlaceOrderValidationHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddToCart(ctx, "v1", catalog.ProductRef{Collection: "polos", ID: 1}, "M", 1)
	require.NoError(t, err)

	input := validInput()
	input.Email = "not-an-email"
	input.Phone = "12345"
	input.Pincode = "56"
	input.PaymentMethod = enums.PaymentMethodCard
	input.CardNumber = "4111"
	input.ExpiryDate = "2029-09"
	input.CVV = "12"

	_, err = f.svc.PlaceOrder(ctx, "v1", nil, input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Email is invalid", details["email"])
	assert.Equal(t, "Phone number must be 10 digits", details["phone"])
	assert.Equal(t, "Pincode must be 6 digits", details["pincode"])
	assert.Equal(t, "Valid card number required", details["card_number"])
	assert.Equal(t, "Cardholder name required", details["card_name"])
	assert.Equal(t, "Valid expiry date required (MM/YY)", details["expiry_date"])
	assert.Equal(t, "Valid CVV required", details["cvv"])

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	current, err := f.cart.Get(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, current.IsEmpty())
}

func TestPlaceOrderSkipsCardRulesForOtherMethods(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddToCart(ctx, "v1", catalog.ProductRef{Collection: "polos", ID: 1}, "M", 1)
	require.NoError(t, err)

	input := validInput()
	input.PaymentMethod = "UPI"
	input.CardNumber = "garbage"

	order, err := f.svc.PlaceOrder(ctx, "v1", nil, input)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodUPI, order.PaymentMethod)
	assert.Nil(t, order.CardLast4)
	assert.Nil(t, order.UserID)
	assert.Equal(t, int64(699), order.Total)
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "v1", nil, validInput())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPlaceOrderRejectsUnknownPromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddToCart(ctx, "v1", catalog.ProductRef{Collection: "polos", ID: 1}, "M", 1)
	require.NoError(t, err)

	input := validInput()
	input.PromoCode = "FAKE"
	_, err = f.svc.PlaceOrder(ctx, "v1", nil, input)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidPromo))

	current, err := f.cart.Get(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, current.IsEmpty())
}

type failingOrders struct{}

func (failingOrders) Create(context.Context, *models.Order) (*models.Order, error) {
	return nil, errors.New("db down")
}

func TestPlaceOrderKeepsCartWhenPersistFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.AddToCart(ctx, "v1", catalog.ProductRef{Collection: "polos", ID: 1}, "M", 1)
	require.NoError(t, err)
	f.svc.orders = failingOrders{}

	_, err = f.svc.PlaceOrder(ctx, "v1", nil, validInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	current, err := f.cart.Get(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, current.IsEmpty())
}

// addingOrders simulates a shopper adding to the cart while the order row is
// being written.
type addingOrders struct {
	orderWriter
	during func()
}

func (a addingOrders) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	a.during()
	return a.orderWriter.Create(ctx, order)
}

func TestPlaceOrderKeepsItemsAddedWhileOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ref := catalog.ProductRef{Collection: "polos", ID: 1}
	_, err := f.cart.AddToCart(ctx, "v1", ref, "M", 2)
	require.NoError(t, err)

	f.svc.orders = addingOrders{
		orderWriter: f.svc.orders,
		during: func() {
			_, err := f.cart.AddToCart(ctx, "v1", ref, "M", 1)
			require.NoError(t, err)
		},
	}

	order, err := f.svc.PlaceOrder(ctx, "v1", nil, validInput())
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	current, err := f.cart.Get(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, current.Lines, 1)
	assert.Equal(t, 1, current.Lines[0].Quantity)
}
