package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/omnicart-backend/api/controllers"
	"github.com/angelmondragon/omnicart-backend/api/middleware"
	"github.com/angelmondragon/omnicart-backend/internal/auth"
	"github.com/angelmondragon/omnicart-backend/internal/cart"
	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/internal/checkout"
	"github.com/angelmondragon/omnicart-backend/internal/notifications"
	"github.com/angelmondragon/omnicart-backend/internal/orders"
	"github.com/angelmondragon/omnicart-backend/internal/pricing"
	"github.com/angelmondragon/omnicart-backend/internal/users"
	"github.com/angelmondragon/omnicart-backend/internal/wishlist"
	"github.com/angelmondragon/omnicart-backend/pkg/auth/session"
	"github.com/angelmondragon/omnicart-backend/pkg/config"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/omnicart-backend/pkg/redis"
)

// Services are the constructed dependencies the router exposes over HTTP.
// RateLimiter and Idempotency are nil when Redis is not configured.
type Services struct {
	Catalog       *catalog.Store
	Lister        *catalog.Lister
	Resolver      *catalog.Resolver
	Cart          *cart.Service
	Wishlist      *wishlist.Service
	Checkout      *checkout.Service
	Pricing       *pricing.Calculator
	Notifications *notifications.Emitter
	Auth          *auth.Service
	Users         *users.Service
	Orders        *orders.Service
	Sessions      session.AccessSessionChecker
	RateLimiter   middleware.RateLimitStore
	Idempotency   pkgredis.IdempotencyStore
	Pingers       map[string]controllers.Pinger
	Gatherer      prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	requireAuth := middleware.Auth(cfg.JWT, svc.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, svc.Sessions, logg)
	idempotent := middleware.Idempotency(svc.Idempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, svc.Catalog, svc.Pingers, logg))
	})

	if svc.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(svc.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.VisitorSession(logg),
			middleware.ClearAuthOnUnauthorized(svc.Auth),
		)

		r.Get("/collections", controllers.CollectionsList(svc.Catalog))
		r.Get("/collections/{collection}/products", controllers.CollectionListing(svc.Lister, logg))
		r.Get("/collections/{collection}/products/{productId}", controllers.ProductDetail(svc.Resolver, logg))
		r.Get("/products", controllers.ProductSearch(svc.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(svc.Cart, svc.Pricing, logg))
			r.Delete("/", controllers.CartClear(svc.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svc.Cart, svc.Pricing, logg))
			r.Patch("/items/{lineId}", controllers.CartUpdateItem(svc.Cart, svc.Pricing, logg))
			r.Delete("/items/{lineId}", controllers.CartRemoveItem(svc.Cart, svc.Pricing, logg))
			r.Post("/quote", controllers.CartQuote(svc.Checkout, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistGet(svc.Wishlist, logg))
			r.Post("/toggle", controllers.WishlistToggle(svc.Wishlist, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(svc.Notifications, logg))
			r.Get("/stream", controllers.NotificationsStream(svc.Notifications, logg))
			r.Delete("/{notificationId}", controllers.NotificationDismiss(svc.Notifications, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, svc.RateLimiter, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, svc.RateLimiter, logg), idempotent).Post("/register", controllers.AuthRegister(svc.Auth, logg))
			r.With(optionalAuth).Post("/logout", controllers.AuthLogout(svc.Auth, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", controllers.ProfileGet(svc.Users, logg))
			r.Put("/profile", controllers.ProfileUpdate(svc.Users, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(optionalAuth, idempotent).Post("/", controllers.OrderPlace(svc.Checkout, logg))
			r.With(requireAuth).Get("/myorders", controllers.OrdersMine(svc.Orders, logg))
			r.With(requireAuth).Get("/{orderId}", controllers.OrderGet(svc.Orders, logg))
		})
	})

	return r
}
