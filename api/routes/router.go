package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/craftmarket-backend/api/controllers"
	"github.com/angelmondragon/craftmarket-backend/api/middleware"
	"github.com/angelmondragon/craftmarket-backend/internal/cart"
	"github.com/angelmondragon/craftmarket-backend/internal/checkout"
	"github.com/angelmondragon/craftmarket-backend/internal/fulfillment"
	"github.com/angelmondragon/craftmarket-backend/internal/ledger"
	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/internal/orders"
	"github.com/angelmondragon/craftmarket-backend/internal/settlement"
	"github.com/angelmondragon/craftmarket-backend/internal/shipping"
	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/craftmarket-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Nil services answer 500
// from their handlers; nil pingers are skipped by the readiness probe.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Gatherer prometheus.Gatherer

	Idempotency pkgredis.IdempotencyStore
	RateLimiter pkgredis.RateLimiter

	Cart          cart.Service
	Checkout      checkout.Service
	Orders        orders.Service
	Fulfillment   fulfillment.Service
	Settlement    settlement.Service
	Shipping      shipping.Service
	Ledger        ledger.Service
	Notifications notifications.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	writes := middleware.RateLimit(middleware.RateLimitPolicy{
		Name:   "writes",
		Limit:  cfg.RateLimit.WriteLimit,
		Window: cfg.RateLimit.WriteWindow,
	}, d.RateLimiter, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if d.Idempotency != nil {
			r.Use(middleware.Idempotency(d.Idempotency, middleware.IdempotencyTTLs{
				Default:  cfg.Redis.IdempotencyTTL,
				Critical: cfg.Eventing.CheckoutIdempotencyTTL,
			}, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorRoleBuyer, enums.ActorRoleAdmin))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.ListCart(d.Cart, logg))
				r.With(writes).Post("/items", controllers.AddCartItem(d.Cart, logg))
				r.With(writes).Delete("/items/{itemId}", controllers.RemoveCartItem(d.Cart, logg))
				r.With(writes).Delete("/", controllers.ClearCart(d.Cart, logg))
			})
			r.With(writes).Post("/checkout/quote", controllers.CheckoutQuote(d.Checkout, logg))
			r.With(writes).Post("/checkout", controllers.CheckoutExecute(d.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListBuyerOrders(d.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(d.Orders, logg))
		})
		r.Get("/order-lines/{lineId}/history", controllers.OrderLineHistory(d.Fulfillment, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(d.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorRoleSeller, enums.ActorRoleAdmin))
			r.Route("/order-lines", func(r chi.Router) {
				r.Get("/", controllers.ListOrderLines(d.Orders, logg))
				r.Route("/{lineId}", func(r chi.Router) {
					r.Use(writes)
					r.Post("/accept", controllers.AcceptOrderLine(d.Fulfillment, logg))
					r.Post("/reject", controllers.RejectOrderLine(d.Fulfillment, logg))
					r.Post("/prepare", controllers.PrepareOrderLine(d.Fulfillment, logg))
					r.Post("/ship", controllers.ShipOrderLine(d.Fulfillment, logg))
					r.Post("/deliver", controllers.DeliverOrderLine(d.Fulfillment, logg))
					r.Post("/cancel", controllers.CancelOrderLine(d.Fulfillment, logg))
				})
			})
			r.Route("/shipping-rates", func(r chi.Router) {
				r.Get("/", controllers.ListShippingRates(d.Shipping, logg))
				r.With(writes).Post("/", controllers.CreateShippingRate(d.Shipping, logg))
				r.With(writes).Delete("/{rateId}", controllers.DeleteShippingRate(d.Shipping, logg))
			})
			r.Get("/earnings", controllers.ListEarnings(d.Ledger, logg))
			r.Get("/earnings/summary", controllers.EarningsSummary(d.Ledger, logg))
			r.Get("/payouts", controllers.ListPayouts(d.Ledger, logg))
			r.With(writes).Post("/payouts", controllers.RequestPayout(d.Ledger, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin))
			r.Get("/order-lines", controllers.ListOrderLines(d.Orders, logg))
			r.Post("/orders/{orderId}/verify-payment", controllers.VerifyPayment(d.Settlement, logg))
			r.Post("/orders/{orderId}/reject-payment", controllers.RejectPayment(d.Settlement, logg))
			r.Get("/payouts/pending", controllers.ListPendingPayouts(d.Ledger, logg))
			r.Post("/payouts/{payoutId}/decision", controllers.DecidePayout(d.Ledger, logg))
		})
	})

	return r
}
