package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Anshid-ck/cloth-shop-sub001/api/controllers"
	"github.com/Anshid-ck/cloth-shop-sub001/api/middleware"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/cart"
	checkoutsvc "github.com/Anshid-ck/cloth-shop-sub001/internal/checkout"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/pricing"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/config"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	idempotencyStore redis.IdempotencyStore,
	readiness map[string]controllers.Pinger,
	gatherer prometheus.Gatherer,
	checkoutService checkoutsvc.Service,
	cartService cart.Service,
	calculator *pricing.Calculator,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, calculator, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, calculator, logg))
			r.Put("/items/{itemID}", controllers.CartUpdateItem(cartService, calculator, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(cartService, calculator, logg))
		})

		r.Post("/checkout", controllers.CheckoutBegin(checkoutService, logg))
		r.Route("/checkout/{checkoutID}", func(r chi.Router) {
			r.Get("/", controllers.CheckoutView(checkoutService, logg))
			r.Post("/addresses", controllers.CheckoutCreateAddress(checkoutService, logg))
			r.Put("/address", controllers.CheckoutSelectAddress(checkoutService, logg))
			r.Put("/payment-method", controllers.CheckoutSetPaymentMethod(checkoutService, logg))
			r.Post("/back", controllers.CheckoutGoBack(checkoutService, logg))
			r.Post("/advance", controllers.CheckoutAdvance(checkoutService, logg))
			r.Post("/payment/confirm", controllers.CheckoutConfirmPayment(checkoutService, logg))
			r.Post("/place-order", controllers.CheckoutPlaceOrder(checkoutService, logg))
			r.Get("/confirmation", controllers.CheckoutConfirmation(checkoutService, logg))
		})
	})

	return r
}
