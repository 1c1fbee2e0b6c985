package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/eventpos-backend/api/controllers"
	"github.com/angelmondragon/eventpos-backend/api/middleware"
	"github.com/angelmondragon/eventpos-backend/internal/catalog"
	"github.com/angelmondragon/eventpos-backend/internal/checkout"
	"github.com/angelmondragon/eventpos-backend/internal/events"
	"github.com/angelmondragon/eventpos-backend/internal/rates"
	"github.com/angelmondragon/eventpos-backend/internal/transactions"
	"github.com/angelmondragon/eventpos-backend/pkg/config"
	"github.com/angelmondragon/eventpos-backend/pkg/logger"
	"github.com/angelmondragon/eventpos-backend/pkg/redis"
)

// NewRouter wires the register API. idempotencyStore and redisPinger are nil
// when Redis is not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisPinger controllers.Pinger,
	idempotencyStore redis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	eventService events.Service,
	catalogService catalog.Service,
	checkoutService checkout.Service,
	transactionService transactions.Service,
	rateService rates.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	idempotent := middleware.Idempotency(idempotencyStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/rates", func(r chi.Router) {
			r.Get("/", controllers.ListRates(rateService, logg))
			r.Put("/{code}", controllers.PutRate(rateService, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.ListEvents(eventService, logg))
			r.With(idempotent).Post("/", controllers.CreateEvent(eventService, logg))

			r.Route("/{eventId}", func(r chi.Router) {
				r.Get("/", controllers.GetEvent(eventService, logg))
				r.Patch("/", controllers.UpdateEvent(eventService, logg))
				r.Post("/lock", controllers.SetEventLock(eventService, true, logg))
				r.Post("/unlock", controllers.SetEventLock(eventService, false, logg))

				r.Route("/product-types", func(r chi.Router) {
					r.Get("/", controllers.ListProductTypes(catalogService, logg))
					r.Post("/", controllers.CreateProductType(catalogService, logg))
					r.Patch("/{typeId}", controllers.UpdateProductType(catalogService, logg))
					r.Delete("/{typeId}", controllers.DeleteProductType(catalogService, logg))
				})
				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.ListProducts(catalogService, logg))
					r.Post("/", controllers.CreateProduct(catalogService, logg))
					r.Patch("/{productId}", controllers.UpdateProduct(catalogService, logg))
					r.Delete("/{productId}", controllers.DeleteProduct(catalogService, logg))
				})
				r.Route("/promos", func(r chi.Router) {
					r.Get("/", controllers.ListPromos(catalogService, logg))
					r.Post("/", controllers.CreatePromo(catalogService, logg))
					r.Patch("/{promoId}", controllers.UpdatePromo(catalogService, logg))
					r.Delete("/{promoId}", controllers.DeletePromo(catalogService, logg))
				})

				r.Post("/cart/quote", controllers.QuoteCart(checkoutService, logg))
				r.With(idempotent).Post("/checkout", controllers.Checkout(checkoutService, logg))

				r.Route("/transactions", func(r chi.Router) {
					r.Get("/", controllers.ListTransactions(transactionService, logg))
					r.Get("/{txId}", controllers.GetTransaction(transactionService, logg))
					r.Patch("/{txId}", controllers.UpdateTransaction(transactionService, logg))
					r.Delete("/{txId}", controllers.DeleteTransaction(transactionService, logg))
				})
				r.Get("/totals", controllers.TransactionTotals(transactionService, logg))
			})
		})
	})

	return r
}
