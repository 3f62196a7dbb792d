package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/store"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/health"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/middleware"
)

// Deps are the components the view server projects and drives.
type Deps struct {
	Cart     CartActions
	Store    store.Reader
	Checkout Checkout
	Orders   OrderService
	Health   *health.Handler
	Users    middleware.UserResolver
	CORS     middleware.CORSConfig
	Logger   *slog.Logger
}

// NewRouter creates a chi router with all view server routes registered.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(d.Logger))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.CORS(d.CORS))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(d.Logger, d.Users))

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(d.Cart, d.Store, d.Logger)
	checkoutHandler := NewCheckoutHandler(d.Checkout, d.Logger)
	orderHandler := NewOrderHandler(d.Orders, d.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/refresh", cartHandler.Refresh)

			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{itemId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{itemId}", cartHandler.RemoveItem)

			r.Post("/promo", cartHandler.ApplyPromo)
			r.Delete("/promo", cartHandler.RemovePromo)
		})

		r.Post("/checkout", checkoutHandler.Submit)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.ListOrders)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Post("/{id}/cancel", orderHandler.CancelOrder)
		})
		r.Get("/track/{orderNumber}", orderHandler.TrackOrder)
	})

	return r
}
