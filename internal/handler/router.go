package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"orderwarden/internal/identity"
	"orderwarden/internal/mw"
	"orderwarden/internal/service"
)

type Services struct {
	Orders   *service.OrderService
	Tracking *service.TrackingService
	Etsy     *service.EtsyService
}

func NewRouter(svc Services, jwtSecret, dashboardURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", identity.Header},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Opened by the browser, identified by query string.
	r.Get("/api/etsy/auth", EtsyAuthHandler(svc.Etsy, jwtSecret, dashboardURL))

	r.Group(func(r chi.Router) {
		r.Use(mw.IdentityMiddleware(jwtSecret))

		r.Get("/api/orders", ListOrdersHandler(svc.Orders))
		r.Post("/api/orders", CreateOrderHandler(svc.Orders))
		r.Delete("/api/orders/{id}", DeleteOrderHandler(svc.Orders))
		r.Post("/api/orders/{id}/check", CheckOrderHandler(svc.Tracking))

		r.Get("/api/etsy/status", EtsyStatusHandler(svc.Etsy))
		r.Post("/api/etsy/sync", EtsySyncHandler(svc.Etsy))
		r.Post("/api/etsy/disconnect", EtsyDisconnectHandler(svc.Etsy))
	})

	return r
}
