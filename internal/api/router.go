package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Cheertaboi/shop-microservices/internal/api/handlers"
	"github.com/Cheertaboi/shop-microservices/internal/api/middleware"
	"github.com/Cheertaboi/shop-microservices/internal/auth"
)

func newRouter(log *slog.Logger, name string) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"` + name + ` is running"}`))
	})
	return r
}

// NewUserRouter builds the HTTP router for the user-service
func NewUserRouter(h *handlers.UserHandler, v auth.Verifier, log *slog.Logger) http.Handler {
	r := newRouter(log, "User Service")
	authn := middleware.Authenticate(v)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Get("/me", h.Me)
			r.Put("/me", h.UpdateMe)
			r.With(middleware.RequireAdmin).Get("/", h.List)
		})
	})
	return r
}

// NewProductRouter builds the HTTP router for the product-service
func NewProductRouter(h *handlers.ProductHandler, v auth.Verifier, log *slog.Logger) http.Handler {
	r := newRouter(log, "Product Service")
	authn := middleware.Authenticate(v)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/category/{category}", h.ByCategory)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Post("/{id}/stock", h.AdjustStock)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Create)
				r.Put("/{id}", h.Update)
				r.Delete("/{id}", h.Delete)
			})
		})
	})
	return r
}

// NewCartRouter builds the HTTP router for the cart-service
func NewCartRouter(h *handlers.CartHandler, v auth.Verifier, log *slog.Logger) http.Handler {
	r := newRouter(log, "Cart Service")

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.Authenticate(v))
		r.Get("/", h.Get)
		r.Post("/", h.AddItem)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.UpdateItem)
		r.Delete("/items/{productId}", h.RemoveItem)
	})
	return r
}

// NewOrderRouter builds the HTTP router for the order-service
func NewOrderRouter(h *handlers.OrderHandler, v auth.Verifier, log *slog.Logger) http.Handler {
	r := newRouter(log, "Order Service")

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.Authenticate(v))
		r.Post("/", h.Create)
		r.Get("/", h.ListMine)
		r.With(middleware.RequireAdmin).Get("/admin/all", h.ListAll)
		r.Get("/{id}", h.Get)
		r.With(middleware.RequireAdmin).Put("/{id}/status", h.SetStatus)
	})
	return r
}
