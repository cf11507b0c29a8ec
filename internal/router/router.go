// Package router sets up all HTTP routes and middleware chains for the
// TeleMart API. Routes fall into three rings: public catalog reads,
// authenticated customer actions and the admin surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"telemart/internal/auth"
	"telemart/internal/handlers"
	"telemart/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The rate limiter guards only the login
// endpoint, where each request costs two HMAC computations.
func New(
	authService *auth.Service,
	loginLimiter *middleware.RateLimiter,
	authH *handlers.Auth,
	categories *handlers.Categories,
	products *handlers.Products,
	orders *handlers.Orders,
	reviews *handlers.Reviews,
	media *handlers.Media,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request. RequestID runs first so
	// the logger and recoverer can tag their entries with it.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Login — public, rate limited.
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Post("/auth/telegram", authH.Login)
		})

		// Public catalog reads.
		r.Get("/categories", categories.List)
		r.Get("/categories/{id}", categories.Get)
		r.Get("/products", products.List)
		r.Get("/products/{id}", products.Get)
		r.Get("/products/{id}/reviews", products.Reviews)

		// Customer actions — require a valid token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authService))

			r.Post("/orders", orders.Create)
			r.Get("/orders/my", orders.My)
			r.Get("/orders/{id}", orders.Get)
			r.Post("/reviews", reviews.Create)

			// Admin surface.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/categories", categories.Create)
				r.Put("/categories/{id}", categories.Update)
				r.Delete("/categories/{id}", categories.Delete)

				r.Post("/products", products.Create)
				r.Put("/products/{id}", products.Update)
				r.Delete("/products/{id}", products.Delete)

				r.Get("/orders", orders.List)
				r.Patch("/orders/{id}/status", orders.UpdateStatus)

				r.Get("/reviews", reviews.List)
				r.Delete("/reviews/{id}", reviews.Delete)

				r.Post("/media", media.Upload)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
