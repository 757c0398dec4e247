package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shop-backend/internal/auth"
)

// NewRouter mounts the full API surface. Read-only catalog routes, order
// placement, the status enumeration and the configuration map are public;
// every mutating route requires a verified bearer token.
func NewRouter(
	tokens *auth.Manager,
	authH *AuthHandler,
	products *ProductHandler,
	orders *OrderHandler,
	users *UserHandler,
	configs *ConfigHandler,
	uploadsDir string,
	uploadsPrefix string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	requireAuth := RequireAuth(tokens)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authH.Login)
			r.Post("/logout", authH.Logout)
			r.With(requireAuth).Put("/change-password", authH.ChangePassword)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/{id}", products.GetByID)
			r.With(requireAuth).Post("/", products.Create)
			r.With(requireAuth).Put("/{id}", products.Update)
			r.With(requireAuth).Delete("/{id}", products.Delete)
			r.With(requireAuth).Delete("/{id}/images/{imageID}", products.DeleteImage)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/place", orders.Place)
			r.With(requireAuth).Get("/", orders.List)
			r.With(requireAuth).Get("/{id}", orders.GetByID)
			r.With(requireAuth).Put("/{id}/status", orders.UpdateStatus)
			r.With(requireAuth).Put("/{id}/cancel", orders.Cancel)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", users.GetAll)
			r.Post("/", users.Create)
			r.Put("/{id}", users.Update)
			r.Delete("/{id}", users.Delete)
		})

		r.Get("/order-statuses", configs.GetStatuses)

		r.Route("/configurations", func(r chi.Router) {
			r.Get("/", configs.GetAll)
			r.With(requireAuth).Put("/{key}", configs.Set)
		})
	})

	fileServer := http.StripPrefix(uploadsPrefix, http.FileServer(http.Dir(uploadsDir)))
	r.Get(uploadsPrefix+"/*", fileServer.ServeHTTP)

	return r
}
