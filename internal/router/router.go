package router

import (
	"net/http"

	"filament-inventory-api/internal/handler"
	"filament-inventory-api/internal/middleware"
	"filament-inventory-api/pkg/apierror"
	"filament-inventory-api/pkg/response"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler         *handler.Handler
	FilamentHandler *handler.FilamentHandler
	AdminHandler    *handler.AdminHandler
	AuthHandler     *handler.AuthHandler
	AuthMiddleware  func(http.Handler) http.Handler
	AllowedOrigins  []string
	Logger          *slog.Logger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.NewRecovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.NewLogging(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimw.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apierror.NotFound("Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apierror.NotFound("Not found"))
	})

	r.Route("/api", func(r chi.Router) {
		// PUBLIC routes (no auth required)
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/status", cfg.Handler.Status)
		}
		if cfg.FilamentHandler != nil {
			r.Get("/filaments", cfg.FilamentHandler.List)
		}

		// AUTHENTICATED routes (use Group to apply auth middleware only to these)
		r.Group(func(r chi.Router) {
			if cfg.AuthMiddleware != nil {
				r.Use(cfg.AuthMiddleware)
			}

			if cfg.AuthHandler != nil {
				r.Get("/auth/verify", cfg.AuthHandler.Verify)
			}

			if cfg.FilamentHandler != nil {
				r.Post("/filaments", cfg.FilamentHandler.Create)
				r.Put("/filaments/{id}", cfg.FilamentHandler.Update)
				r.Delete("/filaments/{id}", cfg.FilamentHandler.Delete)
			}

			if cfg.AdminHandler != nil {
				r.Get("/admin/stats", cfg.AdminHandler.GetStats)
			}
		})
	})

	return r
}
