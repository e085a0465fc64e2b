package router

import (
	"net/http"

	"petcare-inventory-api/internal/auth"
	"petcare-inventory-api/internal/handler"
	"petcare-inventory-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	InventoryHandler *handler.InventoryHandler
	PhotoHandler     *handler.PhotoHandler
	IdentityHandler  *handler.IdentityHandler
	AdminHandler     *handler.AdminHandler
	AuthMiddleware   func(http.Handler) http.Handler

	// Photos serves stored uploads under PhotoPrefix.
	Photos      http.Handler
	PhotoPrefix string

	AdminRole   string
	CORSOrigins []string
	Logger      *zap.Logger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	adminRole := cfg.AdminRole
	if adminRole == "" {
		adminRole = auth.RoleAdmin
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}

	if cfg.Photos != nil && cfg.PhotoPrefix != "" {
		r.Handle(cfg.PhotoPrefix+"/*", cfg.Photos)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.IdentityHandler != nil {
				r.Get("/auth/me", cfg.IdentityHandler.Me)
				r.Get("/users/me", cfg.IdentityHandler.Roles)
			}

			if cfg.InventoryHandler != nil {
				r.Route("/inventory", func(r chi.Router) {
					r.Get("/", cfg.InventoryHandler.List)
					r.Get("/search", cfg.InventoryHandler.Search)
					r.Get("/{id}", cfg.InventoryHandler.Get)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireRole(adminRole))
						r.Post("/", cfg.InventoryHandler.Create)
						r.Put("/{id}", cfg.InventoryHandler.Update)
						r.Delete("/{id}", cfg.InventoryHandler.Delete)
					})
				})
			}

			// Everything below needs the admin role.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(adminRole))

				if cfg.PhotoHandler != nil {
					r.Post("/photos", cfg.PhotoHandler.Upload)
				}

				if cfg.AdminHandler != nil {
					r.Route("/admin", func(r chi.Router) {
						r.Get("/stats", cfg.AdminHandler.GetStats)
						r.Post("/photos/cleanup", cfg.AdminHandler.CleanupPhotos)
					})
				}
			})
		})
	})

	return r
}
