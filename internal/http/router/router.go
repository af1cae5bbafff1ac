package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/auth"
	"github.com/austech/sigo-api/internal/config"
	"github.com/austech/sigo-api/internal/database"
	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/http/handler"
	"github.com/austech/sigo-api/internal/http/middleware"
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	authHandler     *handler.AuthHandler
	usuarioHandler  *handler.UsuarioHandler
	clienteHandler  *handler.ClienteHandler
	sucursalHandler *handler.SucursalHandler
	sierraHandler   *handler.SierraHandler
	afiladoHandler  *handler.AfiladoHandler
	catalogoHandler *handler.CatalogoHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	usuarioHandler *handler.UsuarioHandler,
	clienteHandler *handler.ClienteHandler,
	sucursalHandler *handler.SucursalHandler,
	sierraHandler *handler.SierraHandler,
	afiladoHandler *handler.AfiladoHandler,
	catalogoHandler *handler.CatalogoHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		authHandler:     authHandler,
		usuarioHandler:  usuarioHandler,
		clienteHandler:  clienteHandler,
		sucursalHandler: sucursalHandler,
		sierraHandler:   sierraHandler,
		afiladoHandler:  afiladoHandler,
		catalogoHandler: catalogoHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.With(rt.authMiddleware.RequireRole(domain.RolGerente, domain.RolAdministrador)).
				Post("/auth/register", rt.authHandler.Register)
			r.Get("/auth/profile", rt.authHandler.Profile)

			// Usuarios. Password change is outside the Gerente group
			// so users can change their own; the service enforces the
			// self-or-Gerente rule.
			r.Put("/usuarios/{id}/cambiar-password", rt.usuarioHandler.CambiarPassword)
			r.Route("/usuarios", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RolGerente))
				r.Get("/", rt.usuarioHandler.List)
				r.Post("/", rt.usuarioHandler.Create)
				r.Get("/{id}", rt.usuarioHandler.GetByID)
				r.Put("/{id}", rt.usuarioHandler.Update)
				r.Delete("/{id}", rt.usuarioHandler.Delete)
				r.Post("/{id}/sucursales", rt.usuarioHandler.AsignarSucursales)
			})

			// Clientes
			r.Route("/clientes", func(r chi.Router) {
				r.Get("/", rt.clienteHandler.List)
				r.Get("/{id}", rt.clienteHandler.GetByID)
				r.Get("/{id}/sucursales", rt.clienteHandler.Sucursales)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RolGerente, domain.RolAdministrador))
					r.Post("/", rt.clienteHandler.Create)
					r.Put("/{id}", rt.clienteHandler.Update)
					r.Delete("/{id}", rt.clienteHandler.Delete)
				})
			})

			// Sucursales
			r.Route("/sucursales", func(r chi.Router) {
				r.Get("/", rt.sucursalHandler.List)
				r.Get("/vinculadas", rt.sucursalHandler.Vinculadas)
				r.Get("/cliente/{id}", rt.clienteHandler.Sucursales)
				r.With(rt.authMiddleware.RequireSucursalAccess).
					Get("/{id}", rt.sucursalHandler.GetByID)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RolGerente, domain.RolAdministrador))
					r.Post("/", rt.sucursalHandler.Create)
					r.Put("/{id}", rt.sucursalHandler.Update)
					r.Delete("/{id}", rt.sucursalHandler.Delete)
				})
			})

			// Sierras
			r.Route("/sierras", func(r chi.Router) {
				r.Get("/", rt.sierraHandler.List)
				r.Get("/todas", rt.sierraHandler.List)
				r.Get("/codigo/{codigo}", rt.sierraHandler.GetByCodigo)
				r.Get("/cliente/{id}", rt.sierraHandler.ListByCliente)
				r.With(rt.authMiddleware.RequireSucursalAccess).
					Get("/sucursal/{id}", rt.sierraHandler.ListBySucursal)
				r.Get("/{id}", rt.sierraHandler.GetByID)
				r.Post("/", rt.sierraHandler.Create)
				r.Put("/{id}", rt.sierraHandler.Update)
				r.With(rt.authMiddleware.RequireRole(domain.RolGerente, domain.RolAdministrador)).
					Delete("/{id}", rt.sierraHandler.Delete)
			})

			// Afilados
			r.Route("/afilados", func(r chi.Router) {
				r.Get("/", rt.afiladoHandler.List)
				r.Get("/todos", rt.afiladoHandler.List)
				r.Get("/pendientes", rt.afiladoHandler.ListPendientes)
				r.Post("/", rt.afiladoHandler.Create)
				r.Post("/salida-masiva", rt.afiladoHandler.SalidaMasiva)
				r.With(rt.authMiddleware.RequireRole(domain.RolGerente, domain.RolAdministrador)).
					Post("/ultimo-afilado-masivo", rt.afiladoHandler.UltimoAfiladoMasivo)
				r.Get("/sierra/{id}", rt.afiladoHandler.ListBySierra)
				r.Get("/sucursal/{id}", rt.afiladoHandler.ListBySucursal)
				r.Get("/cliente/{id}", rt.afiladoHandler.ListByCliente)
				r.Get("/{id}", rt.afiladoHandler.GetByID)
				r.Put("/{id}/salida", rt.afiladoHandler.RegistrarSalida)
			})

			// Catalogos
			r.Route("/catalogos", func(r chi.Router) {
				r.With(rt.authMiddleware.RequireRole(domain.RolGerente)).
					Get("/roles", rt.catalogoHandler.ListRoles)
				r.Get("/tipos-sierra", rt.catalogoHandler.ListTiposSierra)
				r.Get("/estados-sierra", rt.catalogoHandler.ListEstadosSierra)
				r.Get("/tipos-afilado", rt.catalogoHandler.ListTiposAfilado)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RolGerente, domain.RolAdministrador))
					r.Post("/tipos-sierra", rt.catalogoHandler.CreateTipoSierra)
					r.Put("/tipos-sierra/{id}", rt.catalogoHandler.UpdateTipoSierra)
				})
			})
		})
	})

	return r
}
