package auth

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/identity"
)

// Middleware handles authentication for HTTP requests
type Middleware struct {
	tokens   *identity.TokenIssuer
	resolver *Resolver
	logger   *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(tokens *identity.TokenIssuer, resolver *Resolver, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens:   tokens,
		resolver: resolver,
		logger:   logger,
	}
}

// Authenticate verifies the bearer token and loads the user with their
// access scope into the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "No se proporcionó token de autenticación")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondError(w, http.StatusUnauthorized, "No se proporcionó token de autenticación")
			return
		}

		userID, err := m.tokens.Verify(parts[1])
		if err != nil {
			m.logger.Warn("token verification failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			respondError(w, http.StatusUnauthorized, "Token inválido o expirado")
			return
		}

		userCtx, err := m.resolver.Resolve(r.Context(), userID)
		if err != nil {
			m.logger.Warn("user resolution failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			respondError(w, http.StatusUnauthorized, "Usuario no encontrado")
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("rol", userCtx.Rol),
			zap.Duration("auth_duration", time.Since(start)),
		)

		ctx := WithUserContext(r.Context(), userCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ensures the user has one of the given roles
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "Usuario no autenticado")
				return
			}

			if !userCtx.HasAnyRole(roles...) {
				respondError(w, http.StatusForbidden,
					"Acceso denegado. Se requiere rol(es): "+strings.Join(roles, ", "))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSucursalAccess ensures the sucursal named by the id route
// parameter is within the user's scope. Staff roles always pass.
func (m *Middleware) RequireSucursalAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Usuario no autenticado")
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "ID de sucursal inválido")
			return
		}

		if !userCtx.Scope.AllowsSucursal(id) {
			m.logger.Warn("sucursal access denied",
				zap.String("user_id", userCtx.UserID.String()),
				zap.Int64("sucursal_id", id),
			)
			respondError(w, http.StatusForbidden, "No tiene permiso para acceder a esta sucursal")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{
		Success: false,
		Message: message,
	})
}
