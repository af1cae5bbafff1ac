package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/austech/sigo-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID   uuid.UUID
	Nombre   string
	Apellido string
	Email    string
	Rol      string
	Scope    *Scope
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role string) bool {
	return u.Rol == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.Rol == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether the user sees data across all sucursales
func (u *UserContext) IsStaff() bool {
	return u.Rol == domain.RolGerente || u.Rol == domain.RolAdministrador
}

// ScopeFromContext returns the access scope of the authenticated user.
// An unauthenticated context yields a fully restricted empty scope.
func ScopeFromContext(ctx context.Context) *Scope {
	if user, ok := FromContext(ctx); ok && user.Scope != nil {
		return user.Scope
	}
	return &Scope{Restricted: true}
}
