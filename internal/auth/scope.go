package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
)

// ErrUserNotFound indicates the token subject has no usuarios row
var ErrUserNotFound = errors.New("user not found")

// Scope is the visibility of one authenticated user. Staff roles get an
// unrestricted scope; Cliente users see only the sucursales granted to
// them and the clientes those sucursales belong to.
type Scope struct {
	Restricted  bool
	SucursalIDs []int64
	ClienteIDs  []int64
}

// AllowsSucursal reports whether a specific sucursal is visible.
func (s *Scope) AllowsSucursal(id int64) bool {
	if !s.Restricted {
		return true
	}
	for _, sid := range s.SucursalIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// AllowsCliente reports whether a specific cliente is visible.
func (s *Scope) AllowsCliente(id int64) bool {
	if !s.Restricted {
		return true
	}
	for _, cid := range s.ClienteIDs {
		if cid == id {
			return true
		}
	}
	return false
}

// Resolver loads the user row, role and branch grants for a verified
// token subject and derives the access scope.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve builds the UserContext for an account id. Scope is computed
// here once per request; handlers and services only read it.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) (*UserContext, error) {
	var usuario domain.Usuario
	err := r.db.WithContext(ctx).Preload("Rol").
		Where("id = ?", userID).First(&usuario).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	rol := ""
	if usuario.Rol != nil {
		rol = usuario.Rol.Nombre
	}

	user := &UserContext{
		UserID:   usuario.ID,
		Nombre:   usuario.Nombre,
		Apellido: usuario.Apellido,
		Email:    usuario.Email,
		Rol:      rol,
	}

	if user.IsStaff() {
		user.Scope = &Scope{Restricted: false}
		return user, nil
	}

	scope := &Scope{Restricted: true}

	var grants []domain.UsuarioSucursal
	if err := r.db.WithContext(ctx).
		Where("usuario_id = ?", userID).Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to load branch grants: %w", err)
	}

	if len(grants) > 0 {
		ids := make([]int64, 0, len(grants))
		for _, g := range grants {
			ids = append(ids, g.SucursalID)
		}
		scope.SucursalIDs = ids

		var sucursales []domain.Sucursal
		if err := r.db.WithContext(ctx).
			Where("id IN ?", ids).Find(&sucursales).Error; err != nil {
			return nil, fmt.Errorf("failed to load sucursales: %w", err)
		}

		seen := make(map[int64]bool, len(sucursales))
		for _, s := range sucursales {
			if !seen[s.ClienteID] {
				seen[s.ClienteID] = true
				scope.ClienteIDs = append(scope.ClienteIDs, s.ClienteID)
			}
		}
	}

	user.Scope = scope
	return user, nil
}

// GrantedSucursalIDs returns the raw grant list for a user regardless
// of role. Used by login and profile responses.
func (r *Resolver) GrantedSucursalIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	var grants []domain.UsuarioSucursal
	if err := r.db.WithContext(ctx).
		Where("usuario_id = ?", userID).Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to load branch grants: %w", err)
	}
	ids := make([]int64, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.SucursalID)
	}
	return ids, nil
}
