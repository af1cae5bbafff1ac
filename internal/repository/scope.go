package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/auth"
)

// ApplySucursalScope narrows a query to the sucursales visible to the
// authenticated user. Unrestricted scopes pass through untouched; a
// restricted scope with no grants matches nothing.
func ApplySucursalScope(ctx context.Context, query *gorm.DB) *gorm.DB {
	return ApplySucursalScopeWithColumn(ctx, query, "sucursal_id")
}

// ApplySucursalScopeWithColumn applies the scope using a specific
// column name, for joined queries that need table qualification.
func ApplySucursalScopeWithColumn(ctx context.Context, query *gorm.DB, columnName string) *gorm.DB {
	scope := auth.ScopeFromContext(ctx)
	if !scope.Restricted {
		return query
	}
	if len(scope.SucursalIDs) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where(columnName+" IN ?", scope.SucursalIDs)
}

// ApplyClienteScope narrows a query on the clientes table to the
// clientes reachable through the user's branch grants.
func ApplyClienteScope(ctx context.Context, query *gorm.DB) *gorm.DB {
	scope := auth.ScopeFromContext(ctx)
	if !scope.Restricted {
		return query
	}
	if len(scope.ClienteIDs) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where("id IN ?", scope.ClienteIDs)
}
