package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austech/sigo-api/internal/auth"
	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/testutil"
)

func TestResolver_StaffIsUnrestricted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := auth.NewResolver(db)

	for _, rol := range []string{domain.RolGerente, domain.RolAdministrador} {
		usuario := testutil.CreateUsuario(t, db, rol, rol+"@example.com")

		user, err := resolver.Resolve(context.Background(), usuario.ID)
		require.NoError(t, err)

		assert.Equal(t, rol, user.Rol)
		assert.True(t, user.IsStaff())
		require.NotNil(t, user.Scope)
		assert.False(t, user.Scope.Restricted)
		assert.True(t, user.Scope.AllowsSucursal(999))
		assert.True(t, user.Scope.AllowsCliente(999))
	}
}

func TestResolver_ClienteScopeFromGrants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := auth.NewResolver(db)

	clienteA := testutil.CreateCliente(t, db, "Maderas del Sur")
	clienteB := testutil.CreateCliente(t, db, "Aserradero Norte")
	sucA1 := testutil.CreateSucursal(t, db, clienteA.ID, "Planta A1")
	sucA2 := testutil.CreateSucursal(t, db, clienteA.ID, "Planta A2")
	sucB1 := testutil.CreateSucursal(t, db, clienteB.ID, "Planta B1")

	usuario := testutil.CreateUsuario(t, db, domain.RolCliente, "operador@example.com")
	testutil.GrantSucursal(t, db, usuario.ID, sucA1.ID)
	testutil.GrantSucursal(t, db, usuario.ID, sucA2.ID)

	user, err := resolver.Resolve(context.Background(), usuario.ID)
	require.NoError(t, err)

	require.NotNil(t, user.Scope)
	assert.True(t, user.Scope.Restricted)
	assert.ElementsMatch(t, []int64{sucA1.ID, sucA2.ID}, user.Scope.SucursalIDs)
	// Both granted sucursales belong to the same cliente, deduplicated
	assert.Equal(t, []int64{clienteA.ID}, user.Scope.ClienteIDs)

	assert.True(t, user.Scope.AllowsSucursal(sucA1.ID))
	assert.False(t, user.Scope.AllowsSucursal(sucB1.ID))
	assert.True(t, user.Scope.AllowsCliente(clienteA.ID))
	assert.False(t, user.Scope.AllowsCliente(clienteB.ID))
}

func TestResolver_ClienteWithoutGrants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := auth.NewResolver(db)

	usuario := testutil.CreateUsuario(t, db, domain.RolCliente, "nuevo@example.com")

	user, err := resolver.Resolve(context.Background(), usuario.ID)
	require.NoError(t, err)

	require.NotNil(t, user.Scope)
	assert.True(t, user.Scope.Restricted)
	assert.Empty(t, user.Scope.SucursalIDs)
	assert.Empty(t, user.Scope.ClienteIDs)
	assert.False(t, user.Scope.AllowsSucursal(1))
}

func TestResolver_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := auth.NewResolver(db)

	_, err := resolver.Resolve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestResolver_GrantedSucursalIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := auth.NewResolver(db)

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	suc := testutil.CreateSucursal(t, db, cliente.ID, "Sucursal Uno")

	// Staff users keep their raw grant list even though their scope
	// ignores it
	gerente := testutil.CreateUsuario(t, db, domain.RolGerente, "jefa@example.com")
	testutil.GrantSucursal(t, db, gerente.ID, suc.ID)

	ids, err := resolver.GrantedSucursalIDs(context.Background(), gerente.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{suc.ID}, ids)
}

func TestScopeFromContext_Unauthenticated(t *testing.T) {
	scope := auth.ScopeFromContext(context.Background())

	require.NotNil(t, scope)
	assert.True(t, scope.Restricted)
	assert.False(t, scope.AllowsSucursal(1))
	assert.False(t, scope.AllowsCliente(1))
}

func TestUserContext_Roles(t *testing.T) {
	user := &auth.UserContext{Rol: domain.RolCliente}

	assert.True(t, user.HasRole(domain.RolCliente))
	assert.False(t, user.HasRole(domain.RolGerente))
	assert.True(t, user.HasAnyRole(domain.RolGerente, domain.RolCliente))
	assert.False(t, user.IsStaff())
}
