package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/service"
	"github.com/austech/sigo-api/internal/testutil"
)

func TestClienteService_ListNarrowsToScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newClienteService(db)

	clienteA := testutil.CreateCliente(t, db, "Maderas del Sur")
	clienteB := testutil.CreateCliente(t, db, "Aserradero Norte")
	sucA := testutil.CreateSucursal(t, db, clienteA.ID, "Planta A")
	testutil.CreateSucursal(t, db, clienteB.ID, "Planta B")

	// Staff see everything
	clientes, err := svc.List(testutil.StaffContext())
	require.NoError(t, err)
	assert.Len(t, clientes, 2)

	// A restricted caller only sees the clientes behind their grants
	ctx := testutil.RestrictedContext([]int64{sucA.ID}, []int64{clienteA.ID})
	clientes, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, clientes, 1)
	assert.Equal(t, clienteA.ID, clientes[0].ID)

	// No grants means an empty list, not an error
	clientes, err = svc.List(testutil.RestrictedContext(nil, nil))
	require.NoError(t, err)
	assert.Empty(t, clientes)
}

func TestClienteService_GetByIDDeniesOutOfScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newClienteService(db)

	clienteA := testutil.CreateCliente(t, db, "Maderas del Sur")
	clienteB := testutil.CreateCliente(t, db, "Aserradero Norte")
	sucA := testutil.CreateSucursal(t, db, clienteA.ID, "Planta A")

	ctx := testutil.RestrictedContext([]int64{sucA.ID}, []int64{clienteA.ID})

	got, err := svc.GetByID(ctx, clienteA.ID)
	require.NoError(t, err)
	assert.Equal(t, clienteA.ID, got.ID)
	require.Len(t, got.Sucursales, 1)
	assert.Equal(t, sucA.ID, got.Sucursales[0].ID)

	// Addressing a cliente outside the scope is an explicit denial
	_, err = svc.GetByID(ctx, clienteB.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestClienteService_GetByIDNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newClienteService(db)

	_, err := svc.GetByID(testutil.StaffContext(), 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestClienteService_CreateAndUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newClienteService(db)
	ctx := testutil.StaffContext()

	req := &domain.CreateClienteRequest{
		RazonSocial: "Forestal Andina",
		RUT:         "77.888.999-0",
		Direccion:   "Ruta 5 Sur km 12",
		Telefono:    "+56 2 2111 2222",
		Email:       "ventas@forestal.cl",
	}
	cliente, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, cliente.ID)
	assert.Equal(t, "Forestal Andina", cliente.RazonSocial)

	req.RazonSocial = "Forestal Andina SpA"
	updated, err := svc.Update(ctx, cliente.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Forestal Andina SpA", updated.RazonSocial)
}

func TestClienteService_DeleteWithSucursales(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newClienteService(db)
	ctx := testutil.StaffContext()

	cliente := testutil.CreateCliente(t, db, "Con Sucursales")
	testutil.CreateSucursal(t, db, cliente.ID, "Planta Unica")

	err := svc.Delete(ctx, cliente.ID)
	assert.ErrorIs(t, err, service.ErrHasDependents)

	vacio := testutil.CreateCliente(t, db, "Sin Sucursales")
	require.NoError(t, svc.Delete(ctx, vacio.ID))

	_, err = svc.GetByID(ctx, vacio.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
