package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/service"
	"github.com/austech/sigo-api/internal/testutil"
)

func TestSucursalService_ListWithClienteSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSucursalService(db)

	cliente := testutil.CreateCliente(t, db, "Maderas del Sur")
	sucA := testutil.CreateSucursal(t, db, cliente.ID, "Planta A")
	testutil.CreateSucursal(t, db, cliente.ID, "Planta B")

	todas, err := svc.List(testutil.StaffContext())
	require.NoError(t, err)
	require.Len(t, todas, 2)
	assert.Equal(t, cliente.ID, todas[0].Clientes.ID)
	assert.Equal(t, "Maderas del Sur", todas[0].Clientes.RazonSocial)

	ctx := testutil.RestrictedContext([]int64{sucA.ID}, []int64{cliente.ID})
	algunas, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, algunas, 1)
	assert.Equal(t, sucA.ID, algunas[0].ID)

	vacias, err := svc.List(testutil.RestrictedContext(nil, nil))
	require.NoError(t, err)
	assert.Empty(t, vacias)
}

func TestSucursalService_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSucursalService(db)

	cliente := testutil.CreateCliente(t, db, "Maderas del Sur")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta A")
	otra := testutil.CreateSucursal(t, db, cliente.ID, "Planta B")

	ctx := testutil.RestrictedContext([]int64{sucursal.ID}, []int64{cliente.ID})

	detalle, err := svc.GetByID(ctx, sucursal.ID)
	require.NoError(t, err)
	assert.Equal(t, sucursal.ID, detalle.ID)
	require.NotNil(t, detalle.Cliente)
	assert.Equal(t, cliente.ID, detalle.Cliente.ID)

	_, err = svc.GetByID(ctx, otra.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestSucursalService_Vinculadas(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSucursalService(db)

	clienteA := testutil.CreateCliente(t, db, "Cliente A")
	clienteB := testutil.CreateCliente(t, db, "Cliente B")
	sucA := testutil.CreateSucursal(t, db, clienteA.ID, "Planta A")
	testutil.CreateSucursal(t, db, clienteB.ID, "Planta B")

	// Staff see every sucursal
	todas, err := svc.Vinculadas(testutil.StaffContext())
	require.NoError(t, err)
	assert.Len(t, todas, 2)

	ctx := testutil.RestrictedContext([]int64{sucA.ID}, []int64{clienteA.ID})
	propias, err := svc.Vinculadas(ctx)
	require.NoError(t, err)
	require.Len(t, propias, 1)
	assert.Equal(t, sucA.ID, propias[0].ID)
	require.NotNil(t, propias[0].Clientes)
	assert.Equal(t, clienteA.ID, propias[0].Clientes.ID)
}

func TestSucursalService_CreateValidatesCliente(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSucursalService(db)
	ctx := testutil.StaffContext()

	_, err := svc.Create(ctx, &domain.CreateSucursalRequest{
		Nombre:    "Planta Nueva",
		Direccion: "Camino Rural 8",
		Telefono:  "+56 2 2999 0000",
		ClienteID: 9999,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal, err := svc.Create(ctx, &domain.CreateSucursalRequest{
		Nombre:    "Planta Nueva",
		Direccion: "Camino Rural 8",
		Telefono:  "+56 2 2999 0000",
		ClienteID: cliente.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, sucursal.ID)
	assert.Equal(t, cliente.ID, sucursal.ClienteID)
}

func TestSucursalService_DeleteWithSierras(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSucursalService(db)
	ctx := testutil.StaffContext()

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	conSierras := testutil.CreateSucursal(t, db, cliente.ID, "Con Sierras")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	testutil.CreateSierra(t, db, conSierras.ID, tipo.ID, "SB-0001")

	err := svc.Delete(ctx, conSierras.ID)
	assert.ErrorIs(t, err, service.ErrHasDependents)

	vacia := testutil.CreateSucursal(t, db, cliente.ID, "Vacia")
	require.NoError(t, svc.Delete(ctx, vacia.ID))

	_, err = svc.GetByID(ctx, vacia.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
