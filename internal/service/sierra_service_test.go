package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/service"
	"github.com/austech/sigo-api/internal/testutil"
)

func createAfiladoRow(t *testing.T, db *gorm.DB, sierraID int64, salida *time.Time) *domain.Afilado {
	t.Helper()
	afilado := &domain.Afilado{
		SierraID:      sierraID,
		TipoAfiladoID: testutil.TipoAfiladoID(t, db),
		UsuarioID:     uuid.New(),
		FechaAfilado:  time.Now().UTC(),
		FechaSalida:   salida,
	}
	require.NoError(t, db.Create(afilado).Error)
	return afilado
}

func TestSierraService_CreateStartsEnUso(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)
	ctx := testutil.StaffContext()

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")

	detalle, err := svc.Create(ctx, &domain.CreateSierraRequest{
		Codigo:       "SB-0001",
		SucursalID:   sucursal.ID,
		TipoSierraID: tipo.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "SB-0001", detalle.CodigoBarra)
	assert.Equal(t, testutil.EstadoID(t, db, domain.EstadoEnUso), detalle.EstadoID)
	assert.True(t, detalle.Activo)
	assert.Equal(t, domain.EstadoEnUso, detalle.EstadosSierra.Nombre)
}

func TestSierraService_CreateDuplicateCodigo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)
	ctx := testutil.StaffContext()

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	testutil.CreateSierra(t, db, sucursal.ID, tipo.ID, "SB-0001")

	_, err := svc.Create(ctx, &domain.CreateSierraRequest{
		Codigo:       "SB-0001",
		SucursalID:   sucursal.ID,
		TipoSierraID: tipo.ID,
	})
	assert.ErrorIs(t, err, service.ErrCodigoTaken)
}

func TestSierraService_CreateOutOfScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	otra := testutil.CreateSucursal(t, db, cliente.ID, "Planta Dos")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")

	ctx := testutil.RestrictedContext([]int64{sucursal.ID}, []int64{cliente.ID})
	_, err := svc.Create(ctx, &domain.CreateSierraRequest{
		Codigo:       "SB-0002",
		SucursalID:   otra.ID,
		TipoSierraID: tipo.ID,
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestSierraService_GetByCodigoRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)
	ctx := testutil.StaffContext()

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")

	creada, err := svc.Create(ctx, &domain.CreateSierraRequest{
		Codigo:       "SB-0001",
		SucursalID:   sucursal.ID,
		TipoSierraID: tipo.ID,
	})
	require.NoError(t, err)

	// The scanned barcode resolves to the same row with the full nesting
	detalle, err := svc.GetByCodigo(ctx, "SB-0001")
	require.NoError(t, err)
	assert.Equal(t, creada.ID, detalle.ID)
	assert.Equal(t, tipo.ID, detalle.TiposSierra.ID)
	assert.Equal(t, tipo.Nombre, detalle.TiposSierra.Nombre)
	assert.Equal(t, testutil.EstadoID(t, db, domain.EstadoEnUso), detalle.EstadosSierra.ID)
	assert.Equal(t, domain.EstadoEnUso, detalle.EstadosSierra.Nombre)
	assert.Equal(t, sucursal.ID, detalle.Sucursales.ID)
	assert.Equal(t, sucursal.Nombre, detalle.Sucursales.Nombre)
	assert.Equal(t, cliente.ID, detalle.Sucursales.Clientes.ID)
	assert.Equal(t, cliente.RazonSocial, detalle.Sucursales.Clientes.RazonSocial)
}

func TestSierraService_GetByCodigoHiddenIsDenied(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	visible := testutil.CreateSucursal(t, db, cliente.ID, "Visible")
	oculta := testutil.CreateSucursal(t, db, cliente.ID, "Oculta")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	testutil.CreateSierra(t, db, oculta.ID, tipo.ID, "SB-OCULTA")

	ctx := testutil.RestrictedContext([]int64{visible.ID}, []int64{cliente.ID})

	// An existing but out-of-scope barcode is a denial, not a 404
	_, err := svc.GetByCodigo(ctx, "SB-OCULTA")
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = svc.GetByCodigo(ctx, "SB-NO-EXISTE")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSierraService_GetByIDIncludesHistorial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)
	ctx := testutil.StaffContext()

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	sierra := testutil.CreateSierra(t, db, sucursal.ID, tipo.ID, "SB-0001")
	createAfiladoRow(t, db, sierra.ID, nil)

	detalle, err := svc.GetByID(ctx, sierra.ID)
	require.NoError(t, err)
	assert.Equal(t, sierra.ID, detalle.ID)
	assert.Equal(t, tipo.Nombre, detalle.TiposSierra.Nombre)
	assert.Equal(t, sucursal.Nombre, detalle.Sucursales.Nombre)
	require.Len(t, detalle.Afilados, 1)
}

func TestSierraService_ListNarrowsToScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucA := testutil.CreateSucursal(t, db, cliente.ID, "Planta A")
	sucB := testutil.CreateSucursal(t, db, cliente.ID, "Planta B")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	sierraA := testutil.CreateSierra(t, db, sucA.ID, tipo.ID, "SB-A")
	testutil.CreateSierra(t, db, sucB.ID, tipo.ID, "SB-B")

	todas, err := svc.List(testutil.StaffContext())
	require.NoError(t, err)
	assert.Len(t, todas, 2)

	ctx := testutil.RestrictedContext([]int64{sucA.ID}, []int64{cliente.ID})
	algunas, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, algunas, 1)
	assert.Equal(t, sierraA.ID, algunas[0].ID)

	vacias, err := svc.List(testutil.RestrictedContext(nil, nil))
	require.NoError(t, err)
	assert.Empty(t, vacias)
}

func TestSierraService_ListByCliente(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucA := testutil.CreateSucursal(t, db, cliente.ID, "Planta A")
	sucB := testutil.CreateSucursal(t, db, cliente.ID, "Planta B")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	sierraA := testutil.CreateSierra(t, db, sucA.ID, tipo.ID, "SB-A")
	sierraB := testutil.CreateSierra(t, db, sucB.ID, tipo.ID, "SB-B")

	otro := testutil.CreateCliente(t, db, "Cliente Dos")
	sucAjena := testutil.CreateSucursal(t, db, otro.ID, "Planta Ajena")
	testutil.CreateSierra(t, db, sucAjena.ID, tipo.ID, "SB-AJENA")

	sierras, err := svc.ListByCliente(testutil.StaffContext(), cliente.ID)
	require.NoError(t, err)
	require.Len(t, sierras, 2)
	ids := []int64{sierras[0].ID, sierras[1].ID}
	assert.ElementsMatch(t, []int64{sierraA.ID, sierraB.ID}, ids)

	_, err = svc.ListByCliente(testutil.StaffContext(), 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// A caller of another cliente is denied, not shown an empty list
	ctx := testutil.RestrictedContext([]int64{sucAjena.ID}, []int64{otro.ID})
	_, err = svc.ListByCliente(ctx, cliente.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestSierraService_UpdatePartial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)
	ctx := testutil.StaffContext()

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	sierra := testutil.CreateSierra(t, db, sucursal.ID, tipo.ID, "SB-0001")
	testutil.CreateSierra(t, db, sucursal.ID, tipo.ID, "SB-0002")

	// Renaming onto an existing barcode is rejected
	codigo := "SB-0002"
	_, err := svc.Update(ctx, sierra.ID, &domain.UpdateSierraRequest{Codigo: &codigo})
	assert.ErrorIs(t, err, service.ErrCodigoTaken)

	nuevo := "SB-0099"
	activo := false
	detalle, err := svc.Update(ctx, sierra.ID, &domain.UpdateSierraRequest{
		Codigo: &nuevo,
		Activo: &activo,
	})
	require.NoError(t, err)
	assert.Equal(t, "SB-0099", detalle.CodigoBarra)
	assert.False(t, detalle.Activo)
	// Untouched fields keep their values
	assert.Equal(t, sucursal.ID, detalle.SucursalID)
}

func TestSierraService_DeleteWithHistorial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newSierraService(db)
	ctx := testutil.StaffContext()

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")

	conHistorial := testutil.CreateSierra(t, db, sucursal.ID, tipo.ID, "SB-0001")
	createAfiladoRow(t, db, conHistorial.ID, nil)

	err := svc.Delete(ctx, conHistorial.ID)
	assert.ErrorIs(t, err, service.ErrHasDependents)

	sinHistorial := testutil.CreateSierra(t, db, sucursal.ID, tipo.ID, "SB-0002")
	require.NoError(t, svc.Delete(ctx, sinHistorial.ID))

	_, err = svc.GetByID(ctx, sinHistorial.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
