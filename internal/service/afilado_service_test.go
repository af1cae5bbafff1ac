package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/repository"
	"github.com/austech/sigo-api/internal/service"
	"github.com/austech/sigo-api/internal/testutil"
)

type afiladoFixture struct {
	db       *gorm.DB
	svc      *service.AfiladoService
	cliente  *domain.Cliente
	sucursal *domain.Sucursal
	tipo     *domain.TipoSierra
	sierra   *domain.Sierra
}

func setupAfiladoFixture(t *testing.T) *afiladoFixture {
	db := testutil.SetupTestDB(t)
	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	sierra := testutil.CreateSierra(t, db, sucursal.ID, tipo.ID, "SB-0001")

	return &afiladoFixture{
		db:       db,
		svc:      newAfiladoService(db),
		cliente:  cliente,
		sucursal: sucursal,
		tipo:     tipo,
		sierra:   sierra,
	}
}

func TestAfiladoService_Create(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	detalle, err := f.svc.Create(ctx, &domain.CreateAfiladoRequest{
		SierraID:      f.sierra.ID,
		TipoAfiladoID: testutil.TipoAfiladoID(t, f.db),
		Observaciones: "Primer ciclo",
	})
	require.NoError(t, err)
	assert.NotZero(t, detalle.ID)
	assert.Nil(t, detalle.FechaSalida)
	assert.False(t, detalle.UltimoAfilado)
	assert.Equal(t, f.sierra.CodigoBarra, detalle.Sierras.CodigoBarra)
	assert.NotEmpty(t, detalle.TiposAfilado.Nombre)
}

func TestAfiladoService_CreateRejectsOpenCycle(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()
	createAfiladoRow(t, f.db, f.sierra.ID, nil)

	_, err := f.svc.Create(ctx, &domain.CreateAfiladoRequest{
		SierraID:      f.sierra.ID,
		TipoAfiladoID: testutil.TipoAfiladoID(t, f.db),
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	// Closing the cycle frees the sierra for a new one
	salida := time.Now().UTC()
	require.NoError(t, f.db.Model(&domain.Afilado{}).
		Where("sierra_id = ?", f.sierra.ID).
		Update("fecha_salida", salida).Error)

	_, err = f.svc.Create(ctx, &domain.CreateAfiladoRequest{
		SierraID:      f.sierra.ID,
		TipoAfiladoID: testutil.TipoAfiladoID(t, f.db),
	})
	assert.NoError(t, err)
}

func TestAfiladoService_CreateRejectsObsoleta(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	obsoleto := testutil.EstadoID(t, f.db, domain.EstadoObsoleto)
	require.NoError(t, f.db.Model(&domain.Sierra{}).
		Where("id = ?", f.sierra.ID).
		Update("estado_id", obsoleto).Error)

	_, err := f.svc.Create(ctx, &domain.CreateAfiladoRequest{
		SierraID:      f.sierra.ID,
		TipoAfiladoID: testutil.TipoAfiladoID(t, f.db),
	})
	assert.ErrorIs(t, err, service.ErrSierraObsoleta)
}

func TestAfiladoService_CreateUltimoRetiresSierra(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	detalle, err := f.svc.Create(ctx, &domain.CreateAfiladoRequest{
		SierraID:      f.sierra.ID,
		TipoAfiladoID: testutil.TipoAfiladoID(t, f.db),
		UltimoAfilado: true,
	})
	require.NoError(t, err)
	assert.True(t, detalle.UltimoAfilado)

	var sierra domain.Sierra
	require.NoError(t, f.db.First(&sierra, f.sierra.ID).Error)
	assert.Equal(t, testutil.EstadoID(t, f.db, domain.EstadoObsoleto), sierra.EstadoID)
}

func TestAfiladoService_CreateOutOfScope(t *testing.T) {
	f := setupAfiladoFixture(t)
	otra := testutil.CreateSucursal(t, f.db, f.cliente.ID, "Planta Dos")
	ctx := testutil.RestrictedContext([]int64{otra.ID}, []int64{f.cliente.ID})

	_, err := f.svc.Create(ctx, &domain.CreateAfiladoRequest{
		SierraID:      f.sierra.ID,
		TipoAfiladoID: testutil.TipoAfiladoID(t, f.db),
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestAfiladoService_RegistrarSalidaWriteOnce(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()
	afilado := createAfiladoRow(t, f.db, f.sierra.ID, nil)

	detalle, err := f.svc.RegistrarSalida(ctx, afilado.ID)
	require.NoError(t, err)
	require.NotNil(t, detalle.FechaSalida)

	// A second write is rejected and the stored date stays put
	_, err = f.svc.RegistrarSalida(ctx, afilado.ID)
	assert.ErrorIs(t, err, service.ErrSalidaRegistrada)

	var stored domain.Afilado
	require.NoError(t, f.db.First(&stored, afilado.ID).Error)
	require.NotNil(t, stored.FechaSalida)
	assert.WithinDuration(t, *detalle.FechaSalida, *stored.FechaSalida, time.Second)
}

func TestAfiladoService_SalidaMasiva(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	otraSierra := testutil.CreateSierra(t, f.db, f.sucursal.ID, f.tipo.ID, "SB-0002")
	a1 := createAfiladoRow(t, f.db, f.sierra.ID, nil)
	a2 := createAfiladoRow(t, f.db, otraSierra.ID, nil)

	count, err := f.svc.SalidaMasiva(ctx, []int64{a1.ID, a2.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var abiertos int64
	require.NoError(t, f.db.Model(&domain.Afilado{}).
		Where("fecha_salida IS NULL").Count(&abiertos).Error)
	assert.Zero(t, abiertos)

	// The batch leaves an audit trail
	var entradas []domain.Bitacora
	require.NoError(t, f.db.Find(&entradas).Error)
	require.Len(t, entradas, 1)
	assert.Equal(t, "salida_masiva", entradas[0].Accion)
	assert.Equal(t, "afilados", entradas[0].Tabla)
}

func TestAfiladoService_SalidaMasivaSkipsMissingAndClosed(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	salida := time.Now().UTC()
	cerrado := createAfiladoRow(t, f.db, f.sierra.ID, &salida)
	otraSierra := testutil.CreateSierra(t, f.db, f.sucursal.ID, f.tipo.ID, "SB-0002")
	abierto := createAfiladoRow(t, f.db, otraSierra.ID, nil)

	// Unknown and already closed ids are skipped; only the pending one counts
	count, err := f.svc.SalidaMasiva(ctx, []int64{cerrado.ID, abierto.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var stored domain.Afilado
	require.NoError(t, f.db.First(&stored, abierto.ID).Error)
	assert.NotNil(t, stored.FechaSalida)

	// The previously closed one keeps its original date
	var storedCerrado domain.Afilado
	require.NoError(t, f.db.First(&storedCerrado, cerrado.ID).Error)
	require.NotNil(t, storedCerrado.FechaSalida)
	assert.WithinDuration(t, salida, *storedCerrado.FechaSalida, time.Second)
}

func TestAfiladoService_SalidaMasivaNonePending(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	salida := time.Now().UTC()
	cerrado := createAfiladoRow(t, f.db, f.sierra.ID, &salida)

	_, err := f.svc.SalidaMasiva(ctx, []int64{cerrado.ID, 9999})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAfiladoService_SalidaMasivaOutOfScope(t *testing.T) {
	f := setupAfiladoFixture(t)

	oculta := testutil.CreateSucursal(t, f.db, f.cliente.ID, "Oculta")
	sierraOculta := testutil.CreateSierra(t, f.db, oculta.ID, f.tipo.ID, "SB-OCULTA")
	visible := createAfiladoRow(t, f.db, f.sierra.ID, nil)
	escondido := createAfiladoRow(t, f.db, sierraOculta.ID, nil)

	ctx := testutil.RestrictedContext([]int64{f.sucursal.ID}, []int64{f.cliente.ID})
	_, err := f.svc.SalidaMasiva(ctx, []int64{visible.ID, escondido.ID})
	var scopeErr *service.BatchScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, escondido.ID, scopeErr.AfiladoID)
}

func TestAfiladoService_UltimoAfiladoMasivo(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	otraSierra := testutil.CreateSierra(t, f.db, f.sucursal.ID, f.tipo.ID, "SB-0002")
	a1 := createAfiladoRow(t, f.db, f.sierra.ID, nil)
	a2 := createAfiladoRow(t, f.db, otraSierra.ID, nil)

	result, err := f.svc.UltimoAfiladoMasivo(ctx, []int64{a1.ID, a2.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Actualizados)
	assert.ElementsMatch(t, []int64{a1.ID, a2.ID}, result.AfiladoIDs)
	assert.ElementsMatch(t, []int64{f.sierra.ID, otraSierra.ID}, result.SierraIDs)

	obsoleto := testutil.EstadoID(t, f.db, domain.EstadoObsoleto)
	var sierras []domain.Sierra
	require.NoError(t, f.db.Find(&sierras).Error)
	for _, si := range sierras {
		assert.Equal(t, obsoleto, si.EstadoID)
	}

	var marcados int64
	require.NoError(t, f.db.Model(&domain.Afilado{}).
		Where("ultimo_afilado = ?", true).Count(&marcados).Error)
	assert.EqualValues(t, 2, marcados)

	var entradas []domain.Bitacora
	require.NoError(t, f.db.Find(&entradas).Error)
	require.Len(t, entradas, 1)
	assert.Equal(t, "ultimo_afilado_masivo", entradas[0].Accion)
}

func TestAfiladoService_UltimoAfiladoMasivoMissingIDs(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()
	a1 := createAfiladoRow(t, f.db, f.sierra.ID, nil)

	// A partially missing batch names the missing ids
	_, err := f.svc.UltimoAfiladoMasivo(ctx, []int64{a1.ID, 9999})
	var missing *service.BatchMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []int64{9999}, missing.IDs)

	// Nothing was written
	var stored domain.Afilado
	require.NoError(t, f.db.First(&stored, a1.ID).Error)
	assert.False(t, stored.UltimoAfilado)

	// When no id resolves at all the batch is a plain not-found
	_, err = f.svc.UltimoAfiladoMasivo(ctx, []int64{9998, 9999})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAfiladoService_UltimoAfiladoMasivoAlreadyFinal(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	marcado := createAfiladoRow(t, f.db, f.sierra.ID, nil)
	require.NoError(t, f.db.Model(&domain.Afilado{}).
		Where("id = ?", marcado.ID).
		Update("ultimo_afilado", true).Error)
	otraSierra := testutil.CreateSierra(t, f.db, f.sucursal.ID, f.tipo.ID, "SB-0002")
	pendiente := createAfiladoRow(t, f.db, otraSierra.ID, nil)

	_, err := f.svc.UltimoAfiladoMasivo(ctx, []int64{marcado.ID, pendiente.ID})
	var final *service.BatchAlreadyFinalError
	require.ErrorAs(t, err, &final)
	assert.Equal(t, []int64{marcado.ID}, final.IDs)

	// The pending one was not touched and its sierra stays in use
	var stored domain.Afilado
	require.NoError(t, f.db.First(&stored, pendiente.ID).Error)
	assert.False(t, stored.UltimoAfilado)

	var sierra domain.Sierra
	require.NoError(t, f.db.First(&sierra, otraSierra.ID).Error)
	assert.Equal(t, testutil.EstadoID(t, f.db, domain.EstadoEnUso), sierra.EstadoID)
}

func TestAfiladoService_ListPendientesOldestFirst(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	salida := time.Now().UTC()
	createAfiladoRow(t, f.db, f.sierra.ID, &salida)
	otraSierra := testutil.CreateSierra(t, f.db, f.sucursal.ID, f.tipo.ID, "SB-0002")
	viejo := createAfiladoRow(t, f.db, otraSierra.ID, nil)
	require.NoError(t, f.db.Model(&domain.Afilado{}).
		Where("id = ?", viejo.ID).
		Update("fecha_afilado", time.Now().UTC().Add(-48*time.Hour)).Error)
	terceraSierra := testutil.CreateSierra(t, f.db, f.sucursal.ID, f.tipo.ID, "SB-0003")
	nuevo := createAfiladoRow(t, f.db, terceraSierra.ID, nil)

	pendientes, err := f.svc.ListPendientes(ctx)
	require.NoError(t, err)
	require.Len(t, pendientes, 2)
	assert.Equal(t, viejo.ID, pendientes[0].ID)
	assert.Equal(t, nuevo.ID, pendientes[1].ID)
}

func TestAfiladoService_ListByCliente(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	propio := createAfiladoRow(t, f.db, f.sierra.ID, nil)
	otroCliente := testutil.CreateCliente(t, f.db, "Cliente Dos")
	otraSucursal := testutil.CreateSucursal(t, f.db, otroCliente.ID, "Planta Ajena")
	otraSierra := testutil.CreateSierra(t, f.db, otraSucursal.ID, f.tipo.ID, "SB-AJENA")
	createAfiladoRow(t, f.db, otraSierra.ID, nil)

	afilados, err := f.svc.ListByCliente(ctx, f.cliente.ID)
	require.NoError(t, err)
	require.Len(t, afilados, 1)
	assert.Equal(t, propio.ID, afilados[0].ID)

	_, err = f.svc.ListByCliente(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// A caller of another cliente is denied, not shown an empty list
	restringido := testutil.RestrictedContext([]int64{otraSucursal.ID}, []int64{otroCliente.ID})
	_, err = f.svc.ListByCliente(restringido, f.cliente.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestAfiladoService_ListBySucursal(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	propio := createAfiladoRow(t, f.db, f.sierra.ID, nil)
	otraSucursal := testutil.CreateSucursal(t, f.db, f.cliente.ID, "Planta Dos")
	otraSierra := testutil.CreateSierra(t, f.db, otraSucursal.ID, f.tipo.ID, "SB-0002")
	createAfiladoRow(t, f.db, otraSierra.ID, nil)

	afilados, err := f.svc.ListBySucursal(ctx, f.sucursal.ID)
	require.NoError(t, err)
	require.Len(t, afilados, 1)
	assert.Equal(t, propio.ID, afilados[0].ID)

	_, err = f.svc.ListBySucursal(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	restringido := testutil.RestrictedContext([]int64{f.sucursal.ID}, []int64{f.cliente.ID})
	_, err = f.svc.ListBySucursal(restringido, otraSucursal.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestAfiladoService_ListFilters(t *testing.T) {
	f := setupAfiladoFixture(t)
	ctx := testutil.StaffContext()

	salida := time.Now().UTC()
	createAfiladoRow(t, f.db, f.sierra.ID, &salida)
	otraSierra := testutil.CreateSierra(t, f.db, f.sucursal.ID, f.tipo.ID, "SB-0002")
	pendiente := createAfiladoRow(t, f.db, otraSierra.ID, nil)

	todos, err := f.svc.List(ctx, repository.AfiladoFilters{})
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	pendientes, err := f.svc.List(ctx, repository.AfiladoFilters{Pendientes: true})
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	assert.Equal(t, pendiente.ID, pendientes[0].ID)

	// A restricted caller cannot filter by a sucursal outside their scope
	restringido := testutil.RestrictedContext([]int64{f.sucursal.ID}, []int64{f.cliente.ID})
	oculta := testutil.CreateSucursal(t, f.db, f.cliente.ID, "Oculta")
	_, err = f.svc.List(restringido, repository.AfiladoFilters{SucursalID: &oculta.ID})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	// No grants short-circuits to an empty list
	vacio, err := f.svc.List(testutil.RestrictedContext(nil, nil), repository.AfiladoFilters{})
	require.NoError(t, err)
	assert.Empty(t, vacio)
}
