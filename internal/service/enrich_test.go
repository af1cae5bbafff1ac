package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/testutil"
)

func TestEnricher_DegradesWhenCatalogUnavailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	enricher := newEnricher(db)
	ctx := context.Background()

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	sierra := testutil.CreateSierra(t, db, sucursal.ID, tipo.ID, "SB-0001")
	afilado := createAfiladoRow(t, db, sierra.ID, nil)

	require.NoError(t, db.Exec("DROP TABLE tipos_afilado").Error)

	// The primary record still comes back; only the failed branch is empty
	detalles, err := enricher.AfiladoDetalles(ctx, []domain.Afilado{*afilado})
	require.NoError(t, err)
	require.Len(t, detalles, 1)
	assert.Equal(t, afilado.ID, detalles[0].ID)
	assert.Zero(t, detalles[0].TiposAfilado)
	// Branches with healthy lookups are unaffected
	assert.Equal(t, sierra.CodigoBarra, detalles[0].Sierras.CodigoBarra)
	assert.Equal(t, cliente.RazonSocial, detalles[0].Sierras.Sucursales.Clientes.RazonSocial)
}

func TestEnricher_SierraDetallesDegradePerBranch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	enricher := newEnricher(db)
	ctx := context.Background()

	cliente := testutil.CreateCliente(t, db, "Cliente Uno")
	sucursal := testutil.CreateSucursal(t, db, cliente.ID, "Planta Uno")
	tipo := testutil.CreateTipoSierra(t, db, "Cinta")
	sierra := testutil.CreateSierra(t, db, sucursal.ID, tipo.ID, "SB-0001")

	require.NoError(t, db.Exec("DROP TABLE tipos_sierra").Error)
	require.NoError(t, db.Exec("DROP TABLE clientes").Error)

	detalles, err := enricher.SierraDetalles(ctx, []domain.Sierra{*sierra})
	require.NoError(t, err)
	require.Len(t, detalles, 1)
	assert.Equal(t, sierra.CodigoBarra, detalles[0].CodigoBarra)
	assert.Zero(t, detalles[0].TiposSierra)
	assert.Zero(t, detalles[0].Sucursales.Clientes)
	// The estado and sucursal lookups still succeeded
	assert.NotZero(t, detalles[0].EstadosSierra.ID)
	assert.Equal(t, sucursal.Nombre, detalles[0].Sucursales.Nombre)
}
