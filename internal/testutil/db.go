package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/austech/sigo-api/internal/auth"
	"github.com/austech/sigo-api/internal/domain"
)

var dbCounter int64

// SetupTestDB opens an isolated in-memory SQLite database, migrates the
// full schema and seeds the catalog tables.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&domain.Rol{},
		&domain.Credencial{},
		&domain.Usuario{},
		&domain.UsuarioSucursal{},
		&domain.Cliente{},
		&domain.Sucursal{},
		&domain.TipoSierra{},
		&domain.EstadoSierra{},
		&domain.TipoAfilado{},
		&domain.Sierra{},
		&domain.Afilado{},
		&domain.Bitacora{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	seedCatalogos(t, db)
	return db
}

func seedCatalogos(t *testing.T, db *gorm.DB) {
	t.Helper()

	roles := []domain.Rol{
		{Nombre: domain.RolGerente},
		{Nombre: domain.RolAdministrador},
		{Nombre: domain.RolCliente},
	}
	require.NoError(t, db.Create(&roles).Error)

	estados := []domain.EstadoSierra{
		{Nombre: domain.EstadoEnUso},
		{Nombre: domain.EstadoObsoleto},
	}
	require.NoError(t, db.Create(&estados).Error)

	tipos := []domain.TipoAfilado{
		{Nombre: "Lomo"},
		{Nombre: "Pecho"},
	}
	require.NoError(t, db.Create(&tipos).Error)
}

// RolID looks up a seeded role by name.
func RolID(t *testing.T, db *gorm.DB, nombre string) int64 {
	t.Helper()
	var rol domain.Rol
	require.NoError(t, db.Where("nombre = ?", nombre).First(&rol).Error)
	return rol.ID
}

// EstadoID looks up a seeded saw state by name.
func EstadoID(t *testing.T, db *gorm.DB, nombre string) int64 {
	t.Helper()
	var estado domain.EstadoSierra
	require.NoError(t, db.Where("nombre = ?", nombre).First(&estado).Error)
	return estado.ID
}

// TipoAfiladoID returns the id of the first seeded sharpening type.
func TipoAfiladoID(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var tipo domain.TipoAfilado
	require.NoError(t, db.Order("id").First(&tipo).Error)
	return tipo.ID
}

// CreateCliente inserts a cliente with filler contact data.
func CreateCliente(t *testing.T, db *gorm.DB, razonSocial string) *domain.Cliente {
	t.Helper()
	cliente := &domain.Cliente{
		RazonSocial: razonSocial,
		RUT:         "76.123.456-7",
		Direccion:   "Av. Siempre Viva 123",
		Telefono:    "+56 9 1234 5678",
		Email:       "contacto@example.com",
	}
	require.NoError(t, db.Create(cliente).Error)
	return cliente
}

// CreateSucursal inserts a sucursal for the given cliente.
func CreateSucursal(t *testing.T, db *gorm.DB, clienteID int64, nombre string) *domain.Sucursal {
	t.Helper()
	sucursal := &domain.Sucursal{
		Nombre:    nombre,
		Direccion: "Calle Industrial 45",
		Telefono:  "+56 2 2345 6789",
		ClienteID: clienteID,
	}
	require.NoError(t, db.Create(sucursal).Error)
	return sucursal
}

// CreateTipoSierra inserts an active saw type.
func CreateTipoSierra(t *testing.T, db *gorm.DB, nombre string) *domain.TipoSierra {
	t.Helper()
	tipo := &domain.TipoSierra{Nombre: nombre, Activo: true}
	require.NoError(t, db.Create(tipo).Error)
	return tipo
}

// CreateSierra inserts a sierra in the "En uso" state.
func CreateSierra(t *testing.T, db *gorm.DB, sucursalID, tipoSierraID int64, codigo string) *domain.Sierra {
	t.Helper()
	sierra := &domain.Sierra{
		CodigoBarra:  codigo,
		SucursalID:   sucursalID,
		TipoSierraID: tipoSierraID,
		EstadoID:     EstadoID(t, db, domain.EstadoEnUso),
		Activo:       true,
	}
	require.NoError(t, db.Create(sierra).Error)
	return sierra
}

// CreateUsuario inserts a usuario with the given role.
func CreateUsuario(t *testing.T, db *gorm.DB, rolNombre, email string) *domain.Usuario {
	t.Helper()
	usuario := &domain.Usuario{
		ID:       uuid.New(),
		Nombre:   "Test",
		Apellido: "Usuario",
		Email:    email,
		RolID:    RolID(t, db, rolNombre),
	}
	require.NoError(t, db.Create(usuario).Error)
	return usuario
}

// GrantSucursal links a usuario to a sucursal.
func GrantSucursal(t *testing.T, db *gorm.DB, usuarioID uuid.UUID, sucursalID int64) {
	t.Helper()
	require.NoError(t, db.Create(&domain.UsuarioSucursal{
		UsuarioID:  usuarioID,
		SucursalID: sucursalID,
	}).Error)
}

// StaffContext returns a context authenticated as an unrestricted
// Gerente user.
func StaffContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: uuid.New(),
		Nombre: "Gerente",
		Email:  "gerente@example.com",
		Rol:    domain.RolGerente,
		Scope:  &auth.Scope{Restricted: false},
	})
}

// RestrictedContext returns a context authenticated as a Cliente user
// limited to the given sucursales and clientes.
func RestrictedContext(sucursalIDs, clienteIDs []int64) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: uuid.New(),
		Nombre: "Cliente",
		Email:  "cliente@example.com",
		Rol:    domain.RolCliente,
		Scope: &auth.Scope{
			Restricted:  true,
			SucursalIDs: sucursalIDs,
			ClienteIDs:  clienteIDs,
		},
	})
}

// ContextForUsuario returns a context authenticated as an existing
// usuario row, with the scope derived from its role and grants.
func ContextForUsuario(t *testing.T, db *gorm.DB, usuario *domain.Usuario) context.Context {
	t.Helper()
	resolver := auth.NewResolver(db)
	user, err := resolver.Resolve(context.Background(), usuario.ID)
	require.NoError(t, err)
	return auth.WithUserContext(context.Background(), user)
}
