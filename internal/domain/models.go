package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role names as stored in the roles catalog.
const (
	RolGerente       = "Gerente"
	RolAdministrador = "Administrador"
	RolCliente       = "Cliente"
)

// Saw states as stored in the estados_sierra catalog.
const (
	EstadoEnUso    = "En uso"
	EstadoObsoleto = "Obsoleto"
)

type Rol struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	Nombre string `gorm:"size:50;not null;uniqueIndex" json:"nombre"`
}

func (Rol) TableName() string { return "roles" }

// Usuario shares its UUID with the credential row created for it, so a
// verified token subject maps directly onto this table.
type Usuario struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Nombre   string    `gorm:"size:100;not null" json:"nombre"`
	Apellido string    `gorm:"size:100" json:"apellido"`
	Email    string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	RolID    int64     `gorm:"not null" json:"rol_id"`
	Rol      *Rol      `gorm:"foreignKey:RolID" json:"roles,omitempty"`
}

func (Usuario) TableName() string { return "usuarios" }

// UsuarioSucursal is a branch grant: it entitles a Cliente user to the
// data of one sucursal.
type UsuarioSucursal struct {
	UsuarioID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"usuario_id"`
	SucursalID int64     `gorm:"primaryKey;autoIncrement:false" json:"sucursal_id"`
}

func (UsuarioSucursal) TableName() string { return "usuario_sucursal" }

type Cliente struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	RazonSocial string `gorm:"size:255;not null" json:"razon_social"`
	RUT         string `gorm:"column:rut;size:20;not null" json:"rut"`
	Direccion   string `gorm:"size:255" json:"direccion"`
	Telefono    string `gorm:"size:50" json:"telefono"`
	Email       string `gorm:"size:255" json:"email"`
}

func (Cliente) TableName() string { return "clientes" }

type Sucursal struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Nombre    string `gorm:"size:255;not null" json:"nombre"`
	Direccion string `gorm:"size:255" json:"direccion"`
	Telefono  string `gorm:"size:50" json:"telefono"`
	ClienteID int64  `gorm:"not null;index" json:"cliente_id"`
}

func (Sucursal) TableName() string { return "sucursales" }

type TipoSierra struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Nombre      string `gorm:"size:100;not null" json:"nombre"`
	Descripcion string `gorm:"size:255" json:"descripcion"`
	Activo      bool   `gorm:"not null;default:true" json:"activo"`
}

func (TipoSierra) TableName() string { return "tipos_sierra" }

type EstadoSierra struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	Nombre string `gorm:"size:50;not null;uniqueIndex" json:"nombre"`
}

func (EstadoSierra) TableName() string { return "estados_sierra" }

type TipoAfilado struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Nombre      string `gorm:"size:100;not null" json:"nombre"`
	Descripcion string `gorm:"size:255" json:"descripcion"`
}

func (TipoAfilado) TableName() string { return "tipos_afilado" }

// Sierra is a physical saw registered at a sucursal. CodigoBarra is
// globally unique, enforced by a pre-check query rather than a DB
// constraint (legacy rows predate the rule).
type Sierra struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	CodigoBarra   string    `gorm:"size:100;not null;index" json:"codigo_barra"`
	SucursalID    int64     `gorm:"not null;index" json:"sucursal_id"`
	TipoSierraID  int64     `gorm:"not null" json:"tipo_sierra_id"`
	EstadoID      int64     `gorm:"not null" json:"estado_id"`
	FechaRegistro time.Time `gorm:"type:date;not null" json:"fecha_registro"`
	Activo        bool      `gorm:"not null;default:true" json:"activo"`
}

func (Sierra) TableName() string { return "sierras" }

// Afilado is one sharpening cycle of a sierra. FechaSalida is nil while
// the cycle is open and is written exactly once when the saw leaves the
// workshop. UltimoAfilado marks the cycle that retires the saw.
type Afilado struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	SierraID      int64      `gorm:"not null;index" json:"sierra_id"`
	TipoAfiladoID int64      `gorm:"not null" json:"tipo_afilado_id"`
	UsuarioID     uuid.UUID  `gorm:"type:uuid;not null" json:"usuario_id"`
	FechaAfilado  time.Time  `gorm:"not null" json:"fecha_afilado"`
	FechaSalida   *time.Time `json:"fecha_salida"`
	Observaciones string     `gorm:"size:500" json:"observaciones"`
	UltimoAfilado bool       `gorm:"not null;default:false" json:"ultimo_afilado"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Afilado) TableName() string { return "afilados" }

// Bitacora rows record bulk operations for audit. Writes are
// best-effort and never fail the request that produced them.
type Bitacora struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UsuarioID   uuid.UUID `gorm:"type:uuid;not null" json:"usuario_id"`
	Accion      string    `gorm:"size:100;not null" json:"accion"`
	Tabla       string    `gorm:"size:100;not null" json:"tabla"`
	Descripcion string    `gorm:"size:500" json:"descripcion"`
	Detalles    string    `gorm:"type:jsonb" json:"detalles"`
	Fecha       time.Time `gorm:"not null" json:"fecha"`
}

func (Bitacora) TableName() string { return "bitacora" }

// Credencial backs the identity gateway: email plus bcrypt hash keyed
// by the same UUID as the usuarios row.
type Credencial struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:100;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Credencial) TableName() string { return "credenciales" }
