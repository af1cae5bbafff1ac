package domain

// Request payloads. Validation tags follow go-playground/validator.

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Nombre   string `json:"nombre" validate:"required"`
	Apellido string `json:"apellido"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	RolID    int64  `json:"rol_id" validate:"required"`
}

type CreateUsuarioRequest struct {
	Nombre   string `json:"nombre" validate:"required"`
	Apellido string `json:"apellido" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	RolID    int64  `json:"rol_id" validate:"required"`
}

type UpdateUsuarioRequest struct {
	Nombre   string `json:"nombre" validate:"required"`
	Apellido string `json:"apellido" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	RolID    int64  `json:"rol_id" validate:"required"`
}

type CambiarPasswordRequest struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// AsignarSucursalesRequest replaces the full grant set of a user. An
// empty array is valid and revokes everything; a missing field is not.
type AsignarSucursalesRequest struct {
	Sucursales []int64 `json:"sucursales"`
}

type CreateClienteRequest struct {
	RazonSocial string `json:"razon_social" validate:"required"`
	RUT         string `json:"rut" validate:"required"`
	Direccion   string `json:"direccion" validate:"required"`
	Telefono    string `json:"telefono" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

type CreateSucursalRequest struct {
	Nombre    string `json:"nombre" validate:"required"`
	Direccion string `json:"direccion" validate:"required"`
	Telefono  string `json:"telefono" validate:"required"`
	ClienteID int64  `json:"cliente_id" validate:"required"`
}

type CreateSierraRequest struct {
	Codigo       string `json:"codigo" validate:"required"`
	SucursalID   int64  `json:"sucursal_id" validate:"required"`
	TipoSierraID int64  `json:"tipo_sierra_id" validate:"required"`
}

type UpdateSierraRequest struct {
	Codigo       *string `json:"codigo"`
	SucursalID   *int64  `json:"sucursal_id"`
	TipoSierraID *int64  `json:"tipo_sierra_id"`
	EstadoID     *int64  `json:"estado_id"`
	Activo       *bool   `json:"activo"`
}

type CreateAfiladoRequest struct {
	SierraID      int64  `json:"sierra_id" validate:"required"`
	TipoAfiladoID int64  `json:"tipo_afilado_id" validate:"required"`
	Observaciones string `json:"observaciones"`
	UltimoAfilado bool   `json:"ultimo_afilado"`
}

type SalidaMasivaRequest struct {
	AfiladoIDs []int64 `json:"afilado_ids" validate:"required,min=1"`
}

type UltimoAfiladoMasivoRequest struct {
	AfiladoIDs []int64 `json:"afiladoIds" validate:"required,min=1"`
}

type CreateTipoSierraRequest struct {
	Nombre      string `json:"nombre" validate:"required"`
	Descripcion string `json:"descripcion"`
}

type UpdateTipoSierraRequest struct {
	Nombre      string `json:"nombre" validate:"required"`
	Descripcion string `json:"descripcion"`
	Activo      *bool  `json:"activo"`
}

// Response payloads.

type UsuarioResumen struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
}

type LoginResponse struct {
	Usuario             UsuarioResumen `json:"usuario"`
	SucursalesAsignadas []int64        `json:"sucursalesAsignadas"`
	Token               string         `json:"token"`
}

type RegisterResponse struct {
	Message string         `json:"message"`
	Usuario UsuarioResumen `json:"usuario"`
}

type ProfileResponse struct {
	Usuario             UsuarioResumen `json:"usuario"`
	SucursalesAsignadas []Sucursal     `json:"sucursalesAsignadas"`
}

type UsuarioConSucursales struct {
	Usuario
	Sucursales []Sucursal `json:"sucursales"`
}

type ClienteConSucursales struct {
	Cliente
	Sucursales []Sucursal `json:"sucursales"`
}

// SucursalConCliente is the list-enrichment shape: each sucursal
// carries a summary of its cliente under the original nested key.
type SucursalConCliente struct {
	Sucursal
	Clientes ClienteRef `json:"clientes"`
}

// SucursalDetalle is the single-resource shape with the full cliente.
type SucursalDetalle struct {
	Sucursal
	Cliente *Cliente `json:"cliente"`
}

type SucursalVinculada struct {
	Sucursal
	Clientes *Cliente `json:"clientes"`
}

// Enrichment refs. Zero values marshal to an empty object, which is
// the placeholder emitted when a related row is missing.

type ClienteRef struct {
	ID          int64  `json:"id,omitempty"`
	RazonSocial string `json:"razon_social,omitempty"`
}

type TipoSierraRef struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre,omitempty"`
}

type EstadoSierraRef struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre,omitempty"`
}

type TipoAfiladoRef struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre,omitempty"`
}

type UsuarioRef struct {
	ID     string `json:"id,omitempty"`
	Nombre string `json:"nombre,omitempty"`
}

type SucursalRef struct {
	ID        int64      `json:"id,omitempty"`
	Nombre    string     `json:"nombre,omitempty"`
	ClienteID int64      `json:"cliente_id,omitempty"`
	Clientes  ClienteRef `json:"clientes"`
}

type SierraRef struct {
	ID          int64         `json:"id,omitempty"`
	CodigoBarra string        `json:"codigo_barra,omitempty"`
	TiposSierra TipoSierraRef `json:"tipos_sierra"`
	Sucursales  SucursalRef   `json:"sucursales"`
}

// AfiladoDetalle is the fully enriched sharpening record.
type AfiladoDetalle struct {
	Afilado
	TiposAfilado TipoAfiladoRef `json:"tipos_afilado"`
	Usuarios     UsuarioRef     `json:"usuarios"`
	Sierras      SierraRef      `json:"sierras"`
}

// AfiladoConTipo is the lighter history shape used inside a sierra.
type AfiladoConTipo struct {
	Afilado
	TiposAfilado TipoAfiladoRef `json:"tipos_afilado"`
}

// SierraDetalle is the enriched saw with its sharpening history.
type SierraDetalle struct {
	Sierra
	TiposSierra   TipoSierraRef    `json:"tipos_sierra"`
	EstadosSierra EstadoSierraRef  `json:"estados_sierra"`
	Sucursales    SucursalRef      `json:"sucursales"`
	Afilados      []AfiladoConTipo `json:"afilados,omitempty"`
}

// UltimoAfiladoMasivoResult reports an all-or-nothing final-mark batch.
type UltimoAfiladoMasivoResult struct {
	Actualizados int     `json:"actualizados"`
	AfiladoIDs   []int64 `json:"afiladoIds"`
	SierraIDs    []int64 `json:"sierraIds"`
}
