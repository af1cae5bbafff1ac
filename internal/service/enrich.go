package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/repository"
)

// Enricher assembles nested response shapes from flat rows. Related
// rows are fetched in one batched query per table and joined in memory.
// Secondary lookups never fail the response: when one errors or a
// relation is missing, that branch of the nesting stays an empty object
// and a warning is logged. Primary fields are always returned.
type Enricher struct {
	sierraRepo   *repository.SierraRepository
	sucursalRepo *repository.SucursalRepository
	clienteRepo  *repository.ClienteRepository
	catalogoRepo *repository.CatalogoRepository
	usuarioRepo  *repository.UsuarioRepository
	logger       *zap.Logger
}

func NewEnricher(
	sierraRepo *repository.SierraRepository,
	sucursalRepo *repository.SucursalRepository,
	clienteRepo *repository.ClienteRepository,
	catalogoRepo *repository.CatalogoRepository,
	usuarioRepo *repository.UsuarioRepository,
	logger *zap.Logger,
) *Enricher {
	return &Enricher{
		sierraRepo:   sierraRepo,
		sucursalRepo: sucursalRepo,
		clienteRepo:  clienteRepo,
		catalogoRepo: catalogoRepo,
		usuarioRepo:  usuarioRepo,
		logger:       logger,
	}
}

func distinctInt64(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// lookupWarn records a failed secondary lookup. The caller falls
// through with whatever it has so the response still goes out.
func (e *Enricher) lookupWarn(table string, err error) {
	e.logger.Warn("secondary enrichment lookup failed, degrading to empty objects",
		zap.String("table", table),
		zap.Error(err),
	)
}

// sucursalRefs loads SucursalRef values, each with its nested cliente
// summary, for the given sucursal ids.
func (e *Enricher) sucursalRefs(ctx context.Context, ids []int64) map[int64]domain.SucursalRef {
	refs := make(map[int64]domain.SucursalRef)
	ids = distinctInt64(ids)
	if len(ids) == 0 {
		return refs
	}

	sucursales, err := e.sucursalRepo.GetByIDs(ctx, ids)
	if err != nil {
		e.lookupWarn("sucursales", err)
		return refs
	}

	clienteIDs := make([]int64, 0, len(sucursales))
	for _, s := range sucursales {
		clienteIDs = append(clienteIDs, s.ClienteID)
	}
	clienteByID := make(map[int64]domain.Cliente)
	if clientes, err := e.clienteRepo.GetByIDs(ctx, distinctInt64(clienteIDs)); err != nil {
		e.lookupWarn("clientes", err)
	} else {
		for _, c := range clientes {
			clienteByID[c.ID] = c
		}
	}

	for _, s := range sucursales {
		ref := domain.SucursalRef{
			ID:        s.ID,
			Nombre:    s.Nombre,
			ClienteID: s.ClienteID,
		}
		if c, ok := clienteByID[s.ClienteID]; ok {
			ref.Clientes = domain.ClienteRef{ID: c.ID, RazonSocial: c.RazonSocial}
		}
		refs[s.ID] = ref
	}
	return refs
}

// SierraDetalles enriches sierras with their type, state and sucursal.
func (e *Enricher) SierraDetalles(ctx context.Context, sierras []domain.Sierra) ([]domain.SierraDetalle, error) {
	tipoIDs := make([]int64, 0, len(sierras))
	estadoIDs := make([]int64, 0, len(sierras))
	sucursalIDs := make([]int64, 0, len(sierras))
	for _, s := range sierras {
		tipoIDs = append(tipoIDs, s.TipoSierraID)
		estadoIDs = append(estadoIDs, s.EstadoID)
		sucursalIDs = append(sucursalIDs, s.SucursalID)
	}

	tipoByID := make(map[int64]domain.TipoSierra)
	if tipos, err := e.catalogoRepo.GetTiposSierraByIDs(ctx, distinctInt64(tipoIDs)); err != nil {
		e.lookupWarn("tipos_sierra", err)
	} else {
		for _, t := range tipos {
			tipoByID[t.ID] = t
		}
	}

	estadoByID := make(map[int64]domain.EstadoSierra)
	if estados, err := e.catalogoRepo.GetEstadosSierraByIDs(ctx, distinctInt64(estadoIDs)); err != nil {
		e.lookupWarn("estados_sierra", err)
	} else {
		for _, es := range estados {
			estadoByID[es.ID] = es
		}
	}

	sucursalRefs := e.sucursalRefs(ctx, sucursalIDs)

	detalles := make([]domain.SierraDetalle, len(sierras))
	for i, s := range sierras {
		d := domain.SierraDetalle{Sierra: s}
		if t, ok := tipoByID[s.TipoSierraID]; ok {
			d.TiposSierra = domain.TipoSierraRef{ID: t.ID, Nombre: t.Nombre}
		}
		if es, ok := estadoByID[s.EstadoID]; ok {
			d.EstadosSierra = domain.EstadoSierraRef{ID: es.ID, Nombre: es.Nombre}
		}
		d.Sucursales = sucursalRefs[s.SucursalID]
		detalles[i] = d
	}
	return detalles, nil
}

// AfiladoConTipos enriches afilados with their sharpening type only.
// Used for the history nested inside a sierra.
func (e *Enricher) AfiladoConTipos(ctx context.Context, afilados []domain.Afilado) ([]domain.AfiladoConTipo, error) {
	tipoIDs := make([]int64, 0, len(afilados))
	for _, a := range afilados {
		tipoIDs = append(tipoIDs, a.TipoAfiladoID)
	}
	tipoByID := make(map[int64]domain.TipoAfilado)
	if tipos, err := e.catalogoRepo.GetTiposAfiladoByIDs(ctx, distinctInt64(tipoIDs)); err != nil {
		e.lookupWarn("tipos_afilado", err)
	} else {
		for _, t := range tipos {
			tipoByID[t.ID] = t
		}
	}

	out := make([]domain.AfiladoConTipo, len(afilados))
	for i, a := range afilados {
		item := domain.AfiladoConTipo{Afilado: a}
		if t, ok := tipoByID[a.TipoAfiladoID]; ok {
			item.TiposAfilado = domain.TipoAfiladoRef{ID: t.ID, Nombre: t.Nombre}
		}
		out[i] = item
	}
	return out, nil
}

// AfiladoDetalles enriches afilados with their type, the recording
// user and the full nested sierra.
func (e *Enricher) AfiladoDetalles(ctx context.Context, afilados []domain.Afilado) ([]domain.AfiladoDetalle, error) {
	tipoIDs := make([]int64, 0, len(afilados))
	sierraIDs := make([]int64, 0, len(afilados))
	usuarioIDs := make([]uuid.UUID, 0, len(afilados))
	seenUsuario := make(map[uuid.UUID]bool)
	for _, a := range afilados {
		tipoIDs = append(tipoIDs, a.TipoAfiladoID)
		sierraIDs = append(sierraIDs, a.SierraID)
		if !seenUsuario[a.UsuarioID] {
			seenUsuario[a.UsuarioID] = true
			usuarioIDs = append(usuarioIDs, a.UsuarioID)
		}
	}

	tipoByID := make(map[int64]domain.TipoAfilado)
	if tipos, err := e.catalogoRepo.GetTiposAfiladoByIDs(ctx, distinctInt64(tipoIDs)); err != nil {
		e.lookupWarn("tipos_afilado", err)
	} else {
		for _, t := range tipos {
			tipoByID[t.ID] = t
		}
	}

	usuarioByID := make(map[uuid.UUID]domain.Usuario, len(usuarioIDs))
	for _, id := range usuarioIDs {
		u, err := e.usuarioRepo.GetByID(ctx, id)
		if err != nil {
			continue
		}
		usuarioByID[id] = *u
	}

	var sierras []domain.Sierra
	if loaded, err := e.sierraRepo.GetByIDs(ctx, distinctInt64(sierraIDs)); err != nil {
		e.lookupWarn("sierras", err)
	} else {
		sierras = loaded
	}
	sucursalIDs := make([]int64, 0, len(sierras))
	sierraTipoIDs := make([]int64, 0, len(sierras))
	for _, s := range sierras {
		sucursalIDs = append(sucursalIDs, s.SucursalID)
		sierraTipoIDs = append(sierraTipoIDs, s.TipoSierraID)
	}
	sucursalRefs := e.sucursalRefs(ctx, sucursalIDs)
	sierraTipoByID := make(map[int64]domain.TipoSierra)
	if sierraTipos, err := e.catalogoRepo.GetTiposSierraByIDs(ctx, distinctInt64(sierraTipoIDs)); err != nil {
		e.lookupWarn("tipos_sierra", err)
	} else {
		for _, t := range sierraTipos {
			sierraTipoByID[t.ID] = t
		}
	}

	sierraRefByID := make(map[int64]domain.SierraRef, len(sierras))
	for _, s := range sierras {
		ref := domain.SierraRef{
			ID:          s.ID,
			CodigoBarra: s.CodigoBarra,
			Sucursales:  sucursalRefs[s.SucursalID],
		}
		if t, ok := sierraTipoByID[s.TipoSierraID]; ok {
			ref.TiposSierra = domain.TipoSierraRef{ID: t.ID, Nombre: t.Nombre}
		}
		sierraRefByID[s.ID] = ref
	}

	detalles := make([]domain.AfiladoDetalle, len(afilados))
	for i, a := range afilados {
		d := domain.AfiladoDetalle{Afilado: a}
		if t, ok := tipoByID[a.TipoAfiladoID]; ok {
			d.TiposAfilado = domain.TipoAfiladoRef{ID: t.ID, Nombre: t.Nombre}
		}
		if u, ok := usuarioByID[a.UsuarioID]; ok {
			d.Usuarios = domain.UsuarioRef{ID: u.ID.String(), Nombre: u.Nombre}
		}
		d.Sierras = sierraRefByID[a.SierraID]
		detalles[i] = d
	}
	return detalles, nil
}

// SucursalesConCliente enriches sucursales with a cliente summary.
func (e *Enricher) SucursalesConCliente(ctx context.Context, sucursales []domain.Sucursal) ([]domain.SucursalConCliente, error) {
	clienteIDs := make([]int64, 0, len(sucursales))
	for _, s := range sucursales {
		clienteIDs = append(clienteIDs, s.ClienteID)
	}
	clienteByID := make(map[int64]domain.Cliente)
	if clientes, err := e.clienteRepo.GetByIDs(ctx, distinctInt64(clienteIDs)); err != nil {
		e.lookupWarn("clientes", err)
	} else {
		for _, c := range clientes {
			clienteByID[c.ID] = c
		}
	}

	out := make([]domain.SucursalConCliente, len(sucursales))
	for i, s := range sucursales {
		item := domain.SucursalConCliente{Sucursal: s}
		if c, ok := clienteByID[s.ClienteID]; ok {
			item.Clientes = domain.ClienteRef{ID: c.ID, RazonSocial: c.RazonSocial}
		}
		out[i] = item
	}
	return out, nil
}
