package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/auth"
	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/repository"
)

type AfiladoService struct {
	afiladoRepo  *repository.AfiladoRepository
	sierraRepo   *repository.SierraRepository
	sucursalRepo *repository.SucursalRepository
	clienteRepo  *repository.ClienteRepository
	catalogoRepo *repository.CatalogoRepository
	bitacoraRepo *repository.BitacoraRepository
	enricher     *Enricher
	logger       *zap.Logger
}

func NewAfiladoService(
	afiladoRepo *repository.AfiladoRepository,
	sierraRepo *repository.SierraRepository,
	sucursalRepo *repository.SucursalRepository,
	clienteRepo *repository.ClienteRepository,
	catalogoRepo *repository.CatalogoRepository,
	bitacoraRepo *repository.BitacoraRepository,
	enricher *Enricher,
	logger *zap.Logger,
) *AfiladoService {
	return &AfiladoService{
		afiladoRepo:  afiladoRepo,
		sierraRepo:   sierraRepo,
		sucursalRepo: sucursalRepo,
		clienteRepo:  clienteRepo,
		catalogoRepo: catalogoRepo,
		bitacoraRepo: bitacoraRepo,
		enricher:     enricher,
		logger:       logger,
	}
}

func (s *AfiladoService) List(ctx context.Context, filters repository.AfiladoFilters) ([]domain.AfiladoDetalle, error) {
	scope := auth.ScopeFromContext(ctx)
	if scope.Restricted && len(scope.SucursalIDs) == 0 {
		return []domain.AfiladoDetalle{}, nil
	}
	if filters.SucursalID != nil && !scope.AllowsSucursal(*filters.SucursalID) {
		return nil, ErrPermissionDenied
	}
	if filters.ClienteID != nil && !scope.AllowsCliente(*filters.ClienteID) {
		return nil, ErrPermissionDenied
	}

	afilados, err := s.afiladoRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list afilados: %w", err)
	}
	return s.enricher.AfiladoDetalles(ctx, afilados)
}

// ListPendientes returns the open cycles visible to the caller, oldest
// first so the workshop queue reads top to bottom.
func (s *AfiladoService) ListPendientes(ctx context.Context) ([]domain.AfiladoDetalle, error) {
	scope := auth.ScopeFromContext(ctx)
	if scope.Restricted && len(scope.SucursalIDs) == 0 {
		return []domain.AfiladoDetalle{}, nil
	}

	afilados, err := s.afiladoRepo.List(ctx, repository.AfiladoFilters{
		Pendientes: true,
		Ascendente: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list afilados: %w", err)
	}
	return s.enricher.AfiladoDetalles(ctx, afilados)
}

// ListBySucursal returns the afilados registered at one sucursal.
func (s *AfiladoService) ListBySucursal(ctx context.Context, sucursalID int64) ([]domain.AfiladoDetalle, error) {
	scope := auth.ScopeFromContext(ctx)
	if !scope.AllowsSucursal(sucursalID) {
		return nil, ErrPermissionDenied
	}
	if _, err := s.sucursalRepo.GetByID(ctx, sucursalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load sucursal: %w", err)
	}

	afilados, err := s.afiladoRepo.List(ctx, repository.AfiladoFilters{SucursalID: &sucursalID})
	if err != nil {
		return nil, fmt.Errorf("failed to list afilados: %w", err)
	}
	return s.enricher.AfiladoDetalles(ctx, afilados)
}

// ListByCliente returns the afilados across every sucursal of a
// cliente.
func (s *AfiladoService) ListByCliente(ctx context.Context, clienteID int64) ([]domain.AfiladoDetalle, error) {
	scope := auth.ScopeFromContext(ctx)
	if !scope.AllowsCliente(clienteID) {
		return nil, ErrPermissionDenied
	}
	if _, err := s.clienteRepo.GetByID(ctx, clienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cliente: %w", err)
	}

	afilados, err := s.afiladoRepo.List(ctx, repository.AfiladoFilters{ClienteID: &clienteID})
	if err != nil {
		return nil, fmt.Errorf("failed to list afilados: %w", err)
	}
	return s.enricher.AfiladoDetalles(ctx, afilados)
}

func (s *AfiladoService) GetByID(ctx context.Context, id int64) (*domain.AfiladoDetalle, error) {
	afilado, err := s.afiladoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load afilado: %w", err)
	}

	if err := s.checkSierraScope(ctx, afilado.SierraID); err != nil {
		return nil, err
	}

	detalles, err := s.enricher.AfiladoDetalles(ctx, []domain.Afilado{*afilado})
	if err != nil {
		return nil, err
	}
	return &detalles[0], nil
}

// ListBySierra returns the sharpening history of one sierra.
func (s *AfiladoService) ListBySierra(ctx context.Context, sierraID int64) ([]domain.AfiladoDetalle, error) {
	if err := s.checkSierraScope(ctx, sierraID); err != nil {
		return nil, err
	}

	afilados, err := s.afiladoRepo.ListBySierra(ctx, sierraID)
	if err != nil {
		return nil, fmt.Errorf("failed to list afilados: %w", err)
	}
	return s.enricher.AfiladoDetalles(ctx, afilados)
}

func (s *AfiladoService) checkSierraScope(ctx context.Context, sierraID int64) error {
	sierra, err := s.sierraRepo.GetByID(ctx, sierraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load sierra: %w", err)
	}
	scope := auth.ScopeFromContext(ctx)
	if !scope.AllowsSucursal(sierra.SucursalID) {
		return ErrPermissionDenied
	}
	return nil
}

// Create opens a sharpening cycle. The sierra must be visible, not
// retired, and must not already have an open cycle. Marking the cycle
// as the last one retires the sierra; if that second write fails the
// afilado row stays, flagged, and the inconsistency is logged.
func (s *AfiladoService) Create(ctx context.Context, req *domain.CreateAfiladoRequest) (*domain.AfiladoDetalle, error) {
	caller, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	sierra, err := s.sierraRepo.GetByID(ctx, req.SierraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load sierra: %w", err)
	}

	scope := auth.ScopeFromContext(ctx)
	if !scope.AllowsSucursal(sierra.SucursalID) {
		return nil, ErrPermissionDenied
	}

	obsoleto, err := s.catalogoRepo.GetEstadoSierraByNombre(ctx, domain.EstadoObsoleto)
	if err != nil {
		return nil, fmt.Errorf("failed to load estado %q: %w", domain.EstadoObsoleto, err)
	}
	if sierra.EstadoID == obsoleto.ID {
		return nil, ErrSierraObsoleta
	}

	if _, err := s.catalogoRepo.GetTipoAfiladoByID(ctx, req.TipoAfiladoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInput
		}
		return nil, fmt.Errorf("failed to load tipo_afilado: %w", err)
	}

	open, err := s.afiladoRepo.HasOpenCycle(ctx, req.SierraID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open cycles: %w", err)
	}
	if open {
		return nil, ErrConflict
	}

	afilado := &domain.Afilado{
		SierraID:      req.SierraID,
		TipoAfiladoID: req.TipoAfiladoID,
		UsuarioID:     caller.UserID,
		FechaAfilado:  time.Now().UTC(),
		Observaciones: req.Observaciones,
		UltimoAfilado: req.UltimoAfilado,
	}
	if err := s.afiladoRepo.Create(ctx, afilado); err != nil {
		return nil, fmt.Errorf("failed to create afilado: %w", err)
	}

	if req.UltimoAfilado {
		if err := s.sierraRepo.SetEstado(ctx, sierra.ID, obsoleto.ID); err != nil {
			s.logger.Error("failed to retire sierra after final sharpening",
				zap.Int64("sierra_id", sierra.ID),
				zap.Int64("afilado_id", afilado.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("afilado created",
		zap.Int64("afilado_id", afilado.ID),
		zap.Int64("sierra_id", afilado.SierraID),
		zap.Bool("ultimo_afilado", afilado.UltimoAfilado),
	)

	detalles, err := s.enricher.AfiladoDetalles(ctx, []domain.Afilado{*afilado})
	if err != nil {
		return nil, err
	}
	return &detalles[0], nil
}

// RegistrarSalida writes the departure date of one afilado. The field
// is write-once.
func (s *AfiladoService) RegistrarSalida(ctx context.Context, id int64) (*domain.AfiladoDetalle, error) {
	afilado, err := s.afiladoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load afilado: %w", err)
	}

	if err := s.checkSierraScope(ctx, afilado.SierraID); err != nil {
		return nil, err
	}

	if afilado.FechaSalida != nil {
		return nil, ErrSalidaRegistrada
	}

	salida := time.Now().UTC()
	if err := s.afiladoRepo.SetSalida(ctx, id, salida); err != nil {
		return nil, fmt.Errorf("failed to register salida: %w", err)
	}
	afilado.FechaSalida = &salida

	detalles, err := s.enricher.AfiladoDetalles(ctx, []domain.Afilado{*afilado})
	if err != nil {
		return nil, err
	}
	return &detalles[0], nil
}

// SalidaMasiva closes a batch of cycles in one stroke. Ids that are
// unknown or already closed are skipped; the caller gets the count
// actually closed. A restricted caller must be allowed every pending
// target or the whole batch is rejected.
func (s *AfiladoService) SalidaMasiva(ctx context.Context, ids []int64) (int, error) {
	caller, ok := auth.FromContext(ctx)
	if !ok {
		return 0, ErrUnauthorized
	}

	ids = distinctInt64(ids)
	afilados, err := s.afiladoRepo.GetByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to load afilados: %w", err)
	}

	pendientes := make([]domain.Afilado, 0, len(afilados))
	for _, a := range afilados {
		if a.FechaSalida == nil {
			pendientes = append(pendientes, a)
		}
	}
	if len(pendientes) == 0 {
		return 0, ErrNotFound
	}

	scope := auth.ScopeFromContext(ctx)
	if scope.Restricted {
		sierraIDs := make([]int64, 0, len(pendientes))
		for _, a := range pendientes {
			sierraIDs = append(sierraIDs, a.SierraID)
		}
		sierras, err := s.sierraRepo.GetByIDs(ctx, distinctInt64(sierraIDs))
		if err != nil {
			return 0, fmt.Errorf("failed to load sierras: %w", err)
		}
		sierraByID := make(map[int64]domain.Sierra, len(sierras))
		for _, si := range sierras {
			sierraByID[si.ID] = si
		}
		for _, a := range pendientes {
			si, ok := sierraByID[a.SierraID]
			if !ok || !scope.AllowsSucursal(si.SucursalID) {
				return 0, &BatchScopeError{AfiladoID: a.ID}
			}
		}
	}

	pendienteIDs := make([]int64, 0, len(pendientes))
	for _, a := range pendientes {
		pendienteIDs = append(pendienteIDs, a.ID)
	}

	salida := time.Now().UTC()
	if err := s.afiladoRepo.SetSalidaBatch(ctx, pendienteIDs, salida); err != nil {
		return 0, fmt.Errorf("failed to register salidas: %w", err)
	}

	s.registrarBitacora(ctx, caller, "salida_masiva", "afilados",
		fmt.Sprintf("Salida masiva de %d afilados", len(pendienteIDs)),
		map[string]interface{}{"afilado_ids": pendienteIDs, "fecha_salida": salida})

	s.logger.Info("salida masiva registered",
		zap.String("user_id", caller.UserID.String()),
		zap.Int("count", len(pendienteIDs)),
	)
	return len(pendienteIDs), nil
}

// UltimoAfiladoMasivo marks a batch of afilados as the final cycle of
// their sierras and retires those sierras. If retiring fails, the mark
// is rolled back so the batch stays all-or-nothing.
func (s *AfiladoService) UltimoAfiladoMasivo(ctx context.Context, ids []int64) (*domain.UltimoAfiladoMasivoResult, error) {
	caller, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	ids = distinctInt64(ids)
	afilados, err := s.afiladoRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load afilados: %w", err)
	}

	if len(afilados) == 0 {
		return nil, ErrNotFound
	}
	if len(afilados) != len(ids) {
		found := make(map[int64]bool, len(afilados))
		for _, a := range afilados {
			found[a.ID] = true
		}
		var missing []int64
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, &BatchMissingError{IDs: missing}
	}

	var yaFinales []int64
	for _, a := range afilados {
		if a.UltimoAfilado {
			yaFinales = append(yaFinales, a.ID)
		}
	}
	if len(yaFinales) > 0 {
		return nil, &BatchAlreadyFinalError{IDs: yaFinales}
	}

	sierraIDs := make([]int64, 0, len(afilados))
	for _, a := range afilados {
		sierraIDs = append(sierraIDs, a.SierraID)
	}
	sierraIDs = distinctInt64(sierraIDs)

	obsoleto, err := s.catalogoRepo.GetEstadoSierraByNombre(ctx, domain.EstadoObsoleto)
	if err != nil {
		return nil, fmt.Errorf("failed to load estado %q: %w", domain.EstadoObsoleto, err)
	}

	if err := s.afiladoRepo.MarkUltimoBatch(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to mark afilados: %w", err)
	}

	if err := s.sierraRepo.SetEstadoBatch(ctx, sierraIDs, obsoleto.ID); err != nil {
		if undoErr := s.afiladoRepo.UnmarkUltimoBatch(ctx, ids); undoErr != nil {
			s.logger.Error("failed to roll back final-mark after sierra update failure",
				zap.Int64s("afilado_ids", ids),
				zap.Error(undoErr),
			)
		}
		return nil, fmt.Errorf("failed to retire sierras: %w", err)
	}

	s.registrarBitacora(ctx, caller, "ultimo_afilado_masivo", "afilados",
		fmt.Sprintf("Último afilado masivo de %d afilados", len(ids)),
		map[string]interface{}{"afilado_ids": ids, "sierra_ids": sierraIDs})

	s.logger.Info("ultimo afilado masivo applied",
		zap.String("user_id", caller.UserID.String()),
		zap.Int("afilados", len(ids)),
		zap.Int("sierras", len(sierraIDs)),
	)

	return &domain.UltimoAfiladoMasivoResult{
		Actualizados: len(ids),
		AfiladoIDs:   ids,
		SierraIDs:    sierraIDs,
	}, nil
}

// registrarBitacora writes an audit row. Failures are logged and
// swallowed; the audit trail never fails the operation it records.
func (s *AfiladoService) registrarBitacora(ctx context.Context, caller *auth.UserContext, accion, tabla, descripcion string, detalles map[string]interface{}) {
	raw, err := json.Marshal(detalles)
	if err != nil {
		raw = []byte("{}")
	}
	entry := &domain.Bitacora{
		UsuarioID:   caller.UserID,
		Accion:      accion,
		Tabla:       tabla,
		Descripcion: descripcion,
		Detalles:    string(raw),
	}
	if err := s.bitacoraRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write bitacora entry",
			zap.String("accion", accion),
			zap.Error(err),
		)
	}
}
