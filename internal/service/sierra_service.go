package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/auth"
	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/repository"
)

type SierraService struct {
	sierraRepo   *repository.SierraRepository
	sucursalRepo *repository.SucursalRepository
	clienteRepo  *repository.ClienteRepository
	afiladoRepo  *repository.AfiladoRepository
	catalogoRepo *repository.CatalogoRepository
	enricher     *Enricher
	logger       *zap.Logger
}

func NewSierraService(
	sierraRepo *repository.SierraRepository,
	sucursalRepo *repository.SucursalRepository,
	clienteRepo *repository.ClienteRepository,
	afiladoRepo *repository.AfiladoRepository,
	catalogoRepo *repository.CatalogoRepository,
	enricher *Enricher,
	logger *zap.Logger,
) *SierraService {
	return &SierraService{
		sierraRepo:   sierraRepo,
		sucursalRepo: sucursalRepo,
		clienteRepo:  clienteRepo,
		afiladoRepo:  afiladoRepo,
		catalogoRepo: catalogoRepo,
		enricher:     enricher,
		logger:       logger,
	}
}

func (s *SierraService) List(ctx context.Context) ([]domain.SierraDetalle, error) {
	scope := auth.ScopeFromContext(ctx)
	if scope.Restricted && len(scope.SucursalIDs) == 0 {
		return []domain.SierraDetalle{}, nil
	}

	sierras, err := s.sierraRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sierras: %w", err)
	}
	return s.enricher.SierraDetalles(ctx, sierras)
}

// GetByID returns one sierra enriched with its sharpening history.
func (s *SierraService) GetByID(ctx context.Context, id int64) (*domain.SierraDetalle, error) {
	sierra, err := s.sierraRepo.GetByID(ctx, id)
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

	return s.detalleConHistorial(ctx, sierra)
}

// GetByCodigo resolves a sierra by barcode. This is the scanner entry
// point; the visibility check happens after the lookup so a hidden
// sierra yields 403 rather than 404.
func (s *SierraService) GetByCodigo(ctx context.Context, codigo string) (*domain.SierraDetalle, error) {
	sierra, err := s.sierraRepo.GetByCodigo(ctx, codigo)
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

	return s.detalleConHistorial(ctx, sierra)
}

// ListBySucursal returns the sierras of one sucursal. The route
// middleware has already verified access to the sucursal.
func (s *SierraService) ListBySucursal(ctx context.Context, sucursalID int64) ([]domain.SierraDetalle, error) {
	if _, err := s.sucursalRepo.GetByID(ctx, sucursalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load sucursal: %w", err)
	}

	sierras, err := s.sierraRepo.ListBySucursal(ctx, sucursalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sierras: %w", err)
	}
	return s.enricher.SierraDetalles(ctx, sierras)
}

// ListByCliente returns the sierras of every sucursal of one cliente.
func (s *SierraService) ListByCliente(ctx context.Context, clienteID int64) ([]domain.SierraDetalle, error) {
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

	sucursales, err := s.sucursalRepo.ListByCliente(ctx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sucursales: %w", err)
	}
	sucursalIDs := make([]int64, 0, len(sucursales))
	for _, suc := range sucursales {
		sucursalIDs = append(sucursalIDs, suc.ID)
	}

	sierras, err := s.sierraRepo.ListBySucursales(ctx, sucursalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list sierras: %w", err)
	}
	return s.enricher.SierraDetalles(ctx, sierras)
}

func (s *SierraService) detalleConHistorial(ctx context.Context, sierra *domain.Sierra) (*domain.SierraDetalle, error) {
	detalles, err := s.enricher.SierraDetalles(ctx, []domain.Sierra{*sierra})
	if err != nil {
		return nil, err
	}
	detalle := detalles[0]

	afilados, err := s.afiladoRepo.ListBySierra(ctx, sierra.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load afilados: %w", err)
	}
	historial, err := s.enricher.AfiladoConTipos(ctx, afilados)
	if err != nil {
		return nil, err
	}
	detalle.Afilados = historial
	return &detalle, nil
}

// Create registers a sierra. The barcode must be free and the sucursal
// visible to the caller. New sierras start in the "En uso" state.
func (s *SierraService) Create(ctx context.Context, req *domain.CreateSierraRequest) (*domain.SierraDetalle, error) {
	scope := auth.ScopeFromContext(ctx)
	if !scope.AllowsSucursal(req.SucursalID) {
		return nil, ErrPermissionDenied
	}

	if _, err := s.sucursalRepo.GetByID(ctx, req.SucursalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInput
		}
		return nil, fmt.Errorf("failed to load sucursal: %w", err)
	}
	if _, err := s.catalogoRepo.GetTipoSierraByID(ctx, req.TipoSierraID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInput
		}
		return nil, fmt.Errorf("failed to load tipo_sierra: %w", err)
	}

	taken, err := s.sierraRepo.CodigoExists(ctx, req.Codigo, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check barcode: %w", err)
	}
	if taken {
		return nil, ErrCodigoTaken
	}

	enUso, err := s.catalogoRepo.GetEstadoSierraByNombre(ctx, domain.EstadoEnUso)
	if err != nil {
		return nil, fmt.Errorf("failed to load estado %q: %w", domain.EstadoEnUso, err)
	}

	sierra := &domain.Sierra{
		CodigoBarra:   req.Codigo,
		SucursalID:    req.SucursalID,
		TipoSierraID:  req.TipoSierraID,
		EstadoID:      enUso.ID,
		FechaRegistro: time.Now().UTC(),
		Activo:        true,
	}
	if err := s.sierraRepo.Create(ctx, sierra); err != nil {
		return nil, fmt.Errorf("failed to create sierra: %w", err)
	}

	s.logger.Info("sierra created",
		zap.Int64("sierra_id", sierra.ID),
		zap.String("codigo_barra", sierra.CodigoBarra),
		zap.Int64("sucursal_id", sierra.SucursalID),
	)

	detalles, err := s.enricher.SierraDetalles(ctx, []domain.Sierra{*sierra})
	if err != nil {
		return nil, err
	}
	return &detalles[0], nil
}

// Update changes only the fields present in the request.
func (s *SierraService) Update(ctx context.Context, id int64, req *domain.UpdateSierraRequest) (*domain.SierraDetalle, error) {
	sierra, err := s.sierraRepo.GetByID(ctx, id)
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

	if req.Codigo != nil && *req.Codigo != sierra.CodigoBarra {
		taken, err := s.sierraRepo.CodigoExists(ctx, *req.Codigo, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check barcode: %w", err)
		}
		if taken {
			return nil, ErrCodigoTaken
		}
		sierra.CodigoBarra = *req.Codigo
	}
	if req.SucursalID != nil && *req.SucursalID != sierra.SucursalID {
		if !scope.AllowsSucursal(*req.SucursalID) {
			return nil, ErrPermissionDenied
		}
		if _, err := s.sucursalRepo.GetByID(ctx, *req.SucursalID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidInput
			}
			return nil, fmt.Errorf("failed to load sucursal: %w", err)
		}
		sierra.SucursalID = *req.SucursalID
	}
	if req.TipoSierraID != nil {
		if _, err := s.catalogoRepo.GetTipoSierraByID(ctx, *req.TipoSierraID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidInput
			}
			return nil, fmt.Errorf("failed to load tipo_sierra: %w", err)
		}
		sierra.TipoSierraID = *req.TipoSierraID
	}
	if req.EstadoID != nil {
		sierra.EstadoID = *req.EstadoID
	}
	if req.Activo != nil {
		sierra.Activo = *req.Activo
	}

	if err := s.sierraRepo.Update(ctx, sierra); err != nil {
		return nil, fmt.Errorf("failed to update sierra: %w", err)
	}

	detalles, err := s.enricher.SierraDetalles(ctx, []domain.Sierra{*sierra})
	if err != nil {
		return nil, err
	}
	return &detalles[0], nil
}

// Delete refuses while sharpening history exists.
func (s *SierraService) Delete(ctx context.Context, id int64) error {
	sierra, err := s.sierraRepo.GetByID(ctx, id)
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

	count, err := s.sierraRepo.CountAfilados(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count afilados: %w", err)
	}
	if count > 0 {
		return ErrHasDependents
	}

	if err := s.sierraRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete sierra: %w", err)
	}

	s.logger.Info("sierra deleted", zap.Int64("sierra_id", id))
	return nil
}
