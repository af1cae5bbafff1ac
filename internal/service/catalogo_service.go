package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/repository"
)

// CatalogoService serves the reference tables. Listings are open to
// any authenticated user; writes are guarded at the route level.
type CatalogoService struct {
	catalogoRepo *repository.CatalogoRepository
	logger       *zap.Logger
}

func NewCatalogoService(catalogoRepo *repository.CatalogoRepository, logger *zap.Logger) *CatalogoService {
	return &CatalogoService{catalogoRepo: catalogoRepo, logger: logger}
}

func (s *CatalogoService) ListRoles(ctx context.Context) ([]domain.Rol, error) {
	roles, err := s.catalogoRepo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (s *CatalogoService) ListTiposSierra(ctx context.Context) ([]domain.TipoSierra, error) {
	tipos, err := s.catalogoRepo.ListTiposSierra(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tipos_sierra: %w", err)
	}
	return tipos, nil
}

func (s *CatalogoService) CreateTipoSierra(ctx context.Context, req *domain.CreateTipoSierraRequest) (*domain.TipoSierra, error) {
	tipo := &domain.TipoSierra{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if err := s.catalogoRepo.CreateTipoSierra(ctx, tipo); err != nil {
		return nil, fmt.Errorf("failed to create tipo_sierra: %w", err)
	}

	s.logger.Info("tipo_sierra created",
		zap.Int64("tipo_sierra_id", tipo.ID),
		zap.String("nombre", tipo.Nombre),
	)
	return tipo, nil
}

func (s *CatalogoService) UpdateTipoSierra(ctx context.Context, id int64, req *domain.UpdateTipoSierraRequest) (*domain.TipoSierra, error) {
	tipo, err := s.catalogoRepo.GetTipoSierraByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load tipo_sierra: %w", err)
	}

	tipo.Nombre = req.Nombre
	tipo.Descripcion = req.Descripcion
	if req.Activo != nil {
		tipo.Activo = *req.Activo
	}

	if err := s.catalogoRepo.UpdateTipoSierra(ctx, tipo); err != nil {
		return nil, fmt.Errorf("failed to update tipo_sierra: %w", err)
	}
	return tipo, nil
}

func (s *CatalogoService) ListEstadosSierra(ctx context.Context) ([]domain.EstadoSierra, error) {
	estados, err := s.catalogoRepo.ListEstadosSierra(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list estados_sierra: %w", err)
	}
	return estados, nil
}

func (s *CatalogoService) ListTiposAfilado(ctx context.Context) ([]domain.TipoAfilado, error) {
	tipos, err := s.catalogoRepo.ListTiposAfilado(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tipos_afilado: %w", err)
	}
	return tipos, nil
}
