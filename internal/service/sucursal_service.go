package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/auth"
	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/repository"
)

type SucursalService struct {
	sucursalRepo *repository.SucursalRepository
	clienteRepo  *repository.ClienteRepository
	enricher     *Enricher
	logger       *zap.Logger
}

func NewSucursalService(
	sucursalRepo *repository.SucursalRepository,
	clienteRepo *repository.ClienteRepository,
	enricher *Enricher,
	logger *zap.Logger,
) *SucursalService {
	return &SucursalService{
		sucursalRepo: sucursalRepo,
		clienteRepo:  clienteRepo,
		enricher:     enricher,
		logger:       logger,
	}
}

// List returns the visible sucursales, each with a cliente summary.
func (s *SucursalService) List(ctx context.Context) ([]domain.SucursalConCliente, error) {
	scope := auth.ScopeFromContext(ctx)
	if scope.Restricted && len(scope.SucursalIDs) == 0 {
		return []domain.SucursalConCliente{}, nil
	}

	sucursales, err := s.sucursalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sucursales: %w", err)
	}
	return s.enricher.SucursalesConCliente(ctx, sucursales)
}

// GetByID returns one sucursal with its full cliente. Scope is already
// checked by the route middleware but is re-checked here so the
// service is safe to call directly.
func (s *SucursalService) GetByID(ctx context.Context, id int64) (*domain.SucursalDetalle, error) {
	scope := auth.ScopeFromContext(ctx)
	if !scope.AllowsSucursal(id) {
		return nil, ErrPermissionDenied
	}

	sucursal, err := s.sucursalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load sucursal: %w", err)
	}

	detalle := &domain.SucursalDetalle{Sucursal: *sucursal}
	cliente, err := s.clienteRepo.GetByID(ctx, sucursal.ClienteID)
	if err == nil {
		detalle.Cliente = cliente
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load cliente: %w", err)
	}
	return detalle, nil
}

// Vinculadas returns the sucursales granted to the caller with their
// cliente. Staff callers see every sucursal.
func (s *SucursalService) Vinculadas(ctx context.Context) ([]domain.SucursalVinculada, error) {
	scope := auth.ScopeFromContext(ctx)
	if scope.Restricted && len(scope.SucursalIDs) == 0 {
		return []domain.SucursalVinculada{}, nil
	}

	sucursales, err := s.sucursalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sucursales: %w", err)
	}

	clienteIDs := make([]int64, 0, len(sucursales))
	for _, su := range sucursales {
		clienteIDs = append(clienteIDs, su.ClienteID)
	}
	clientes, err := s.clienteRepo.GetByIDs(ctx, distinctInt64(clienteIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load clientes: %w", err)
	}
	clienteByID := make(map[int64]domain.Cliente, len(clientes))
	for _, c := range clientes {
		clienteByID[c.ID] = c
	}

	out := make([]domain.SucursalVinculada, len(sucursales))
	for i, su := range sucursales {
		item := domain.SucursalVinculada{Sucursal: su}
		if c, ok := clienteByID[su.ClienteID]; ok {
			cliente := c
			item.Clientes = &cliente
		}
		out[i] = item
	}
	return out, nil
}

func (s *SucursalService) Create(ctx context.Context, req *domain.CreateSucursalRequest) (*domain.Sucursal, error) {
	if _, err := s.clienteRepo.GetByID(ctx, req.ClienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInput
		}
		return nil, fmt.Errorf("failed to load cliente: %w", err)
	}

	sucursal := &domain.Sucursal{
		Nombre:    req.Nombre,
		Direccion: req.Direccion,
		Telefono:  req.Telefono,
		ClienteID: req.ClienteID,
	}
	if err := s.sucursalRepo.Create(ctx, sucursal); err != nil {
		return nil, fmt.Errorf("failed to create sucursal: %w", err)
	}

	s.logger.Info("sucursal created",
		zap.Int64("sucursal_id", sucursal.ID),
		zap.Int64("cliente_id", sucursal.ClienteID),
	)
	return sucursal, nil
}

func (s *SucursalService) Update(ctx context.Context, id int64, req *domain.CreateSucursalRequest) (*domain.Sucursal, error) {
	sucursal, err := s.sucursalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load sucursal: %w", err)
	}

	if req.ClienteID != sucursal.ClienteID {
		if _, err := s.clienteRepo.GetByID(ctx, req.ClienteID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidInput
			}
			return nil, fmt.Errorf("failed to load cliente: %w", err)
		}
	}

	sucursal.Nombre = req.Nombre
	sucursal.Direccion = req.Direccion
	sucursal.Telefono = req.Telefono
	sucursal.ClienteID = req.ClienteID

	if err := s.sucursalRepo.Update(ctx, sucursal); err != nil {
		return nil, fmt.Errorf("failed to update sucursal: %w", err)
	}
	return sucursal, nil
}

// Delete refuses while sierras remain registered at the sucursal.
func (s *SucursalService) Delete(ctx context.Context, id int64) error {
	if _, err := s.sucursalRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load sucursal: %w", err)
	}

	count, err := s.sucursalRepo.CountSierras(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count sierras: %w", err)
	}
	if count > 0 {
		return ErrHasDependents
	}

	if err := s.sucursalRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete sucursal: %w", err)
	}

	s.logger.Info("sucursal deleted", zap.Int64("sucursal_id", id))
	return nil
}
