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

type ClienteService struct {
	clienteRepo  *repository.ClienteRepository
	sucursalRepo *repository.SucursalRepository
	logger       *zap.Logger
}

func NewClienteService(
	clienteRepo *repository.ClienteRepository,
	sucursalRepo *repository.SucursalRepository,
	logger *zap.Logger,
) *ClienteService {
	return &ClienteService{
		clienteRepo:  clienteRepo,
		sucursalRepo: sucursalRepo,
		logger:       logger,
	}
}

// List narrows silently to the caller's scope. A restricted caller
// with no grants gets an empty list, not an error.
func (s *ClienteService) List(ctx context.Context) ([]domain.Cliente, error) {
	scope := auth.ScopeFromContext(ctx)
	if scope.Restricted && len(scope.ClienteIDs) == 0 {
		return []domain.Cliente{}, nil
	}

	clientes, err := s.clienteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clientes: %w", err)
	}
	if clientes == nil {
		clientes = []domain.Cliente{}
	}
	return clientes, nil
}

// GetByID denies explicitly when the cliente exists outside the
// caller's scope.
func (s *ClienteService) GetByID(ctx context.Context, id int64) (*domain.ClienteConSucursales, error) {
	scope := auth.ScopeFromContext(ctx)
	if !scope.AllowsCliente(id) {
		return nil, ErrPermissionDenied
	}

	cliente, err := s.clienteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cliente: %w", err)
	}

	sucursales, err := s.sucursalRepo.ListByCliente(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load sucursales: %w", err)
	}
	if sucursales == nil {
		sucursales = []domain.Sucursal{}
	}

	return &domain.ClienteConSucursales{Cliente: *cliente, Sucursales: sucursales}, nil
}

// Sucursales returns the branches of one cliente, scoped to the
// caller's grants.
func (s *ClienteService) Sucursales(ctx context.Context, clienteID int64) ([]domain.Sucursal, error) {
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
		return nil, fmt.Errorf("failed to load sucursales: %w", err)
	}
	if sucursales == nil {
		sucursales = []domain.Sucursal{}
	}
	return sucursales, nil
}

func (s *ClienteService) Create(ctx context.Context, req *domain.CreateClienteRequest) (*domain.Cliente, error) {
	cliente := &domain.Cliente{
		RazonSocial: req.RazonSocial,
		RUT:         req.RUT,
		Direccion:   req.Direccion,
		Telefono:    req.Telefono,
		Email:       req.Email,
	}
	if err := s.clienteRepo.Create(ctx, cliente); err != nil {
		return nil, fmt.Errorf("failed to create cliente: %w", err)
	}

	s.logger.Info("cliente created",
		zap.Int64("cliente_id", cliente.ID),
		zap.String("razon_social", cliente.RazonSocial),
	)
	return cliente, nil
}

func (s *ClienteService) Update(ctx context.Context, id int64, req *domain.CreateClienteRequest) (*domain.Cliente, error) {
	cliente, err := s.clienteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cliente: %w", err)
	}

	cliente.RazonSocial = req.RazonSocial
	cliente.RUT = req.RUT
	cliente.Direccion = req.Direccion
	cliente.Telefono = req.Telefono
	cliente.Email = req.Email

	if err := s.clienteRepo.Update(ctx, cliente); err != nil {
		return nil, fmt.Errorf("failed to update cliente: %w", err)
	}
	return cliente, nil
}

// Delete refuses while the cliente still has sucursales.
func (s *ClienteService) Delete(ctx context.Context, id int64) error {
	if _, err := s.clienteRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load cliente: %w", err)
	}

	count, err := s.clienteRepo.CountSucursales(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count sucursales: %w", err)
	}
	if count > 0 {
		return ErrHasDependents
	}

	if err := s.clienteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete cliente: %w", err)
	}

	s.logger.Info("cliente deleted", zap.Int64("cliente_id", id))
	return nil
}
