package service_test

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/identity"
	"github.com/austech/sigo-api/internal/repository"
	"github.com/austech/sigo-api/internal/service"
)

func newEnricher(db *gorm.DB) *service.Enricher {
	return service.NewEnricher(
		repository.NewSierraRepository(db),
		repository.NewSucursalRepository(db),
		repository.NewClienteRepository(db),
		repository.NewCatalogoRepository(db),
		repository.NewUsuarioRepository(db),
		zap.NewNop(),
	)
}

func newClienteService(db *gorm.DB) *service.ClienteService {
	return service.NewClienteService(
		repository.NewClienteRepository(db),
		repository.NewSucursalRepository(db),
		zap.NewNop(),
	)
}

func newSucursalService(db *gorm.DB) *service.SucursalService {
	return service.NewSucursalService(
		repository.NewSucursalRepository(db),
		repository.NewClienteRepository(db),
		newEnricher(db),
		zap.NewNop(),
	)
}

func newSierraService(db *gorm.DB) *service.SierraService {
	return service.NewSierraService(
		repository.NewSierraRepository(db),
		repository.NewSucursalRepository(db),
		repository.NewClienteRepository(db),
		repository.NewAfiladoRepository(db),
		repository.NewCatalogoRepository(db),
		newEnricher(db),
		zap.NewNop(),
	)
}

func newAfiladoService(db *gorm.DB) *service.AfiladoService {
	return service.NewAfiladoService(
		repository.NewAfiladoRepository(db),
		repository.NewSierraRepository(db),
		repository.NewSucursalRepository(db),
		repository.NewClienteRepository(db),
		repository.NewCatalogoRepository(db),
		repository.NewBitacoraRepository(db),
		newEnricher(db),
		zap.NewNop(),
	)
}

func newUsuarioService(db *gorm.DB) *service.UsuarioService {
	return service.NewUsuarioService(
		repository.NewUsuarioRepository(db),
		repository.NewSucursalRepository(db),
		identity.NewGateway(db, 4, zap.NewNop()),
		zap.NewNop(),
	)
}
