package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
)

// CatalogoRepository serves the small reference tables: roles, saw
// types, saw states and sharpening types.
type CatalogoRepository struct {
	db *gorm.DB
}

func NewCatalogoRepository(db *gorm.DB) *CatalogoRepository {
	return &CatalogoRepository{db: db}
}

func (r *CatalogoRepository) ListRoles(ctx context.Context) ([]domain.Rol, error) {
	var roles []domain.Rol
	err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *CatalogoRepository) ListTiposSierra(ctx context.Context) ([]domain.TipoSierra, error) {
	var tipos []domain.TipoSierra
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&tipos).Error
	return tipos, err
}

func (r *CatalogoRepository) GetTipoSierraByID(ctx context.Context, id int64) (*domain.TipoSierra, error) {
	var tipo domain.TipoSierra
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tipo).Error
	if err != nil {
		return nil, err
	}
	return &tipo, nil
}

func (r *CatalogoRepository) GetTiposSierraByIDs(ctx context.Context, ids []int64) ([]domain.TipoSierra, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tipos []domain.TipoSierra
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tipos).Error
	return tipos, err
}

func (r *CatalogoRepository) CreateTipoSierra(ctx context.Context, tipo *domain.TipoSierra) error {
	return r.db.WithContext(ctx).Create(tipo).Error
}

func (r *CatalogoRepository) UpdateTipoSierra(ctx context.Context, tipo *domain.TipoSierra) error {
	return r.db.WithContext(ctx).Save(tipo).Error
}

func (r *CatalogoRepository) ListEstadosSierra(ctx context.Context) ([]domain.EstadoSierra, error) {
	var estados []domain.EstadoSierra
	err := r.db.WithContext(ctx).Order("id ASC").Find(&estados).Error
	return estados, err
}

func (r *CatalogoRepository) GetEstadosSierraByIDs(ctx context.Context, ids []int64) ([]domain.EstadoSierra, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var estados []domain.EstadoSierra
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&estados).Error
	return estados, err
}

// GetEstadoSierraByNombre resolves a state by name. The "En uso" and
// "Obsoleto" rows are seeded and must exist.
func (r *CatalogoRepository) GetEstadoSierraByNombre(ctx context.Context, nombre string) (*domain.EstadoSierra, error) {
	var estado domain.EstadoSierra
	err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&estado).Error
	if err != nil {
		return nil, err
	}
	return &estado, nil
}

func (r *CatalogoRepository) ListTiposAfilado(ctx context.Context) ([]domain.TipoAfilado, error) {
	var tipos []domain.TipoAfilado
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&tipos).Error
	return tipos, err
}

func (r *CatalogoRepository) GetTipoAfiladoByID(ctx context.Context, id int64) (*domain.TipoAfilado, error) {
	var tipo domain.TipoAfilado
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tipo).Error
	if err != nil {
		return nil, err
	}
	return &tipo, nil
}

func (r *CatalogoRepository) GetTiposAfiladoByIDs(ctx context.Context, ids []int64) ([]domain.TipoAfilado, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tipos []domain.TipoAfilado
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tipos).Error
	return tipos, err
}
