package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
)

type SucursalRepository struct {
	db *gorm.DB
}

func NewSucursalRepository(db *gorm.DB) *SucursalRepository {
	return &SucursalRepository{db: db}
}

func (r *SucursalRepository) Create(ctx context.Context, sucursal *domain.Sucursal) error {
	return r.db.WithContext(ctx).Create(sucursal).Error
}

func (r *SucursalRepository) GetByID(ctx context.Context, id int64) (*domain.Sucursal, error) {
	var sucursal domain.Sucursal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sucursal).Error
	if err != nil {
		return nil, err
	}
	return &sucursal, nil
}

func (r *SucursalRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Sucursal, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var sucursales []domain.Sucursal
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&sucursales).Error
	return sucursales, err
}

func (r *SucursalRepository) Update(ctx context.Context, sucursal *domain.Sucursal) error {
	return r.db.WithContext(ctx).Save(sucursal).Error
}

func (r *SucursalRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Sucursal{}, "id = ?", id).Error
}

// List returns the sucursales visible to the caller, scope applied.
func (r *SucursalRepository) List(ctx context.Context) ([]domain.Sucursal, error) {
	var sucursales []domain.Sucursal
	query := r.db.WithContext(ctx).Model(&domain.Sucursal{})
	query = ApplySucursalScopeWithColumn(ctx, query, "id")
	err := query.Order("nombre ASC").Find(&sucursales).Error
	return sucursales, err
}

// ListByCliente returns the sucursales of one cliente, scope applied.
func (r *SucursalRepository) ListByCliente(ctx context.Context, clienteID int64) ([]domain.Sucursal, error) {
	var sucursales []domain.Sucursal
	query := r.db.WithContext(ctx).Model(&domain.Sucursal{}).
		Where("cliente_id = ?", clienteID)
	query = ApplySucursalScopeWithColumn(ctx, query, "id")
	err := query.Order("nombre ASC").Find(&sucursales).Error
	return sucursales, err
}

// CountSierras returns how many sierras are registered at a sucursal.
// Used to refuse deletion while saws exist.
func (r *SucursalRepository) CountSierras(ctx context.Context, sucursalID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Sierra{}).
		Where("sucursal_id = ?", sucursalID).Count(&count).Error
	return count, err
}
