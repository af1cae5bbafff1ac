package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
)

type ClienteRepository struct {
	db *gorm.DB
}

func NewClienteRepository(db *gorm.DB) *ClienteRepository {
	return &ClienteRepository{db: db}
}

func (r *ClienteRepository) Create(ctx context.Context, cliente *domain.Cliente) error {
	return r.db.WithContext(ctx).Create(cliente).Error
}

func (r *ClienteRepository) GetByID(ctx context.Context, id int64) (*domain.Cliente, error) {
	var cliente domain.Cliente
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cliente).Error
	if err != nil {
		return nil, err
	}
	return &cliente, nil
}

func (r *ClienteRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Cliente, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var clientes []domain.Cliente
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&clientes).Error
	return clientes, err
}

func (r *ClienteRepository) Update(ctx context.Context, cliente *domain.Cliente) error {
	return r.db.WithContext(ctx).Save(cliente).Error
}

func (r *ClienteRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Cliente{}, "id = ?", id).Error
}

// List returns the clientes visible to the caller, scope applied.
func (r *ClienteRepository) List(ctx context.Context) ([]domain.Cliente, error) {
	var clientes []domain.Cliente
	query := r.db.WithContext(ctx).Model(&domain.Cliente{})
	query = ApplyClienteScope(ctx, query)
	err := query.Order("razon_social ASC").Find(&clientes).Error
	return clientes, err
}

// CountSucursales returns how many sucursales hang off a cliente. Used
// to refuse deletion while branches exist.
func (r *ClienteRepository) CountSucursales(ctx context.Context, clienteID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Sucursal{}).
		Where("cliente_id = ?", clienteID).Count(&count).Error
	return count, err
}
