package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
)

type SierraRepository struct {
	db *gorm.DB
}

func NewSierraRepository(db *gorm.DB) *SierraRepository {
	return &SierraRepository{db: db}
}

func (r *SierraRepository) Create(ctx context.Context, sierra *domain.Sierra) error {
	return r.db.WithContext(ctx).Create(sierra).Error
}

func (r *SierraRepository) GetByID(ctx context.Context, id int64) (*domain.Sierra, error) {
	var sierra domain.Sierra
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sierra).Error
	if err != nil {
		return nil, err
	}
	return &sierra, nil
}

func (r *SierraRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Sierra, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var sierras []domain.Sierra
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&sierras).Error
	return sierras, err
}

// GetByCodigo looks a sierra up by its barcode. The code is globally
// unique so at most one row matches.
func (r *SierraRepository) GetByCodigo(ctx context.Context, codigo string) (*domain.Sierra, error) {
	var sierra domain.Sierra
	err := r.db.WithContext(ctx).Where("codigo_barra = ?", codigo).First(&sierra).Error
	if err != nil {
		return nil, err
	}
	return &sierra, nil
}

func (r *SierraRepository) CodigoExists(ctx context.Context, codigo string, excludeID *int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Sierra{}).Where("codigo_barra = ?", codigo)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *SierraRepository) Update(ctx context.Context, sierra *domain.Sierra) error {
	return r.db.WithContext(ctx).Save(sierra).Error
}

func (r *SierraRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Sierra{}, "id = ?", id).Error
}

// List returns the sierras visible to the caller, scope applied.
func (r *SierraRepository) List(ctx context.Context) ([]domain.Sierra, error) {
	var sierras []domain.Sierra
	query := r.db.WithContext(ctx).Model(&domain.Sierra{})
	query = ApplySucursalScope(ctx, query)
	err := query.Order("fecha_registro DESC, id DESC").Find(&sierras).Error
	return sierras, err
}

// ListBySucursal returns the sierras of one sucursal. Access to the
// sucursal itself is checked before this is called.
func (r *SierraRepository) ListBySucursal(ctx context.Context, sucursalID int64) ([]domain.Sierra, error) {
	var sierras []domain.Sierra
	err := r.db.WithContext(ctx).Where("sucursal_id = ?", sucursalID).
		Order("fecha_registro DESC, id DESC").Find(&sierras).Error
	return sierras, err
}

// ListBySucursales returns the sierras registered at any of the given
// sucursales.
func (r *SierraRepository) ListBySucursales(ctx context.Context, sucursalIDs []int64) ([]domain.Sierra, error) {
	if len(sucursalIDs) == 0 {
		return nil, nil
	}
	var sierras []domain.Sierra
	err := r.db.WithContext(ctx).Where("sucursal_id IN ?", sucursalIDs).
		Order("fecha_registro DESC, id DESC").Find(&sierras).Error
	return sierras, err
}

// SetEstado updates only the estado of a sierra.
func (r *SierraRepository) SetEstado(ctx context.Context, sierraID, estadoID int64) error {
	return r.db.WithContext(ctx).Model(&domain.Sierra{}).
		Where("id = ?", sierraID).Update("estado_id", estadoID).Error
}

// SetEstadoBatch updates the estado of several sierras at once.
func (r *SierraRepository) SetEstadoBatch(ctx context.Context, sierraIDs []int64, estadoID int64) error {
	if len(sierraIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Sierra{}).
		Where("id IN ?", sierraIDs).Update("estado_id", estadoID).Error
}

// CountAfilados returns how many sharpening records a sierra has. Used
// to refuse deletion while history exists.
func (r *SierraRepository) CountAfilados(ctx context.Context, sierraID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Afilado{}).
		Where("sierra_id = ?", sierraID).Count(&count).Error
	return count, err
}
