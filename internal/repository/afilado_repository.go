package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
)

// AfiladoFilters narrows afilado listings. Nil fields are ignored.
type AfiladoFilters struct {
	Desde      *time.Time
	Hasta      *time.Time
	Pendientes bool
	SucursalID *int64
	ClienteID  *int64
	Ascendente bool
}

type AfiladoRepository struct {
	db *gorm.DB
}

func NewAfiladoRepository(db *gorm.DB) *AfiladoRepository {
	return &AfiladoRepository{db: db}
}

func (r *AfiladoRepository) Create(ctx context.Context, afilado *domain.Afilado) error {
	return r.db.WithContext(ctx).Create(afilado).Error
}

func (r *AfiladoRepository) GetByID(ctx context.Context, id int64) (*domain.Afilado, error) {
	var afilado domain.Afilado
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&afilado).Error
	if err != nil {
		return nil, err
	}
	return &afilado, nil
}

func (r *AfiladoRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Afilado, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var afilados []domain.Afilado
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&afilados).Error
	return afilados, err
}

func (r *AfiladoRepository) Update(ctx context.Context, afilado *domain.Afilado) error {
	return r.db.WithContext(ctx).Save(afilado).Error
}

// List returns afilados matching the filters, newest first, with the
// caller's sucursal scope applied through the owning sierra.
func (r *AfiladoRepository) List(ctx context.Context, filters AfiladoFilters) ([]domain.Afilado, error) {
	var afilados []domain.Afilado

	query := r.db.WithContext(ctx).Model(&domain.Afilado{}).
		Joins("JOIN sierras ON sierras.id = afilados.sierra_id")
	query = ApplySucursalScopeWithColumn(ctx, query, "sierras.sucursal_id")

	if filters.Desde != nil {
		query = query.Where("afilados.fecha_afilado >= ?", *filters.Desde)
	}
	if filters.Hasta != nil {
		query = query.Where("afilados.fecha_afilado <= ?", *filters.Hasta)
	}
	if filters.Pendientes {
		query = query.Where("afilados.fecha_salida IS NULL")
	}
	if filters.SucursalID != nil {
		query = query.Where("sierras.sucursal_id = ?", *filters.SucursalID)
	}
	if filters.ClienteID != nil {
		query = query.Joins("JOIN sucursales ON sucursales.id = sierras.sucursal_id").
			Where("sucursales.cliente_id = ?", *filters.ClienteID)
	}

	order := "afilados.fecha_afilado DESC, afilados.id DESC"
	if filters.Ascendente {
		order = "afilados.fecha_afilado ASC, afilados.id ASC"
	}
	err := query.Order(order).Find(&afilados).Error
	return afilados, err
}

// ListBySierra returns the sharpening history of one sierra.
func (r *AfiladoRepository) ListBySierra(ctx context.Context, sierraID int64) ([]domain.Afilado, error) {
	var afilados []domain.Afilado
	err := r.db.WithContext(ctx).Where("sierra_id = ?", sierraID).
		Order("fecha_afilado DESC, id DESC").Find(&afilados).Error
	return afilados, err
}

// HasOpenCycle reports whether a sierra already has an afilado without
// a registered salida.
func (r *AfiladoRepository) HasOpenCycle(ctx context.Context, sierraID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Afilado{}).
		Where("sierra_id = ? AND fecha_salida IS NULL", sierraID).Count(&count).Error
	return count > 0, err
}

// SetSalida writes fecha_salida on one afilado.
func (r *AfiladoRepository) SetSalida(ctx context.Context, id int64, salida time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Afilado{}).
		Where("id = ?", id).Updates(map[string]interface{}{
		"fecha_salida": salida,
		"updated_at":   time.Now().UTC(),
	}).Error
}

// SetSalidaBatch writes fecha_salida on several afilados at once.
func (r *AfiladoRepository) SetSalidaBatch(ctx context.Context, ids []int64, salida time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Afilado{}).
		Where("id IN ?", ids).Updates(map[string]interface{}{
		"fecha_salida": salida,
		"updated_at":   time.Now().UTC(),
	}).Error
}

// MarkUltimoBatch flags several afilados as the final sharpening of
// their sierra.
func (r *AfiladoRepository) MarkUltimoBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Afilado{}).
		Where("id IN ?", ids).Updates(map[string]interface{}{
		"ultimo_afilado": true,
		"updated_at":     time.Now().UTC(),
	}).Error
}

// UnmarkUltimoBatch reverts MarkUltimoBatch. Used as compensation when
// a later step of a batch operation fails.
func (r *AfiladoRepository) UnmarkUltimoBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Afilado{}).
		Where("id IN ?", ids).Updates(map[string]interface{}{
		"ultimo_afilado": false,
		"updated_at":     time.Now().UTC(),
	}).Error
}
