package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
)

type BitacoraRepository struct {
	db *gorm.DB
}

func NewBitacoraRepository(db *gorm.DB) *BitacoraRepository {
	return &BitacoraRepository{db: db}
}

func (r *BitacoraRepository) Create(ctx context.Context, entry *domain.Bitacora) error {
	if entry.Fecha.IsZero() {
		entry.Fecha = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *BitacoraRepository) List(ctx context.Context, limit int) ([]domain.Bitacora, error) {
	var entries []domain.Bitacora
	query := r.db.WithContext(ctx).Order("fecha DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}
