package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
)

type UsuarioRepository struct {
	db *gorm.DB
}

func NewUsuarioRepository(db *gorm.DB) *UsuarioRepository {
	return &UsuarioRepository{db: db}
}

func (r *UsuarioRepository) Create(ctx context.Context, usuario *domain.Usuario) error {
	return r.db.WithContext(ctx).Create(usuario).Error
}

func (r *UsuarioRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Usuario, error) {
	var usuario domain.Usuario
	err := r.db.WithContext(ctx).Preload("Rol").Where("id = ?", id).First(&usuario).Error
	if err != nil {
		return nil, err
	}
	return &usuario, nil
}

func (r *UsuarioRepository) GetByEmail(ctx context.Context, email string) (*domain.Usuario, error) {
	var usuario domain.Usuario
	err := r.db.WithContext(ctx).Preload("Rol").Where("email = ?", email).First(&usuario).Error
	if err != nil {
		return nil, err
	}
	return &usuario, nil
}

func (r *UsuarioRepository) Update(ctx context.Context, usuario *domain.Usuario) error {
	return r.db.WithContext(ctx).Save(usuario).Error
}

func (r *UsuarioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Usuario{}, "id = ?", id).Error
}

func (r *UsuarioRepository) List(ctx context.Context) ([]domain.Usuario, error) {
	var usuarios []domain.Usuario
	err := r.db.WithContext(ctx).Preload("Rol").Order("nombre ASC").Find(&usuarios).Error
	return usuarios, err
}

func (r *UsuarioRepository) EmailExists(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Usuario{}).Where("email = ?", email)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// GetGrants returns the branch grant rows of a user.
func (r *UsuarioRepository) GetGrants(ctx context.Context, usuarioID uuid.UUID) ([]domain.UsuarioSucursal, error) {
	var grants []domain.UsuarioSucursal
	err := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).Find(&grants).Error
	return grants, err
}

// ReplaceGrants swaps the full grant set of a user in one transaction.
func (r *UsuarioRepository) ReplaceGrants(ctx context.Context, usuarioID uuid.UUID, sucursalIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("usuario_id = ?", usuarioID).
			Delete(&domain.UsuarioSucursal{}).Error; err != nil {
			return err
		}
		if len(sucursalIDs) == 0 {
			return nil
		}
		grants := make([]domain.UsuarioSucursal, 0, len(sucursalIDs))
		for _, sid := range sucursalIDs {
			grants = append(grants, domain.UsuarioSucursal{UsuarioID: usuarioID, SucursalID: sid})
		}
		return tx.Create(&grants).Error
	})
}

// DeleteGrants removes every branch grant of a user.
func (r *UsuarioRepository) DeleteGrants(ctx context.Context, usuarioID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).
		Delete(&domain.UsuarioSucursal{}).Error
}

func (r *UsuarioRepository) GetRolByID(ctx context.Context, id int64) (*domain.Rol, error) {
	var rol domain.Rol
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rol).Error
	if err != nil {
		return nil, err
	}
	return &rol, nil
}
