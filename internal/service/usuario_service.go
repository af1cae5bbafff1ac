package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/auth"
	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/identity"
	"github.com/austech/sigo-api/internal/repository"
)

type UsuarioService struct {
	usuarioRepo  *repository.UsuarioRepository
	sucursalRepo *repository.SucursalRepository
	gateway      *identity.Gateway
	logger       *zap.Logger
}

func NewUsuarioService(
	usuarioRepo *repository.UsuarioRepository,
	sucursalRepo *repository.SucursalRepository,
	gateway *identity.Gateway,
	logger *zap.Logger,
) *UsuarioService {
	return &UsuarioService{
		usuarioRepo:  usuarioRepo,
		sucursalRepo: sucursalRepo,
		gateway:      gateway,
		logger:       logger,
	}
}

// grantedSucursales loads the full sucursal rows behind a user's
// grants.
func (s *UsuarioService) grantedSucursales(ctx context.Context, usuarioID uuid.UUID) ([]domain.Sucursal, error) {
	grants, err := s.usuarioRepo.GetGrants(ctx, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch grants: %w", err)
	}
	ids := make([]int64, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.SucursalID)
	}
	sucursales, err := s.sucursalRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load sucursales: %w", err)
	}
	if sucursales == nil {
		sucursales = []domain.Sucursal{}
	}
	return sucursales, nil
}

func (s *UsuarioService) List(ctx context.Context) ([]domain.UsuarioConSucursales, error) {
	usuarios, err := s.usuarioRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]domain.UsuarioConSucursales, len(usuarios))
	for i, u := range usuarios {
		sucursales, err := s.grantedSucursales(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out[i] = domain.UsuarioConSucursales{Usuario: u, Sucursales: sucursales}
	}
	return out, nil
}

func (s *UsuarioService) GetByID(ctx context.Context, id uuid.UUID) (*domain.UsuarioConSucursales, error) {
	usuario, err := s.usuarioRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	sucursales, err := s.grantedSucursales(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.UsuarioConSucursales{Usuario: *usuario, Sucursales: sucursales}, nil
}

// Create registers a credential and a usuarios row sharing its id. On
// failure of the second step the credential is removed.
func (s *UsuarioService) Create(ctx context.Context, req *domain.CreateUsuarioRequest) (*domain.Usuario, error) {
	rol, err := s.usuarioRepo.GetRolByID(ctx, req.RolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRolNotFound
		}
		return nil, fmt.Errorf("failed to load role: %w", err)
	}

	taken, err := s.usuarioRepo.EmailExists(ctx, req.Email, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	userID, err := s.gateway.Register(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	usuario := &domain.Usuario{
		ID:       userID,
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Email:    req.Email,
		RolID:    rol.ID,
	}
	if err := s.usuarioRepo.Create(ctx, usuario); err != nil {
		if delErr := s.gateway.Delete(ctx, userID); delErr != nil {
			s.logger.Error("failed to roll back credential after user create failure",
				zap.String("user_id", userID.String()),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	usuario.Rol = rol

	s.logger.Info("user created",
		zap.String("user_id", userID.String()),
		zap.String("email", usuario.Email),
	)
	return usuario, nil
}

// Update changes profile fields and role. An email change propagates
// to the credential first so login and profile never disagree.
func (s *UsuarioService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateUsuarioRequest) (*domain.Usuario, error) {
	usuario, err := s.usuarioRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	rol, err := s.usuarioRepo.GetRolByID(ctx, req.RolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRolNotFound
		}
		return nil, fmt.Errorf("failed to load role: %w", err)
	}

	if req.Email != "" && req.Email != usuario.Email {
		taken, err := s.usuarioRepo.EmailExists(ctx, req.Email, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		if err := s.gateway.UpdateEmail(ctx, id, req.Email); err != nil {
			if errors.Is(err, identity.ErrEmailTaken) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("failed to update credential email: %w", err)
		}
		usuario.Email = req.Email
	}

	usuario.Nombre = req.Nombre
	usuario.Apellido = req.Apellido
	usuario.RolID = rol.ID
	usuario.Rol = nil

	if err := s.usuarioRepo.Update(ctx, usuario); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	usuario.Rol = rol

	return usuario, nil
}

// Delete removes the grants, the user row and finally the credential.
func (s *UsuarioService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.usuarioRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.usuarioRepo.DeleteGrants(ctx, id); err != nil {
		return fmt.Errorf("failed to delete branch grants: %w", err)
	}
	if err := s.usuarioRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := s.gateway.Delete(ctx, id); err != nil {
		// The user row is gone; log and keep going
		s.logger.Error("failed to delete credential for removed user",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

// AsignarSucursales replaces the grant set of a user. Every id must
// name an existing sucursal.
func (s *UsuarioService) AsignarSucursales(ctx context.Context, id uuid.UUID, sucursalIDs []int64) ([]domain.Sucursal, error) {
	if _, err := s.usuarioRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if len(sucursalIDs) > 0 {
		sucursales, err := s.sucursalRepo.GetByIDs(ctx, sucursalIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load sucursales: %w", err)
		}
		if len(sucursales) != len(distinctInt64(sucursalIDs)) {
			return nil, ErrInvalidInput
		}
	}

	if err := s.usuarioRepo.ReplaceGrants(ctx, id, sucursalIDs); err != nil {
		return nil, fmt.Errorf("failed to replace branch grants: %w", err)
	}

	s.logger.Info("branch grants replaced",
		zap.String("user_id", id.String()),
		zap.Int("count", len(sucursalIDs)),
	)
	return s.grantedSucursales(ctx, id)
}

// CambiarPassword changes a password. A user changing their own must
// supply the current one; a Gerente resetting someone else's does not.
func (s *UsuarioService) CambiarPassword(ctx context.Context, id uuid.UUID, req *domain.CambiarPasswordRequest) error {
	caller, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	self := caller.UserID == id
	if !self && caller.Rol != domain.RolGerente {
		return ErrPermissionDenied
	}

	if _, err := s.usuarioRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if self {
		err := s.gateway.ChangePassword(ctx, id, req.CurrentPassword, req.Password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				return ErrInvalidCredentials
			}
			if errors.Is(err, identity.ErrCredentialNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to change password: %w", err)
		}
		return nil
	}

	if err := s.gateway.SetPassword(ctx, id, req.Password); err != nil {
		if errors.Is(err, identity.ErrCredentialNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Info("password reset by gerente",
		zap.String("user_id", id.String()),
		zap.String("by", caller.UserID.String()),
	)
	return nil
}
