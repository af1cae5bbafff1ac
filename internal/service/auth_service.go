package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/auth"
	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/identity"
	"github.com/austech/sigo-api/internal/repository"
)

// AuthService handles login, registration and the profile endpoint.
// Passwords never touch this layer beyond pass-through to the identity
// gateway.
type AuthService struct {
	gateway      *identity.Gateway
	tokens       *identity.TokenIssuer
	resolver     *auth.Resolver
	usuarioRepo  *repository.UsuarioRepository
	sucursalRepo *repository.SucursalRepository
	logger       *zap.Logger
}

func NewAuthService(
	gateway *identity.Gateway,
	tokens *identity.TokenIssuer,
	resolver *auth.Resolver,
	usuarioRepo *repository.UsuarioRepository,
	sucursalRepo *repository.SucursalRepository,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		gateway:      gateway,
		tokens:       tokens,
		resolver:     resolver,
		usuarioRepo:  usuarioRepo,
		sucursalRepo: sucursalRepo,
		logger:       logger,
	}
}

func resumen(u *domain.Usuario) domain.UsuarioResumen {
	rol := ""
	if u.Rol != nil {
		rol = u.Rol.Nombre
	}
	return domain.UsuarioResumen{
		ID:     u.ID.String(),
		Nombre: u.Nombre,
		Email:  u.Email,
		Rol:    rol,
	}
}

// Login verifies credentials and issues a session token together with
// the user's branch grants.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	userID, err := s.gateway.VerifyPassword(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}

	usuario, err := s.usuarioRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Credential without a usuarios row: treat as bad login
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	sucursalIDs, err := s.resolver.GrantedSucursalIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", userID.String()),
		zap.String("email", usuario.Email),
	)

	return &domain.LoginResponse{
		Usuario:             resumen(usuario),
		SucursalesAsignadas: sucursalIDs,
		Token:               token,
	}, nil
}

// Register creates a credential and its usuarios row. If the second
// step fails the credential is removed so the email stays free.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
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

	s.logger.Info("user registered",
		zap.String("user_id", userID.String()),
		zap.String("email", usuario.Email),
		zap.String("rol", rol.Nombre),
	)

	return &domain.RegisterResponse{
		Message: "Usuario registrado exitosamente",
		Usuario: resumen(usuario),
	}, nil
}

// Profile returns the authenticated user together with the full
// sucursal objects granted to them.
func (s *AuthService) Profile(ctx context.Context) (*domain.ProfileResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	usuario, err := s.usuarioRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	sucursalIDs, err := s.resolver.GrantedSucursalIDs(ctx, userCtx.UserID)
	if err != nil {
		return nil, err
	}
	sucursales, err := s.sucursalRepo.GetByIDs(ctx, sucursalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load sucursales: %w", err)
	}
	if sucursales == nil {
		sucursales = []domain.Sucursal{}
	}

	return &domain.ProfileResponse{
		Usuario:             resumen(usuario),
		SucursalesAsignadas: sucursales,
	}, nil
}
