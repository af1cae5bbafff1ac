package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/austech/sigo-api/internal/domain"
)

var (
	// ErrEmailTaken indicates the email already has a credential
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates a failed email/password check
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCredentialNotFound indicates no credential exists for the id
	ErrCredentialNotFound = errors.New("credential not found")
)

// Gateway owns the credenciales table: bcrypt password hashes keyed by
// the same UUID as the usuarios row. All account state changes for a
// user go through here first so the application tables never see a
// password.
type Gateway struct {
	db     *gorm.DB
	cost   int
	logger *zap.Logger
}

// NewGateway creates an identity gateway. A cost of 0 uses the bcrypt
// default.
func NewGateway(db *gorm.DB, cost int, logger *zap.Logger) *Gateway {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Gateway{db: db, cost: cost, logger: logger}
}

// Register creates a credential for a new account and returns its id.
func (g *Gateway) Register(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := g.db.WithContext(ctx).Model(&domain.Credencial{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return uuid.Nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := domain.Credencial{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := g.db.WithContext(ctx).Create(&cred).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return cred.ID, nil
}

// VerifyPassword checks an email/password pair and returns the account
// id on success.
func (g *Gateway) VerifyPassword(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var cred domain.Credencial
	err := g.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrInvalidCredentials
		}
		return uuid.Nil, fmt.Errorf("failed to load credential: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return uuid.Nil, ErrInvalidCredentials
	}

	return cred.ID, nil
}

// ChangePassword verifies the current password before storing the new
// hash.
func (g *Gateway) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	var cred domain.Credencial
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCredentialNotFound
		}
		return fmt.Errorf("failed to load credential: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), g.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := g.db.WithContext(ctx).Model(&domain.Credencial{}).
		Where("id = ?", id).Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}

	return nil
}

// SetPassword overwrites the stored hash without checking the current
// one. Reserved for administrative resets.
func (g *Gateway) SetPassword(ctx context.Context, id uuid.UUID, next string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(next), g.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result := g.db.WithContext(ctx).Model(&domain.Credencial{}).
		Where("id = ?", id).Update("password_hash", string(hash))
	if result.Error != nil {
		return fmt.Errorf("failed to update credential: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

// UpdateEmail changes the login email of an account.
func (g *Gateway) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := g.db.WithContext(ctx).Model(&domain.Credencial{}).
		Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}

	result := g.db.WithContext(ctx).Model(&domain.Credencial{}).
		Where("id = ?", id).Update("email", email)
	if result.Error != nil {
		return fmt.Errorf("failed to update credential: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

// Delete removes a credential. Used when account creation fails halfway
// and on user deletion.
func (g *Gateway) Delete(ctx context.Context, id uuid.UUID) error {
	if err := g.db.WithContext(ctx).
		Where("id = ?", id).Delete(&domain.Credencial{}).Error; err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
