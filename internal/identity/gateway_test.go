package identity_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/identity"
	"github.com/austech/sigo-api/internal/testutil"
)

func TestGateway_RegisterAndVerify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := identity.NewGateway(db, 4, zap.NewNop())
	ctx := context.Background()

	id, err := gateway.Register(ctx, "Ana.Perez@Example.com", "secreto123")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	// Email is normalized, lookups are case insensitive
	got, err := gateway.VerifyPassword(ctx, "ana.perez@example.com", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = gateway.VerifyPassword(ctx, "ana.perez@example.com", "incorrecta")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = gateway.VerifyPassword(ctx, "nadie@example.com", "secreto123")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestGateway_RegisterDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := identity.NewGateway(db, 4, zap.NewNop())
	ctx := context.Background()

	_, err := gateway.Register(ctx, "dup@example.com", "secreto123")
	require.NoError(t, err)

	_, err = gateway.Register(ctx, "DUP@example.com", "otra456")
	assert.ErrorIs(t, err, identity.ErrEmailTaken)
}

func TestGateway_ChangePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := identity.NewGateway(db, 4, zap.NewNop())
	ctx := context.Background()

	id, err := gateway.Register(ctx, "cambio@example.com", "original1")
	require.NoError(t, err)

	err = gateway.ChangePassword(ctx, id, "equivocada", "nueva123")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	err = gateway.ChangePassword(ctx, id, "original1", "nueva123")
	require.NoError(t, err)

	_, err = gateway.VerifyPassword(ctx, "cambio@example.com", "nueva123")
	assert.NoError(t, err)
	_, err = gateway.VerifyPassword(ctx, "cambio@example.com", "original1")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestGateway_SetPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := identity.NewGateway(db, 4, zap.NewNop())
	ctx := context.Background()

	id, err := gateway.Register(ctx, "reset@example.com", "original1")
	require.NoError(t, err)

	// Administrative reset skips the current-password check
	require.NoError(t, gateway.SetPassword(ctx, id, "asignada9"))
	_, err = gateway.VerifyPassword(ctx, "reset@example.com", "asignada9")
	assert.NoError(t, err)

	err = gateway.SetPassword(ctx, uuid.New(), "loquesea")
	assert.ErrorIs(t, err, identity.ErrCredentialNotFound)
}

func TestGateway_UpdateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := identity.NewGateway(db, 4, zap.NewNop())
	ctx := context.Background()

	idA, err := gateway.Register(ctx, "a@example.com", "secreto123")
	require.NoError(t, err)
	_, err = gateway.Register(ctx, "b@example.com", "secreto123")
	require.NoError(t, err)

	err = gateway.UpdateEmail(ctx, idA, "b@example.com")
	assert.ErrorIs(t, err, identity.ErrEmailTaken)

	// Re-setting your own email is not a conflict
	require.NoError(t, gateway.UpdateEmail(ctx, idA, "a@example.com"))

	require.NoError(t, gateway.UpdateEmail(ctx, idA, "nuevo@example.com"))
	got, err := gateway.VerifyPassword(ctx, "nuevo@example.com", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, idA, got)
}

func TestGateway_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gateway := identity.NewGateway(db, 4, zap.NewNop())
	ctx := context.Background()

	id, err := gateway.Register(ctx, "borrar@example.com", "secreto123")
	require.NoError(t, err)

	require.NoError(t, gateway.Delete(ctx, id))
	_, err = gateway.VerifyPassword(ctx, "borrar@example.com", "secreto123")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}
