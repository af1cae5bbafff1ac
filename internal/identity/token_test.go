package identity_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austech/sigo-api/internal/identity"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := identity.NewTokenIssuer("test-secret", time.Hour)
	id := uuid.New()

	token, err := issuer.Issue(id)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := identity.NewTokenIssuer("secret-a", time.Hour)
	other := identity.NewTokenIssuer("secret-b", time.Hour)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := identity.NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := identity.NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}
