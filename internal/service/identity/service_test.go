package identity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/auth"
	"github.com/milkbook/milkbook/internal/repository/localstore"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := localstore.New(filepath.Join(t.TempDir(), "milkbook.json"), zap.NewNop())
	tokens := auth.NewTokenManager("test-secret", "milkbook-test", time.Hour)
	return NewService(store, tokens, zap.NewNop())
}

func TestSignupThenLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "secret1", user.PasswordHash, "password must never be stored in the clear")

	// Signup registers but does not authenticate.
	assert.False(t, svc.IsAuthenticated(ctx))

	loggedIn, token, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
	assert.True(t, svc.IsAuthenticated(ctx))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, svc.IsAuthenticated(ctx), "failed login must leave the session unauthenticated")

	_, _, err = svc.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogoutClearsSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "secret1")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.IsAuthenticated(ctx))

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestResolveToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "secret1")
	require.NoError(t, err)
	_, token, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	resolved, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = svc.ResolveToken(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
