package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/eventhub/internal/auth"
	"github.com/cimillas/eventhub/internal/clock"
	"github.com/cimillas/eventhub/internal/domain"
	"github.com/cimillas/eventhub/internal/storage/memory"
)

type mapRevoker struct {
	revoked map[string]time.Duration
}

func (r *mapRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	r.revoked[tokenID] = ttl
	return nil
}

func (r *mapRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := r.revoked[tokenID]
	return ok, nil
}

func newAccountService(t *testing.T, opts ...AccountServiceOption) (*AccountService, *memory.Store) {
	t.Helper()
	clk := clock.NewFixed(now)
	issuer, err := auth.NewIssuer("0123456789abcdef0123", time.Hour, clk)
	require.NoError(t, err)
	store := memory.New()
	return NewAccountService(store, auth.PasswordHasher{}, issuer, clk, opts...), store
}

func TestAccountService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAccountService(t)

	valid := RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "s3cretpass", RepeatPassword: "s3cretpass"}

	user, err := svc.Register(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash)

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"short username", func(in *RegisterInput) { in.Username = "al" }, "username"},
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password, in.RepeatPassword = "short", "short" }, "password"},
		{"mismatched repeat", func(in *RegisterInput) { in.RepeatPassword = "different1" }, "repeat_password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			in.Username = "bob"
			in.Email = "bob@example.com"
			tt.mutate(&in)

			_, err := svc.Register(ctx, in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("duplicate username", func(t *testing.T) {
		in := valid
		in.Email = "other@example.com"
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})
}

func TestAccountService_LoginAndAuthenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	revoker := &mapRevoker{revoked: map[string]time.Duration{}}
	svc, store := newAccountService(t, WithRevoker(revoker))

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cretpass", RepeatPassword: "s3cretpass"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
	_, err = svc.Login(ctx, "nobody", "s3cretpass")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	res, err := svc.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, res.User.ID)
	assert.Equal(t, now.Add(time.Hour), res.Token.ExpiresAt)

	user, err := svc.Authenticate(ctx, res.Token.Value)
	require.NoError(t, err)
	assert.False(t, user.IsStaff)

	// Role changes apply to existing tokens.
	require.NoError(t, svc.SetManager(ctx, "alice", true))
	user, err = svc.Authenticate(ctx, res.Token.Value)
	require.NoError(t, err)
	assert.True(t, user.CanManageEvents())

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	require.NoError(t, svc.Logout(ctx, res.Token.Value))
	assert.Equal(t, time.Hour, revoker.revoked[res.Token.ID])
	_, err = svc.Authenticate(ctx, res.Token.Value)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.ErrorIs(t, svc.SetManager(ctx, "nobody", true), domain.ErrNotFound)

	profile, err := svc.Profile(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	stored, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, stored.IsStaff)
}

func TestAccountService_LogoutWithoutRevoker(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAccountService(t)

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cretpass", RepeatPassword: "s3cretpass"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Token.Value))
	_, err = svc.Authenticate(ctx, res.Token.Value)
	assert.NoError(t, err)
}
