package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/config"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     1,
		RefreshExpiry: 1,
	}
}

type authFixture struct {
	users   *fakeUserRepo
	members *fakeMemberRepo
	service AuthService
}

func newAuthFixture() *authFixture {
	users := newFakeUserRepo()
	members := newFakeMemberRepo()
	return &authFixture{
		users:   users,
		members: members,
		service: NewAuthService(testConfig(), users, members),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user, accessToken, refreshToken, err := f.service.Register(ctx, "Ana Souza", "Ana.Souza@Example.com", "senha12345", "")
	require.NoError(t, err)
	assert.Equal(t, "ana.souza@example.com", user.Email)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	// Login is case-insensitive on email.
	_, _, _, err = f.service.Login(ctx, "ANA.SOUZA@example.com", "senha12345")
	assert.NoError(t, err)

	_, _, _, err = f.service.Login(ctx, "ana.souza@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := f.service.Register(ctx, "Ana", "ana@example.com", "senha12345", "")
	require.NoError(t, err)

	_, _, _, err = f.service.Register(ctx, "Outra Ana", "ana@example.com", "senha12345", "")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterLinksPlaceholderSlotsByEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	handle := "maria@example.com"
	placeholder := &repository.Member{
		GroupID:       "group-1",
		Name:          "Maria",
		ContactHandle: &handle,
	}
	require.NoError(t, f.members.Create(ctx, placeholder))

	user, _, _, err := f.service.Register(ctx, "Maria Silva", "Maria@Example.com", "senha12345", "")
	require.NoError(t, err)

	linked, err := f.members.FindByID(ctx, placeholder.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.UserID)
	assert.Equal(t, user.ID, *linked.UserID)
	// Slot history is preserved; only the account pointer changes.
	assert.Equal(t, "Maria", linked.Name)
}

func TestRegisterLinksPlaceholderSlotsByPhone(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	handle := "11987654321"
	placeholder := &repository.Member{
		GroupID:       "group-1",
		Name:          "Dona Maria",
		ContactHandle: &handle,
	}
	require.NoError(t, f.members.Create(ctx, placeholder))

	// The stored handle is digits-only; a formatted phone still matches.
	user, _, _, err := f.service.Register(ctx, "Maria", "maria@example.com", "senha12345", "(11) 98765-4321")
	require.NoError(t, err)

	linked, err := f.members.FindByID(ctx, placeholder.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.UserID)
	assert.Equal(t, user.ID, *linked.UserID)
}

func TestRegisterDoesNotRelinkClaimedSlots(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	otherID := "someone-else"
	handle := "maria@example.com"
	claimed := &repository.Member{
		GroupID:       "group-1",
		Name:          "Maria",
		UserID:        &otherID,
		ContactHandle: &handle,
	}
	require.NoError(t, f.members.Create(ctx, claimed))

	_, _, _, err := f.service.Register(ctx, "Maria Silva", "maria@example.com", "senha12345", "")
	require.NoError(t, err)

	still, err := f.members.FindByID(ctx, claimed.ID)
	require.NoError(t, err)
	assert.Equal(t, otherID, *still.UserID)
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, _, refreshToken, err := f.service.Register(ctx, "Ana", "ana@example.com", "senha12345", "")
	require.NoError(t, err)

	access2, refresh2, err := f.service.RefreshToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEqual(t, refreshToken, refresh2)

	// The old refresh token is single-use.
	_, _, err = f.service.RefreshToken(ctx, refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user, accessToken, _, err := f.service.Register(ctx, "Ana", "ana@example.com", "senha12345", "")
	require.NoError(t, err)

	token, err := f.service.ValidateToken(accessToken)
	require.NoError(t, err)
	require.True(t, token.Valid)

	userID, err := f.service.GetUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}
