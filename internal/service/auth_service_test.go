package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

type fakeResetStore struct {
	tokens map[string]string
}

func (s *fakeResetStore) StoreResetToken(_ context.Context, token, userID string, _ time.Duration) error {
	if s.tokens == nil {
		s.tokens = make(map[string]string)
	}
	s.tokens[token] = userID
	return nil
}

func (s *fakeResetStore) ConsumeResetToken(_ context.Context, token string) (string, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return "", redis.Nil
	}
	delete(s.tokens, token)
	return userID, nil
}

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeResetStore) {
	users := newFakeUserRepo()
	resets := &fakeResetStore{}
	svc := NewAuthService(
		users,
		auth.NewTokenManager("test-secret", 60),
		resets,
		config.AuthConfig{BcryptCost: 4, PasswordResetTTLMinutes: 30},
	)
	return svc, users, resets
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, nil, RegisterInput{
		Name:     "Rita",
		Email:    "Rita@Example.com",
		Password: "strongpass",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleReporter, user.Role)
	assert.Equal(t, "rita@example.com", user.Email)

	result, err := svc.Login(ctx, "rita@example.com", "strongpass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	_, err = svc.Login(ctx, "rita@example.com", "wrongpass")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestRegisterHandlerNeedsAdmin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, nil, RegisterInput{
		Name: "Hank", Email: "hank@example.com", Password: "strongpass",
		Role: domain.UserRoleHandler,
	})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	admin := Actor{ID: "a1", Role: domain.UserRoleAdmin}
	handler, err := svc.Register(ctx, &admin, RegisterInput{
		Name: "Hank", Email: "hank@example.com", Password: "strongpass",
		Role: domain.UserRoleHandler,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleHandler, handler.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, nil, RegisterInput{Name: "A", Email: "a@example.com", Password: "strongpass"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, nil, RegisterInput{Name: "B", Email: "a@example.com", Password: "strongpass"})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, resets := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, nil, RegisterInput{Name: "Rita", Email: "rita@example.com", Password: "strongpass"})
	require.NoError(t, err)

	// unknown emails yield no token and no error
	token, err := svc.RequestPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = svc.RequestPasswordReset(ctx, "rita@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(ctx, token, "brandnewpass"))

	// token is single-use
	err = svc.ResetPassword(ctx, token, "anotherpass")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	assert.Empty(t, resets.tokens)

	_, err = svc.Login(ctx, "rita@example.com", "brandnewpass")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, nil, RegisterInput{Name: "Rita", Email: "rita@example.com", Password: "strongpass"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrongpass", "nextpass123")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "strongpass", "nextpass123"))
	_, err = svc.Login(ctx, "rita@example.com", "nextpass123")
	assert.NoError(t, err)
}
