package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"prompt-manager/internal/config"
	"prompt-manager/internal/mocks"
	"prompt-manager/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-jwt-secret",
		PasswordPepper:  "test-pepper",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	}
}

func newAuthService(t *testing.T) (*authServiceImpl, *mocks.UserRepository, *mocks.TokenRepository) {
	t.Helper()
	userRepo := new(mocks.UserRepository)
	tokenRepo := new(mocks.TokenRepository)
	svc := NewAuthService(userRepo, tokenRepo, testConfig(), zap.NewNop()).(*authServiceImpl)
	return svc, userRepo, tokenRepo
}

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := hashPassword("secret123", "pepper")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hashed)

	assert.True(t, checkPasswordHash("secret123", hashed, "pepper"))
	assert.False(t, checkPasswordHash("wrong123", hashed, "pepper"))
	assert.False(t, checkPasswordHash("secret123", hashed, "other-pepper"), "the pepper is part of the hash")
	assert.False(t, checkPasswordHash("secret123", "not-a-bcrypt-hash", "pepper"))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _ := newAuthService(t)

	userRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "user@example.com" && checkPasswordHash("secret123", u.PasswordHash, "test-pepper")
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = uuid.New()
	}).Return(nil).Once()

	user, err := svc.Register(ctx, " User@Example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)

	_, err = svc.Register(ctx, "bad-email", "secret123")
	assert.True(t, errors.Is(err, models.ErrValidation))
	_, err = svc.Register(ctx, "user@example.com", "short")
	assert.True(t, errors.Is(err, models.ErrValidation))

	userRepo.On("CreateUser", ctx, mock.Anything).Return(models.ErrEmailAlreadyExists).Once()
	_, err = svc.Register(ctx, "user@example.com", "secret123")
	assert.True(t, errors.Is(err, models.ErrEmailAlreadyExists))

	userRepo.AssertExpectations(t)
}

func TestLogin_IssuesTokensAndVerifies(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, tokenRepo := newAuthService(t)

	hash, err := hashPassword("secret123", "test-pepper")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}

	userRepo.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil)
	userRepo.On("UpdateLastSignIn", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	tokenRepo.On("SetToken", ctx, user.ID, mock.AnythingOfType("*models.TokenDetails")).Return(nil).Once()

	td, err := svc.Login(ctx, "USER@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, td.AccessToken)
	require.NotEmpty(t, td.RefreshToken)
	assert.NotEqual(t, td.AccessUUID, td.RefreshUUID)

	tokenRepo.On("GetUserIDByAccessUUID", ctx, td.AccessUUID).Return(user.ID, nil).Once()
	claims, err := svc.VerifyAccessToken(ctx, td.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, td.AccessUUID, claims.ID)

	// Отозванный токен
	tokenRepo.On("GetUserIDByAccessUUID", ctx, td.AccessUUID).Return(uuid.Nil, models.ErrTokenNotFound).Once()
	_, err = svc.VerifyAccessToken(ctx, td.AccessToken)
	assert.True(t, errors.Is(err, models.ErrTokenInvalid))

	_, err = svc.Login(ctx, "user@example.com", "wrong123")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))

	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

func TestLogin_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _ := newAuthService(t)
	userRepo.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, models.ErrUserNotFound)

	_, err := svc.Login(ctx, "ghost@example.com", "secret123")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
}

func TestVerifyAccessToken_RejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService(t)
	userID := uuid.New()

	td, err := svc.createTokens(userID)
	require.NoError(t, err)

	// Подпись другим секретом
	other := &authServiceImpl{cfg: &config.Config{JWTSecret: "other", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Minute}, now: time.Now}
	foreign, err := other.createTokens(userID)
	require.NoError(t, err)
	_, err = svc.VerifyAccessToken(ctx, foreign.AccessToken)
	assert.True(t, errors.Is(err, models.ErrTokenInvalid))

	_, err = svc.VerifyAccessToken(ctx, "garbage")
	assert.True(t, errors.Is(err, models.ErrTokenMalformed))

	// Истекший токен
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.VerifyAccessToken(ctx, td.AccessToken)
	assert.True(t, errors.Is(err, models.ErrTokenExpired))

	// Токен с алгоритмом none
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &models.Claims{UserID: userID}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.VerifyAccessToken(ctx, unsigned)
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc, _, tokenRepo := newAuthService(t)
	userID := uuid.New()

	old, err := svc.createTokens(userID)
	require.NoError(t, err)

	tokenRepo.On("GetUserIDByRefreshUUID", ctx, old.RefreshUUID).Return(userID, nil).Once()
	tokenRepo.On("SetToken", ctx, userID, mock.AnythingOfType("*models.TokenDetails")).Return(nil).Once()
	tokenRepo.On("DeleteTokens", ctx, userID, "", old.RefreshUUID).Return(int64(1), nil).Once()

	td, err := svc.Refresh(ctx, old.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, old.RefreshUUID, td.RefreshUUID)

	tokenRepo.On("GetUserIDByRefreshUUID", ctx, old.RefreshUUID).Return(uuid.Nil, models.ErrTokenNotFound).Once()
	_, err = svc.Refresh(ctx, old.RefreshToken)
	assert.True(t, errors.Is(err, models.ErrTokenInvalid), "a used refresh token cannot be reused")

	tokenRepo.AssertExpectations(t)
}

func TestLogout_IgnoresStoreErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, tokenRepo := newAuthService(t)
	userID := uuid.New()
	tokenRepo.On("DeleteTokens", ctx, userID, "a", "r").Return(int64(0), errors.New("redis down"))

	assert.NoError(t, svc.Logout(ctx, userID, "a", "r"))
}
