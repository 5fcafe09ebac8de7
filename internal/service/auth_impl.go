package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"prompt-manager/internal/config"
	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/models"
	"prompt-manager/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "prompt-manager"

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

type authServiceImpl struct {
	userRepo  interfaces.UserRepository
	tokenRepo interfaces.TokenRepository
	cfg       *config.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(userRepo interfaces.UserRepository, tokenRepo interfaces.TokenRepository, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		logger:    logger.Named("AuthService"),
		now:       time.Now,
	}
}

// Register creates a new user.
func (s *authServiceImpl) Register(ctx context.Context, email, password string) (*models.User, error) {
	email, err := validation.Email(email)
	if err != nil {
		s.logger.Warn("Registration attempt with invalid email", zap.Error(err))
		return nil, err
	}
	if err := validation.Password(password); err != nil {
		s.logger.Warn("Registration attempt with weak password", zap.String("email", email))
		return nil, err
	}

	hashedPassword, err := hashPassword(password, s.cfg.PasswordPepper)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: hashedPassword}
	// Уникальность email проверяет репозиторий (ErrEmailAlreadyExists)
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return user, nil
}

// Login authenticates a user by email and returns token details.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.TokenDetails, error) {
	email, err := validation.Email(email)
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("email", email))
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPasswordHash(password, user.PasswordHash, s.cfg.PasswordPepper) {
		s.logger.Warn("Login failed: invalid password", zap.String("userID", user.ID.String()))
		return nil, models.ErrInvalidCredentials
	}

	td, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastSignIn(ctx, user.ID, s.now()); err != nil {
		// Вход уже состоялся, время входа не критично
		s.logger.Warn("Failed to update last sign-in time", zap.Error(err), zap.String("userID", user.ID.String()))
	}

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return td, nil
}

// Logout removes the access and refresh tokens from the store.
func (s *authServiceImpl) Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error {
	log := s.logger.With(zap.String("userID", userID.String()), zap.String("accessUUID", accessUUID))
	deleted, err := s.tokenRepo.DeleteTokens(ctx, userID, accessUUID, refreshUUID)
	if err != nil {
		// Токены могли уже истечь, клиенту ошибку не возвращаем
		log.Error("Failed to delete tokens during logout", zap.Error(err))
		return nil
	}
	log.Info("User logged out", zap.Int64("deletedCount", deleted))
	return nil
}

// Refresh issues a new token pair for a valid refresh token. The old refresh token is revoked.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error) {
	claims, err := s.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	refreshUUID := claims.ID
	log := s.logger.With(zap.String("userID", claims.UserID.String()), zap.String("refreshUUID", refreshUUID))

	storedUserID, err := s.tokenRepo.GetUserIDByRefreshUUID(ctx, refreshUUID)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			log.Warn("Refresh attempt with revoked token")
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error checking refresh token existence: %w", err)
	}
	if storedUserID != claims.UserID {
		log.Error("Refresh token user ID mismatch", zap.String("storedUserID", storedUserID.String()))
		return nil, models.ErrTokenInvalid
	}

	td, err := s.issueTokens(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tokenRepo.DeleteTokens(ctx, claims.UserID, "", refreshUUID); err != nil {
		log.Error("Non-critical: failed to delete old refresh token", zap.Error(err))
	}

	log.Info("Token refreshed successfully")
	return td, nil
}

// VerifyAccessToken parses an access token and checks that it has not been revoked.
func (s *authServiceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if _, err := s.tokenRepo.GetUserIDByAccessUUID(ctx, claims.ID); err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Debug("Access token not found in store (revoked/logged out)", zap.String("accessUUID", claims.ID))
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error checking access token existence: %w", err)
	}
	return claims, nil
}

func (s *authServiceImpl) ParseRefreshToken(tokenString string) (*models.Claims, error) {
	return s.parseToken(tokenString)
}

func (s *authServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *authServiceImpl) parseToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		default:
			s.logger.Debug("Failed to parse token", zap.Error(err))
			return nil, models.ErrTokenInvalid
		}
	}
	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil || claims.ID == "" {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

// issueTokens создает пару токенов и сохраняет их UUID в хранилище.
func (s *authServiceImpl) issueTokens(ctx context.Context, userID uuid.UUID) (*models.TokenDetails, error) {
	td, err := s.createTokens(userID)
	if err != nil {
		s.logger.Error("Failed to create tokens", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to create tokens: %w", err)
	}
	if err := s.tokenRepo.SetToken(ctx, userID, td); err != nil {
		return nil, fmt.Errorf("failed to save token details: %w", err)
	}
	return td, nil
}

// createTokens generates new access and refresh tokens for a user.
func (s *authServiceImpl) createTokens(userID uuid.UUID) (*models.TokenDetails, error) {
	now := s.now()
	td := &models.TokenDetails{
		AccessUUID:  uuid.NewString(),
		RefreshUUID: uuid.NewString(),
		AtExpires:   now.Add(s.cfg.AccessTokenTTL).Unix(),
		RtExpires:   now.Add(s.cfg.RefreshTokenTTL).Unix(),
	}

	var err error
	td.AccessToken, err = s.signToken(userID, td.AccessUUID, now, td.AtExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	td.RefreshToken, err = s.signToken(userID, td.RefreshUUID, now, td.RtExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return td, nil
}

func (s *authServiceImpl) signToken(userID uuid.UUID, jti string, issuedAt time.Time, expires int64) (string, error) {
	claims := &models.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(time.Unix(expires, 0)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

// applyPepper applies HMAC-SHA256 using the pepper as the key.
func applyPepper(password, pepper string) []byte {
	h := hmac.New(sha256.New, []byte(pepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

// hashPassword generates a bcrypt hash of the password after applying the pepper.
func hashPassword(password, pepper string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(applyPepper(password, pepper), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password (after applying pepper) with a stored hash.
func checkPasswordHash(password, hash, pepper string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), applyPepper(password, pepper)) == nil
}
