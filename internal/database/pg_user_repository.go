package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

const (
	userFields = `id, email, password_hash, created_at, updated_at, last_sign_in_at`

	createUserQuery       = `INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	getUserByEmailQuery   = `SELECT ` + userFields + ` FROM users WHERE email = $1`
	getUserByIDQuery      = `SELECT ` + userFields + ` FROM users WHERE id = $1`
	updateLastSignInQuery = `UPDATE users SET last_sign_in_at = $2 WHERE id = $1`

	pgUniqueViolation = "23505"
)

type pgUserRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

// CreateUser inserts a new user into the database.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.logger.Debug("Executing query", zap.String("query", createUserQuery), zap.String("email", user.Email))
	err := r.db.QueryRow(ctx, createUserQuery, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			r.logger.Warn("Attempted to create duplicate user by email", zap.String("email", user.Email))
			return models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetUserByEmail retrieves a user by their email.
func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	if err := pgxscan.Get(ctx, r.db, user, getUserByEmailQuery, email); err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("User not found by email", zap.String("email", email))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by email from postgres", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email from postgres: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	if err := pgxscan.Get(ctx, r.db, user, getUserByIDQuery, id); err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("User not found by ID", zap.String("id", id.String()))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by id from postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get user by id from postgres: %w", err)
	}
	return user, nil
}

// UpdateLastSignIn фиксирует время последнего входа.
func (r *pgUserRepository) UpdateLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	cmdTag, err := r.db.Exec(ctx, updateLastSignInQuery, id, at.UTC())
	if err != nil {
		r.logger.Error("Failed to update last sign-in", zap.Error(err), zap.String("userID", id.String()))
		return fmt.Errorf("failed to update last sign-in: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
