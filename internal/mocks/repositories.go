package mocks

import (
	"context"
	"time"

	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var (
	_ interfaces.PromptRepository     = (*PromptRepository)(nil)
	_ interfaces.UserRepository       = (*UserRepository)(nil)
	_ interfaces.TokenRepository      = (*TokenRepository)(nil)
	_ interfaces.PromptEventPublisher = (*PromptEventPublisher)(nil)
)

// Mock PromptRepository
type PromptRepository struct {
	mock.Mock
}

func (m *PromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	args := m.Called(ctx, prompt)
	return args.Error(0)
}
func (m *PromptRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Prompt, error) {
	args := m.Called(ctx, userID, id)
	p, _ := args.Get(0).(*models.Prompt)
	return p, args.Error(1)
}
func (m *PromptRepository) Update(ctx context.Context, userID, id uuid.UUID, upd models.PromptUpdate) (*models.Prompt, error) {
	args := m.Called(ctx, userID, id, upd)
	p, _ := args.Get(0).(*models.Prompt)
	return p, args.Error(1)
}
func (m *PromptRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
func (m *PromptRepository) Search(ctx context.Context, userID uuid.UUID, filter models.PromptFilter) ([]models.Prompt, error) {
	args := m.Called(ctx, userID, filter)
	ps, _ := args.Get(0).([]models.Prompt)
	return ps, args.Error(1)
}
func (m *PromptRepository) ListTags(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}
func (m *PromptRepository) GetStatistics(ctx context.Context, userID uuid.UUID) (*models.Statistics, error) {
	args := m.Called(ctx, userID)
	st, _ := args.Get(0).(*models.Statistics)
	return st, args.Error(1)
}
func (m *PromptRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]models.Prompt, error) {
	args := m.Called(ctx, userID)
	ps, _ := args.Get(0).([]models.Prompt)
	return ps, args.Error(1)
}
func (m *PromptRepository) BulkCreate(ctx context.Context, userID uuid.UUID, inputs []models.PromptInput) (int64, error) {
	args := m.Called(ctx, userID, inputs)
	return args.Get(0).(int64), args.Error(1)
}
func (m *PromptRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *UserRepository) UpdateLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// Mock TokenRepository
type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error {
	args := m.Called(ctx, userID, td)
	return args.Error(0)
}
func (m *TokenRepository) DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error) {
	args := m.Called(ctx, userID, accessUUID, refreshUUID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *TokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error) {
	args := m.Called(ctx, accessUUID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
func (m *TokenRepository) GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error) {
	args := m.Called(ctx, refreshUUID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
func (m *TokenRepository) DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// Mock PromptEventPublisher
type PromptEventPublisher struct {
	mock.Mock
}

func (m *PromptEventPublisher) PublishPromptEvent(ctx context.Context, event models.PromptEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
