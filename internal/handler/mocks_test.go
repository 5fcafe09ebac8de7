package handler

import (
	"context"

	"prompt-manager/internal/models"
	"prompt-manager/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Моки сервисов живут здесь: internal/mocks импортируется тестами service.

var (
	_ service.AuthService     = (*mockAuthService)(nil)
	_ service.PromptService   = (*mockPromptService)(nil)
	_ service.SettingsService = (*mockSettingsService)(nil)
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.TokenDetails, error) {
	args := m.Called(ctx, email, password)
	td, _ := args.Get(0).(*models.TokenDetails)
	return td, args.Error(1)
}
func (m *mockAuthService) Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error {
	args := m.Called(ctx, userID, accessUUID, refreshUUID)
	return args.Error(0)
}
func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error) {
	args := m.Called(ctx, refreshToken)
	td, _ := args.Get(0).(*models.TokenDetails)
	return td, args.Error(1)
}
func (m *mockAuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	args := m.Called(ctx, tokenString)
	cl, _ := args.Get(0).(*models.Claims)
	return cl, args.Error(1)
}
func (m *mockAuthService) ParseRefreshToken(tokenString string) (*models.Claims, error) {
	args := m.Called(tokenString)
	cl, _ := args.Get(0).(*models.Claims)
	return cl, args.Error(1)
}
func (m *mockAuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type mockPromptService struct {
	mock.Mock
}

func (m *mockPromptService) Create(ctx context.Context, userID uuid.UUID, input models.PromptInput) (*models.Prompt, error) {
	args := m.Called(ctx, userID, input)
	p, _ := args.Get(0).(*models.Prompt)
	return p, args.Error(1)
}
func (m *mockPromptService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Prompt, error) {
	args := m.Called(ctx, userID, id)
	p, _ := args.Get(0).(*models.Prompt)
	return p, args.Error(1)
}
func (m *mockPromptService) Update(ctx context.Context, userID, id uuid.UUID, upd models.PromptUpdate) (*models.Prompt, error) {
	args := m.Called(ctx, userID, id, upd)
	p, _ := args.Get(0).(*models.Prompt)
	return p, args.Error(1)
}
func (m *mockPromptService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
func (m *mockPromptService) Search(ctx context.Context, userID uuid.UUID, filter models.PromptFilter) ([]models.Prompt, error) {
	args := m.Called(ctx, userID, filter)
	ps, _ := args.Get(0).([]models.Prompt)
	return ps, args.Error(1)
}
func (m *mockPromptService) ListTags(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}

type mockSettingsService struct {
	mock.Mock
}

func (m *mockSettingsService) GetStatistics(ctx context.Context, userID uuid.UUID) (*models.Statistics, error) {
	args := m.Called(ctx, userID)
	st, _ := args.Get(0).(*models.Statistics)
	return st, args.Error(1)
}
func (m *mockSettingsService) Export(ctx context.Context, userID uuid.UUID) (*models.ExportBundle, error) {
	args := m.Called(ctx, userID)
	b, _ := args.Get(0).(*models.ExportBundle)
	return b, args.Error(1)
}
func (m *mockSettingsService) Import(ctx context.Context, userID uuid.UUID, bundle *models.ImportBundle) (*models.ImportResult, error) {
	args := m.Called(ctx, userID, bundle)
	r, _ := args.Get(0).(*models.ImportResult)
	return r, args.Error(1)
}
func (m *mockSettingsService) DeleteAccount(ctx context.Context, userID uuid.UUID) (*models.AccountDeletionResult, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*models.AccountDeletionResult)
	return r, args.Error(1)
}
