package service

import (
	"context"

	"prompt-manager/internal/models"

	"github.com/google/uuid"
)

// SettingsService - статистика, экспорт/импорт и удаление данных аккаунта.
type SettingsService interface {
	GetStatistics(ctx context.Context, userID uuid.UUID) (*models.Statistics, error)
	Export(ctx context.Context, userID uuid.UUID) (*models.ExportBundle, error)
	// Import never fails because of individual records: they are reported in ImportResult.
	Import(ctx context.Context, userID uuid.UUID, bundle *models.ImportBundle) (*models.ImportResult, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) (*models.AccountDeletionResult, error)
}
