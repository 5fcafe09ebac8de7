package interfaces

import (
	"context"

	"prompt-manager/internal/models"

	"github.com/google/uuid"
)

// PromptRepository хранит промпты. Каждый метод принимает userID владельца,
// и каждая выборка или изменение ограничены его записями.
type PromptRepository interface {
	// Create вставляет промпт и заполняет ID и временные метки.
	Create(ctx context.Context, prompt *models.Prompt) error

	// GetByID returns models.ErrPromptNotFound when the prompt does not exist or belongs to someone else.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Prompt, error)

	// Update применяет частичное обновление и возвращает актуальную запись.
	Update(ctx context.Context, userID, id uuid.UUID, upd models.PromptUpdate) (*models.Prompt, error)

	Delete(ctx context.Context, userID, id uuid.UUID) error

	// Search returns the user's prompts matching filter, most recently updated first.
	Search(ctx context.Context, userID uuid.UUID, filter models.PromptFilter) ([]models.Prompt, error)

	// ListTags returns the distinct tags of the user, sorted.
	ListTags(ctx context.Context, userID uuid.UUID) ([]string, error)

	GetStatistics(ctx context.Context, userID uuid.UUID) (*models.Statistics, error)

	// ListAll возвращает все промпты пользователя, новые (по created_at) первыми.
	ListAll(ctx context.Context, userID uuid.UUID) ([]models.Prompt, error)

	// BulkCreate вставляет все записи одной операцией: либо все, либо ни одной.
	BulkCreate(ctx context.Context, userID uuid.UUID, inputs []models.PromptInput) (int64, error)

	// DeleteAllByUser удаляет все промпты пользователя и возвращает их количество.
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
