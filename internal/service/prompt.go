package service

import (
	"context"

	"prompt-manager/internal/models"

	"github.com/google/uuid"
)

// PromptService - операции над промптами пользователя.
// Все методы принимают userID из токена, а не из тела запроса.
type PromptService interface {
	Create(ctx context.Context, userID uuid.UUID, input models.PromptInput) (*models.Prompt, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Prompt, error)
	Update(ctx context.Context, userID, id uuid.UUID, upd models.PromptUpdate) (*models.Prompt, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Search(ctx context.Context, userID uuid.UUID, filter models.PromptFilter) ([]models.Prompt, error)
	ListTags(ctx context.Context, userID uuid.UUID) ([]string, error)
}
