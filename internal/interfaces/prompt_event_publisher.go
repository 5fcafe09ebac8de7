package interfaces

import (
	"context"

	"prompt-manager/internal/models"
)

// PromptEventPublisher публикует события изменения промптов.
type PromptEventPublisher interface {
	PublishPromptEvent(ctx context.Context, event models.PromptEvent) error
}
