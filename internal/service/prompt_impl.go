package service

import (
	"context"
	"time"

	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/models"
	"prompt-manager/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ PromptService = (*promptServiceImpl)(nil)

type promptServiceImpl struct {
	repo      interfaces.PromptRepository
	publisher interfaces.PromptEventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPromptService создает сервис промптов. publisher может быть nil.
func NewPromptService(repo interfaces.PromptRepository, publisher interfaces.PromptEventPublisher, logger *zap.Logger) PromptService {
	return &promptServiceImpl{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("PromptService"),
		now:       time.Now,
	}
}

func (s *promptServiceImpl) Create(ctx context.Context, userID uuid.UUID, input models.PromptInput) (*models.Prompt, error) {
	if err := validation.PromptInput(&input); err != nil {
		return nil, err
	}
	prompt := &models.Prompt{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Content:     input.Content,
		Tags:        input.Tags,
		IsFavorite:  input.IsFavorite,
	}
	if err := s.repo.Create(ctx, prompt); err != nil {
		return nil, err
	}
	publishEvent(ctx, s.publisher, s.logger, models.PromptEvent{
		EventType:  models.PromptEventCreated,
		UserID:     userID,
		PromptID:   &prompt.ID,
		OccurredAt: s.now().UTC(),
	})
	return prompt, nil
}

func (s *promptServiceImpl) Get(ctx context.Context, userID, id uuid.UUID) (*models.Prompt, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *promptServiceImpl) Update(ctx context.Context, userID, id uuid.UUID, upd models.PromptUpdate) (*models.Prompt, error) {
	if upd.IsEmpty() {
		return nil, models.NewValidationError("", "no fields to update")
	}
	if err := validation.PromptUpdate(&upd); err != nil {
		return nil, err
	}
	prompt, err := s.repo.Update(ctx, userID, id, upd)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.publisher, s.logger, models.PromptEvent{
		EventType:  models.PromptEventUpdated,
		UserID:     userID,
		PromptID:   &prompt.ID,
		OccurredAt: s.now().UTC(),
	})
	return prompt, nil
}

func (s *promptServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	publishEvent(ctx, s.publisher, s.logger, models.PromptEvent{
		EventType:  models.PromptEventDeleted,
		UserID:     userID,
		PromptID:   &id,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

func (s *promptServiceImpl) Search(ctx context.Context, userID uuid.UUID, filter models.PromptFilter) ([]models.Prompt, error) {
	return s.repo.Search(ctx, userID, filter.Normalized())
}

func (s *promptServiceImpl) ListTags(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.repo.ListTags(ctx, userID)
}

// publishEvent публикует событие. Ошибки только логируются: изменение уже сохранено.
func publishEvent(ctx context.Context, publisher interfaces.PromptEventPublisher, logger *zap.Logger, event models.PromptEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishPromptEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish prompt event",
			zap.Error(err),
			zap.String("eventType", string(event.EventType)),
			zap.String("userID", event.UserID.String()),
		)
	}
}
