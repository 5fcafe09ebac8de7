package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/models"
	"prompt-manager/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ SettingsService = (*settingsServiceImpl)(nil)

type settingsServiceImpl struct {
	promptRepo interfaces.PromptRepository
	tokenRepo  interfaces.TokenRepository
	publisher  interfaces.PromptEventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewSettingsService creates the settings service. publisher may be nil.
func NewSettingsService(
	promptRepo interfaces.PromptRepository,
	tokenRepo interfaces.TokenRepository,
	publisher interfaces.PromptEventPublisher,
	logger *zap.Logger,
) SettingsService {
	return &settingsServiceImpl{
		promptRepo: promptRepo,
		tokenRepo:  tokenRepo,
		publisher:  publisher,
		logger:     logger.Named("SettingsService"),
		now:        time.Now,
	}
}

func (s *settingsServiceImpl) GetStatistics(ctx context.Context, userID uuid.UUID) (*models.Statistics, error) {
	return s.promptRepo.GetStatistics(ctx, userID)
}

func (s *settingsServiceImpl) Export(ctx context.Context, userID uuid.UUID) (*models.ExportBundle, error) {
	prompts, err := s.promptRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Prompts exported", zap.String("userID", userID.String()), zap.Int("count", len(prompts)))
	return &models.ExportBundle{
		Version:    models.ExportFormatVersion,
		ExportedAt: s.now().UTC(),
		Prompts:    prompts,
	}, nil
}

func (s *settingsServiceImpl) Import(ctx context.Context, userID uuid.UUID, bundle *models.ImportBundle) (*models.ImportResult, error) {
	if bundle == nil || strings.TrimSpace(bundle.Version) == "" {
		return nil, models.NewValidationError("version", "import file must have a version")
	}
	if bundle.Prompts == nil {
		return nil, models.NewValidationError("prompts", "import file must contain a prompts array")
	}
	log := s.logger.With(zap.String("userID", userID.String()), zap.Int("records", len(bundle.Prompts)))

	result := &models.ImportResult{}
	valid := make([]models.PromptInput, 0, len(bundle.Prompts))
	for i, rec := range bundle.Prompts {
		if strings.TrimSpace(rec.Title) == "" || strings.TrimSpace(rec.Content) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("prompt %d: title or content missing", i+1))
			continue
		}
		input, err := validation.ImportRecord(rec)
		if err != nil {
			var vErr *models.ValidationError
			msg := err.Error()
			if errors.As(err, &vErr) {
				msg = vErr.Field + ": " + vErr.Message
			}
			result.Errors = append(result.Errors, fmt.Sprintf("prompt %d: %s", i+1, msg))
			continue
		}
		valid = append(valid, input)
	}
	result.FailedCount = len(result.Errors)

	if len(valid) > 0 {
		inserted, err := s.promptRepo.BulkCreate(ctx, userID, valid)
		if err != nil {
			log.Error("Bulk insert failed during import", zap.Error(err))
			result.ImportedCount = 0
			result.FailedCount = len(bundle.Prompts)
			result.Errors = append(result.Errors, fmt.Sprintf("database insert error: %v", err))
		} else {
			result.ImportedCount = int(inserted)
		}
	}
	result.Success = result.FailedCount == 0

	if result.ImportedCount > 0 {
		publishEvent(ctx, s.publisher, s.logger, models.PromptEvent{
			EventType:  models.PromptEventImported,
			UserID:     userID,
			Count:      int64(result.ImportedCount),
			OccurredAt: s.now().UTC(),
		})
	}
	log.Info("Import finished", zap.Int("imported", result.ImportedCount), zap.Int("failed", result.FailedCount))
	return result, nil
}

// DeleteAccount удаляет все промпты пользователя и завершает все его сессии.
// Сама учетная запись остается.
func (s *settingsServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) (*models.AccountDeletionResult, error) {
	log := s.logger.With(zap.String("userID", userID.String()))
	deleted, err := s.promptRepo.DeleteAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, models.PromptEvent{
		EventType:  models.PromptEventPurged,
		UserID:     userID,
		Count:      deleted,
		OccurredAt: s.now().UTC(),
	})

	revoked, err := s.tokenRepo.DeleteTokensByUserID(ctx, userID)
	if err != nil {
		log.Error("Failed to revoke user sessions after data deletion", zap.Error(err))
		return nil, fmt.Errorf("prompts deleted but sessions were not revoked: %w", err)
	}

	log.Info("Account data deleted", zap.Int64("deletedPrompts", deleted), zap.Int64("revokedTokens", revoked))
	return &models.AccountDeletionResult{
		DeletedPrompts: deleted,
		Message:        fmt.Sprintf("Deleted %d prompts and signed out of all sessions", deleted),
	}, nil
}
