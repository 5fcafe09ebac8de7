package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgPromptRepository implements PromptRepository
var _ interfaces.PromptRepository = (*pgPromptRepository)(nil)

const (
	promptFields = `id, user_id, title, description, content, tags, is_favorite, created_at, updated_at`

	createPromptQuery = `INSERT INTO prompts (user_id, title, description, content, tags, is_favorite)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at`
	getPromptQuery        = `SELECT ` + promptFields + ` FROM prompts WHERE user_id = $1 AND id = $2`
	deletePromptQuery     = `DELETE FROM prompts WHERE user_id = $1 AND id = $2`
	listTagsQuery         = `SELECT DISTINCT t FROM prompts, unnest(tags) AS t WHERE user_id = $1 ORDER BY t`
	listAllPromptsQuery   = `SELECT ` + promptFields + ` FROM prompts WHERE user_id = $1 ORDER BY created_at DESC, id`
	deleteAllPromptsQuery = `DELETE FROM prompts WHERE user_id = $1`
	statisticsQuery       = `SELECT
    (SELECT COUNT(*) FROM prompts WHERE user_id = $1) AS total_prompts,
    (SELECT COUNT(DISTINCT t) FROM prompts, unnest(tags) AS t WHERE user_id = $1) AS total_tags,
    (SELECT COUNT(*) FROM prompts WHERE user_id = $1 AND is_favorite) AS favorite_count`
)

var copyPromptColumns = []string{"user_id", "title", "description", "content", "tags", "is_favorite", "created_at", "updated_at"}

type pgPromptRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgPromptRepository creates a new PostgreSQL-backed PromptRepository.
func NewPgPromptRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.PromptRepository {
	return &pgPromptRepository{
		db:     db,
		logger: logger.Named("PgPromptRepo"),
	}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (r *pgPromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	prompt.Tags = nonNilTags(prompt.Tags)
	err := r.db.QueryRow(ctx, createPromptQuery,
		prompt.UserID, prompt.Title, prompt.Description, prompt.Content, prompt.Tags, prompt.IsFavorite,
	).Scan(&prompt.ID, &prompt.CreatedAt, &prompt.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create prompt", zap.Error(err), zap.String("userID", prompt.UserID.String()))
		return fmt.Errorf("failed to create prompt: %w", err)
	}
	r.logger.Info("Prompt created", zap.String("promptID", prompt.ID.String()), zap.String("userID", prompt.UserID.String()))
	return nil
}

func (r *pgPromptRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := pgxscan.Get(ctx, r.db, &prompt, getPromptQuery, userID, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrPromptNotFound
		}
		r.logger.Error("Failed to get prompt", zap.Error(err), zap.String("promptID", id.String()))
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}
	return &prompt, nil
}

// buildUpdateQuery собирает UPDATE только из переданных полей. updated_at обновляется всегда.
func buildUpdateQuery(userID, id uuid.UUID, upd models.PromptUpdate) (string, []interface{}) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{userID, id}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf(clause, len(args)))
	}

	if upd.Title != nil {
		add("title = $%d", *upd.Title)
	}
	if upd.Description != nil {
		add("description = NULLIF($%d, '')", *upd.Description)
	}
	if upd.Content != nil {
		add("content = $%d", *upd.Content)
	}
	if upd.Tags != nil {
		add("tags = $%d", upd.Tags)
	}
	if upd.IsFavorite != nil {
		add("is_favorite = $%d", *upd.IsFavorite)
	}

	query := fmt.Sprintf(`UPDATE prompts SET %s WHERE user_id = $1 AND id = $2 RETURNING %s`,
		strings.Join(setClauses, ", "), promptFields)
	return query, args
}

func (r *pgPromptRepository) Update(ctx context.Context, userID, id uuid.UUID, upd models.PromptUpdate) (*models.Prompt, error) {
	query, args := buildUpdateQuery(userID, id, upd)
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("promptID", id.String()))

	var prompt models.Prompt
	if err := pgxscan.Get(ctx, r.db, &prompt, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrPromptNotFound
		}
		r.logger.Error("Failed to update prompt", zap.Error(err), zap.String("promptID", id.String()))
		return nil, fmt.Errorf("failed to update prompt: %w", err)
	}
	r.logger.Info("Prompt updated", zap.String("promptID", id.String()), zap.String("userID", userID.String()))
	return &prompt, nil
}

func (r *pgPromptRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, deletePromptQuery, userID, id)
	if err != nil {
		r.logger.Error("Failed to delete prompt", zap.Error(err), zap.String("promptID", id.String()))
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrPromptNotFound
	}
	r.logger.Info("Prompt deleted", zap.String("promptID", id.String()), zap.String("userID", userID.String()))
	return nil
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// buildSearchQuery собирает запрос поиска. Пустые критерии не добавляют условий.
func buildSearchQuery(userID uuid.UUID, filter models.PromptFilter) (string, []interface{}) {
	f := filter.Normalized()
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if f.IsFavorite != nil {
		args = append(args, *f.IsFavorite)
		conditions = append(conditions, fmt.Sprintf("is_favorite = $%d", len(args)))
	}
	if len(f.Tags) > 0 {
		args = append(args, f.Tags)
		op := "&&"
		if f.TagMode == models.TagModeAll {
			op = "@>"
		}
		conditions = append(conditions, fmt.Sprintf("tags %s $%d", op, len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+escapeLike(f.Query)+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%[1]d OR content ILIKE $%[1]d)", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM prompts WHERE %s ORDER BY updated_at DESC, id`,
		promptFields, strings.Join(conditions, " AND "))
	return query, args
}

func (r *pgPromptRepository) Search(ctx context.Context, userID uuid.UUID, filter models.PromptFilter) ([]models.Prompt, error) {
	query, args := buildSearchQuery(userID, filter)
	r.logger.Debug("Searching prompts", zap.String("userID", userID.String()), zap.Stringer("filter", filter))

	prompts := make([]models.Prompt, 0)
	if err := pgxscan.Select(ctx, r.db, &prompts, query, args...); err != nil {
		r.logger.Error("Failed to search prompts", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to search prompts: %w", err)
	}
	return prompts, nil
}

func (r *pgPromptRepository) ListTags(ctx context.Context, userID uuid.UUID) ([]string, error) {
	tags := make([]string, 0)
	if err := pgxscan.Select(ctx, r.db, &tags, listTagsQuery, userID); err != nil {
		r.logger.Error("Failed to list tags", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (r *pgPromptRepository) GetStatistics(ctx context.Context, userID uuid.UUID) (*models.Statistics, error) {
	var stats models.Statistics
	if err := pgxscan.Get(ctx, r.db, &stats, statisticsQuery, userID); err != nil {
		r.logger.Error("Failed to get statistics", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	return &stats, nil
}

func (r *pgPromptRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]models.Prompt, error) {
	prompts := make([]models.Prompt, 0)
	if err := pgxscan.Select(ctx, r.db, &prompts, listAllPromptsQuery, userID); err != nil {
		r.logger.Error("Failed to list prompts", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return prompts, nil
}

// BulkCreate вставляет записи через COPY. COPY атомарен: при ошибке не вставляется ничего.
func (r *pgPromptRepository) BulkCreate(ctx context.Context, userID uuid.UUID, inputs []models.PromptInput) (int64, error) {
	if len(inputs) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([][]interface{}, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, []interface{}{userID, in.Title, in.Description, in.Content, nonNilTags(in.Tags), in.IsFavorite, now, now})
	}

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"prompts"}, copyPromptColumns, pgx.CopyFromRows(rows))
	if err != nil {
		r.logger.Error("Failed to bulk insert prompts", zap.Error(err), zap.String("userID", userID.String()), zap.Int("count", len(inputs)))
		return 0, fmt.Errorf("failed to bulk insert prompts: %w", err)
	}
	r.logger.Info("Prompts bulk inserted", zap.String("userID", userID.String()), zap.Int64("count", n))
	return n, nil
}

func (r *pgPromptRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, deleteAllPromptsQuery, userID)
	if err != nil {
		r.logger.Error("Failed to delete user prompts", zap.Error(err), zap.String("userID", userID.String()))
		return 0, fmt.Errorf("failed to delete user prompts: %w", err)
	}
	r.logger.Info("All user prompts deleted", zap.String("userID", userID.String()), zap.Int64("count", cmdTag.RowsAffected()))
	return cmdTag.RowsAffected(), nil
}
