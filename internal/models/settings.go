package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportFormatVersion - версия формата файла экспорта.
const ExportFormatVersion = "1.0"

// Statistics - агрегаты по промптам пользователя.
type Statistics struct {
	TotalPrompts  int `json:"total_prompts" db:"total_prompts"`
	TotalTags     int `json:"total_tags" db:"total_tags"`
	FavoriteCount int `json:"favorite_count" db:"favorite_count"`
}

// ExportBundle - конверт для выгрузки всех промптов пользователя.
type ExportBundle struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Prompts    []Prompt  `json:"prompts"`
}

// ExportFileName возвращает имя файла выгрузки: prompts_export_YYYYMMDD.json (UTC).
func ExportFileName(t time.Time) string {
	return "prompts_export_" + t.UTC().Format("20060102") + ".json"
}

// ImportRecord - запись из файла импорта. Поля id, user_id и даты игнорируются.
type ImportRecord struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags,omitempty"`
	IsFavorite  *bool    `json:"is_favorite,omitempty"`
}

// ImportBundle - входной документ импорта. Совместим с ExportBundle.
type ImportBundle struct {
	Version string         `json:"version"`
	Prompts []ImportRecord `json:"prompts"`
}

// ImportResult - итог импорта: частичный успех не является ошибкой.
type ImportResult struct {
	Success       bool     `json:"success"`
	ImportedCount int      `json:"imported_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}

// AccountDeletionResult - итог удаления данных аккаунта.
type AccountDeletionResult struct {
	DeletedPrompts int64  `json:"deleted_prompts"`
	Message        string `json:"message"`
}

// PromptEventType - тип события изменения промптов.
type PromptEventType string

const (
	PromptEventCreated  PromptEventType = "created"
	PromptEventUpdated  PromptEventType = "updated"
	PromptEventDeleted  PromptEventType = "deleted"
	PromptEventImported PromptEventType = "imported"
	PromptEventPurged   PromptEventType = "purged"
)

// PromptEvent публикуется после каждого успешного изменения промптов.
type PromptEvent struct {
	EventType  PromptEventType `json:"event_type"`
	UserID     uuid.UUID       `json:"user_id"`
	PromptID   *uuid.UUID      `json:"prompt_id,omitempty"` // nil для массовых операций
	Count      int64           `json:"count,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
