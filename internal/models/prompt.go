package models

import (
	"time"

	"github.com/google/uuid"
)

// Prompt - пользовательская запись с текстом промпта.
type Prompt struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Content     string    `db:"content" json:"content"`
	Tags        []string  `db:"tags" json:"tags"`
	IsFavorite  bool      `db:"is_favorite" json:"is_favorite"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// HasTag reports whether the prompt carries tag (exact match, tags are stored uppercase).
func (p *Prompt) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PromptInput - данные для создания промпта.
type PromptInput struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	IsFavorite  bool     `json:"is_favorite"`
}

// PromptUpdate - частичное обновление. nil означает "не менять".
// Tags == nil не меняет теги, пустой срез очищает их.
type PromptUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Content     *string  `json:"content,omitempty"`
	Tags        []string `json:"tags"`
	IsFavorite  *bool    `json:"is_favorite,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u PromptUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Content == nil && u.Tags == nil && u.IsFavorite == nil
}
