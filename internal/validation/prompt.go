// Package validation holds the field rules for prompts and credentials.
// The server enforces them before touching the database; the terminal
// client runs the same checks to show inline errors before any request.
package validation

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"prompt-manager/internal/models"
)

const (
	TitleMaxLength       = 200
	DescriptionMaxLength = 1000
	ContentMaxLength     = 100000
	MaxTags              = 10
	TagMaxLength         = 50

	// TagSeparator разделяет теги в строке запроса и в поле ввода, внутри тега он запрещен.
	TagSeparator = ","

	PasswordMinLength = 8
	PasswordMaxLength = 72 // предел bcrypt
)

// NormalizeTag trims and uppercases a tag.
func NormalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// NormalizeTags normalizes tags and rejects empty, oversized and duplicate ones.
// A nil input yields an empty, non-nil slice.
func NormalizeTags(tags []string) ([]string, error) {
	if len(tags) > MaxTags {
		return nil, models.NewValidationError("tags", "at most %d tags are allowed", MaxTags)
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag := NormalizeTag(raw)
		if tag == "" {
			return nil, models.NewValidationError("tags", "tag must not be empty")
		}
		if strings.Contains(tag, TagSeparator) {
			return nil, models.NewValidationError("tags", "tag %q must not contain %q", tag, TagSeparator)
		}
		if utf8.RuneCountInString(tag) > TagMaxLength {
			return nil, models.NewValidationError("tags", "tag %q is longer than %d characters", tag, TagMaxLength)
		}
		if _, dup := seen[tag]; dup {
			return nil, models.NewValidationError("tags", "duplicate tag %q", tag)
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out, nil
}

// LenientTags normalizes tags, silently dropping empty and repeated entries.
// A value like "go,sql" is split into separate tags.
// Used for imported records, where only title and content are mandatory.
func LenientTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		for _, part := range strings.Split(raw, TagSeparator) {
			tag := NormalizeTag(part)
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// SplitTags разбирает строку вида "go, sql ,ai" в срез тегов.
func SplitTags(s string) []string {
	parts := strings.Split(s, TagSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func checkTitle(title string) error {
	if title == "" {
		return models.NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > TitleMaxLength {
		return models.NewValidationError("title", "title must be at most %d characters", TitleMaxLength)
	}
	return nil
}

func checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("content", "content is required")
	}
	if utf8.RuneCountInString(content) > ContentMaxLength {
		return models.NewValidationError("content", "content must be at most %d characters", ContentMaxLength)
	}
	return nil
}

// normalizeDescription: пустое описание хранится как NULL.
func normalizeDescription(d *string) (*string, error) {
	if d == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > DescriptionMaxLength {
		return nil, models.NewValidationError("description", "description must be at most %d characters", DescriptionMaxLength)
	}
	return &trimmed, nil
}

// PromptInput validates in and normalizes it in place.
func PromptInput(in *models.PromptInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if err := checkTitle(in.Title); err != nil {
		return err
	}
	if err := checkContent(in.Content); err != nil {
		return err
	}
	desc, err := normalizeDescription(in.Description)
	if err != nil {
		return err
	}
	in.Description = desc
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return err
	}
	in.Tags = tags
	return nil
}

// PromptUpdate validates the fields present in u and normalizes them in place.
// An empty description becomes an empty string, which the repository stores as NULL.
func PromptUpdate(u *models.PromptUpdate) error {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if err := checkTitle(title); err != nil {
			return err
		}
		u.Title = &title
	}
	if u.Content != nil {
		if err := checkContent(*u.Content); err != nil {
			return err
		}
	}
	if u.Description != nil {
		desc, err := normalizeDescription(u.Description)
		if err != nil {
			return err
		}
		if desc == nil {
			empty := ""
			desc = &empty
		}
		u.Description = desc
	}
	if u.Tags != nil {
		tags, err := NormalizeTags(u.Tags)
		if err != nil {
			return err
		}
		u.Tags = tags
	}
	return nil
}

// ImportRecord converts an imported record into a PromptInput.
// Title and content are mandatory, the rest gets defaults.
func ImportRecord(rec models.ImportRecord) (models.PromptInput, error) {
	in := models.PromptInput{
		Title:       strings.TrimSpace(rec.Title),
		Description: rec.Description,
		Content:     rec.Content,
		Tags:        LenientTags(rec.Tags),
	}
	if rec.IsFavorite != nil {
		in.IsFavorite = *rec.IsFavorite
	}
	if err := PromptInput(&in); err != nil {
		return models.PromptInput{}, err
	}
	return in, nil
}

// Email lowercases and validates an address.
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", models.NewValidationError("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", models.NewValidationError("email", "invalid email format")
	}
	return email, nil
}

// Password checks length and that at least one letter and one digit are present.
func Password(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength || len(password) > PasswordMaxLength {
		return models.NewValidationError("password", "password length must be between %d and %d characters", PasswordMinLength, PasswordMaxLength)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if hasLetter && hasDigit {
			return nil
		}
	}
	return models.NewValidationError("password", "password must contain at least one letter and one digit")
}
