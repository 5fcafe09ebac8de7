package models

import (
	"fmt"
	"strings"
)

// TagMode - режим сопоставления тегов в фильтре.
type TagMode string

const (
	// TagModeAll - у промпта должны быть все выбранные теги (AND).
	TagModeAll TagMode = "all"
	// TagModeAny - достаточно одного из выбранных тегов (OR).
	TagModeAny TagMode = "any"
)

// ParseTagMode accepts all/and and any/or in any case. Empty input means TagModeAny.
func ParseTagMode(s string) (TagMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "or":
		return TagModeAny, nil
	case "all", "and":
		return TagModeAll, nil
	default:
		return "", NewValidationError("tag_mode", "unknown tag mode %q", s)
	}
}

// PromptFilter - критерии поиска промптов.
type PromptFilter struct {
	Query      string   `json:"query"`
	Tags       []string `json:"tags"`
	TagMode    TagMode  `json:"tag_mode"`
	IsFavorite *bool    `json:"is_favorite,omitempty"` // nil - без фильтра по избранному
}

// DefaultPromptFilter возвращает фильтр, при котором видны все промпты.
func DefaultPromptFilter() PromptFilter {
	return PromptFilter{
		Query:   "",
		Tags:    []string{},
		TagMode: TagModeAny,
	}
}

// Normalized trims the query, uppercases and dedupes tags and defaults the tag mode.
func (f PromptFilter) Normalized() PromptFilter {
	out := PromptFilter{
		Query:   strings.TrimSpace(f.Query),
		Tags:    make([]string, 0, len(f.Tags)),
		TagMode: f.TagMode,
	}
	if out.TagMode != TagModeAll {
		out.TagMode = TagModeAny
	}
	seen := make(map[string]struct{}, len(f.Tags))
	for _, t := range f.Tags {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out.Tags = append(out.Tags, t)
	}
	if f.IsFavorite != nil {
		v := *f.IsFavorite
		out.IsFavorite = &v
	}
	return out
}

// Clone returns a deep copy.
func (f PromptFilter) Clone() PromptFilter {
	out := f
	out.Tags = append([]string{}, f.Tags...)
	if f.IsFavorite != nil {
		v := *f.IsFavorite
		out.IsFavorite = &v
	}
	return out
}

// Equal compares two filters field by field. Tag order matters.
func (f PromptFilter) Equal(o PromptFilter) bool {
	return f.Query == o.Query && f.SameNonText(o)
}

// SameNonText compares everything except the free-text query.
func (f PromptFilter) SameNonText(o PromptFilter) bool {
	if f.TagMode != o.TagMode || len(f.Tags) != len(o.Tags) {
		return false
	}
	for i := range f.Tags {
		if f.Tags[i] != o.Tags[i] {
			return false
		}
	}
	switch {
	case f.IsFavorite == nil && o.IsFavorite == nil:
		return true
	case f.IsFavorite == nil || o.IsFavorite == nil:
		return false
	default:
		return *f.IsFavorite == *o.IsFavorite
	}
}

// HasTag reports whether tag is selected.
func (f PromptFilter) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (f PromptFilter) String() string {
	fav := "any"
	if f.IsFavorite != nil {
		fav = fmt.Sprintf("%t", *f.IsFavorite)
	}
	return fmt.Sprintf("query=%q tags=%v mode=%s favorite=%s", f.Query, f.Tags, f.TagMode, fav)
}

// BoolPtr - вспомогательная функция для опциональных флагов.
func BoolPtr(v bool) *bool {
	return &v
}

// StringPtr - вспомогательная функция для опциональных строк.
func StringPtr(v string) *string {
	return &v
}
