package client

import (
	"errors"
	"fmt"
	"net/http"

	"prompt-manager/internal/models"
)

// APIError - ответ сервера с кодом ошибки.
// Unwrap сопоставляет код с ошибками models, поэтому работают errors.Is и errors.As.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s, status %d)", e.Code, e.Message, e.Field, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case models.ErrCodeValidation:
		return &models.ValidationError{Field: e.Field, Message: e.Message}
	case models.ErrCodeBadRequest:
		return models.ErrInvalidInput
	case models.ErrCodeWrongCredentials:
		return models.ErrInvalidCredentials
	case models.ErrCodeDuplicateEmail:
		return models.ErrEmailAlreadyExists
	case models.ErrCodeUserNotFound:
		return models.ErrUserNotFound
	case models.ErrCodePromptNotFound:
		return models.ErrPromptNotFound
	case models.ErrCodeNotFound:
		return models.ErrNotFound
	case models.ErrCodeTokenInvalid:
		return models.ErrTokenInvalid
	case models.ErrCodeTokenExpired:
		return models.ErrTokenExpired
	case models.ErrCodeUnauthorized:
		return models.ErrUnauthorized
	case models.ErrCodeForbidden:
		return models.ErrForbidden
	case models.ErrCodeInternal:
		return models.ErrInternalServer
	default:
		return nil
	}
}

// IsAuthError reports whether err means the session is no longer valid.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized && apiErr.Code != models.ErrCodeWrongCredentials
}
