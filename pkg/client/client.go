// Package client - типизированный клиент HTTP API prompt-manager.
// Каждая операция - один запрос: без повторов, кэша и пакетной отправки.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"prompt-manager/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// User - ответ /api/me.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}

type promptList struct {
	Data  []models.Prompt `json:"data"`
	Count int             `json:"count"`
}

type tagList struct {
	Tags []string `json:"tags"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu       sync.RWMutex
	tokens   *models.TokenDetails
	onTokens func(*models.TokenDetails)
}

// New создает клиент. baseURL - адрес сервера без завершающего слэша.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "api_client").Logger(),
	}, nil
}

// SetTokens задает текущую сессию (например, восстановленную из файла).
func (c *Client) SetTokens(td *models.TokenDetails) {
	c.mu.Lock()
	c.tokens = td
	fn := c.onTokens
	c.mu.Unlock()
	if fn != nil {
		fn(td)
	}
}

// Tokens возвращает текущую сессию или nil.
func (c *Client) Tokens() *models.TokenDetails {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// Authenticated reports whether a session is present.
func (c *Client) Authenticated() bool {
	return c.Tokens() != nil
}

// OnTokensChanged вызывается при входе, обновлении и сбросе сессии.
func (c *Client) OnTokensChanged(fn func(*models.TokenDetails)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTokens = fn
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken
}

// send выполняет запрос и возвращает заголовки и тело успешного ответа.
// Ответ со статусом >= 400 превращается в *APIError.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload interface{}, authorized bool) (http.Header, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	log := c.logger.With().Str("method", method).Str("path", path).Logger()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		token := c.accessToken()
		if token == "" {
			return nil, nil, models.ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("HTTP request failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("request timed out: %w", err)
		}
		return nil, nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	log.Debug().Int("status", resp.StatusCode).Dur("latency", time.Since(started)).Msg("HTTP request completed")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, nil, decodeAPIError(resp.StatusCode, respBody)
	}
	return resp.Header, respBody, nil
}

func decodeAPIError(status int, body []byte) error {
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Code == "" {
		return &APIError{StatusCode: status, Code: models.ErrCodeInternal, Message: http.StatusText(status)}
	}
	return &APIError{StatusCode: status, Code: errResp.Code, Message: errResp.Message, Field: errResp.Field}
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload, out interface{}, authorized bool) error {
	_, body, err := c.send(ctx, method, path, query, payload, authorized)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid response format: %w", err)
	}
	return nil
}

// --- Аутентификация ---

func (c *Client) Register(ctx context.Context, email, password string) error {
	req := map[string]string{"email": email, "password": password}
	return c.call(ctx, http.MethodPost, "/auth/register", nil, req, nil, false)
}

// Login входит и запоминает токены.
func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenDetails, error) {
	var tokens models.TokenDetails
	req := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/auth/login", nil, req, &tokens, false); err != nil {
		return nil, err
	}
	c.SetTokens(&tokens)
	return &tokens, nil
}

// Logout отзывает токены на сервере. Локальная сессия сбрасывается в любом случае.
func (c *Client) Logout(ctx context.Context) error {
	tokens := c.Tokens()
	if tokens == nil {
		return nil
	}
	req := map[string]string{"refresh_token": tokens.RefreshToken}
	err := c.call(ctx, http.MethodPost, "/auth/logout", nil, req, nil, true)
	c.SetTokens(nil)
	return err
}

// Refresh обменивает refresh-токен на новую пару.
func (c *Client) Refresh(ctx context.Context) error {
	tokens := c.Tokens()
	if tokens == nil {
		return models.ErrUnauthorized
	}
	var fresh models.TokenDetails
	req := map[string]string{"refresh_token": tokens.RefreshToken}
	if err := c.call(ctx, http.MethodPost, "/auth/refresh", nil, req, &fresh, false); err != nil {
		return err
	}
	c.SetTokens(&fresh)
	return nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodGet, "/api/me", nil, nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Промпты ---

// FilterQuery кодирует фильтр в параметры запроса /api/prompts.
func FilterQuery(filter models.PromptFilter) url.Values {
	q := url.Values{}
	if s := strings.TrimSpace(filter.Query); s != "" {
		q.Set("q", s)
	}
	if len(filter.Tags) > 0 {
		q.Set("tags", strings.Join(filter.Tags, ","))
	}
	if filter.TagMode != "" {
		q.Set("tag_mode", string(filter.TagMode))
	}
	if filter.IsFavorite != nil {
		q.Set("favorite", strconv.FormatBool(*filter.IsFavorite))
	}
	return q
}

func (c *Client) SearchPrompts(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, error) {
	var list promptList
	if err := c.call(ctx, http.MethodGet, "/api/prompts", FilterQuery(filter), nil, &list, true); err != nil {
		return nil, err
	}
	return list.Data, nil
}

func (c *Client) GetPrompt(ctx context.Context, id uuid.UUID) (*models.Prompt, error) {
	var p models.Prompt
	if err := c.call(ctx, http.MethodGet, "/api/prompts/"+id.String(), nil, nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePrompt(ctx context.Context, input models.PromptInput) (*models.Prompt, error) {
	var p models.Prompt
	if err := c.call(ctx, http.MethodPost, "/api/prompts", nil, input, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePrompt(ctx context.Context, id uuid.UUID, upd models.PromptUpdate) (*models.Prompt, error) {
	var p models.Prompt
	if err := c.call(ctx, http.MethodPatch, "/api/prompts/"+id.String(), nil, upd, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePrompt(ctx context.Context, id uuid.UUID) error {
	return c.call(ctx, http.MethodDelete, "/api/prompts/"+id.String(), nil, nil, nil, true)
}

func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	var list tagList
	if err := c.call(ctx, http.MethodGet, "/api/tags", nil, nil, &list, true); err != nil {
		return nil, err
	}
	return list.Tags, nil
}

// --- Настройки ---

func (c *Client) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	var st models.Statistics
	if err := c.call(ctx, http.MethodGet, "/api/settings/statistics", nil, nil, &st, true); err != nil {
		return nil, err
	}
	return &st, nil
}

// Export возвращает тело файла выгрузки и имя файла из Content-Disposition.
func (c *Client) Export(ctx context.Context) ([]byte, string, error) {
	header, body, err := c.send(ctx, http.MethodGet, "/api/settings/export", nil, nil, true)
	if err != nil {
		return nil, "", err
	}
	fileName := fileNameFromDisposition(header.Get("Content-Disposition"))
	if fileName == "" {
		fileName = models.ExportFileName(time.Now())
	}
	return body, fileName, nil
}

func fileNameFromDisposition(v string) string {
	_, after, ok := strings.Cut(v, "filename=")
	if !ok {
		return ""
	}
	return strings.Trim(strings.TrimSpace(after), `"`)
}

func (c *Client) Import(ctx context.Context, bundle *models.ImportBundle) (*models.ImportResult, error) {
	var result models.ImportResult
	if err := c.call(ctx, http.MethodPost, "/api/settings/import", nil, bundle, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteAccount(ctx context.Context) (*models.AccountDeletionResult, error) {
	var result models.AccountDeletionResult
	if err := c.call(ctx, http.MethodDelete, "/api/account", nil, nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}
