package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prompt-manager/internal/models"

	"github.com/gorilla/websocket"
)

const handshakeTimeout = 10 * time.Second

// EventHandler получает события изменения промптов.
type EventHandler func(models.PromptEvent)

// Events подписывается на /api/events и вызывает handler для каждого события.
// Блокируется до отмены ctx (возвращает nil) или разрыва соединения (возвращает ошибку).
func (c *Client) Events(ctx context.Context, handler EventHandler) error {
	token := c.accessToken()
	if token == "" {
		return models.ErrUnauthorized
	}

	wsURL := c.baseURL + "/api/events"
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode >= http.StatusBadRequest {
				return decodeAPIError(resp.StatusCode, body)
			}
		}
		return fmt.Errorf("failed to open event stream: %w", err)
	}
	defer conn.Close()
	c.logger.Info().Str("url", wsURL).Msg("Event stream connected")

	// Закрываем соединение при отмене контекста, чтобы разблокировать ReadMessage
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			c.logger.Warn().Err(err).Msg("Event stream read failed")
			return fmt.Errorf("event stream closed: %w", err)
		}

		var event models.PromptEvent
		if err := json.Unmarshal(data, &event); err != nil {
			c.logger.Warn().Err(err).Msg("Skipping malformed event")
			continue
		}
		handler(event)
	}
}
