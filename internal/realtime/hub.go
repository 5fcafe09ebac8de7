// Package realtime рассылает события изменения промптов открытым
// WebSocket-соединениям их владельцев.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время ожидания pong от клиента.
	pongWait = 60 * time.Second
	// Период пингов. Должен быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Клиент ничего не присылает, кроме управляющих фреймов.
	maxMessageSize = 512
	sendBufferSize = 64
)

var _ interfaces.PromptEventPublisher = (*Hub)(nil)

// client - одно WebSocket-соединение пользователя.
type client struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
}

// Hub хранит соединения по пользователям. У пользователя может быть несколько сессий.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uuid.UUID]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
	closed   bool
}

// NewHub создает хаб. allowedOrigins пуст - проверка Origin отключена
// (терминальный клиент Origin не присылает).
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &Hub{
		clients: make(map[uuid.UUID]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		logger: logger.Named("RealtimeHub"),
	}
}

// ServeWS переводит запрос уже аутентифицированного пользователя в WebSocket.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader уже записал ответ с ошибкой
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBufferSize)}
	if !h.register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return nil
	}
	log := h.logger.With(zap.String("userID", userID.String()))
	log.Info("WebSocket connection established")

	go h.writePump(c, log)
	go h.readPump(c, log)
	return nil
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// ConnectionCount возвращает число открытых соединений пользователя.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUser ставит сообщение в очередь всем соединениям пользователя.
// Возвращает число соединений, принявших сообщение.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- message:
			delivered++
		default:
			h.logger.Warn("Send queue is full, dropping message", zap.String("userID", userID.String()))
		}
	}
	return delivered
}

// PublishPromptEvent отправляет событие владельцу промптов.
func (h *Hub) PublishPromptEvent(_ context.Context, event models.PromptEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal prompt event: %w", err)
	}
	n := h.SendToUser(event.UserID, body)
	h.logger.Debug("Prompt event pushed", zap.String("userID", event.UserID.String()), zap.Int("connections", n))
	return nil
}

// Close закрывает все соединения. Новые соединения после Close отклоняются.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

// readPump читает управляющие фреймы и держит дедлайн по pong.
func (h *Hub) readPump(c *client, log *zap.Logger) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		log.Info("WebSocket connection closed")
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		// Сообщения от клиента игнорируются
	}
}

// writePump пишет по одному событию на фрейм и шлет пинги.
func (h *Hub) writePump(c *client, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("Failed to write message", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}
