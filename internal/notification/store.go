// Package notification хранит всплывающие уведомления клиента.
// Store создается потребителем и передается явно, глобального экземпляра нет.
package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Type - вид уведомления.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// DefaultDuration - время жизни уведомления по умолчанию.
const DefaultDuration = 6 * time.Second

// Notification - одно уведомление. Duration == 0 означает "не скрывать автоматически".
type Notification struct {
	ID        string
	Message   string
	Type      Type
	Duration  time.Duration
	CreatedAt time.Time
}

// Listener получает снимок списка после каждого изменения.
type Listener func([]Notification)

// Option настраивает отдельное уведомление.
type Option func(*Notification)

// WithDuration задает время жизни. 0 - уведомление висит до явного удаления.
func WithDuration(d time.Duration) Option {
	return func(n *Notification) {
		if d < 0 {
			d = 0
		}
		n.Duration = d
	}
}

// Store - потокобезопасный список уведомлений с таймерами автоудаления.
type Store struct {
	mu        sync.Mutex
	items     []Notification
	timers    map[string]*time.Timer
	listeners map[int]Listener
	nextID    int
	closed    bool
	now       func() time.Time
	logger    *zap.Logger
}

// NewStore создает пустое хранилище. logger может быть nil.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		timers:    make(map[string]*time.Timer),
		listeners: make(map[int]Listener),
		now:       time.Now,
		logger:    logger.Named("NotificationStore"),
	}
}

// Show добавляет уведомление и возвращает его ID.
// Одинаковые сообщения не склеиваются. После Close уведомление не сохраняется и ID пустой.
func (s *Store) Show(typ Type, message string, opts ...Option) string {
	n := Notification{
		ID:       uuid.NewString(),
		Message:  message,
		Type:     typ,
		Duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(&n)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ""
	}
	n.CreatedAt = s.now()
	s.items = append(s.items, n)
	if n.Duration > 0 {
		id := n.ID
		s.timers[id] = time.AfterFunc(n.Duration, func() { s.expire(id) })
	}
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("Notification shown", zap.String("id", n.ID), zap.String("type", string(typ)))
	notify(listeners, snapshot)
	return n.ID
}

func (s *Store) Success(message string, opts ...Option) string {
	return s.Show(TypeSuccess, message, opts...)
}

func (s *Store) Error(message string, opts ...Option) string {
	return s.Show(TypeError, message, opts...)
}

func (s *Store) Warning(message string, opts ...Option) string {
	return s.Show(TypeWarning, message, opts...)
}

func (s *Store) Info(message string, opts ...Option) string {
	return s.Show(TypeInfo, message, opts...)
}

// expire вызывается таймером. Уже удаленное уведомление игнорируется.
func (s *Store) expire(id string) {
	s.remove(id, false)
}

// Remove удаляет уведомление и останавливает его таймер. Неизвестный ID - no-op.
func (s *Store) Remove(id string) {
	s.remove(id, true)
}

func (s *Store) remove(id string, stopTimer bool) {
	s.mu.Lock()
	idx := -1
	for i := range s.items {
		if s.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	if t, ok := s.timers[id]; ok {
		if stopTimer {
			t.Stop()
		}
		delete(s.timers, id)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
}

// Clear удаляет все уведомления и останавливает все таймеры.
func (s *Store) Clear() {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.items = nil
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
}

// List возвращает копию списка в порядке добавления.
func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Subscribe регистрирует слушателя. Возвращает функцию отписки.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Close останавливает таймеры и отписывает всех слушателей.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.items = nil
	s.listeners = make(map[int]Listener)
}

func (s *Store) snapshotLocked() ([]Notification, []Listener) {
	if len(s.listeners) == 0 {
		return nil, nil
	}
	snapshot := make([]Notification, len(s.items))
	copy(snapshot, s.items)
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return snapshot, listeners
}

// notify вызывается без удержания мьютекса: слушатель может обращаться к Store.
func notify(listeners []Listener, snapshot []Notification) {
	for _, l := range listeners {
		l(snapshot)
	}
}
