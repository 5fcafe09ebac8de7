// Package tui - терминальный интерфейс promptctl на bubbletea.
//
// Один Model хранит состояние всех экранов. Контроллер списка и хранилище
// уведомлений сообщают об изменениях через слушателей. Слушатели без блокировки
// кладут сигнал в канал, его читает команда waitForBridge, а Update забирает
// актуальный снимок состояния.
package tui

import (
	"context"
	"time"

	"prompt-manager/internal/models"
	"prompt-manager/internal/notification"
	"prompt-manager/internal/promptlist"
	"prompt-manager/pkg/client"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backend - удаленные операции клиента. Реализуется *client.Client.
type Backend interface {
	promptlist.PromptSource

	Authenticated() bool
	SetTokens(td *models.TokenDetails)
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*models.TokenDetails, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error

	GetPrompt(ctx context.Context, id uuid.UUID) (*models.Prompt, error)
	CreatePrompt(ctx context.Context, input models.PromptInput) (*models.Prompt, error)

	GetStatistics(ctx context.Context) (*models.Statistics, error)
	Export(ctx context.Context) ([]byte, string, error)
	Import(ctx context.Context, bundle *models.ImportBundle) (*models.ImportResult, error)
	DeleteAccount(ctx context.Context) (*models.AccountDeletionResult, error)

	Events(ctx context.Context, handler client.EventHandler) error
}

var _ Backend = (*client.Client)(nil)

type Options struct {
	Debounce  time.Duration
	ExportDir string
	Logger    *zap.Logger
}

// ─── Bridged messages ────────────────────────────────────────────────────────

type listStateMsg struct{}

type notificationsMsg struct{}

type promptEventMsg struct{ event models.PromptEvent }

// ─── Command results ─────────────────────────────────────────────────────────

type authDoneMsg struct{ err error }

type loggedOutMsg struct{}

type promptLoadedMsg struct {
	prompt *models.Prompt
	err    error
}

type promptSavedMsg struct {
	prompt *models.Prompt
	err    error
}

type mutationDoneMsg struct {
	action string
	id     uuid.UUID
	err    error
}

type statsLoadedMsg struct {
	stats *models.Statistics
	err   error
}

type exportDoneMsg struct {
	path string
	err  error
}

type importDoneMsg struct {
	result *models.ImportResult
	err    error
}

type accountDeletedMsg struct {
	result *models.AccountDeletionResult
	err    error
}

type sessionRefreshedMsg struct{ err error }

type refetchDoneMsg struct{}

// ─── Screen state ────────────────────────────────────────────────────────────

const (
	loginFieldEmail = iota
	loginFieldPassword
)

const (
	formFieldTitle = iota
	formFieldDescription
	formFieldTags
	formFieldContent
	formFieldFavorite
	formFieldCount
)

type listScreen struct {
	state         promptlist.State
	cursor        int
	tagCursor     int
	search        textinput.Model
	confirmDelete *uuid.UUID
}

type formScreen struct {
	editingID   *uuid.UUID
	loading     bool
	inputs      []textinput.Model // title, description, tags
	content     textarea.Model
	favorite    bool
	focus       int
	fieldErrors map[string]string
	saving      bool
}

type settingsScreen struct {
	stats        *models.Statistics
	importPath   textinput.Model
	importing    bool
	confirmPurge bool
}

// session живет от входа до выхода: контроллер списка и поток событий.
type session struct {
	controller  *promptlist.Controller
	cancel      context.CancelFunc
	unsubscribe func()
	ownEdits    ownEdits
}

// ownEchoWindow - сколько ждем эха собственного изменения от сервера.
const ownEchoWindow = 5 * time.Second

// ownEdits - промпты, которые этот клиент только что изменил и уже перечитал.
// Событие сервера о таком промпте повторной загрузки не требует.
type ownEdits map[uuid.UUID]time.Time

func (o ownEdits) mark(id uuid.UUID, now time.Time) {
	o[id] = now
}

// consume reports whether e echoes a recent local change and forgets that change.
// Bulk events carry no prompt ID and never match.
func (o ownEdits) consume(e models.PromptEvent, now time.Time) bool {
	for id, at := range o {
		if now.Sub(at) > ownEchoWindow {
			delete(o, id)
		}
	}
	if e.PromptID == nil {
		return false
	}
	if _, ok := o[*e.PromptID]; !ok {
		return false
	}
	delete(o, *e.PromptID)
	return true
}

// ─── Model ───────────────────────────────────────────────────────────────────

type Model struct {
	backend Backend
	notes   *notification.Store
	opts    Options
	logger  *zap.Logger
	bridge  chan tea.Msg
	session *session

	Screen Route
	Width  int
	Height int

	email          textinput.Model
	password       textinput.Model
	loginFocus     int
	signUp         bool
	authenticating bool

	list     listScreen
	form     formScreen
	settings settingsScreen

	notifications []notification.Notification
}

// New собирает модель. notes принадлежит вызывающему и закрывается им.
func New(backend Backend, notes *notification.Store, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = promptlist.DefaultDebounceDelay
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 72
	password.Width = 40

	search := textinput.New()
	search.Placeholder = "Search title or content..."
	search.CharLimit = 200
	search.Width = 50

	importPath := textinput.New()
	importPath.Placeholder = "path/to/prompts_export.json"
	importPath.Width = 50

	m := Model{
		backend:  backend,
		notes:    notes,
		opts:     opts,
		logger:   opts.Logger.Named("TUI"),
		bridge:   make(chan tea.Msg, 64),
		Screen:   RouteLogin,
		email:    email,
		password: password,
		list:     listScreen{search: search},
		settings: settingsScreen{importPath: importPath},
	}
	m.email.Focus()

	bridge := m.bridge
	notes.Subscribe(func([]notification.Notification) {
		signal(bridge, notificationsMsg{})
	})
	return m
}

// Init восстанавливает экран по наличию сессии: переход проходит через Guard.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForBridge(m.bridge),
		textinput.Blink,
		func() tea.Msg { return navigateMsg{to: RouteList} },
	)
}

type navigateMsg struct {
	to Route
	id *uuid.UUID
}

// signal не блокируется: если канал полон, в нем уже есть сигнал на перерисовку.
func signal(ch chan<- tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	default:
	}
}

func waitForBridge(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// ─── Session ─────────────────────────────────────────────────────────────────

// startSession создает контроллер списка и подписывается на события сервера.
func (m *Model) startSession() {
	if m.session != nil {
		return
	}
	ctrl := promptlist.NewController(m.backend,
		promptlist.WithDebounceDelay(m.opts.Debounce),
		promptlist.WithLogger(m.opts.Logger),
	)
	bridge := m.bridge
	unsubscribe := ctrl.Subscribe(func(promptlist.State) {
		signal(bridge, listStateMsg{})
	})
	m.session = &session{controller: ctrl, cancel: func() {}, unsubscribe: unsubscribe, ownEdits: ownEdits{}}
	ctrl.Start()
	m.restartEvents()
}

// restartEvents (пере)открывает поток событий сервера с текущим access-токеном.
func (m *Model) restartEvents() {
	if m.session == nil {
		return
	}
	m.session.cancel()
	ctx, cancel := context.WithCancel(context.Background())
	m.session.cancel = cancel

	bridge := m.bridge
	logger := m.logger
	backend := m.backend
	go func() {
		err := backend.Events(ctx, func(e models.PromptEvent) {
			select {
			case bridge <- promptEventMsg{event: e}:
			case <-ctx.Done():
			}
		})
		// TODO: переподключать поток событий с backoff после сетевого разрыва; сейчас он открывается заново только после обновления сессии.
		if err != nil && ctx.Err() == nil {
			logger.Warn("Event stream stopped", zap.Error(err))
		}
	}()
}

// stopSession закрывает контроллер и поток событий.
func (m *Model) stopSession() {
	if m.session == nil {
		return
	}
	m.session.cancel()
	m.session.unsubscribe()
	m.session.controller.Close()
	m.session = nil
	m.list.state = promptlist.State{}
	m.list.cursor = 0
	m.list.tagCursor = 0
	m.list.confirmDelete = nil
	m.list.search.SetValue("")
}

// markOwnEdit запоминает изменение, сделанное этим клиентом.
func (m Model) markOwnEdit(id uuid.UUID) {
	if m.session == nil || id == uuid.Nil {
		return
	}
	m.session.ownEdits.mark(id, time.Now())
}

func (m Model) controller() *promptlist.Controller {
	if m.session == nil {
		return nil
	}
	return m.session.controller
}
