// Package promptlist держит состояние фильтра списка промптов и результаты поиска.
//
// Живой фильтр меняется на каждое действие пользователя, эффективный - только
// когда пора идти на сервер. Изменения текста откладываются на DefaultDebounceDelay,
// остальные поля фильтра применяются сразу.
package promptlist

import (
	"context"
	"errors"
	"sync"
	"time"

	"prompt-manager/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDebounceDelay - пауза после последнего изменения текста поиска.
const DefaultDebounceDelay = 500 * time.Millisecond

// PromptSource - удаленные операции, которые нужны контроллеру.
type PromptSource interface {
	SearchPrompts(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, error)
	ListTags(ctx context.Context) ([]string, error)
	UpdatePrompt(ctx context.Context, id uuid.UUID, upd models.PromptUpdate) (*models.Prompt, error)
	DeletePrompt(ctx context.Context, id uuid.UUID) error
}

// State - снимок состояния контроллера.
type State struct {
	Filter    models.PromptFilter // живой фильтр
	Effective models.PromptFilter // фильтр последнего запроса
	Prompts   []models.Prompt
	Tags      []string
	Loading   bool
	Err       error
}

// Listener вызывается после каждого изменения состояния, вне блокировки.
type Listener func(State)

type Option func(*Controller)

func WithDebounceDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller - фильтр, debounce и загрузка промптов.
type Controller struct {
	source    PromptSource
	logger    *zap.Logger
	delay     time.Duration
	debouncer *Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	live      models.PromptFilter
	effective models.PromptFilter
	prompts   []models.Prompt
	tags      []string
	inFlight  int
	err       error
	closed    bool
	listeners map[int]Listener
	nextID    int
}

func NewController(source PromptSource, opts ...Option) *Controller {
	c := &Controller{
		source:    source,
		logger:    zap.NewNop(),
		delay:     DefaultDebounceDelay,
		live:      models.DefaultPromptFilter(),
		effective: models.DefaultPromptFilter(),
		prompts:   []models.Prompt{},
		tags:      []string{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("PromptListController")
	c.debouncer = NewDebouncer(c.delay)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Start загружает теги (один раз) и первую страницу результатов.
func (c *Controller) Start() {
	go func() {
		if err := c.ReloadTags(c.ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("Failed to load tags", zap.Error(err))
		}
	}()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.startFetchLocked()
	state, listeners := c.snapshotLocked()
	c.mu.Unlock()
	notify(listeners, state)
}

// SetFilter заменяет живой фильтр.
//   - текст изменился и отличается от эффективного: (пере)запуск таймера;
//   - текст вернулся к эффективному: таймер отменяется;
//   - остальные поля применяются сразу с эффективным текстом, таймер не трогают.
func (c *Controller) SetFilter(f models.PromptFilter) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.live
	c.live = f.Clone()

	if c.live.Query != prev.Query {
		if c.live.Query != c.effective.Query {
			c.debouncer.Trigger(c.applyLiveText)
		} else {
			c.debouncer.Stop()
		}
	}

	if !c.live.SameNonText(c.effective) {
		next := c.live.Clone()
		next.Query = c.effective.Query
		c.effective = next
		c.logger.Debug("Filter applied immediately", zap.Stringer("filter", c.effective))
		c.startFetchLocked()
	}

	state, listeners := c.snapshotLocked()
	c.mu.Unlock()
	notify(listeners, state)
}

// applyLiveText срабатывает по таймеру: живой фильтр становится эффективным.
// Устаревшее поколение означает, что текст менялся после запуска этого таймера.
func (c *Controller) applyLiveText(gen uint64) {
	c.mu.Lock()
	if c.closed || !c.debouncer.Current(gen) || c.live.Equal(c.effective) {
		c.mu.Unlock()
		return
	}
	c.effective = c.live.Clone()
	c.logger.Debug("Debounced filter applied", zap.Stringer("filter", c.effective))
	c.startFetchLocked()
	state, listeners := c.snapshotLocked()
	c.mu.Unlock()
	notify(listeners, state)
}

// SetQuery меняет только текст поиска.
func (c *Controller) SetQuery(q string) {
	f := c.Filter()
	f.Query = q
	c.SetFilter(f)
}

// ToggleTag добавляет тег в фильтр или убирает его.
func (c *Controller) ToggleTag(tag string) {
	f := c.Filter()
	if f.HasTag(tag) {
		tags := make([]string, 0, len(f.Tags))
		for _, t := range f.Tags {
			if t != tag {
				tags = append(tags, t)
			}
		}
		f.Tags = tags
	} else {
		f.Tags = append(f.Tags, tag)
	}
	c.SetFilter(f)
}

func (c *Controller) SetTagMode(mode models.TagMode) {
	f := c.Filter()
	f.TagMode = mode
	c.SetFilter(f)
}

// SetFavorite: nil - без фильтра по избранному.
func (c *Controller) SetFavorite(fav *bool) {
	f := c.Filter()
	f.IsFavorite = nil
	if fav != nil {
		f.IsFavorite = models.BoolPtr(*fav)
	}
	c.SetFilter(f)
}

// Reset возвращает фильтр по умолчанию и сразу применяет его.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.debouncer.Stop()
	c.live = models.DefaultPromptFilter()
	c.effective = models.DefaultPromptFilter()
	c.startFetchLocked()
	state, listeners := c.snapshotLocked()
	c.mu.Unlock()
	notify(listeners, state)
}

// Refetch синхронно повторяет запрос с эффективным фильтром.
// Ошибка запроса также сохраняется в State.Err.
func (c *Controller) Refetch(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	filter := c.effective.Clone()
	c.inFlight++
	state, listeners := c.snapshotLocked()
	c.mu.Unlock()
	notify(listeners, state)

	return c.fetch(ctx, filter)
}

// Delete удаляет промпт и перезагружает список.
func (c *Controller) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.source.DeletePrompt(ctx, id); err != nil {
		return err
	}
	c.refetchAfterMutation(ctx)
	return nil
}

// ToggleFavorite переключает избранное у промпта из текущего списка.
// Если промпта нет в последних результатах, возвращает ErrPromptNotFound и ничего не меняет.
func (c *Controller) ToggleFavorite(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	var current *models.Prompt
	for i := range c.prompts {
		if c.prompts[i].ID == id {
			p := c.prompts[i]
			current = &p
			break
		}
	}
	c.mu.Unlock()
	if current == nil {
		return models.ErrPromptNotFound
	}

	upd := models.PromptUpdate{IsFavorite: models.BoolPtr(!current.IsFavorite)}
	if _, err := c.source.UpdatePrompt(ctx, id, upd); err != nil {
		return err
	}
	c.refetchAfterMutation(ctx)
	return nil
}

func (c *Controller) refetchAfterMutation(ctx context.Context) {
	if err := c.Refetch(ctx); err != nil {
		c.logger.Warn("Refetch after mutation failed", zap.Error(err))
	}
}

// ReloadTags перечитывает список тегов. Ошибка не влияет на State.Err.
func (c *Controller) ReloadTags(ctx context.Context) error {
	tags, err := c.source.ListTags(ctx)
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []string{}
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.tags = tags
	state, listeners := c.snapshotLocked()
	c.mu.Unlock()
	notify(listeners, state)
	return nil
}

// State возвращает снимок текущего состояния.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Filter возвращает копию живого фильтра.
func (c *Controller) Filter() models.PromptFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live.Clone()
}

// Subscribe регистрирует слушателя и возвращает функцию отписки.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Close останавливает таймер и отменяет запросы. Результаты, пришедшие после Close, отбрасываются.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.debouncer.Stop()
	c.cancel()
	c.listeners = make(map[int]Listener)
}

// startFetchLocked запускает асинхронный запрос с текущим эффективным фильтром.
// Порядок завершения не отслеживается: побеждает последний пришедший ответ.
func (c *Controller) startFetchLocked() {
	filter := c.effective.Clone()
	c.inFlight++
	go func() {
		_ = c.fetch(c.ctx, filter)
	}()
}

// fetch выполняет запрос. inFlight уже увеличен вызывающим.
func (c *Controller) fetch(ctx context.Context, filter models.PromptFilter) error {
	prompts, err := c.source.SearchPrompts(ctx, filter)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return err
	}
	c.inFlight--
	if err != nil {
		c.err = err
		c.logger.Warn("Failed to fetch prompts", zap.Stringer("filter", filter), zap.Error(err))
	} else {
		if prompts == nil {
			prompts = []models.Prompt{}
		}
		c.prompts = prompts
		c.err = nil
	}
	state, listeners := c.snapshotLocked()
	c.mu.Unlock()

	notify(listeners, state)
	return err
}

func (c *Controller) stateLocked() State {
	prompts := make([]models.Prompt, len(c.prompts))
	copy(prompts, c.prompts)
	tags := make([]string, len(c.tags))
	copy(tags, c.tags)
	return State{
		Filter:    c.live.Clone(),
		Effective: c.effective.Clone(),
		Prompts:   prompts,
		Tags:      tags,
		Loading:   c.inFlight > 0,
		Err:       c.err,
	}
}

func (c *Controller) snapshotLocked() (State, []Listener) {
	if len(c.listeners) == 0 {
		return State{}, nil
	}
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	return c.stateLocked(), listeners
}

func notify(listeners []Listener, state State) {
	for _, l := range listeners {
		l(state)
	}
}
