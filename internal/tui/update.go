package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"prompt-manager/internal/models"
	"prompt-manager/internal/notification"
	"prompt-manager/internal/validation"
	"prompt-manager/pkg/client"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	importReportDuration = 15 * time.Second
	importReportMaxLines = 5
)

// Update - главный обработчик сообщений bubbletea.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.Screen == RouteCreate || m.Screen == RouteEdit {
			m.form.content.SetWidth(max(20, min(100, msg.Width-8)))
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.stopSession()
			return m, tea.Quit
		case "ctrl+x":
			m.notes.Clear()
			return m, nil
		}
		return m.handleKey(msg)

	// ─── Bridge ──────────────────────────────────────────────────────────
	case listStateMsg:
		m, cmd := m.syncList()
		return m, tea.Batch(cmd, waitForBridge(m.bridge))

	case notificationsMsg:
		m.notifications = m.notes.List()
		return m, waitForBridge(m.bridge)

	case promptEventMsg:
		m.logger.Debug("Prompt event received", zap.String("type", string(msg.event.EventType)))
		cmds := []tea.Cmd{waitForBridge(m.bridge)}
		// Свое изменение уже перечитано после ответа сервера
		if m.session != nil && !m.session.ownEdits.consume(msg.event, time.Now()) {
			cmds = append(cmds, refetch(m.controller()))
		}
		if m.Screen == RouteSettings {
			cmds = append(cmds, loadStats(m.backend))
		}
		return m, tea.Batch(cmds...)

	// ─── Navigation and session ──────────────────────────────────────────
	case navigateMsg:
		return m.navigate(msg.to, msg.id)

	case authDoneMsg:
		m.authenticating = false
		if msg.err != nil {
			m.notes.Error(errorText(msg.err))
			return m, nil
		}
		m.password.SetValue("")
		m.notes.Success("Signed in")
		return m.navigate(RouteList, nil)

	case loggedOutMsg:
		m.notes.Info("Signed out")
		return m.navigate(RouteLogin, nil)

	case sessionRefreshedMsg:
		if msg.err != nil {
			m.logger.Info("Session refresh failed", zap.Error(msg.err))
			m.backend.SetTokens(nil)
			m.notes.Warning("Session expired, please sign in again")
			return m.navigate(RouteLogin, nil)
		}
		m.notes.Info("Session renewed, please repeat the last action")
		m.restartEvents()
		return m, refetch(m.controller())

	case refetchDoneMsg:
		return m.syncList()

	// ─── List ────────────────────────────────────────────────────────────
	case mutationDoneMsg:
		if msg.err != nil {
			m, cmd := m.handleError(msg.err)
			m, syncCmd := m.syncList()
			return m, tea.Batch(cmd, syncCmd)
		}
		m.markOwnEdit(msg.id)
		if msg.action == "delete" {
			m.notes.Success("Prompt deleted")
		}
		m, cmd := m.syncList()
		return m, tea.Batch(cmd, reloadTags(m.controller()))

	// ─── Form ────────────────────────────────────────────────────────────
	case promptLoadedMsg:
		if m.Screen != RouteEdit {
			return m, nil
		}
		m.form.loading = false
		if msg.err != nil {
			m, cmd := m.handleError(msg.err)
			if client.IsAuthError(msg.err) {
				return m, cmd
			}
			m, navCmd := m.navigate(RouteList, nil)
			return m, tea.Batch(cmd, navCmd)
		}
		m.form.fill(msg.prompt)
		return m, nil

	case promptSavedMsg:
		m.form.saving = false
		if msg.err != nil {
			var vErr *models.ValidationError
			if errors.As(msg.err, &vErr) && vErr.Field != "" {
				m.form.fieldErrors = map[string]string{vErr.Field: vErr.Message}
				return m, nil
			}
			return m.handleError(msg.err)
		}
		if msg.prompt != nil {
			m.markOwnEdit(msg.prompt.ID)
		}
		if m.form.editingID != nil {
			m.notes.Success("Prompt updated")
		} else {
			m.notes.Success("Prompt created")
		}
		m, cmd := m.navigate(RouteList, nil)
		return m, tea.Batch(cmd, refetch(m.controller()))

	// ─── Settings ────────────────────────────────────────────────────────
	case statsLoadedMsg:
		if msg.err != nil {
			return m.handleError(msg.err)
		}
		m.settings.stats = msg.stats
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			return m.handleError(msg.err)
		}
		m.notes.Success("Exported to " + msg.path)
		return m, nil

	case importDoneMsg:
		m.settings.importing = false
		if msg.err != nil {
			return m.handleError(msg.err)
		}
		m.settings.importPath.SetValue("")
		reportImport(m.notes, msg.result)
		return m, tea.Batch(loadStats(m.backend), refetch(m.controller()))

	case accountDeletedMsg:
		m.settings.confirmPurge = false
		if msg.err != nil {
			return m.handleError(msg.err)
		}
		m.notes.Success(msg.result.Message)
		m.backend.SetTokens(nil)
		return m.navigate(RouteLogin, nil)
	}

	return m.updateFocused(msg)
}

// handleError показывает ошибку. 401 запускает обновление сессии.
func (m Model) handleError(err error) (Model, tea.Cmd) {
	if client.IsAuthError(err) {
		return m, refreshSession(m.backend)
	}
	m.logger.Debug("Operation failed", zap.Error(err))
	m.notes.Error(errorText(err))
	return m, nil
}

func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func reportImport(notes *notification.Store, res *models.ImportResult) {
	if res.FailedCount == 0 {
		notes.Success(fmt.Sprintf("Imported %d prompts", res.ImportedCount))
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d prompts, %d failed", res.ImportedCount, res.FailedCount)
	for i, reason := range res.Errors {
		if i == importReportMaxLines {
			fmt.Fprintf(&b, "\n... and %d more", len(res.Errors)-i)
			break
		}
		b.WriteString("\n" + reason)
	}
	notes.Warning(b.String(), notification.WithDuration(importReportDuration))
}

// navigate меняет экран. Все переходы проходят через Guard.
func (m Model) navigate(to Route, id *uuid.UUID) (Model, tea.Cmd) {
	to = Guard(to, m.backend.Authenticated())
	if to == RouteEdit && id == nil {
		to = RouteList
	}
	m.logger.Debug("Navigate", zap.Stringer("route", to))
	m.Screen = to

	if to == RouteLogin {
		m.stopSession()
		m.password.SetValue("")
		m.loginFocus = loginFieldEmail
		m.password.Blur()
		return m, m.email.Focus()
	}
	m.startSession()

	switch to {
	case RouteCreate:
		m.form = newFormScreen(nil, m.Width)
		return m, textinput.Blink
	case RouteEdit:
		m.form = newFormScreen(id, m.Width)
		m.form.loading = true
		return m, loadPrompt(m.backend, *id)
	case RouteSettings:
		m.settings.confirmPurge = false
		m.settings.importPath.Blur()
		return m, loadStats(m.backend)
	default:
		m.list.search.Blur()
		m.list.confirmDelete = nil
		return m.syncList()
	}
}

// syncList забирает снимок состояния контроллера.
func (m Model) syncList() (Model, tea.Cmd) {
	ctrl := m.controller()
	if ctrl == nil {
		return m, nil
	}
	prevErr := m.list.state.Err
	m.list.state = ctrl.State()
	m.list.cursor = clamp(m.list.cursor, len(m.list.state.Prompts))
	m.list.tagCursor = clamp(m.list.tagCursor, len(m.list.state.Tags))

	err := m.list.state.Err
	if err == nil || (prevErr != nil && prevErr.Error() == err.Error()) {
		return m, nil
	}
	return m.handleError(err)
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m Model) selectedPrompt() *models.Prompt {
	prompts := m.list.state.Prompts
	if m.list.cursor < 0 || m.list.cursor >= len(prompts) {
		return nil
	}
	return &prompts[m.list.cursor]
}

// ─── Keys ────────────────────────────────────────────────────────────────────

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Screen {
	case RouteLogin:
		return m.handleLoginKeys(msg)
	case RouteList:
		return m.handleListKeys(msg)
	case RouteCreate, RouteEdit:
		return m.handleFormKeys(msg)
	case RouteSettings:
		return m.handleSettingsKeys(msg)
	}
	return m, nil
}

func (m Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.authenticating {
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return m, m.toggleLoginFocus()
	case "ctrl+t":
		m.signUp = !m.signUp
		return m, nil
	case "esc":
		return m, tea.Quit
	case "enter":
		if m.loginFocus == loginFieldEmail {
			return m, m.toggleLoginFocus()
		}
		return m.submitLogin()
	}

	var cmd tea.Cmd
	if m.loginFocus == loginFieldEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleLoginFocus() tea.Cmd {
	if m.loginFocus == loginFieldEmail {
		m.loginFocus = loginFieldPassword
		m.email.Blur()
		return m.password.Focus()
	}
	m.loginFocus = loginFieldEmail
	m.password.Blur()
	return m.email.Focus()
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.notes.Error("Email and password are required")
		return m, nil
	}
	if m.signUp {
		normalized, err := validation.Email(email)
		if err == nil {
			err = validation.Password(password)
		}
		if err != nil {
			m.notes.Error(validationText(err))
			return m, nil
		}
		email = normalized
	}
	m.authenticating = true
	return m, authenticate(m.backend, email, password, m.signUp)
}

func validationText(err error) string {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return err.Error()
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.controller()
	if ctrl == nil {
		return m, nil
	}
	key := msg.String()

	if m.list.search.Focused() {
		switch key {
		case "enter", "esc", "tab":
			m.list.search.Blur()
			return m, nil
		}
		before := m.list.search.Value()
		var cmd tea.Cmd
		m.list.search, cmd = m.list.search.Update(msg)
		if v := m.list.search.Value(); v != before {
			ctrl.SetQuery(v)
		}
		return m, cmd
	}

	if id := m.list.confirmDelete; id != nil {
		m.list.confirmDelete = nil
		if key == "y" || key == "Y" {
			return m, deletePrompt(ctrl, *id)
		}
		return m, nil
	}

	switch key {
	case "q":
		m.stopSession()
		return m, tea.Quit
	case "/":
		return m, m.list.search.Focus()
	case "up", "k":
		m.list.cursor = clamp(m.list.cursor-1, len(m.list.state.Prompts))
	case "down", "j":
		m.list.cursor = clamp(m.list.cursor+1, len(m.list.state.Prompts))
	case "left", "h", "[":
		m.list.tagCursor = clamp(m.list.tagCursor-1, len(m.list.state.Tags))
	case "right", "l", "]":
		m.list.tagCursor = clamp(m.list.tagCursor+1, len(m.list.state.Tags))
	case " ":
		if m.list.tagCursor < len(m.list.state.Tags) {
			ctrl.ToggleTag(m.list.state.Tags[m.list.tagCursor])
		}
	case "m":
		if ctrl.Filter().TagMode == models.TagModeAll {
			ctrl.SetTagMode(models.TagModeAny)
		} else {
			ctrl.SetTagMode(models.TagModeAll)
		}
	case "f":
		// не задан -> только избранные -> только обычные -> не задан
		switch fav := ctrl.Filter().IsFavorite; {
		case fav == nil:
			ctrl.SetFavorite(models.BoolPtr(true))
		case *fav:
			ctrl.SetFavorite(models.BoolPtr(false))
		default:
			ctrl.SetFavorite(nil)
		}
	case "r":
		m.list.search.SetValue("")
		ctrl.Reset()
	case "s":
		if p := m.selectedPrompt(); p != nil {
			return m, toggleFavorite(ctrl, p.ID)
		}
	case "d", "delete":
		if p := m.selectedPrompt(); p != nil {
			id := p.ID
			m.list.confirmDelete = &id
		}
	case "n":
		return m.navigate(RouteCreate, nil)
	case "enter", "e":
		if p := m.selectedPrompt(); p != nil {
			id := p.ID
			return m.navigate(RouteEdit, &id)
		}
	case ",":
		return m.navigate(RouteSettings, nil)
	case "L":
		return m, logout(m.backend)
	}
	return m, nil
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.loading || m.form.saving {
		if msg.String() == "esc" {
			return m.navigate(RouteList, nil)
		}
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m.navigate(RouteList, nil)
	case "tab":
		return m, m.form.setFocus(m.form.focus + 1)
	case "shift+tab":
		return m, m.form.setFocus(m.form.focus - 1)
	case "ctrl+s":
		return m.submitForm()
	case " ", "enter":
		if m.form.focus == formFieldFavorite {
			m.form.favorite = !m.form.favorite
			return m, nil
		}
	}
	return m.form.updateFocused(m, msg)
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title := m.form.inputs[formFieldTitle].Value()
	description := m.form.inputs[formFieldDescription].Value()
	tags := validation.SplitTags(m.form.inputs[formFieldTags].Value())
	content := m.form.content.Value()

	if m.form.editingID == nil {
		in := models.PromptInput{
			Title:       title,
			Description: &description,
			Content:     content,
			Tags:        tags,
			IsFavorite:  m.form.favorite,
		}
		if err := validation.PromptInput(&in); err != nil {
			m.form.fieldErrors = fieldErrors(err)
			return m, nil
		}
		m.form.fieldErrors = nil
		m.form.saving = true
		return m, createPrompt(m.backend, in)
	}

	upd := models.PromptUpdate{
		Title:       &title,
		Description: &description,
		Content:     &content,
		Tags:        tags,
		IsFavorite:  models.BoolPtr(m.form.favorite),
	}
	if err := validation.PromptUpdate(&upd); err != nil {
		m.form.fieldErrors = fieldErrors(err)
		return m, nil
	}
	m.form.fieldErrors = nil
	m.form.saving = true
	return m, updatePrompt(m.backend, *m.form.editingID, upd)
}

func fieldErrors(err error) map[string]string {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		return map[string]string{vErr.Field: vErr.Message}
	}
	return map[string]string{"": err.Error()}
}

func (m Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.settings.importPath.Focused() {
		switch key {
		case "esc":
			m.settings.importPath.Blur()
			return m, nil
		case "enter":
			path := strings.TrimSpace(m.settings.importPath.Value())
			m.settings.importPath.Blur()
			if path == "" || m.settings.importing {
				return m, nil
			}
			m.settings.importing = true
			return m, importPrompts(m.backend, path)
		}
		var cmd tea.Cmd
		m.settings.importPath, cmd = m.settings.importPath.Update(msg)
		return m, cmd
	}

	if m.settings.confirmPurge {
		m.settings.confirmPurge = false
		if key == "y" || key == "Y" {
			return m, deleteAccount(m.backend)
		}
		return m, nil
	}

	switch key {
	case "esc", "b":
		return m.navigate(RouteList, nil)
	case "q":
		m.stopSession()
		return m, tea.Quit
	case "e":
		return m, exportPrompts(m.backend, m.opts.ExportDir)
	case "i":
		return m, m.settings.importPath.Focus()
	case "D":
		m.settings.confirmPurge = true
	case "L":
		return m, logout(m.backend)
	}
	return m, nil
}

// updateFocused передает прочие сообщения (например, мигание курсора) активному полю.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.Screen {
	case RouteLogin:
		if m.loginFocus == loginFieldEmail {
			m.email, cmd = m.email.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
	case RouteList:
		m.list.search, cmd = m.list.search.Update(msg)
	case RouteCreate, RouteEdit:
		return m.form.updateFocused(m, msg)
	case RouteSettings:
		m.settings.importPath, cmd = m.settings.importPath.Update(msg)
	}
	return m, cmd
}

// ─── Form helpers ────────────────────────────────────────────────────────────

func newFormScreen(id *uuid.UUID, width int) formScreen {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = validation.TitleMaxLength
	title.Width = 60

	description := textinput.New()
	description.Placeholder = "Optional description"
	description.CharLimit = validation.DescriptionMaxLength
	description.Width = 60

	tags := textinput.New()
	tags.Placeholder = "comma separated, e.g. writing, sql"
	tags.Width = 60

	content := textarea.New()
	content.Placeholder = "Prompt text..."
	content.CharLimit = validation.ContentMaxLength
	content.ShowLineNumbers = false
	content.SetWidth(max(20, min(100, width-8)))
	content.SetHeight(8)

	f := formScreen{
		editingID: id,
		inputs:    []textinput.Model{title, description, tags},
		content:   content,
	}
	f.setFocus(formFieldTitle)
	return f
}

func (f *formScreen) fill(p *models.Prompt) {
	f.inputs[formFieldTitle].SetValue(p.Title)
	if p.Description != nil {
		f.inputs[formFieldDescription].SetValue(*p.Description)
	}
	f.inputs[formFieldTags].SetValue(strings.Join(p.Tags, ", "))
	f.content.SetValue(p.Content)
	f.favorite = p.IsFavorite
}

func (f *formScreen) setFocus(i int) tea.Cmd {
	f.focus = (i + formFieldCount) % formFieldCount
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.content.Blur()

	switch {
	case f.focus < len(f.inputs):
		return f.inputs[f.focus].Focus()
	case f.focus == formFieldContent:
		return f.content.Focus()
	}
	return nil
}

func (f formScreen) updateFocused(m Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case f.focus < len(f.inputs):
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	case f.focus == formFieldContent:
		f.content, cmd = f.content.Update(msg)
	}
	m.form = f
	return m, cmd
}
