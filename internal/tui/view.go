package tui

import (
	"fmt"
	"strings"

	"prompt-manager/internal/models"

	"github.com/charmbracelet/lipgloss"
)

const previewLength = 70

// ─── View (main router) ─────────────────────────────────────────────────────

func (m Model) View() string {
	var content string

	switch m.Screen {
	case RouteLogin:
		content = m.viewLogin()
	case RouteList:
		content = m.viewList()
	case RouteCreate, RouteEdit:
		content = m.viewForm()
	case RouteSettings:
		content = m.viewSettings()
	default:
		content = "Unknown screen"
	}

	if n := m.viewNotifications(); n != "" {
		content += "\n\n" + n
	}
	return appStyle.Render(content)
}

func (m Model) viewNotifications() string {
	if len(m.notifications) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.notifications))
	for _, n := range m.notifications {
		lines = append(lines, notificationStyle(n.Type).Render(n.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// ─── Login ───────────────────────────────────────────────────────────────────

func (m Model) viewLogin() string {
	var b strings.Builder

	title := "Sign in"
	if m.signUp {
		title = "Create account"
	}
	b.WriteString(headerStyle.Render("Prompt Manager · "+title) + "\n")
	b.WriteString(labelStyle.Render("Email") + m.email.View() + "\n")
	b.WriteString(labelStyle.Render("Password") + m.password.View() + "\n")

	if m.authenticating {
		b.WriteString("\n" + dimStyle.Render("Signing in..."))
	}

	toggle := "ctrl+t create account"
	if m.signUp {
		toggle = "ctrl+t back to sign in"
	}
	b.WriteString(helpStyle.Render("tab switch field • enter submit • " + toggle + " • esc quit"))
	return b.String()
}

// ─── List ────────────────────────────────────────────────────────────────────

func (m Model) viewList() string {
	var b strings.Builder
	st := m.list.state

	header := "Prompts"
	if st.Loading {
		header += " · loading..."
	}
	b.WriteString(headerStyle.Render(header) + "\n")

	b.WriteString(labelStyle.Render("Search") + m.list.search.View() + "\n")
	b.WriteString(labelStyle.Render("Tags") + m.viewTagBar() + "\n")
	b.WriteString(labelStyle.Render("Filters") + viewFilterSummary(st.Filter) + "\n\n")

	if len(st.Prompts) == 0 {
		if st.Loading {
			b.WriteString(dimStyle.Render("Loading prompts..."))
		} else {
			b.WriteString(dimStyle.Render("No prompts found. Press n to create one."))
		}
	}
	for i, p := range st.Prompts {
		b.WriteString(m.viewPromptRow(i, p) + "\n")
	}

	if id := m.list.confirmDelete; id != nil {
		title := id.String()
		for _, p := range st.Prompts {
			if p.ID == *id {
				title = p.Title
				break
			}
		}
		b.WriteString("\n" + confirmStyle.Render(fmt.Sprintf("Delete %q? y/n", title)))
	}

	if m.list.search.Focused() {
		b.WriteString(helpStyle.Render("type to search • enter/esc done"))
	} else {
		b.WriteString(helpStyle.Render(
			"j/k move • / search • [ ] space tags • m all/any • f favorites • r reset\n" +
				"n new • e edit • s star • d delete • , settings • L logout • q quit"))
	}
	return b.String()
}

func (m Model) viewTagBar() string {
	tags := m.list.state.Tags
	if len(tags) == 0 {
		return dimStyle.Render("no tags yet")
	}
	active := make(map[string]bool, len(m.list.state.Filter.Tags))
	for _, t := range m.list.state.Filter.Tags {
		active[t] = true
	}
	parts := make([]string, 0, len(tags))
	for i, t := range tags {
		style := tagStyle
		label := t
		if active[t] {
			style = activeTagStyle
			label = "✓" + t
		}
		if i == m.list.tagCursor {
			style = style.Inherit(tagCursorStyle)
		}
		parts = append(parts, style.Render(label))
	}
	return strings.Join(parts, " ")
}

func viewFilterSummary(f models.PromptFilter) string {
	mode := "any tag"
	if f.TagMode == models.TagModeAll {
		mode = "all tags"
	}
	fav := "all prompts"
	if f.IsFavorite != nil {
		if *f.IsFavorite {
			fav = "favorites only"
		} else {
			fav = "non-favorites"
		}
	}
	return dimStyle.Render(mode + " · " + fav)
}

func (m Model) viewPromptRow(i int, p models.Prompt) string {
	star := "  "
	if p.IsFavorite {
		star = favoriteStyle.Render("★ ")
	}
	line := star + p.Title
	if len(p.Tags) > 0 {
		line += " " + tagStyle.Render("["+strings.Join(p.Tags, ", ")+"]")
	}
	preview := dimStyle.Render(truncate(oneLine(p.Content), previewLength))

	if i == m.list.cursor {
		return selectedItemStyle.Render(line + "\n" + preview)
	}
	return itemStyle.Render(line + "\n" + preview)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ─── Form ────────────────────────────────────────────────────────────────────

func (m Model) viewForm() string {
	var b strings.Builder
	f := m.form

	title := "New prompt"
	if f.editingID != nil {
		title = "Edit prompt"
	}
	b.WriteString(headerStyle.Render(title) + "\n")

	if f.loading {
		b.WriteString(dimStyle.Render("Loading prompt..."))
		b.WriteString(helpStyle.Render("esc back"))
		return b.String()
	}

	fields := []struct {
		label string
		key   string
		view  string
	}{
		{"Title", "title", f.inputs[formFieldTitle].View()},
		{"Description", "description", f.inputs[formFieldDescription].View()},
		{"Tags", "tags", f.inputs[formFieldTags].View()},
	}
	for _, fl := range fields {
		b.WriteString(labelStyle.Render(fl.label) + fl.view + "\n")
		if msg, ok := f.fieldErrors[fl.key]; ok {
			b.WriteString(fieldErrorStyle.Render(msg) + "\n")
		}
	}

	b.WriteString(labelStyle.Render("Content") + "\n" + f.content.View() + "\n")
	if msg, ok := f.fieldErrors["content"]; ok {
		b.WriteString(fieldErrorStyle.Render(msg) + "\n")
	}

	box := "[ ]"
	if f.favorite {
		box = favoriteStyle.Render("[★]")
	}
	favLine := labelStyle.Render("Favorite") + box
	if f.focus == formFieldFavorite {
		favLine = labelStyle.Render("Favorite") + selectedItemStyle.Render(box)
	}
	b.WriteString(favLine + "\n")

	if msg, ok := f.fieldErrors[""]; ok {
		b.WriteString(confirmStyle.Render(msg) + "\n")
	}
	if f.saving {
		b.WriteString(dimStyle.Render("Saving...") + "\n")
	}

	b.WriteString(helpStyle.Render("tab/shift+tab move • space toggle favorite • ctrl+s save • esc cancel"))
	return b.String()
}

// ─── Settings ────────────────────────────────────────────────────────────────

func (m Model) viewSettings() string {
	var b strings.Builder
	s := m.settings

	b.WriteString(headerStyle.Render("Settings") + "\n")

	if s.stats == nil {
		b.WriteString(dimStyle.Render("Loading statistics...") + "\n")
	} else {
		b.WriteString(statNumberStyle.Render(fmt.Sprint(s.stats.TotalPrompts)) + "  prompts\n")
		b.WriteString(statNumberStyle.Render(fmt.Sprint(s.stats.TotalTags)) + "  distinct tags\n")
		b.WriteString(statNumberStyle.Render(fmt.Sprint(s.stats.FavoriteCount)) + "  favorites\n")
	}

	b.WriteString("\n" + labelStyle.Render("Export dir") + m.opts.ExportDir + "\n")
	b.WriteString(labelStyle.Render("Import file") + s.importPath.View() + "\n")
	if s.importing {
		b.WriteString(dimStyle.Render("Importing...") + "\n")
	}

	if s.confirmPurge {
		b.WriteString("\n" + confirmStyle.Render("Delete ALL prompts and sign out everywhere? y/n") + "\n")
	}

	if s.importPath.Focused() {
		b.WriteString(helpStyle.Render("enter import • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("e export • i import • D delete account data • L logout • esc back • q quit"))
	}
	return b.String()
}
