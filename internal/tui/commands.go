package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"prompt-manager/internal/models"
	"prompt-manager/internal/promptlist"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// ─── Commands ────────────────────────────────────────────────────────────────

func authenticate(b Backend, email, password string, signUp bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if signUp {
			if err := b.Register(ctx, email, password); err != nil {
				return authDoneMsg{err: err}
			}
		}
		_, err := b.Login(ctx, email, password)
		return authDoneMsg{err: err}
	}
}

func logout(b Backend) tea.Cmd {
	return func() tea.Msg {
		// Сессия сбрасывается локально даже при ошибке сервера
		_ = b.Logout(context.Background())
		return loggedOutMsg{}
	}
}

func refreshSession(b Backend) tea.Cmd {
	return func() tea.Msg {
		return sessionRefreshedMsg{err: b.Refresh(context.Background())}
	}
}

func loadPrompt(b Backend, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		p, err := b.GetPrompt(context.Background(), id)
		return promptLoadedMsg{prompt: p, err: err}
	}
}

func createPrompt(b Backend, input models.PromptInput) tea.Cmd {
	return func() tea.Msg {
		p, err := b.CreatePrompt(context.Background(), input)
		return promptSavedMsg{prompt: p, err: err}
	}
}

func updatePrompt(b Backend, id uuid.UUID, upd models.PromptUpdate) tea.Cmd {
	return func() tea.Msg {
		p, err := b.UpdatePrompt(context.Background(), id, upd)
		return promptSavedMsg{prompt: p, err: err}
	}
}

func toggleFavorite(ctrl *promptlist.Controller, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{action: "favorite", id: id, err: ctrl.ToggleFavorite(context.Background(), id)}
	}
}

func deletePrompt(ctrl *promptlist.Controller, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{action: "delete", id: id, err: ctrl.Delete(context.Background(), id)}
	}
}

// refetch перечитывает список и теги; ошибки попадают в состояние контроллера.
func refetch(ctrl *promptlist.Controller) tea.Cmd {
	if ctrl == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		_ = ctrl.Refetch(ctx)
		_ = ctrl.ReloadTags(ctx)
		return refetchDoneMsg{}
	}
}

func loadStats(b Backend) tea.Cmd {
	return func() tea.Msg {
		st, err := b.GetStatistics(context.Background())
		return statsLoadedMsg{stats: st, err: err}
	}
}

func exportPrompts(b Backend, dir string) tea.Cmd {
	return func() tea.Msg {
		data, name, err := b.Export(context.Background())
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{err: fmt.Errorf("failed to write %s: %w", path, err)}
		}
		return exportDoneMsg{path: path}
	}
}

// importPrompts читает файл выгрузки. Неверный JSON отклоняется до запроса к серверу.
func importPrompts(b Backend, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return importDoneMsg{err: fmt.Errorf("failed to read %s: %w", path, err)}
		}
		var bundle models.ImportBundle
		if err := json.Unmarshal(data, &bundle); err != nil {
			return importDoneMsg{err: fmt.Errorf("invalid import file: %w", err)}
		}
		result, err := b.Import(context.Background(), &bundle)
		return importDoneMsg{result: result, err: err}
	}
}

func deleteAccount(b Backend) tea.Cmd {
	return func() tea.Msg {
		result, err := b.DeleteAccount(context.Background())
		return accountDeletedMsg{result: result, err: err}
	}
}

// reloadTags перечитывает только теги: список уже обновлен контроллером после изменения.
func reloadTags(ctrl *promptlist.Controller) tea.Cmd {
	if ctrl == nil {
		return nil
	}
	return func() tea.Msg {
		_ = ctrl.ReloadTags(context.Background())
		return refetchDoneMsg{}
	}
}
