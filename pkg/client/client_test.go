package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prompt-manager/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 5*time.Second, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not a url", time.Second, zerolog.Nop())
	assert.Error(t, err)
}

func TestLoginStoresTokens(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.io", body["email"])
		writeJSON(w, http.StatusOK, models.TokenDetails{AccessToken: "at", RefreshToken: "rt"})
	})

	var persisted *models.TokenDetails
	c.OnTokensChanged(func(td *models.TokenDetails) { persisted = td })

	tokens, err := c.Login(context.Background(), "a@b.io", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "at", tokens.AccessToken)
	assert.True(t, c.Authenticated())
	require.NotNil(t, persisted)
	assert.Equal(t, "rt", persisted.RefreshToken)
}

func TestAuthorizedCallsRequireSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.ListTags(context.Background())
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSearchPromptsEncodesFilter(t *testing.T) {
	id := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "hello", q.Get("q"))
		assert.Equal(t, "GO,SQL", q.Get("tags"))
		assert.Equal(t, "all", q.Get("tag_mode"))
		assert.Equal(t, "false", q.Get("favorite"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data":  []models.Prompt{{ID: id, Title: "t"}},
			"count": 1,
		})
	})
	c.SetTokens(&models.TokenDetails{AccessToken: "at"})

	prompts, err := c.SearchPrompts(context.Background(), models.PromptFilter{
		Query:      " hello ",
		Tags:       []string{"GO", "SQL"},
		TagMode:    models.TagModeAll,
		IsFavorite: models.BoolPtr(false),
	})
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, id, prompts[0].ID)
}

func TestFilterQuery_Default(t *testing.T) {
	q := FilterQuery(models.DefaultPromptFilter())
	assert.Equal(t, "tag_mode=any", q.Encode())
}

func TestAPIErrorMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Code: models.ErrCodePromptNotFound, Message: "Prompt not found"})
		case http.MethodPost:
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeValidation, Message: "title is required", Field: "title"})
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})
	c.SetTokens(&models.TokenDetails{AccessToken: "at"})
	ctx := context.Background()

	_, err := c.GetPrompt(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrPromptNotFound)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = c.CreatePrompt(ctx, models.PromptInput{})
	assert.ErrorIs(t, err, models.ErrValidation)
	var vErr *models.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "title", vErr.Field)

	err = c.DeletePrompt(ctx, uuid.New())
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&APIError{StatusCode: http.StatusUnauthorized, Code: models.ErrCodeTokenExpired}))
	assert.False(t, IsAuthError(&APIError{StatusCode: http.StatusUnauthorized, Code: models.ErrCodeWrongCredentials}))
	assert.False(t, IsAuthError(errors.New("boom")))
}

func TestLogoutClearsSessionEvenOnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"refresh_token":"rt"`)
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: models.ErrCodeTokenExpired, Message: "expired"})
	})
	c.SetTokens(&models.TokenDetails{AccessToken: "at", RefreshToken: "rt"})

	err := c.Logout(context.Background())
	assert.ErrorIs(t, err, models.ErrTokenExpired)
	assert.False(t, c.Authenticated())
}

func TestRefresh(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, models.TokenDetails{AccessToken: "at2", RefreshToken: "rt2"})
	})
	assert.ErrorIs(t, c.Refresh(context.Background()), models.ErrUnauthorized)

	c.SetTokens(&models.TokenDetails{AccessToken: "at", RefreshToken: "rt"})
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, "at2", c.Tokens().AccessToken)
}

func TestExportReadsFileName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="prompts_export_20240501.json"`)
		writeJSON(w, http.StatusOK, models.ExportBundle{Version: "1.0"})
	})
	c.SetTokens(&models.TokenDetails{AccessToken: "at"})

	data, name, err := c.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "prompts_export_20240501.json", name)
	var bundle models.ExportBundle
	require.NoError(t, json.Unmarshal(data, &bundle))
	assert.Equal(t, "1.0", bundle.Version)
}

func TestImportAndDeleteAccount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/settings/import":
			var bundle models.ImportBundle
			require.NoError(t, json.NewDecoder(r.Body).Decode(&bundle))
			writeJSON(w, http.StatusOK, models.ImportResult{Success: true, ImportedCount: len(bundle.Prompts)})
		case "/api/account":
			assert.Equal(t, http.MethodDelete, r.Method)
			writeJSON(w, http.StatusOK, models.AccountDeletionResult{DeletedPrompts: 2, Message: "ok"})
		}
	})
	c.SetTokens(&models.TokenDetails{AccessToken: "at"})

	res, err := c.Import(context.Background(), &models.ImportBundle{Version: "1.0", Prompts: []models.ImportRecord{{Title: "t", Content: "c"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ImportedCount)

	del, err := c.DeleteAccount(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, del.DeletedPrompts)
}

func TestEvents(t *testing.T) {
	userID := uuid.New()
	upgrader := websocket.Upgrader{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: models.ErrCodeUnauthorized, Message: "no"})
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(models.PromptEvent{EventType: models.PromptEventCreated, UserID: userID})
		// держим соединение, пока клиент не закроет его
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	c.SetTokens(&models.TokenDetails{AccessToken: "wrong"})
	err := c.Events(context.Background(), func(models.PromptEvent) {})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	c.SetTokens(&models.TokenDetails{AccessToken: "at"})
	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan models.PromptEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Events(ctx, func(e models.PromptEvent) { received <- e })
	}()

	select {
	case e := <-received:
		assert.Equal(t, models.PromptEventCreated, e.EventType)
		assert.Equal(t, userID, e.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Events did not return after cancel")
	}
}
