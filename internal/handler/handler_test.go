package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prompt-manager/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const testToken = "valid-access-token"

type HandlerSuite struct {
	suite.Suite
	auth     *mockAuthService
	prompts  *mockPromptService
	settings *mockSettingsService
	router   *gin.Engine
	userID   uuid.UUID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.auth = new(mockAuthService)
	s.prompts = new(mockPromptService)
	s.settings = new(mockSettingsService)
	s.userID = uuid.New()

	s.router = gin.New()
	authHandler := NewAuthHandler(s.auth)
	authHandler.RegisterRoutes(s.router, nil)
	api := s.router.Group("/api", authHandler.AuthMiddleware())
	NewPromptHandler(s.prompts, zap.NewNop()).RegisterRoutes(api)
	NewSettingsHandler(s.settings, zap.NewNop()).RegisterRoutes(api)

	s.auth.On("VerifyAccessToken", mock.Anything, testToken).Return(&models.Claims{
		UserID:           s.userID,
		RegisteredClaims: jwt.RegisteredClaims{ID: "access-jti"},
	}, nil).Maybe()
}

func (s *HandlerSuite) TearDownTest() {
	s.auth.AssertExpectations(s.T())
	s.prompts.AssertExpectations(s.T())
	s.settings.AssertExpectations(s.T())
}

func (s *HandlerSuite) do(method, path string, body interface{}, authorized bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			s.Require().NoError(json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) errorBody(w *httptest.ResponseRecorder) models.ErrorResponse {
	var resp models.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) TestAuthMiddleware_MissingHeader() {
	w := s.do(http.MethodGet, "/api/prompts", nil, false)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(models.ErrCodeUnauthorized, s.errorBody(w).Code)
}

func (s *HandlerSuite) TestAuthMiddleware_ExpiredToken() {
	s.auth.On("VerifyAccessToken", mock.Anything, "stale").Return(nil, models.ErrTokenExpired).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer stale")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(models.ErrCodeTokenExpired, s.errorBody(w).Code)
}

func (s *HandlerSuite) TestAuthMiddleware_BadScheme() {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(models.ErrCodeTokenInvalid, s.errorBody(w).Code)
}

func (s *HandlerSuite) TestRegister() {
	s.auth.On("Register", mock.Anything, "a@b.io", "secret123").
		Return(&models.User{ID: s.userID, Email: "a@b.io"}, nil).Once()

	w := s.do(http.MethodPost, "/auth/register", registerRequest{Email: "a@b.io", Password: "secret123"}, false)
	s.Equal(http.StatusCreated, w.Code)

	var resp registerResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(s.userID.String(), resp.ID)
}

func (s *HandlerSuite) TestRegister_Errors() {
	s.auth.On("Register", mock.Anything, "dup@b.io", "secret123").Return(nil, models.ErrEmailAlreadyExists).Once()
	s.auth.On("Register", mock.Anything, "a@b.io", "short").
		Return(nil, models.NewValidationError("password", "too short")).Once()

	w := s.do(http.MethodPost, "/auth/register", registerRequest{Email: "dup@b.io", Password: "secret123"}, false)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(models.ErrCodeDuplicateEmail, s.errorBody(w).Code)

	w = s.do(http.MethodPost, "/auth/register", registerRequest{Email: "a@b.io", Password: "short"}, false)
	s.Equal(http.StatusBadRequest, w.Code)
	resp := s.errorBody(w)
	s.Equal(models.ErrCodeValidation, resp.Code)
	s.Equal("password", resp.Field)

	w = s.do(http.MethodPost, "/auth/register", `{"email":"a@b.io"}`, false)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(models.ErrCodeBadRequest, s.errorBody(w).Code)
}

func (s *HandlerSuite) TestLogin() {
	tokens := &models.TokenDetails{AccessToken: "at", RefreshToken: "rt", AtExpires: 1, RtExpires: 2}
	s.auth.On("Login", mock.Anything, "a@b.io", "secret123").Return(tokens, nil).Once()
	s.auth.On("Login", mock.Anything, "a@b.io", "wrong").Return(nil, models.ErrInvalidCredentials).Once()

	w := s.do(http.MethodPost, "/auth/login", loginRequest{Email: "a@b.io", Password: "secret123"}, false)
	s.Equal(http.StatusOK, w.Code)
	var got models.TokenDetails
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal("at", got.AccessToken)
	s.Equal("rt", got.RefreshToken)

	w = s.do(http.MethodPost, "/auth/login", loginRequest{Email: "a@b.io", Password: "wrong"}, false)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(models.ErrCodeWrongCredentials, s.errorBody(w).Code)
}

func (s *HandlerSuite) TestLogout() {
	s.auth.On("ParseRefreshToken", "rt").Return(&models.Claims{
		UserID:           s.userID,
		RegisteredClaims: jwt.RegisteredClaims{ID: "refresh-jti"},
	}, nil).Once()
	s.auth.On("Logout", mock.Anything, s.userID, "access-jti", "refresh-jti").Return(nil).Once()

	w := s.do(http.MethodPost, "/auth/logout", logoutRequest{RefreshToken: "rt"}, true)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerSuite) TestLogout_ForeignRefreshToken() {
	s.auth.On("ParseRefreshToken", "foreign").Return(&models.Claims{
		UserID:           uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{ID: "other"},
	}, nil).Once()

	w := s.do(http.MethodPost, "/auth/logout", logoutRequest{RefreshToken: "foreign"}, true)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.auth.AssertNotCalled(s.T(), "Logout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestRefresh() {
	s.auth.On("Refresh", mock.Anything, "revoked").Return(nil, models.ErrTokenInvalid).Once()

	w := s.do(http.MethodPost, "/auth/refresh", refreshRequest{RefreshToken: "revoked"}, false)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(models.ErrCodeTokenInvalid, s.errorBody(w).Code)
}

func (s *HandlerSuite) TestMe() {
	s.auth.On("GetUser", mock.Anything, s.userID).Return(&models.User{ID: s.userID, Email: "a@b.io"}, nil).Once()

	w := s.do(http.MethodGet, "/api/me", nil, true)
	s.Equal(http.StatusOK, w.Code)
	var resp meResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("a@b.io", resp.Email)
}

func (s *HandlerSuite) TestSearch_ParsesFilter() {
	want := models.PromptFilter{
		Query:      "summary",
		Tags:       []string{"GO", "SQL"},
		TagMode:    models.TagModeAll,
		IsFavorite: models.BoolPtr(true),
	}
	found := []models.Prompt{{ID: uuid.New(), UserID: s.userID, Title: "t", Content: "c", Tags: []string{"GO", "SQL"}}}
	s.prompts.On("Search", mock.Anything, s.userID, mock.MatchedBy(func(f models.PromptFilter) bool {
		return f.Equal(want)
	})).Return(found, nil).Once()

	w := s.do(http.MethodGet, "/api/prompts?q=summary&tags=go,%20sql,GO&tag_mode=AND&favorite=true", nil, true)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp promptListResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(1, resp.Count)
	s.Equal(found[0].ID, resp.Data[0].ID)
}

func (s *HandlerSuite) TestSearch_DefaultFilterReturnsEmptyArray() {
	s.prompts.On("Search", mock.Anything, s.userID, mock.MatchedBy(func(f models.PromptFilter) bool {
		return f.Equal(models.DefaultPromptFilter())
	})).Return(nil, nil).Once()

	w := s.do(http.MethodGet, "/api/prompts", nil, true)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"data":[],"count":0}`, w.Body.String())
}

func (s *HandlerSuite) TestSearch_InvalidParams() {
	w := s.do(http.MethodGet, "/api/prompts?favorite=maybe", nil, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("favorite", s.errorBody(w).Field)

	w = s.do(http.MethodGet, "/api/prompts?tag_mode=xor", nil, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("tag_mode", s.errorBody(w).Field)
}

func (s *HandlerSuite) TestCreatePrompt() {
	input := models.PromptInput{Title: "T", Content: "C", Tags: []string{"x"}}
	created := &models.Prompt{ID: uuid.New(), UserID: s.userID, Title: "T", Content: "C", Tags: []string{"X"}}
	s.prompts.On("Create", mock.Anything, s.userID, input).Return(created, nil).Once()

	w := s.do(http.MethodPost, "/api/prompts", input, true)
	s.Equal(http.StatusCreated, w.Code)

	var got models.Prompt
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal(created.ID, got.ID)
	s.Equal([]string{"X"}, got.Tags)
}

func (s *HandlerSuite) TestGetPrompt() {
	id := uuid.New()
	s.prompts.On("Get", mock.Anything, s.userID, id).Return(nil, models.ErrPromptNotFound).Once()

	w := s.do(http.MethodGet, "/api/prompts/"+id.String(), nil, true)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(models.ErrCodePromptNotFound, s.errorBody(w).Code)

	w = s.do(http.MethodGet, "/api/prompts/not-a-uuid", nil, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestUpdatePrompt_EmptyTagsClear() {
	id := uuid.New()
	s.prompts.On("Update", mock.Anything, s.userID, id, mock.MatchedBy(func(u models.PromptUpdate) bool {
		return u.Tags != nil && len(u.Tags) == 0 && u.Title == nil && u.IsFavorite != nil && *u.IsFavorite
	})).Return(&models.Prompt{ID: id, UserID: s.userID, Tags: []string{}, IsFavorite: true}, nil).Once()

	w := s.do(http.MethodPatch, "/api/prompts/"+id.String(), `{"tags":[],"is_favorite":true}`, true)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerSuite) TestDeletePrompt() {
	id := uuid.New()
	s.prompts.On("Delete", mock.Anything, s.userID, id).Return(nil).Once()

	w := s.do(http.MethodDelete, "/api/prompts/"+id.String(), nil, true)
	s.Equal(http.StatusNoContent, w.Code)
	s.Empty(w.Body.Bytes())
}

func (s *HandlerSuite) TestListTags() {
	s.prompts.On("ListTags", mock.Anything, s.userID).Return([]string{"AI", "GO"}, nil).Once()

	w := s.do(http.MethodGet, "/api/tags", nil, true)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"tags":["AI","GO"]}`, w.Body.String())
}

func (s *HandlerSuite) TestStatistics() {
	s.settings.On("GetStatistics", mock.Anything, s.userID).
		Return(&models.Statistics{TotalPrompts: 3, TotalTags: 2, FavoriteCount: 1}, nil).Once()

	w := s.do(http.MethodGet, "/api/settings/statistics", nil, true)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"total_prompts":3,"total_tags":2,"favorite_count":1}`, w.Body.String())
}

func (s *HandlerSuite) TestExport() {
	exportedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.settings.On("Export", mock.Anything, s.userID).Return(&models.ExportBundle{
		Version:    models.ExportFormatVersion,
		ExportedAt: exportedAt,
		Prompts:    []models.Prompt{},
	}, nil).Once()

	w := s.do(http.MethodGet, "/api/settings/export", nil, true)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(`attachment; filename="prompts_export_20240501.json"`, w.Header().Get("Content-Disposition"))

	var bundle models.ExportBundle
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &bundle))
	s.Equal("1.0", bundle.Version)
	s.True(exportedAt.Equal(bundle.ExportedAt))
}

func (s *HandlerSuite) TestImport() {
	result := &models.ImportResult{ImportedCount: 1, FailedCount: 1, Errors: []string{"prompt 2: title or content missing"}}
	s.settings.On("Import", mock.Anything, s.userID, mock.MatchedBy(func(b *models.ImportBundle) bool {
		return b.Version == "1.0" && len(b.Prompts) == 2
	})).Return(result, nil).Once()

	body := `{"version":"1.0","exported_at":"2024-05-01T10:00:00Z","prompts":[` +
		`{"id":"x","user_id":"y","title":"T","content":"C"},{"title":"","content":"C"}]}`
	w := s.do(http.MethodPost, "/api/settings/import", body, true)
	s.Require().Equal(http.StatusOK, w.Code)

	var got models.ImportResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.False(got.Success)
	s.Equal(1, got.FailedCount)
}

func (s *HandlerSuite) TestImport_InvalidEnvelope() {
	s.settings.On("Import", mock.Anything, s.userID, mock.Anything).
		Return(nil, models.NewValidationError("version", "version is required")).Once()

	w := s.do(http.MethodPost, "/api/settings/import", `{"prompts":[]}`, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("version", s.errorBody(w).Field)

	w = s.do(http.MethodPost, "/api/settings/import", `{"version":"1.0","prompts":"nope"}`, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(models.ErrCodeBadRequest, s.errorBody(w).Code)
}

func (s *HandlerSuite) TestDeleteAccount() {
	s.settings.On("DeleteAccount", mock.Anything, s.userID).
		Return(&models.AccountDeletionResult{DeletedPrompts: 4, Message: "done"}, nil).Once()

	w := s.do(http.MethodDelete, "/api/account", nil, true)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"deleted_prompts":4,"message":"done"}`, w.Body.String())
}

func (s *HandlerSuite) TestUnknownErrorIsInternal() {
	s.prompts.On("ListTags", mock.Anything, s.userID).Return(nil, errors.New("connection reset")).Once()

	w := s.do(http.MethodGet, "/api/tags", nil, true)
	s.Equal(http.StatusInternalServerError, w.Code)
	resp := s.errorBody(w)
	s.Equal(models.ErrCodeInternal, resp.Code)
	s.NotContains(resp.Message, "connection reset")
}
