package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"prompt-manager/internal/mocks"
	"prompt-manager/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSettingsService() (*settingsServiceImpl, *mocks.PromptRepository, *mocks.TokenRepository) {
	repo := new(mocks.PromptRepository)
	tokens := new(mocks.TokenRepository)
	svc := NewSettingsService(repo, tokens, nil, zap.NewNop()).(*settingsServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo, tokens
}

func TestImport_PartialSuccess(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newSettingsService()
	userID := uuid.New()

	bundle := &models.ImportBundle{
		Version: "1.0",
		Prompts: []models.ImportRecord{
			{Title: "Valid", Content: "Body", Tags: []string{"go", "Go", ""}},
			{Title: "  ", Content: "Body"},
			{Title: "No content", Content: ""},
			{Title: "Fav", Content: "Body", IsFavorite: models.BoolPtr(true)},
		},
	}
	repo.On("BulkCreate", ctx, userID, mock.MatchedBy(func(in []models.PromptInput) bool {
		return len(in) == 2 &&
			in[0].Title == "Valid" && assert.ObjectsAreEqual([]string{"GO"}, in[0].Tags) && !in[0].IsFavorite &&
			in[1].Title == "Fav" && in[1].IsFavorite
	})).Return(int64(2), nil).Once()

	res, err := svc.Import(ctx, userID, bundle)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.ImportedCount)
	assert.Equal(t, 2, res.FailedCount)
	assert.Equal(t, []string{
		"prompt 2: title or content missing",
		"prompt 3: title or content missing",
	}, res.Errors)
	repo.AssertExpectations(t)
}

func TestImport_BoundsViolation(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newSettingsService()
	userID := uuid.New()

	tooMany := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
	repo.On("BulkCreate", ctx, userID, mock.Anything).Return(int64(1), nil).Once()

	res, err := svc.Import(ctx, userID, &models.ImportBundle{Version: "1.0", Prompts: []models.ImportRecord{
		{Title: "ok", Content: "ok"},
		{Title: "tags", Content: "ok", Tags: tooMany},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ImportedCount)
	assert.Equal(t, 1, res.FailedCount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "prompt 2: tags:")
}

func TestImport_BulkFailure(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newSettingsService()
	userID := uuid.New()
	repo.On("BulkCreate", ctx, userID, mock.Anything).Return(int64(0), errors.New("connection reset")).Once()

	res, err := svc.Import(ctx, userID, &models.ImportBundle{Version: "1.0", Prompts: []models.ImportRecord{
		{Title: "a", Content: "a"},
		{Title: "b", Content: "b"},
	}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Zero(t, res.ImportedCount)
	assert.Equal(t, 2, res.FailedCount)
	assert.Equal(t, []string{"database insert error: connection reset"}, res.Errors)
}

func TestImport_InvalidEnvelope(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSettingsService()

	_, err := svc.Import(ctx, uuid.New(), &models.ImportBundle{Prompts: []models.ImportRecord{}})
	assert.True(t, errors.Is(err, models.ErrValidation))
	_, err = svc.Import(ctx, uuid.New(), &models.ImportBundle{Version: "1.0"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	res, err := svc.Import(ctx, uuid.New(), &models.ImportBundle{Version: "1.0", Prompts: []models.ImportRecord{}})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.ImportedCount)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newSettingsService()
	exporter, importer := uuid.New(), uuid.New()

	prompts := []models.Prompt{
		{ID: uuid.New(), UserID: exporter, Title: "One", Content: "1", Tags: []string{"A"}, IsFavorite: true},
		{ID: uuid.New(), UserID: exporter, Title: "Two", Content: "2", Description: models.StringPtr("d"), Tags: []string{}},
	}
	repo.On("ListAll", ctx, exporter).Return(prompts, nil).Once()

	bundle, err := svc.Export(ctx, exporter)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatVersion, bundle.Version)
	assert.Equal(t, svc.now(), bundle.ExportedAt)

	data, err := json.Marshal(bundle)
	require.NoError(t, err)
	var imported models.ImportBundle
	require.NoError(t, json.Unmarshal(data, &imported))

	repo.On("BulkCreate", ctx, importer, mock.MatchedBy(func(in []models.PromptInput) bool {
		return len(in) == 2 && in[0].IsFavorite && in[1].Description != nil && *in[1].Description == "d"
	})).Return(int64(2), nil).Once()

	res, err := svc.Import(ctx, importer, &imported)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.ImportedCount)
	repo.AssertExpectations(t)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc, repo, tokens := newSettingsService()
	userID := uuid.New()

	repo.On("DeleteAllByUser", ctx, userID).Return(int64(3), nil).Once()
	tokens.On("DeleteTokensByUserID", ctx, userID).Return(int64(4), nil).Once()

	res, err := svc.DeleteAccount(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.DeletedPrompts)
	assert.NotEmpty(t, res.Message)

	repo.On("DeleteAllByUser", ctx, userID).Return(int64(0), errors.New("db down")).Once()
	_, err = svc.DeleteAccount(ctx, userID)
	assert.Error(t, err)

	repo.AssertExpectations(t)
	tokens.AssertExpectations(t)
}
