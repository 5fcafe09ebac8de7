package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"prompt-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROMPTCTL_API_URL", "http://api.test:9000")
	t.Setenv("PROMPTCTL_DEBOUNCE", "250ms")
	t.Setenv("PROMPTCTL_LOG_FILE", filepath.Join(dir, "p.log"))
	t.Setenv("PROMPTCTL_SESSION_FILE", filepath.Join(dir, "s.json"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://api.test:9000", cfg.APIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, filepath.Join(dir, "s.json"), cfg.SessionFile)
}

func TestLoad_NegativeDebounce(t *testing.T) {
	t.Setenv("PROMPTCTL_DEBOUNCE", "-1s")
	t.Setenv("PROMPTCTL_LOG_FILE", "x.log")
	t.Setenv("PROMPTCTL_SESSION_FILE", "x.json")
	_, err := Load("")
	assert.Error(t, err)
}

func TestSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewSessionStore(path)

	td, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, td, "missing file means no session")

	require.NoError(t, store.Save(&models.TokenDetails{AccessToken: "at", RefreshToken: "rt", AtExpires: 10}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// AccessUUID/RefreshUUID не сериализуются, остальное сохраняется
	td, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, td)
	assert.Equal(t, "at", td.AccessToken)
	assert.Equal(t, int64(10), td.AtExpires)

	require.NoError(t, store.Save(nil))
	require.NoError(t, store.Save(nil))
	td, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, td)
}

func TestSessionStore_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := NewSessionStore(path).Load()
	assert.Error(t, err)
}
