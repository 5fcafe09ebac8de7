package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecret(t *testing.T, dir, name, value string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o600))
}

func setRequiredEnv(t *testing.T, secretsDir string) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "prompts")
	t.Setenv("DB_NAME", "prompts")
	t.Setenv("SECRETS_DIR", secretsDir)
}

func TestLoadConfig_Success(t *testing.T) {
	secrets := t.TempDir()
	writeSecret(t, secrets, "db_password", "dbpass")
	writeSecret(t, secrets, "jwt_secret", "jwt")
	writeSecret(t, secrets, "password_pepper", "pepper")
	setRequiredEnv(t, secrets)
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "dbpass", cfg.DBPassword)
	assert.Equal(t, "jwt", cfg.JWTSecret)
	assert.Equal(t, "pepper", cfg.PasswordPepper)
	assert.Empty(t, cfg.RedisPassword, "optional secret is absent")
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, uint(10), cfg.AuthRateLimit)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetAllowedOrigins())
	assert.Equal(t, "postgres://prompts:dbpass@db:5432/prompts?sslmode=disable", cfg.PostgresDSN())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_OptionalRedisPassword(t *testing.T) {
	secrets := t.TempDir()
	writeSecret(t, secrets, "db_password", "dbpass")
	writeSecret(t, secrets, "jwt_secret", "jwt")
	writeSecret(t, secrets, "password_pepper", "pepper")
	writeSecret(t, secrets, "redis_password", "redispass")
	setRequiredEnv(t, secrets)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "redispass", cfg.RedisPassword)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	secrets := t.TempDir()
	writeSecret(t, secrets, "db_password", "dbpass")
	setRequiredEnv(t, secrets)

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadConfig_EnvFile(t *testing.T) {
	secrets := t.TempDir()
	writeSecret(t, secrets, "db_password", "dbpass")
	writeSecret(t, secrets, "jwt_secret", "jwt")
	writeSecret(t, secrets, "password_pepper", "pepper")
	setRequiredEnv(t, secrets)
	// godotenv не перезаписывает уже выставленные переменные
	t.Setenv("SERVER_PORT", "")
	os.Unsetenv("SERVER_PORT")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_PORT=9090\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SERVER_PORT") })

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
}
