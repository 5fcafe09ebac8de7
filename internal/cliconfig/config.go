// Package cliconfig - настройки терминального клиента promptctl и файл сессии.
package cliconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"prompt-manager/internal/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config - переменные окружения с префиксом PROMPTCTL_.
type Config struct {
	APIURL      string        `envconfig:"API_URL" default:"http://localhost:8080"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"15s"`
	LogFile     string        `envconfig:"LOG_FILE"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	SessionFile string        `envconfig:"SESSION_FILE"`
	Debounce    time.Duration `envconfig:"DEBOUNCE" default:"500ms"`
}

// Load читает необязательный .env и окружение. Пустые пути заменяются
// файлами в пользовательском каталоге настроек.
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFilePath, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("PROMPTCTL", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("PROMPTCTL_DEBOUNCE must not be negative, got %s", cfg.Debounce)
	}

	if cfg.LogFile == "" || cfg.SessionFile == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		if cfg.LogFile == "" {
			cfg.LogFile = filepath.Join(dir, "promptctl.log")
		}
		if cfg.SessionFile == "" {
			cfg.SessionFile = filepath.Join(dir, "session.json")
		}
	}
	return &cfg, nil
}

func defaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(base, "promptctl"), nil
}

// SessionStore хранит токены между запусками.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load возвращает сохраненную сессию или nil, если файла нет.
func (s *SessionStore) Load() (*models.TokenDetails, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var td models.TokenDetails
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("corrupted session file %s: %w", s.path, err)
	}
	if td.AccessToken == "" || td.RefreshToken == "" {
		return nil, nil
	}
	return &td, nil
}

// Save записывает сессию с правами 0600. nil удаляет файл.
func (s *SessionStore) Save(td *models.TokenDetails) error {
	if td == nil {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.Marshal(td)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
