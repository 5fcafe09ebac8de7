package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"prompt-manager/internal/cliconfig"
	"prompt-manager/internal/logger"
	"prompt-manager/internal/models"
	"prompt-manager/internal/notification"
	"prompt-manager/internal/tui"
	"prompt-manager/pkg/client"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to an optional .env file")
	exportDir := flag.String("export-dir", ".", "Directory for exported prompt files")
	flag.Parse()

	if err := run(*envFile, *exportDir); err != nil {
		fmt.Fprintf(os.Stderr, "promptctl: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile, exportDir string) error {
	cfg, err := cliconfig.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Терминал занят интерфейсом, все логи пишутся в файл
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Encoding:   "json",
		OutputPath: cfg.LogFile,
		Service:    "promptctl",
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	clientLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		clientLevel = zerolog.InfoLevel
	}
	clientLog := zerolog.New(logFile).Level(clientLevel).With().Timestamp().Str("component", "api-client").Logger()

	api, err := client.New(cfg.APIURL, cfg.Timeout, clientLog)
	if err != nil {
		return err
	}

	sessions := cliconfig.NewSessionStore(cfg.SessionFile)
	tokens, err := sessions.Load()
	if err != nil {
		// Битый файл сессии не мешает запуску, пользователь просто войдет заново
		log.Warn("Failed to restore session", zap.Error(err))
	}
	api.SetTokens(tokens)
	api.OnTokensChanged(func(td *models.TokenDetails) {
		if err := sessions.Save(td); err != nil {
			log.Error("Failed to persist session", zap.Error(err))
		}
	})

	notes := notification.NewStore(log)
	defer notes.Close()

	model := tui.New(api, notes, tui.Options{
		Debounce:  cfg.Debounce,
		ExportDir: exportDir,
		Logger:    log,
	})

	log.Info("promptctl started", zap.String("api", cfg.APIURL), zap.Bool("restoredSession", tokens != nil))
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	log.Info("promptctl stopped")
	return nil
}
