package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prompt-manager/internal/config"
	"prompt-manager/internal/database"
	"prompt-manager/internal/handler"
	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/logger"
	"prompt-manager/internal/messaging"
	"prompt-manager/internal/middleware"
	"prompt-manager/internal/models"
	"prompt-manager/internal/realtime"
	"prompt-manager/internal/service"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

const (
	connectMaxRetries = 50
	connectRetryDelay = 3 * time.Second
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to an optional .env file")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Service:  "prompt-manager",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel))

	// --- External Connections ---
	pgPool, err := setupPostgres(cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	if err := database.ApplyMigrations(cfg.PostgresDSN(), log); err != nil {
		zap.L().Fatal("Failed to apply migrations", zap.Error(err))
	}

	redisClient, err := setupRedis(cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	hub := realtime.NewHub(cfg.GetAllowedOrigins(), log)
	defer hub.Close()

	publishers := messaging.MultiPublisher{hub}
	if cfg.RabbitMQURL != "" {
		mqConn, err := messaging.Connect(cfg.RabbitMQURL, connectMaxRetries, connectRetryDelay, log)
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		rabbitPublisher, err := messaging.NewRabbitMQPromptPublisher(mqConn, log)
		if err != nil {
			zap.L().Fatal("Failed to create prompt event publisher", zap.Error(err))
		}
		defer rabbitPublisher.Close()
		publishers = append(publishers, rabbitPublisher)
	} else {
		zap.L().Info("RABBITMQ_URL not set, prompt events are delivered over WebSocket only")
	}
	var publisher interfaces.PromptEventPublisher = publishers

	// --- Dependency Injection ---
	userRepo := database.NewPgUserRepository(pgPool, log)
	promptRepo := database.NewPgPromptRepository(pgPool, log)
	tokenRepo := database.NewRedisTokenRepository(redisClient, log)

	authSvc := service.NewAuthService(userRepo, tokenRepo, cfg, log)
	promptSvc := service.NewPromptService(promptRepo, publisher, log)
	settingsSvc := service.NewSettingsService(promptRepo, tokenRepo, publisher, log)

	authHandler := handler.NewAuthHandler(authSvc)
	promptHandler := handler.NewPromptHandler(promptSvc, log)
	settingsHandler := handler.NewSettingsHandler(settingsSvc, log)
	eventsHandler := handler.NewEventsHandler(hub, log)

	// Лимит на /auth/* по IP, счетчики в Redis
	rateLimitStore := rateli.RedisStore(&rateli.RedisOptions{
		RedisClient: redisClient,
		Rate:        time.Minute,
		Limit:       cfg.AuthRateLimit,
	})
	rateLimitMiddleware := rateli.RateLimiter(rateLimitStore, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Code:    models.ErrCodeRateLimited,
				Message: "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	if origins := cfg.GetAllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	authHandler.RegisterRoutes(router, rateLimitMiddleware)
	api := router.Group("/api", authHandler.AuthMiddleware())
	promptHandler.RegisterRoutes(api)
	settingsHandler.RegisterRoutes(api)
	eventsHandler.RegisterRoutes(api)

	// Метрики подключаются после регистрации маршрутов
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// setupPostgres создает пул соединений с повторными попытками.
func setupPostgres(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var lastErr error
	for attempt := 1; attempt <= connectMaxRetries; attempt++ {
		connectCtx, connectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		connectCancel()
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			err = pool.Ping(pingCtx)
			pingCancel()
			if err == nil {
				zap.L().Info("Connected to PostgreSQL", zap.Int("attempt", attempt))
				return pool, nil
			}
			pool.Close()
		}

		lastErr = err
		zap.L().Warn("PostgreSQL is not ready, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", connectMaxRetries),
			zap.Error(err),
		)
		if attempt < connectMaxRetries {
			time.Sleep(connectRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", connectMaxRetries, lastErr)
}

// setupRedis создает клиента Redis и ждет ответа на ping.
func setupRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	var lastErr error
	for attempt := 1; attempt <= connectMaxRetries; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		pingCancel()
		if lastErr == nil {
			zap.L().Info("Connected to Redis", zap.String("address", cfg.RedisAddr), zap.Int("attempt", attempt))
			return client, nil
		}
		zap.L().Warn("Redis ping failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", connectMaxRetries),
			zap.Error(lastErr),
		)
		if attempt < connectMaxRetries {
			time.Sleep(connectRetryDelay)
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", connectMaxRetries, lastErr)
}
