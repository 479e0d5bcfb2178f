package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-pipeline/internal/config"
	"content-pipeline/internal/database"
	"content-pipeline/internal/dispatch"
	"content-pipeline/internal/handler"
	"content-pipeline/internal/llm"
	"content-pipeline/internal/messaging"
	"content-pipeline/internal/middleware"
	"content-pipeline/internal/repository"
	"content-pipeline/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		return serve(cmd.Context(), cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info("Starting content pipeline", zap.String("env", cfg.Env), zap.String("default_provider", cfg.LLMProvider))

	// --- PostgreSQL ---
	pool, err := setupPostgres(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.NewMigrator(pool, logger).Up(ctx); err != nil {
		return err
	}

	// --- Защита от повторной генерации ---
	var guard dispatch.Guard = dispatch.NewMemoryGuard()
	if cfg.RedisAddr != "" {
		redisClient, err := setupRedis(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		guard = dispatch.NewRedisGuard(redisClient, cfg.GuardTTL, logger)
	} else {
		logger.Info("REDIS_ADDR not set, using in-process generation guard")
	}
	dispatcher := dispatch.New(guard, dispatch.Config{JobTimeout: cfg.AITimeout}, logger)

	// --- События ---
	var events messaging.EventPublisher = messaging.NewLogPublisher(logger)
	if cfg.RabbitMQURL != "" {
		conn, err := connectRabbitMQ(cfg.RabbitMQURL, logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		publisher, err := messaging.NewRabbitMQPublisher(conn, cfg.EventsExchange, logger)
		if err != nil {
			return err
		}
		events = publisher
	}
	defer events.Close()

	// --- Сервисы ---
	store, err := newCredentialStore(cfg, pool, logger)
	if err != nil {
		return err
	}
	factory := llm.NewFactory(store, factoryConfig(cfg), logger, llm.WithTokenCounter(llm.NewTiktokenCounter(logger)))

	pipelineService := service.NewPipelineService(service.Deps{
		DB:         pool,
		Tx:         database.NewTransactionHelper(pool, logger),
		Tasks:      repository.NewPgTaskRepository(logger),
		Contents:   repository.NewPgContentRepository(logger),
		Providers:  factory,
		Dispatcher: dispatcher,
		Events:     events,
	}, logger)
	settingsService := service.NewSettingsService(store, factory)
	h := handler.NewHandler(pipelineService, settingsService, logger)

	// --- HTTP ---
	router := newRouter(cfg, h, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("HTTP server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Generation jobs did not finish before shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
	return nil
}

// newRouter собирает gin с middleware, маршрутами и метриками.
func newRouter(cfg *config.Config, h *handler.Handler, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	p := ginprometheus.NewPrometheus("gin")

	health := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	router.GET("/health", health)
	router.HEAD("/health", health)

	h.RegisterRoutes(router, middleware.UserAuth(cfg.JWTSecret, cfg.DefaultUserID, logger))

	p.Use(router)
	return router
}
