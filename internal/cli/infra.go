package cli

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"content-pipeline/internal/config"
	"content-pipeline/internal/credentials"
	"content-pipeline/internal/database"
	"content-pipeline/internal/llm"
	"content-pipeline/internal/repository"
	"content-pipeline/internal/vault"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	connectRetries    = 10
	connectRetryDelay = 2 * time.Second
)

func setupPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	logger.Info("Connecting to PostgreSQL", zap.String("dsn", cfg.MaskedDSN()))
	return database.Connect(ctx, database.PoolConfig{
		DSN:         cfg.GetDSN(),
		MaxConns:    cfg.DBMaxConns,
		IdleTimeout: cfg.DBIdleTimeout,
		MaxRetries:  cfg.DBMaxRetries,
		RetryDelay:  connectRetryDelay,
	}, logger)
}

// setupRedis подключается к Redis, повторяя попытки.
func setupRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	var err error
	for i := 0; i < connectRetries; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
			return client, nil
		}
		logger.Warn("Failed to connect to Redis, retrying...",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", connectRetries),
			zap.Error(err),
		)
		time.Sleep(connectRetryDelay)
	}
	_ = client.Close()
	return nil, fmt.Errorf("could not connect to Redis after %d attempts: %w", connectRetries, err)
}

// connectRabbitMQ устанавливает соединение с RabbitMQ, повторяя попытки.
func connectRabbitMQ(rawURL string, logger *zap.Logger) (*amqp091.Connection, error) {
	masked := maskRabbitMQURL(rawURL)

	var conn *amqp091.Connection
	var err error
	for i := 0; i < connectRetries; i++ {
		conn, err = amqp091.Dial(rawURL)
		if err == nil {
			logger.Info("Connected to RabbitMQ", zap.String("url", masked))
			go func() {
				closeErr := <-conn.NotifyClose(make(chan *amqp091.Error, 1))
				if closeErr != nil {
					logger.Error("RabbitMQ connection closed", zap.Error(closeErr))
				}
			}()
			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying...",
			zap.String("url", masked),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", connectRetries),
			zap.Error(err),
		)
		time.Sleep(connectRetryDelay)
	}
	return nil, fmt.Errorf("could not connect to RabbitMQ after %d attempts: %w", connectRetries, err)
}

// maskRabbitMQURL скрывает пароль в URL для логов.
func maskRabbitMQURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), "********")
		}
	}
	return parsed.String()
}

// newCredentialStore собирает хранилище ключей поверх пула.
func newCredentialStore(cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) (*credentials.Store, error) {
	cipher, err := vault.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	if cfg.UsingDevEncryptionKey {
		logger.Warn("ENCRYPTION_KEY is not set, using development key. Stored API keys are not protected.")
	}
	return credentials.NewStore(repository.NewPgCredentialRepository(logger), pool, cipher, logger), nil
}

// factoryConfig переносит настройки вендоров из окружения в фабрику.
func factoryConfig(cfg *config.Config) llm.FactoryConfig {
	vendors := make(map[string]llm.VendorSettings, len(llm.ProviderNames()))
	for _, name := range llm.ProviderNames() {
		override := cfg.Vendor(name)
		vendors[name] = llm.VendorSettings{
			APIKey:  override.APIKey,
			Model:   override.Model,
			BaseURL: override.BaseURL,
		}
	}
	return llm.FactoryConfig{
		DefaultProvider: cfg.LLMProvider,
		Vendors:         vendors,
		Timeout:         cfg.AITimeout,
	}
}
