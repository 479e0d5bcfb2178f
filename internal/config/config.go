package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// devEncryptionKey используется только вне production, когда ключ не задан.
const devEncryptionKey = "content-pipeline-development-encryption-key"

// ErrMissingEncryptionKey - в production ключ шифрования обязателен.
var ErrMissingEncryptionKey = errors.New("ENCRYPTION_KEY must be set in production")

// Config содержит конфигурацию сервиса.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`

	CORSAllowedOrigins string        `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"content_pipeline"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_TIMEOUT" default:"5m"`
	DBMaxRetries  int           `envconfig:"DB_CONNECT_RETRIES" default:"20"`
	DBPassword    string        `ignored:"true"`

	// Аутентификация. Без JWT_SECRET все запросы идут от DefaultUserID.
	JWTSecret     string `ignored:"true"`
	DefaultUserID int64  `envconfig:"DEFAULT_USER_ID" default:"1"`

	// Ключ шифрования сохраненных API-ключей.
	EncryptionKey         string `ignored:"true"`
	UsingDevEncryptionKey bool   `ignored:"true"`

	// LLM
	LLMProvider string        `envconfig:"LLM_PROVIDER" default:"openai"`
	AITimeout   time.Duration `envconfig:"AI_TIMEOUT" default:"0s"`

	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string `envconfig:"OPENAI_MODEL"`
	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL"`
	AnthropicURL    string `envconfig:"ANTHROPIC_BASE_URL"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	GeminiModel     string `envconfig:"GEMINI_MODEL"`
	GeminiBaseURL   string `envconfig:"GEMINI_BASE_URL"`
	DeepSeekAPIKey  string `envconfig:"DEEPSEEK_API_KEY"`
	DeepSeekModel   string `envconfig:"DEEPSEEK_MODEL"`
	DeepSeekBaseURL string `envconfig:"DEEPSEEK_BASE_URL"`
	XAIAPIKey       string `envconfig:"XAI_API_KEY"`
	GrokModel       string `envconfig:"GROK_MODEL"`
	GrokBaseURL     string `envconfig:"GROK_BASE_URL"`
	OllamaModel     string `envconfig:"OLLAMA_MODEL"`
	OllamaBaseURL   string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`

	// Опциональная инфраструктура
	RabbitMQURL    string        `envconfig:"RABBITMQ_URL"`
	EventsExchange string        `envconfig:"EVENTS_EXCHANGE" default:"content_pipeline.events"`
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	RedisPassword  string        `ignored:"true"`
	GuardTTL       time.Duration `envconfig:"GENERATION_GUARD_TTL" default:"30m"`
}

// VendorOverride - переопределения вендора LLM из окружения.
type VendorOverride struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Vendor возвращает переопределения для вендора по имени.
func (c *Config) Vendor(name string) VendorOverride {
	switch name {
	case "openai":
		return VendorOverride{APIKey: c.OpenAIAPIKey, Model: c.OpenAIModel, BaseURL: c.OpenAIBaseURL}
	case "anthropic":
		return VendorOverride{APIKey: c.AnthropicAPIKey, Model: c.AnthropicModel, BaseURL: c.AnthropicURL}
	case "gemini":
		return VendorOverride{APIKey: c.GeminiAPIKey, Model: c.GeminiModel, BaseURL: c.GeminiBaseURL}
	case "deepseek":
		return VendorOverride{APIKey: c.DeepSeekAPIKey, Model: c.DeepSeekModel, BaseURL: c.DeepSeekBaseURL}
	case "grok":
		return VendorOverride{APIKey: c.XAIAPIKey, Model: c.GrokModel, BaseURL: c.GrokBaseURL}
	case "ollama":
		return VendorOverride{Model: c.OllamaModel, BaseURL: c.OllamaBaseURL}
	}
	return VendorOverride{}
}

// IsProduction сообщает, запущен ли сервис в production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// GetAllowedOrigins разбирает CORS_ALLOWED_ORIGINS.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// MaskedDSN возвращает DSN с замаскированным паролем для логирования.
func (c *Config) MaskedDSN() string {
	return fmt.Sprintf("postgres://%s:********@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из .env (если есть), окружения и секретов.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	cfg.DBPassword = readSecretOrEnv("db_password", "DB_PASSWORD")
	cfg.JWTSecret = readSecretOrEnv("jwt_secret", "JWT_SECRET")
	cfg.RedisPassword = readSecretOrEnv("redis_password", "REDIS_PASSWORD")

	cfg.EncryptionKey = readSecretOrEnv("encryption_key", "ENCRYPTION_KEY")
	if cfg.EncryptionKey == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingEncryptionKey
		}
		cfg.EncryptionKey = devEncryptionKey
		cfg.UsingDevEncryptionKey = true
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	return &cfg, nil
}
