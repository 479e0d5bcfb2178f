package cli

import (
	"fmt"
	"os"

	"content-pipeline/internal/config"
	"content-pipeline/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "content-pipeline",
	Short: "Content generation pipeline API server",
	Long: `Content Pipeline turns a topic and requirements into a long-form master
article and, after approval, into derivative short-form posts using
one of several LLM providers.`,
	SilenceUsage: true,
}

// Execute запускает корневую команду. Вызывается из main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd возвращает корневую команду (используется в тестах).
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to .env file (optional)")
	rootCmd.AddCommand(serveCmd, migrateCmd, keysCmd, tokenCmd)
}

// bootstrap загружает конфигурацию и создает глобальный логгер.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	zap.ReplaceGlobals(log)
	return cfg, log, nil
}
