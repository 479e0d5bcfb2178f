// Package credentials хранит API-ключи провайдеров в зашифрованном виде.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"content-pipeline/internal/database"
	"content-pipeline/internal/llm"
	"content-pipeline/internal/models"
	"content-pipeline/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var decryptFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "credential_decrypt_failures_total",
		Help: "Stored provider keys that could not be decrypted.",
	},
	[]string{"provider"},
)

// SecretCipher шифрует и расшифровывает значения ключей.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(payload string) (string, error)
}

// Store - хранилище ключей. Реализует llm.CredentialResolver.
type Store struct {
	repo   repository.CredentialRepository
	db     database.DBTX
	cipher SecretCipher
	logger *zap.Logger
}

var _ llm.CredentialResolver = (*Store)(nil)

func NewStore(repo repository.CredentialRepository, db database.DBTX, cipher SecretCipher, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		db:     db,
		cipher: cipher,
		logger: logger.Named("CredentialStore"),
	}
}

// Resolve возвращает расшифрованный ключ провайдера.
// Отсутствующая запись и нерасшифровываемый ключ дают ok=false без ошибки.
func (s *Store) Resolve(ctx context.Context, provider string) (string, bool, error) {
	provider = llm.NormalizeName(provider)
	cred, err := s.repo.GetByProvider(ctx, s.db, provider)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load key for %s: %w", provider, err)
	}

	secret, err := s.cipher.Decrypt(cred.EncryptedKey)
	if err != nil {
		decryptFailuresTotal.WithLabelValues(provider).Inc()
		s.logger.Warn("Stored API key cannot be decrypted, treating as absent",
			zap.String("provider", provider),
			zap.Error(err),
		)
		return "", false, nil
	}
	return secret, true, nil
}

// Save шифрует ключ и сохраняет его, заменяя предыдущий.
func (s *Store) Save(ctx context.Context, provider, secret string) error {
	provider = llm.NormalizeName(provider)
	if !llm.IsKnownProvider(provider) {
		return models.NewValidationError("provider", fmt.Sprintf("unknown provider %q", provider))
	}
	// Ключ хранится как есть, без нормализации.
	if strings.TrimSpace(secret) == "" {
		return models.NewValidationError("apiKey", "must not be empty")
	}

	encrypted, err := s.cipher.Encrypt(secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt key for %s: %w", provider, err)
	}
	if err := s.repo.Upsert(ctx, s.db, provider, encrypted); err != nil {
		return fmt.Errorf("failed to save key for %s: %w", provider, err)
	}

	s.logger.Info("API key saved", zap.String("provider", provider))
	return nil
}

// Delete удаляет ключ. Повторное удаление не является ошибкой.
func (s *Store) Delete(ctx context.Context, provider string) error {
	provider = llm.NormalizeName(provider)
	if err := s.repo.Delete(ctx, s.db, provider); err != nil {
		return fmt.Errorf("failed to delete key for %s: %w", provider, err)
	}
	s.logger.Info("API key deleted", zap.String("provider", provider))
	return nil
}

// List сообщает, для каких известных провайдеров сохранен ключ.
func (s *Store) List(ctx context.Context) ([]models.ProviderKeyStatus, error) {
	creds, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	stored := make(map[string]*models.Credential, len(creds))
	for _, c := range creds {
		stored[c.Provider] = c
	}

	names := llm.ProviderNames()
	out := make([]models.ProviderKeyStatus, 0, len(names))
	for _, name := range names {
		status := models.ProviderKeyStatus{Provider: name}
		if c, ok := stored[name]; ok {
			updated := c.UpdatedAt
			status.HasKey = true
			status.LastUpdated = &updated
		}
		out = append(out, status)
	}
	return out, nil
}
