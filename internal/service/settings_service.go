package service

import (
	"context"
	"fmt"

	"content-pipeline/internal/llm"
	"content-pipeline/internal/models"
)

// SettingsService управляет ключами провайдеров и описывает доступных вендоров.
type SettingsService interface {
	ListKeys(ctx context.Context) ([]models.ProviderKeyStatus, error)
	SaveKey(ctx context.Context, provider, apiKey string) error
	DeleteKey(ctx context.Context, provider string) error
	ListProviders() []models.ProviderInfo
}

// KeyStore - хранилище ключей. Реализуется credentials.Store.
type KeyStore interface {
	Save(ctx context.Context, provider, secret string) error
	Delete(ctx context.Context, provider string) error
	List(ctx context.Context) ([]models.ProviderKeyStatus, error)
}

// ProviderCatalog описывает настроенных вендоров. Реализуется llm.Factory.
type ProviderCatalog interface {
	Providers() []models.ProviderInfo
}

type settingsServiceImpl struct {
	keys    KeyStore
	catalog ProviderCatalog
}

func NewSettingsService(keys KeyStore, catalog ProviderCatalog) SettingsService {
	return &settingsServiceImpl{keys: keys, catalog: catalog}
}

func (s *settingsServiceImpl) ListKeys(ctx context.Context) ([]models.ProviderKeyStatus, error) {
	return s.keys.List(ctx)
}

func (s *settingsServiceImpl) SaveKey(ctx context.Context, provider, apiKey string) error {
	return s.keys.Save(ctx, provider, apiKey)
}

func (s *settingsServiceImpl) DeleteKey(ctx context.Context, provider string) error {
	if !llm.IsKnownProvider(llm.NormalizeName(provider)) {
		return models.NewValidationError("provider", fmt.Sprintf("unknown provider %q", provider))
	}
	return s.keys.Delete(ctx, provider)
}

func (s *settingsServiceImpl) ListProviders() []models.ProviderInfo {
	return s.catalog.Providers()
}
