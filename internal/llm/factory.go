package llm

import (
	"context"
	"fmt"
	"time"

	"content-pipeline/internal/models"

	"go.uber.org/zap"
)

// CredentialResolver отдает расшифрованный ключ провайдера, если он сохранен.
type CredentialResolver interface {
	Resolve(ctx context.Context, provider string) (string, bool, error)
}

// VendorSettings - переопределения вендора из конфигурации.
// APIKey используется только если в хранилище ключа нет.
type VendorSettings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ClientSettings - итоговые параметры клиента вендора.
type ClientSettings struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// CompleterBuilder создает транспорт для вендора.
type CompleterBuilder func(vendor Vendor, settings ClientSettings) (Completer, error)

// FactoryConfig - параметры фабрики провайдеров.
type FactoryConfig struct {
	DefaultProvider string
	Vendors         map[string]VendorSettings
	Timeout         time.Duration
}

// Factory выбирает провайдера и привязывает к нему ключ.
type Factory struct {
	store     CredentialResolver
	cfg       FactoryConfig
	tokens    TokenCounter
	newClient CompleterBuilder
	logger    *zap.Logger
}

// FactoryOption настраивает Factory.
type FactoryOption func(*Factory)

// WithCompleterBuilder подменяет создание транспорта (используется в тестах).
func WithCompleterBuilder(b CompleterBuilder) FactoryOption {
	return func(f *Factory) { f.newClient = b }
}

// WithTokenCounter включает оценку токенов для вендоров без usage.
func WithTokenCounter(tc TokenCounter) FactoryOption {
	return func(f *Factory) { f.tokens = tc }
}

func NewFactory(store CredentialResolver, cfg FactoryConfig, logger *zap.Logger, opts ...FactoryOption) *Factory {
	f := &Factory{
		store:     store,
		cfg:       cfg,
		newClient: buildCompleter,
		logger:    logger.Named("ProviderFactory"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve возвращает провайдера: явно указанного, иначе из конфигурации, иначе openai.
// Сетевых вызовов не делает.
func (f *Factory) Resolve(ctx context.Context, explicit string) (Provider, error) {
	name := f.ResolveName(explicit)
	vendor, ok := LookupVendor(name)
	if !ok {
		return nil, &UnknownProviderError{Name: name}
	}

	settings := f.clientSettings(vendor)
	if !vendor.KeyOptional {
		secret, found, err := f.store.Resolve(ctx, vendor.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve credential for %s: %w", vendor.Name, err)
		}
		if found {
			settings.APIKey = secret
		}
		if settings.APIKey == "" {
			return nil, &MissingCredentialError{Provider: vendor.Name, EnvVar: vendor.EnvVar}
		}
	}

	completer, err := f.newClient(vendor, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", vendor.Name, err)
	}

	f.logger.Debug("Provider resolved", zap.String("provider", vendor.Name), zap.String("model", settings.Model))
	return newStructuredProvider(vendor.Name, settings.Model, completer, f.tokens, f.logger), nil
}

// ResolveName применяет порядок выбора без проверки имени.
func (f *Factory) ResolveName(explicit string) string {
	if name := NormalizeName(explicit); name != "" {
		return name
	}
	if name := NormalizeName(f.cfg.DefaultProvider); name != "" {
		return name
	}
	return DefaultProvider
}

// Providers описывает всех вендоров с итоговыми моделями.
func (f *Factory) Providers() []models.ProviderInfo {
	defaultName := f.ResolveName("")
	names := ProviderNames()
	out := make([]models.ProviderInfo, 0, len(names))
	for _, name := range names {
		vendor, _ := LookupVendor(name)
		out = append(out, models.ProviderInfo{
			Name:    name,
			Model:   f.clientSettings(vendor).Model,
			Default: name == defaultName,
		})
	}
	return out
}

func (f *Factory) clientSettings(vendor Vendor) ClientSettings {
	override := f.cfg.Vendors[vendor.Name]
	settings := ClientSettings{
		APIKey:  override.APIKey,
		Model:   vendor.DefaultModel,
		BaseURL: vendor.BaseURL,
		Timeout: f.cfg.Timeout,
	}
	if override.Model != "" {
		settings.Model = override.Model
	}
	if override.BaseURL != "" {
		settings.BaseURL = override.BaseURL
	}
	return settings
}

func buildCompleter(vendor Vendor, settings ClientSettings) (Completer, error) {
	switch vendor.Transport {
	case TransportOpenAINative:
		return newOpenAINativeCompleter(settings), nil
	case TransportOpenAICompat:
		return newCompatCompleter(settings, vendor.Mode), nil
	case TransportOllama:
		c, err := newOllamaCompleter(settings)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unsupported transport %q", vendor.Transport)
}
