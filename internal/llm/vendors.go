package llm

import (
	"sort"
	"strings"
)

// DefaultProvider используется, если провайдер не указан ни в запросе, ни в конфигурации.
const DefaultProvider = "openai"

// Transport - клиентская библиотека вендора.
type Transport string

const (
	TransportOpenAINative Transport = "openai-native"
	TransportOpenAICompat Transport = "openai-compatible"
	TransportOllama       Transport = "ollama"
)

// StructuredMode - способ запросить у вендора JSON-ответ.
type StructuredMode string

const (
	ModeStrictSchema   StructuredMode = "strict_schema"   // нативный structured output
	ModeDeclaredSchema StructuredMode = "declared_schema" // response_format json_schema
	ModeJSONObject     StructuredMode = "json_object"     // response_format json_object
	ModeInstruction    StructuredMode = "instruction"     // схема в тексте запроса
	ModeOllamaJSON     StructuredMode = "ollama_json"     // format: "json"
)

// Vendor - строка таблицы вендоров.
type Vendor struct {
	Name         string
	Transport    Transport
	BaseURL      string
	DefaultModel string
	Mode         StructuredMode
	EnvVar       string
	// KeyOptional - вендор работает без ключа (локальная модель).
	KeyOptional bool
}

var vendors = map[string]Vendor{
	"openai": {
		Name:         "openai",
		Transport:    TransportOpenAINative,
		BaseURL:      "https://api.openai.com/v1/",
		DefaultModel: "gpt-4o",
		Mode:         ModeStrictSchema,
		EnvVar:       "OPENAI_API_KEY",
	},
	"anthropic": {
		Name:         "anthropic",
		Transport:    TransportOpenAICompat,
		BaseURL:      "https://api.anthropic.com/v1/",
		DefaultModel: "claude-sonnet-4-20250514",
		Mode:         ModeInstruction,
		EnvVar:       "ANTHROPIC_API_KEY",
	},
	"gemini": {
		Name:         "gemini",
		Transport:    TransportOpenAICompat,
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai/",
		DefaultModel: "gemini-1.5-pro",
		Mode:         ModeDeclaredSchema,
		EnvVar:       "GEMINI_API_KEY",
	},
	"deepseek": {
		Name:         "deepseek",
		Transport:    TransportOpenAICompat,
		BaseURL:      "https://api.deepseek.com/v1",
		DefaultModel: "deepseek-chat",
		Mode:         ModeJSONObject,
		EnvVar:       "DEEPSEEK_API_KEY",
	},
	"grok": {
		Name:         "grok",
		Transport:    TransportOpenAICompat,
		BaseURL:      "https://api.x.ai/v1",
		DefaultModel: "grok-2-latest",
		Mode:         ModeDeclaredSchema,
		EnvVar:       "XAI_API_KEY",
	},
	"ollama": {
		Name:         "ollama",
		Transport:    TransportOllama,
		BaseURL:      "http://localhost:11434",
		DefaultModel: "llama3.1",
		Mode:         ModeOllamaJSON,
		EnvVar:       "OLLAMA_BASE_URL",
		KeyOptional:  true,
	},
}

// NormalizeName приводит имя провайдера к каноническому виду.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LookupVendor ищет вендора по имени.
func LookupVendor(name string) (Vendor, bool) {
	v, ok := vendors[NormalizeName(name)]
	return v, ok
}

// IsKnownProvider сообщает, есть ли вендор в таблице.
func IsKnownProvider(name string) bool {
	_, ok := LookupVendor(name)
	return ok
}

// ProviderNames возвращает имена всех вендоров в стабильном порядке.
func ProviderNames() []string {
	names := make([]string, 0, len(vendors))
	for name := range vendors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
