// Package llm реализует генерацию контента через взаимозаменяемых LLM-провайдеров.
//
// Все вендоры обслуживает один structuredProvider: он рендерит шаблон,
// запрашивает JSON через Completer конкретного транспорта и разбирает ответ.
// Вендоры различаются только данными (endpoint, модель, ключ) и способом
// запроса структурированного ответа.
package llm

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Stage - этап генерации.
type Stage string

const (
	StageMaster     Stage = "master"
	StageDerivative Stage = "derivative"
)

// Заглушки для полей, которые модель не вернула.
const (
	PlaceholderTitle             = "No title"
	PlaceholderContent           = "No content was generated."
	PlaceholderTranslatedTitle   = "No title"
	PlaceholderTranslatedContent = "No content"
	PlaceholderThreadPost        = "Thread content not generated"
	PlaceholderMicroPost         = "Micro posts not generated"
)

// MasterRequest - входные данные основной статьи.
type MasterRequest struct {
	Topic        string
	SourceURL    string
	SourceText   string
	Comparison   string
	Requirements string
}

// MasterContent - заголовок и HTML-тело статьи.
type MasterContent struct {
	Title string
	Body  string
}

// DerivativeContent - производный контент утвержденной статьи.
type DerivativeContent struct {
	Translated  MasterContent
	ThreadPosts []string
	MicroPosts  []string
}

// Provider генерирует контент через одного вендора с привязанным ключом.
type Provider interface {
	Name() string
	Model() string
	GenerateMasterContent(ctx context.Context, req MasterRequest) (*MasterContent, error)
	GenerateDerivativeContent(ctx context.Context, master MasterContent) (*DerivativeContent, error)
}

// Usage - расход токенов на один вызов.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Schema - JSON-схема ожидаемого ответа.
type Schema struct {
	Name       string
	Definition jsonschema.Definition
}

// CompletionRequest - один запрос структурированного JSON.
type CompletionRequest struct {
	Stage  Stage
	System string
	User   string
	Schema Schema
}

// Completer - транспорт вендора. Возвращает сырой текст ответа модели.
type Completer interface {
	CompleteJSON(ctx context.Context, req CompletionRequest) (string, Usage, error)
}
