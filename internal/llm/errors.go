package llm

import (
	"errors"
	"fmt"
)

// ErrGenerationFailed - базовая ошибка генерации, проверяется через errors.Is.
var ErrGenerationFailed = errors.New("content generation failed")

// GenerationError - вызов вендора не удался или ответ не является JSON.
type GenerationError struct {
	Provider string
	Stage    Stage
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s %s generation failed: %v", e.Provider, e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}

// MissingCredentialError - для провайдера нет ни сохраненного ключа, ни переменной окружения.
type MissingCredentialError struct {
	Provider string
	EnvVar   string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no API key configured for provider %q: set %s or save a key in settings", e.Provider, e.EnvVar)
}

// UnknownProviderError - имя провайдера не входит в таблицу вендоров.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown LLM provider %q", e.Name)
}
