package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"content-pipeline/internal/llm"
	"content-pipeline/internal/models"

	"github.com/go-playground/validator/v10"
)

// createTaskRules - поля новой задачи после обрезки пробелов.
// Ограничения длины задаются в newValidator из констант models.
type createTaskRules struct {
	Topic        string `json:"topic"`
	Requirements string `json:"requirements"`
	SourceText   string `json:"sourceText"`
	SourceURL    string `json:"sourceUrl" validate:"omitempty,http_url"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// В ошибках используем имена полей API.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidationMapRules(map[string]string{
		"Topic":        fmt.Sprintf("required,max=%d", models.MaxTopicLength),
		"Requirements": fmt.Sprintf("required,max=%d", models.MaxRequirementsLength),
		"SourceText":   fmt.Sprintf("omitempty,max=%d", models.MaxSourceTextLength),
	}, createTaskRules{})
	return v
}

func validateCreateTask(in CreateTaskInput) (models.NewTask, error) {
	rules := createTaskRules{
		Topic:        strings.TrimSpace(in.Topic),
		Requirements: strings.TrimSpace(in.Requirements),
		SourceText:   deref(optional(in.SourceText)),
		SourceURL:    deref(optional(in.SourceURL)),
	}
	if err := validate.Struct(rules); err != nil {
		return models.NewTask{}, toValidationError(err)
	}

	provider := optional(llm.NormalizeName(in.Provider))
	if provider != nil && !llm.IsKnownProvider(*provider) {
		return models.NewTask{}, &llm.UnknownProviderError{Name: *provider}
	}

	return models.NewTask{
		UserID:       in.UserID,
		Topic:        rules.Topic,
		SourceURL:    optional(rules.SourceURL),
		SourceFile:   optional(in.SourceFile),
		SourceText:   optional(rules.SourceText),
		Comparison:   optional(in.Comparison),
		Requirements: rules.Requirements,
		Provider:     provider,
	}, nil
}

// toValidationError переводит первую ошибку validator в ValidationError.
func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate task input: %w", err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return models.NewValidationError(fe.Field(), "is required")
	case "max":
		return models.NewValidationError(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
	case "http_url":
		return models.NewValidationError(fe.Field(), "must be an absolute http(s) URL")
	}
	return models.NewValidationError(fe.Field(), "is invalid")
}

func validatePatch(content *models.Content, patch models.ContentPatch) (models.ContentPatch, error) {
	if patch.Title == nil && patch.Body == nil {
		return patch, models.NewValidationError("", "nothing to update")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.Body != nil {
		if strings.TrimSpace(*patch.Body) == "" {
			return patch, models.NewValidationError("content", "must not be empty")
		}
		if content.Type.IsMultiItem() {
			var items []string
			if err := json.Unmarshal([]byte(*patch.Body), &items); err != nil || len(items) == 0 {
				return patch, models.NewValidationError("content", "must be a non-empty JSON array of strings")
			}
		}
	}
	return patch, nil
}

// optional возвращает nil для пустой строки.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
