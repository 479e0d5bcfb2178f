package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNotJSONObject = errors.New("response is not a JSON object")

// decodeObject разбирает ответ модели в JSON-объект.
// Обертка ```json ... ``` и текст до и после объекта отбрасываются.
// Пустой ответ (например, обрезанный по лимиту) считается пустым объектом.
func decodeObject(raw string) (map[string]any, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return map[string]any{}, nil
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return nil, errNotJSONObject
	}

	var obj map[string]any
	if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotJSONObject, err)
	}
	if obj == nil {
		return nil, errNotJSONObject
	}
	return obj, nil
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:] // язык после ```
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// stringField возвращает непустую строку из первого найденного ключа.
func stringField(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// objectField возвращает вложенный объект из первого найденного ключа.
func objectField(obj map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if m, ok := obj[key].(map[string]any); ok {
			return m
		}
	}
	return nil
}

// stringsField возвращает непустые строки массива из первого найденного ключа.
func stringsField(obj map[string]any, keys ...string) []string {
	for _, key := range keys {
		items, ok := obj[key].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func parseMaster(raw string, normalize func(string) string) (*MasterContent, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	return documentFrom(obj, PlaceholderTitle, PlaceholderContent, normalize), nil
}

func parseDerivative(raw string, normalize func(string) string) (*DerivativeContent, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	result := &DerivativeContent{
		Translated: MasterContent{Title: PlaceholderTranslatedTitle, Body: PlaceholderTranslatedContent},
	}
	// Старые ключи контракта тоже принимаются.
	if doc := objectField(obj, "translatedDocument", "translated_document", "englishBlog"); doc != nil {
		result.Translated = *documentFrom(doc, PlaceholderTranslatedTitle, PlaceholderTranslatedContent, normalize)
	}

	result.ThreadPosts = stringsField(obj, "threadPosts", "thread_posts", "threads")
	if len(result.ThreadPosts) == 0 {
		result.ThreadPosts = []string{PlaceholderThreadPost}
	}
	result.MicroPosts = stringsField(obj, "microPosts", "micro_posts", "tweets")
	if len(result.MicroPosts) == 0 {
		result.MicroPosts = []string{PlaceholderMicroPost}
	}
	return result, nil
}

func documentFrom(obj map[string]any, titlePlaceholder, bodyPlaceholder string, normalize func(string) string) *MasterContent {
	doc := &MasterContent{
		Title: stringField(obj, "title"),
		Body:  stringField(obj, "content", "body"),
	}
	if doc.Title == "" {
		doc.Title = titlePlaceholder
	}
	if doc.Body == "" {
		doc.Body = bodyPlaceholder
	} else if normalize != nil {
		doc.Body = normalize(doc.Body)
	}
	return doc
}
