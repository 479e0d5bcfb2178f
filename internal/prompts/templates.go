// Package prompts содержит шаблоны запросов к LLM.
// Шаблоны - это данные: формулировки можно менять, не затрагивая JSON-контракт ответа.
package prompts

import (
	"regexp"
	"strconv"
	"strings"
)

// Языки: основная статья пишется на SourceLanguage, переводная версия
// готовится на TranslationLanguage для TranslationAudience.
const (
	SourceLanguage      = "Korean"
	TranslationLanguage = "English"
	TranslationAudience = "Western"
)

// Размеры производного контента.
const (
	ThreadPostCount = 4
	MicroPostCount  = 4
	PostCharLimit   = 280
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Template - пара системного и пользовательского сообщения с плейсхолдерами {{name}}.
type Template struct {
	Name   string
	System string
	User   string
}

// Render подставляет значения во все вхождения плейсхолдеров.
// Отсутствующие значения заменяются пустой строкой.
func (t Template) Render(vars map[string]string) (system, user string) {
	return render(t.System, vars), render(t.User, vars)
}

func render(text string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		return vars[name]
	})
}

// Placeholders возвращает имена плейсхолдеров шаблона без повторов.
func (t Template) Placeholders() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, text := range []string{t.System, t.User} {
		for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
			if _, ok := seen[m[1]]; ok {
				continue
			}
			seen[m[1]] = struct{}{}
			names = append(names, m[1])
		}
	}
	return names
}

// Master - запрос на генерацию основной статьи.
var Master = Template{
	Name:   "master",
	System: "You are a senior market analyst. You write professional, trustworthy long-form articles.",
	User: `Write a professional blog article in {{language}} about {{topic}} based on the information below.

Topic: {{topic}}
{{reference}}{{comparison}}Requirements: {{requirements}}

Guidelines:
- The title about {{topic}} must be engaging and SEO friendly.
- Write the title and body in {{language}}.
- Write the body as HTML using h2, h3, p, table, ul and ol tags.
- Present any data as HTML tables.
- Keep the tone expert but easy to read.
- Aim for 2000-3000 characters.`,
}

// Derivative - запрос на производный контент из утвержденной статьи.
var Derivative = Template{
	Name:   "derivative",
	System: "You are a multilingual content specialist. You adapt content to each platform while keeping its meaning.",
	User: `Create three derivative pieces from the approved {{source_language}} article below.

Title: {{title}}
Content: {{content}}

Produce:
1. Translated article: translate the article from {{source_language}} into {{target_language}} and adapt it for a {{audience}} audience. Keep HTML formatting.
2. Thread posts: split the article into {{thread_count}} sequential posts in {{source_language}}, each at most {{char_limit}} characters.
3. Micro posts: write {{micro_count}} independent posts in {{source_language}}, each at most {{char_limit}} characters, including relevant hashtags.`,
}

// MasterVars собирает значения для шаблона Master.
// Разделы reference и comparison пусты, если данных нет.
func MasterVars(topic, sourceURL, sourceText, comparison, requirements string) map[string]string {
	var reference strings.Builder
	if strings.TrimSpace(sourceURL) != "" {
		reference.WriteString("Reference URL: " + sourceURL + "\n")
	}
	if strings.TrimSpace(sourceText) != "" {
		reference.WriteString("Reference material:\n" + sourceText + "\n")
	}

	comparisonSection := ""
	if strings.TrimSpace(comparison) != "" {
		comparisonSection = "Compare against: " + comparison + "\n"
	}

	return map[string]string{
		"topic":        topic,
		"language":     SourceLanguage,
		"reference":    reference.String(),
		"comparison":   comparisonSection,
		"requirements": requirements,
	}
}

// DerivativeVars собирает значения для шаблона Derivative.
func DerivativeVars(title, content string) map[string]string {
	return map[string]string{
		"title":           title,
		"content":         content,
		"source_language": SourceLanguage,
		"target_language": TranslationLanguage,
		"audience":        TranslationAudience,
		"thread_count":    strconv.Itoa(ThreadPostCount),
		"micro_count":     strconv.Itoa(MicroPostCount),
		"char_limit":      strconv.Itoa(PostCharLimit),
	}
}
