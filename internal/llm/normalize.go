package llm

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var htmlTagRe = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^>]*)?/?>`)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// normalizeBody приводит тело статьи к HTML.
// Модели иногда отвечают Markdown вместо HTML; такой текст рендерится goldmark.
func normalizeBody(body string) string {
	if htmlTagRe.MatchString(body) {
		return body
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return body
	}
	return strings.TrimSpace(buf.String())
}
