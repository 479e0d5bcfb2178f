package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// ollamaCompleter обращается к локальной модели через нативный API Ollama.
type ollamaCompleter struct {
	client *api.Client
	model  string
}

func newOllamaCompleter(s ClientSettings) (*ollamaCompleter, error) {
	// api.NewClient ожидает URL без суффикса /v1
	baseURL := strings.TrimSuffix(strings.TrimSuffix(s.BaseURL, "/"), "/v1")
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL %q: %w", baseURL, err)
	}
	return &ollamaCompleter{
		client: api.NewClient(parsedURL, &http.Client{Timeout: s.Timeout}),
		model:  s.Model,
	}, nil
}

func (c *ollamaCompleter) CompleteJSON(ctx context.Context, req CompletionRequest) (string, Usage, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
	}

	var resp api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("ollama chat: %w", err)
	}

	usage := Usage{
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
	}
	return resp.Message.Content, usage, nil
}
