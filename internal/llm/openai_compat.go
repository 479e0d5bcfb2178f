package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openaigo "github.com/sashabaranov/go-openai"
)

// compatCompleter обслуживает вендоров с OpenAI-совместимым API.
// Вендоры отличаются только base URL, моделью и режимом structured output.
type compatCompleter struct {
	client *openaigo.Client
	model  string
	mode   StructuredMode
}

func newCompatCompleter(s ClientSettings, mode StructuredMode) *compatCompleter {
	cfg := openaigo.DefaultConfig(s.APIKey)
	cfg.BaseURL = s.BaseURL
	cfg.HTTPClient = &http.Client{Timeout: s.Timeout}
	return &compatCompleter{
		client: openaigo.NewClientWithConfig(cfg),
		model:  s.Model,
		mode:   mode,
	}
}

func (c *compatCompleter) CompleteJSON(ctx context.Context, req CompletionRequest) (string, Usage, error) {
	chatReq, err := c.buildRequest(req)
	if err != nil {
		return "", Usage{}, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", Usage{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, errors.New("empty choices")
	}

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}

func (c *compatCompleter) buildRequest(req CompletionRequest) (openaigo.ChatCompletionRequest, error) {
	system := req.System
	var format *openaigo.ChatCompletionResponseFormat

	switch c.mode {
	case ModeJSONObject:
		format = &openaigo.ChatCompletionResponseFormat{Type: openaigo.ChatCompletionResponseFormatTypeJSONObject}
	case ModeDeclaredSchema, ModeStrictSchema:
		definition := req.Schema.Definition
		format = &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openaigo.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: &definition,
				Strict: c.mode == ModeStrictSchema,
			},
		}
	case ModeInstruction:
		schema, err := schemaJSON(req.Schema)
		if err != nil {
			return openaigo.ChatCompletionRequest{}, err
		}
		system += "\n\nReply with a single JSON object that conforms to this JSON Schema. Do not add any text outside the JSON.\n" + string(schema)
	default:
		return openaigo.ChatCompletionRequest{}, fmt.Errorf("structured mode %q is not supported by the OpenAI-compatible transport", c.mode)
	}

	return openaigo.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: system},
			{Role: openaigo.ChatMessageRoleUser, Content: req.User},
		},
		ResponseFormat: format,
	}, nil
}
