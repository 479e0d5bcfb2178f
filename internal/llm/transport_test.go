package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureServer отвечает фиксированным телом и сохраняет последний запрос.
func captureServer(t *testing.T, path, response string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

const chatCompletionResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "test-model",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"title\":\"T\",\"content\":\"<p>C</p>\"}"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 11, "completion_tokens": 7, "total_tokens": 18}
}`

var testRequest = CompletionRequest{Stage: StageMaster, System: "sys", User: "user", Schema: masterSchema}

func TestCompatCompleter_ResponseFormatPerMode(t *testing.T) {
	tests := []struct {
		mode       StructuredMode
		wantFormat string
	}{
		{ModeJSONObject, "json_object"},
		{ModeDeclaredSchema, "json_schema"},
		{ModeInstruction, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			srv, captured := captureServer(t, "/chat/completions", chatCompletionResponse)
			c := newCompatCompleter(ClientSettings{APIKey: "k", Model: "test-model", BaseURL: srv.URL}, tt.mode)

			raw, usage, err := c.CompleteJSON(context.Background(), testRequest)
			require.NoError(t, err)
			assert.JSONEq(t, `{"title":"T","content":"<p>C</p>"}`, raw)
			assert.Equal(t, Usage{PromptTokens: 11, CompletionTokens: 7, TotalTokens: 18}, usage)

			req := *captured
			assert.Equal(t, "test-model", req["model"])
			format, hasFormat := req["response_format"].(map[string]any)
			if tt.wantFormat == "" {
				assert.False(t, hasFormat)
				messages := req["messages"].([]any)
				system := messages[0].(map[string]any)["content"].(string)
				assert.Contains(t, system, "JSON Schema")
				assert.Contains(t, system, `"title"`)
				return
			}
			require.True(t, hasFormat)
			assert.Equal(t, tt.wantFormat, format["type"])
			if tt.wantFormat == "json_schema" {
				schema := format["json_schema"].(map[string]any)
				assert.Equal(t, "master_document", schema["name"])
			}
		})
	}
}

func TestCompatCompleter_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	c := newCompatCompleter(ClientSettings{APIKey: "k", Model: "m", BaseURL: srv.URL}, ModeJSONObject)
	_, _, err := c.CompleteJSON(context.Background(), testRequest)
	assert.Error(t, err)
}

const emptyContentResponse = `{
	"id": "chatcmpl-2",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "test-model",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": ""}, "finish_reason": "length"}],
	"usage": {"prompt_tokens": 11, "completion_tokens": 4096, "total_tokens": 4107}
}`

func TestCompatCompleter_EmptyContentIsNotAnError(t *testing.T) {
	srv, _ := captureServer(t, "/chat/completions", emptyContentResponse)
	c := newCompatCompleter(ClientSettings{APIKey: "k", Model: "test-model", BaseURL: srv.URL}, ModeJSONObject)

	raw, usage, err := c.CompleteJSON(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.Equal(t, 4107, usage.TotalTokens)

	master, err := parseMaster(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, &MasterContent{Title: PlaceholderTitle, Body: PlaceholderContent}, master)
}

func TestCompatCompleter_NoChoices(t *testing.T) {
	srv, _ := captureServer(t, "/chat/completions", `{"id":"x","object":"chat.completion","choices":[]}`)
	c := newCompatCompleter(ClientSettings{APIKey: "k", Model: "m", BaseURL: srv.URL}, ModeJSONObject)

	_, _, err := c.CompleteJSON(context.Background(), testRequest)
	assert.Error(t, err)
}

func TestOpenAINativeCompleter_StrictSchema(t *testing.T) {
	srv, captured := captureServer(t, "/chat/completions", chatCompletionResponse)
	c := newOpenAINativeCompleter(ClientSettings{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL + "/"})

	raw, usage, err := c.CompleteJSON(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Contains(t, raw, `"title"`)
	assert.Equal(t, 18, usage.TotalTokens)

	format := (*captured)["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	schema := format["json_schema"].(map[string]any)
	assert.Equal(t, true, schema["strict"])
	assert.Equal(t, "master_document", schema["name"])
}

func TestOllamaCompleter_JSONFormat(t *testing.T) {
	// клиент Ollama читает ответ построчно, поэтому JSON в одну строку
	srv, captured := captureServer(t, "/api/chat", `{"model":"llama3.1","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":"{\"title\":\"T\"}"},"done":true,"prompt_eval_count":5,"eval_count":3}`)
	c, err := newOllamaCompleter(ClientSettings{Model: "llama3.1", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	raw, usage, err := c.CompleteJSON(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"T"}`, raw)
	assert.Equal(t, Usage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8}, usage)

	assert.Equal(t, "json", (*captured)["format"])
	assert.Equal(t, false, (*captured)["stream"])
}
