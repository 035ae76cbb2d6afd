package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicStub(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-sonnet-4-20250514"}
}

func openAIStub(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newOpenAICompatible(ProviderOpenAI, "test-key", "gpt-4o-mini", server.URL+"/v1")
}

func anthropicReply(text, stop string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": stop,
			"usage":       map[string]any{"input_tokens": 40, "output_tokens": 25},
		})
	}
}

func openAIReply(text, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": text},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20},
		})
	}
}

func structuredRequest() Request {
	return Request{
		System:    "You design courses.",
		Messages:  []Message{{Role: RoleUser, Content: "Photography"}},
		Schema:    lessonSchema(),
		MaxTokens: 256,
	}
}

func TestAnthropicProvider_StructuredOutput(t *testing.T) {
	p := anthropicStub(t, anthropicReply(`{"title":"Exposure","minutes":12}`, "end_turn"))

	resp, err := p.Generate(context.Background(), structuredRequest())
	require.NoError(t, err)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.JSONEq(t, `{"title":"Exposure","minutes":12}`, string(resp.Content))
}

func TestAnthropicProvider_Truncated(t *testing.T) {
	p := anthropicStub(t, anthropicReply(`{"title":"Expo`, "max_tokens"))

	_, err := p.Generate(context.Background(), structuredRequest())
	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)
}

func TestAnthropicProvider_RateLimit(t *testing.T) {
	p := anthropicStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "slow down"},
		})
	})

	_, err := p.Generate(context.Background(), structuredRequest())
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	var got openai.ChatCompletionRequest
	p := openAIStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		openAIReply(`{"title":"Exposure","minutes":12}`, "stop")(w, r)
	})

	resp, err := p.Generate(context.Background(), structuredRequest())
	require.NoError(t, err)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, 20, resp.Usage.TotalTokens)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONSchema, got.ResponseFormat.Type)
}

func TestOpenAIProvider_SchemaViolation(t *testing.T) {
	p := openAIStub(t, openAIReply(`{"title":"Exposure"}`, "stop"))

	_, err := p.Generate(context.Background(), structuredRequest())
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestOpenAIProvider_LengthFinish(t *testing.T) {
	p := openAIStub(t, openAIReply(`{"title":`, "length"))

	_, err := p.Generate(context.Background(), structuredRequest())
	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	p := openAIStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "slow down", "type": "rate_limit"},
		})
	})

	_, err := p.Generate(context.Background(), structuredRequest())
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestNewOpenRouterProvider_DefaultsBaseURL(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{})
	assert.Error(t, err)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenRouter, p.name)
	assert.Equal(t, "m", p.ModelID())
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(lessonSchema().Definition)
	require.Contains(t, s.Properties, "kind")
	assert.Equal(t, []string{"video", "text"}, s.Properties["kind"].Enum)
	assert.Equal(t, []string{"title", "minutes"}, s.Required)

	s = geminiSchema(map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": []any{"a"}}})
	require.NotNil(t, s.Items)
	assert.Equal(t, []string{"a"}, s.Items.Enum)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "custom-model", resolveModel("custom-model", anthropicModels))
}
