package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lessonSchema() *Schema {
	return &Schema{
		Name:        "test-lesson",
		Description: "A lesson stub",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":   map[string]any{"type": "string"},
				"minutes": map[string]any{"type": "integer", "minimum": 1},
				"kind":    map[string]any{"type": "string", "enum": []string{"video", "text"}},
			},
			"required":             []string{"title", "minutes"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"complete", `{"title":"Light","minutes":10,"kind":"video"}`, true},
		{"optional omitted", `{"title":"Light","minutes":10}`, true},
		{"missing required", `{"title":"Light"}`, false},
		{"wrong type", `{"title":"Light","minutes":"ten"}`, false},
		{"below minimum", `{"title":"Light","minutes":0}`, false},
		{"bad enum", `{"title":"Light","minutes":5,"kind":"podcast"}`, false},
		{"extra field", `{"title":"Light","minutes":5,"extra":1}`, false},
		{"malformed", `{title`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(lessonSchema(), json.RawMessage(tt.raw))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			assert.ErrorAs(t, err, &inv)
		})
	}
}

func TestValidateResponse_NilSchemaPasses(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`anything`)))
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"title":"x"}`)},
		MockResponse{Content: json.RawMessage(`{"title":"x","minutes":3}`)},
	)
	req := Request{Schema: lessonSchema()}

	_, err := mock.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)

	resp, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "mock", resp.Model)
	assert.Equal(t, 2, mock.CallCount())

	_, err = mock.Generate(context.Background(), req)
	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestPurposeFrom(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, "course-outline", PurposeFrom(WithPurpose(context.Background(), "course-outline")))
}

func TestMockProvider_FallbackAfterScript(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"n":1}`)})
	mock.Fallback = &MockResponse{Content: json.RawMessage(`{"n":0}`)}

	for _, want := range []string{`{"n":1}`, `{"n":0}`, `{"n":0}`} {
		resp, err := mock.Generate(context.Background(), Request{})
		require.NoError(t, err)
		assert.JSONEq(t, want, string(resp.Content))
	}
	assert.Equal(t, 3, mock.CallCount())
	assert.Len(t, mock.Calls(), 3)
}
