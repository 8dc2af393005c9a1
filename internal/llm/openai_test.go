package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTestServer serves a canned chat completion and records the decoded request body.
func makeTestServer(t *testing.T, statusCode int, body any, captured *map[string]any) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	config := DefaultOpenAIConfig()
	config.BaseURL = srv.URL + "/v1"
	client, err := NewOpenAIClient(config, "test-key")
	require.NoError(t, err)
	return client
}

func completion(content, refusal string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-2024-08-06",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
				"refusal": refusal,
			},
		}},
	}
}

func testSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type:                 jsonschema.Object,
		AdditionalProperties: false,
		Properties: map[string]jsonschema.Definition{
			"name": {Type: jsonschema.String},
		},
		Required: []string{"name"},
	}
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(DefaultOpenAIConfig(), "")
	assert.Error(t, err)
}

func TestNewClient_Providers(t *testing.T) {
	client, err := NewClient(context.Background(), DefaultOpenAIConfig(), "key")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)
	assert.Equal(t, "gpt-4o", client.GetModel(TierAdvanced))
	assert.NoError(t, client.Close())

	_, err = NewClient(context.Background(), &Config{Provider: "anthropic"}, "key")
	assert.Error(t, err)
}

func TestOpenAI_GenerateContent(t *testing.T) {
	var body map[string]any
	client := makeTestServer(t, http.StatusOK, completion("Title: Go Engineer", ""), &body)

	got, err := client.GenerateContent(context.Background(), "clean this", TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "Title: Go Engineer", got)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.NotContains(t, body, "response_format")
	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
	assert.Equal(t, "clean this", messages[0].(map[string]any)["content"])
}

func TestOpenAI_GenerateStructured(t *testing.T) {
	var body map[string]any
	client := makeTestServer(t, http.StatusOK, completion(`{"name":"Ada"}`, ""), &body)

	resp, err := client.GenerateStructured(context.Background(), &StructuredRequest{
		System:     "be precise",
		User:       "who?",
		SchemaName: "person",
		Schema:     testSchema(),
		SchemaHint: "ignored by providers with native schema support",
		Tier:       TierAdvanced,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada"}`, string(resp.Parsed))
	assert.Equal(t, `{"name":"Ada"}`, resp.Content)
	assert.Equal(t, "gpt-4o-2024-08-06", resp.Model)

	assert.Equal(t, float64(15000), body["max_tokens"])
	assert.Equal(t, float64(1), body["temperature"])

	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "who?", messages[1].(map[string]any)["content"])

	format := body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	jsonSchema := format["json_schema"].(map[string]any)
	assert.Equal(t, "person", jsonSchema["name"])
	assert.Equal(t, true, jsonSchema["strict"])
	schema := jsonSchema["schema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
}

func TestOpenAI_GenerateStructured_Refusal(t *testing.T) {
	client := makeTestServer(t, http.StatusOK, completion("", "I can't help with that."), nil)

	resp, err := client.GenerateStructured(context.Background(), &StructuredRequest{
		User: "x", SchemaName: "person", Schema: testSchema(), Tier: TierAdvanced,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Parsed)
	assert.Equal(t, "I can't help with that.", resp.Refusal)
}

func TestOpenAI_GenerateStructured_NonJSONContent(t *testing.T) {
	client := makeTestServer(t, http.StatusOK, completion("```json\n{\"name\":\"Ada\"}\n```", ""), nil)

	resp, err := client.GenerateStructured(context.Background(), &StructuredRequest{
		User: "x", SchemaName: "person", Schema: testSchema(), Tier: TierAdvanced,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Parsed)
	assert.Equal(t, `{"name":"Ada"}`, CleanJSONBlock(resp.Content))
}

func TestOpenAI_HTTPError(t *testing.T) {
	client := makeTestServer(t, http.StatusInternalServerError, map[string]any{
		"error": map[string]any{"message": "server exploded", "type": "server_error"},
	}, nil)

	_, err := client.GenerateContent(context.Background(), "x", TierStandard)
	require.Error(t, err)

	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatusCode)
	assert.Contains(t, err.Error(), "server exploded")
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	body := completion("", "")
	body["choices"] = []any{}
	client := makeTestServer(t, http.StatusOK, body, nil)

	_, err := client.GenerateContent(context.Background(), "x", TierStandard)
	assert.Error(t, err)
}

func TestOpenAI_NoModelForTier(t *testing.T) {
	client, err := NewOpenAIClient(&Config{Provider: ProviderOpenAI, Models: map[ModelTier]string{}}, "key")
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), "x", TierLite)
	assert.Error(t, err)
	_, err = client.GenerateStructured(context.Background(), &StructuredRequest{Tier: TierLite})
	assert.Error(t, err)
}

func TestUnavailableClient(t *testing.T) {
	cause := errors.New("no API key provided")
	client := NewUnavailableClient(cause)

	_, err := client.GenerateContent(context.Background(), "x", TierStandard)
	assert.ErrorIs(t, err, cause)
	_, err = client.GenerateStructured(context.Background(), &StructuredRequest{})
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, client.GetModel(TierAdvanced))
	assert.NoError(t, client.Close())
}
