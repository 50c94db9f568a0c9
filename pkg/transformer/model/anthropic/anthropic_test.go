package anthropic_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stackvity/code-transformer/pkg/transformer/model/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deltaEvent(text string) string {
	payload, _ := json.Marshal(map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]string{"type": "text_delta", "text": text},
	})
	return fmt.Sprintf("event: content_block_delta\ndata: %s\n\n", payload)
}

func TestStream(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		fmt.Fprint(w, deltaEvent("**Transformed Code:**\n"))
		fmt.Fprint(w, deltaEvent("```go\nfunc main() {}\n```"))
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}))
	defer server.Close()

	client, err := anthropic.New(model.Config{APIKey: "test-key", BaseURL: server.URL, System: "be helpful"}, nil)
	require.NoError(t, err)

	out, err := model.Collect(context.Background(), client, "convert this")
	require.NoError(t, err)
	assert.Equal(t, "**Transformed Code:**\n```go\nfunc main() {}\n```", out)

	assert.Equal(t, anthropic.DefaultModel, got["model"])
	assert.Equal(t, "be helpful", got["system"])
	assert.Equal(t, true, got["stream"])
	assert.EqualValues(t, anthropic.DefaultMaxTokens, got["max_tokens"])
}

func TestStream_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer server.Close()

	client, err := anthropic.New(model.Config{APIKey: "bad", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = model.Collect(context.Background(), client, "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrProvider)
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestStream_ErrorEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, deltaEvent("partial"))
		fmt.Fprint(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n")
	}))
	defer server.Close()

	client, err := anthropic.New(model.Config{APIKey: "k", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = model.Collect(context.Background(), client, "prompt")
	assert.ErrorIs(t, err, model.ErrProvider)
	assert.Contains(t, err.Error(), "overloaded_error")
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := anthropic.New(model.Config{}, nil)
	assert.ErrorIs(t, err, model.ErrProvider)
}
