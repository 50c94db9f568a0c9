package ollama_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stackvity/code-transformer/pkg/transformer/model/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"def "},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"f(): pass"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer server.Close()

	client := ollama.New(model.Config{BaseURL: server.URL, Temperature: 0.2}, nil)
	out, err := model.Collect(context.Background(), client, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "def f(): pass", out)

	assert.Equal(t, ollama.DefaultModel, got["model"])
	assert.Equal(t, true, got["stream"])
	options, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.2, options["temperature"], 1e-9)
}

func TestStream_ErrorLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"error":"model 'nope' not found"}`)
	}))
	defer server.Close()

	client := ollama.New(model.Config{BaseURL: server.URL, Name: "nope"}, nil)
	_, err := model.Collect(context.Background(), client, "prompt")
	assert.ErrorIs(t, err, model.ErrProvider)
	assert.Contains(t, err.Error(), "not found")
}

func TestStream_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"first"},"done":false}`)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := ollama.New(model.Config{BaseURL: server.URL}, nil)

	var fragments []string
	var lastErr error
	for fragment, err := range client.Stream(ctx, "prompt") {
		if err != nil {
			lastErr = err
			break
		}
		fragments = append(fragments, fragment)
		cancel()
	}
	assert.Equal(t, []string{"first"}, fragments)
	require.Error(t, lastErr)
	assert.ErrorIs(t, lastErr, context.Canceled)

	// Give the transport a moment to tear down the connection.
	time.Sleep(10 * time.Millisecond)
}
