package providers_test

import (
	"context"
	"iter"
	"log/slog"
	"testing"

	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stackvity/code-transformer/pkg/transformer/model/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Names(t *testing.T) {
	assert.Equal(t, []string{"anthropic", "gemini", "ollama", "openrouter"}, providers.Default().Names())
}

func TestNew_Providers(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     model.Config
		wantErr bool
	}{
		{name: "anthropic", cfg: model.Config{Provider: "anthropic", APIKey: "k"}},
		{name: "anthropic case-insensitive", cfg: model.Config{Provider: "Anthropic", APIKey: "k"}},
		{name: "anthropic missing key", cfg: model.Config{Provider: "anthropic"}, wantErr: true},
		{name: "openrouter", cfg: model.Config{Provider: "openrouter", APIKey: "k"}},
		{name: "ollama without key", cfg: model.Config{Provider: "ollama"}},
		{name: "gemini missing key", cfg: model.Config{Provider: "gemini"}, wantErr: true},
		{name: "unknown", cfg: model.Config{Provider: "skynet"}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := providers.New(context.Background(), tc.cfg, nil)
			if tc.wantErr {
				assert.ErrorIs(t, err, model.ErrProvider)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	r := providers.NewRegistry()
	stub := model.ClientFunc(func(ctx context.Context, prompt string) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) { yield(prompt, nil) }
	})
	r.Register("Echo", func(ctx context.Context, cfg model.Config, h slog.Handler) (model.Client, error) {
		return stub, nil
	})

	client, err := r.New(context.Background(), model.Config{Provider: "echo"}, nil)
	require.NoError(t, err)
	out, err := model.Collect(context.Background(), client, "ping")
	require.NoError(t, err)
	assert.Equal(t, "ping", out)
}
