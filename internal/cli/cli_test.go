package cli

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stackvity/code-transformer/pkg/transformer"
	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reply = "**Transformed Code:**\n```javascript\nconsole.log(1)\n```\n\n**Explanation:**\nSwapped print for console.log.\n"

func countingFactory(calls *atomic.Int32, system *string) ClientFactory {
	return func(_ context.Context, cfg model.Config, _ slog.Handler) (model.Client, error) {
		if system != nil {
			*system = cfg.System
		}
		return model.ClientFunc(func(ctx context.Context, prompt string) iter.Seq2[string, error] {
			return func(yield func(string, error) bool) {
				calls.Add(1)
				yield(reply, nil)
			}
		}), nil
	}
}

func baseOptions() transformer.Options {
	return transformer.Options{
		Model:    model.Config{Provider: model.ProviderOllama, Name: "test"},
		Detector: transformer.DetectorRules,
	}
}

func TestNewSession_WiresSystemPrompt(t *testing.T) {
	var calls atomic.Int32
	var system string
	s, err := NewSession(context.Background(), baseOptions(), countingFactory(&calls, &system), nil)
	require.NoError(t, err)
	require.NotNil(t, s.Transformer)

	assert.NotEmpty(t, system)
	assert.Equal(t, s.Transformer.SystemPrompt(), system)
	assert.NoError(t, s.Close(), "no cache means nothing to persist")
}

func TestNewSession_FactoryError(t *testing.T) {
	factory := func(context.Context, model.Config, slog.Handler) (model.Client, error) {
		return nil, errors.New("no api key")
	}
	_, err := NewSession(context.Background(), baseOptions(), factory, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, transformer.ErrConfigValidation)
	assert.Contains(t, err.Error(), "no api key")
}

func TestNewSession_BadPromptTemplate(t *testing.T) {
	opts := baseOptions()
	opts.PromptTemplatePath = filepath.Join(t.TempDir(), "missing.tmpl")
	var calls atomic.Int32
	_, err := NewSession(context.Background(), opts, countingFactory(&calls, nil), nil)
	assert.ErrorIs(t, err, transformer.ErrConfigValidation)
}

func TestNewSession_ResponseCache(t *testing.T) {
	opts := baseOptions()
	opts.AppVersion = "1.0.0"
	opts.Cache = transformer.CacheConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "responses.cache"), Format: "json"}
	req := transformer.Request{Code: "print(1)", TargetLanguage: "JavaScript", FileName: "a.py"}

	var calls atomic.Int32
	first, err := NewSession(context.Background(), opts, countingFactory(&calls, nil), nil)
	require.NoError(t, err)
	res, err := first.Transformer.Transform(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", res.TransformedCode)
	require.NoError(t, first.Close())
	_, err = os.Stat(opts.Cache.Path)
	require.NoError(t, err, "cache file is written on close")

	second, err := NewSession(context.Background(), opts, countingFactory(&calls, nil), nil)
	require.NoError(t, err)
	res2, err := second.Transformer.Transform(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, res.TransformedCode, res2.TransformedCode)
	assert.Equal(t, int32(1), calls.Load(), "second session is served from the cache")
	assert.NoError(t, second.CloseWith(nil))
}
