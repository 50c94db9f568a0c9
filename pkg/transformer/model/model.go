// --- START OF NEW FILE pkg/transformer/model/model.go ---
package model

import (
	"context"
	"errors"
	"iter"
	"time"
)

// ErrProvider indicates that a model provider rejected a request or returned
// a malformed stream. Adapters wrap transport and HTTP status failures with it.
var ErrProvider = errors.New("model provider request failed")

// Client defines the streaming text-generation collaborator.
//
// Stability: Public Stable API - Implementations can be provided externally.
// Stream yields text fragments in emission order. A non-nil error ends the
// sequence; implementations MUST stop yielding once the consumer stops
// iterating or ctx is cancelled.
type Client interface {
	Stream(ctx context.Context, prompt string) iter.Seq2[string, error]
}

// ClientFunc adapts an ordinary function to the Client interface.
type ClientFunc func(ctx context.Context, prompt string) iter.Seq2[string, error]

// Stream implements Client.
func (f ClientFunc) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return f(ctx, prompt)
}

// Supported provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderGemini     = "gemini"
)

// Config holds the provider selection and request parameters shared by all
// adapters. Zero values fall back to per-provider defaults.
type Config struct {
	Provider    string        `mapstructure:"provider"`
	Name        string        `mapstructure:"name"`
	BaseURL     string        `mapstructure:"baseURL"`
	APIKey      string        `mapstructure:"apiKey"`
	MaxTokens   int           `mapstructure:"maxTokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	// System is the system instruction sent to providers that accept one.
	System string `mapstructure:"-"`
}

// Collect drains a stream into a single string. A partial result is never
// returned alongside an error.
func Collect(ctx context.Context, c Client, prompt string) (string, error) {
	var out []byte
	for fragment, err := range c.Stream(ctx, prompt) {
		if err != nil {
			return "", err
		}
		out = append(out, fragment...)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(out), nil
}

// --- END OF NEW FILE pkg/transformer/model/model.go ---
