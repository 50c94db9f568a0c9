// Package providers builds a model.Client from configuration.
package providers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stackvity/code-transformer/pkg/transformer/model/anthropic"
	"github.com/stackvity/code-transformer/pkg/transformer/model/gemini"
	"github.com/stackvity/code-transformer/pkg/transformer/model/ollama"
	"github.com/stackvity/code-transformer/pkg/transformer/model/openrouter"
)

// Factory constructs a client for one provider.
type Factory func(ctx context.Context, cfg model.Config, handler slog.Handler) (model.Client, error)

// Registry holds named provider factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name (case-insensitive).
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// Names lists registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the client selected by cfg.Provider.
func (r *Registry) New(ctx context.Context, cfg model.Config, handler slog.Handler) (model.Client, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(cfg.Provider)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unsupported provider %q (available: %s)", model.ErrProvider, cfg.Provider, strings.Join(r.Names(), ", "))
	}
	return f(ctx, cfg, handler)
}

// Default returns a registry with all built-in providers.
func Default() *Registry {
	r := NewRegistry()
	r.Register(model.ProviderAnthropic, func(_ context.Context, cfg model.Config, h slog.Handler) (model.Client, error) {
		c, err := anthropic.New(cfg, h)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	r.Register(model.ProviderOpenRouter, func(_ context.Context, cfg model.Config, h slog.Handler) (model.Client, error) {
		c, err := openrouter.New(cfg, h)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	r.Register(model.ProviderOllama, func(_ context.Context, cfg model.Config, h slog.Handler) (model.Client, error) {
		return ollama.New(cfg, h), nil
	})
	r.Register(model.ProviderGemini, func(ctx context.Context, cfg model.Config, h slog.Handler) (model.Client, error) {
		c, err := gemini.New(ctx, cfg, h)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	return r
}

// New builds a client from the default registry.
func New(ctx context.Context, cfg model.Config, handler slog.Handler) (model.Client, error) {
	return Default().New(ctx, cfg, handler)
}
