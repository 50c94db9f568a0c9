// --- START OF FINAL REVISED FILE internal/cli/cli.go ---
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stackvity/code-transformer/pkg/transformer"
	"github.com/stackvity/code-transformer/pkg/transformer/cache"
	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stackvity/code-transformer/pkg/transformer/model/providers"
)

// ClientFactory builds the model collaborator for a configuration.
type ClientFactory func(ctx context.Context, cfg model.Config, handler slog.Handler) (model.Client, error)

// Session owns a ready Transformer and the resources built for it.
type Session struct {
	Transformer *transformer.Transformer
	Options     transformer.Options

	logger    *slog.Logger
	store     cache.Store
	cachePath string
}

// NewSession builds the prompt builder, model client (wrapped by the
// response cache when enabled) and Transformer described by opts. A nil
// factory selects the provider registry.
func NewSession(ctx context.Context, opts transformer.Options, factory ClientFactory, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if factory == nil {
		factory = providers.New
	}
	s := &Session{logger: logger.With(slog.String("component", "session"))}

	builder, err := transformer.NewPromptBuilder(opts.PromptTemplatePath)
	if err != nil {
		return nil, err
	}
	opts.PromptBuilder = builder
	opts.Model.System = builder.System()

	if opts.ModelClient == nil {
		client, err := factory(ctx, opts.Model, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("%w: model provider '%s': %w", transformer.ErrConfigValidation, opts.Model.Provider, err)
		}
		opts.ModelClient = client
	}

	if opts.Cache.Enabled {
		s.store = cache.NewFileStore(opts.Logger, opts.AppVersion, opts.Cache.Format)
		s.cachePath = opts.Cache.Path
		if err := s.store.Load(s.cachePath); err != nil {
			s.logger.Warn("Failed to load response cache, starting empty", slog.String("path", s.cachePath), slog.Any("error", err))
		}
		opts.ModelClient = cache.NewClient(opts.ModelClient, s.store, opts.Model, opts.Logger)
	}

	t, err := transformer.New(opts)
	if err != nil {
		return nil, err
	}
	s.Transformer = t
	s.Options = opts
	return s, nil
}

// Close persists the response cache when one is in use.
func (s *Session) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	if err := s.store.Persist(s.cachePath); err != nil {
		return fmt.Errorf("persist response cache: %w", err)
	}
	s.logger.Debug("Response cache persisted", slog.String("path", s.cachePath), slog.Int("entries", s.store.Len()))
	return nil
}

// CloseWith closes s and joins any failure onto err.
func (s *Session) CloseWith(err error) error {
	return errors.Join(err, s.Close())
}

// --- END OF FINAL REVISED FILE internal/cli/cli.go ---
