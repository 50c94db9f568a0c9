package cache

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/stackvity/code-transformer/pkg/transformer/model"
)

// Client decorates a model.Client with a response Store. A hit replays the
// stored response as a single fragment. A miss streams from the wrapped
// client and stores the response only when the stream completes without
// error and without the consumer stopping early.
type Client struct {
	next   model.Client
	store  Store
	cfg    model.Config
	logger *slog.Logger
}

// NewClient wraps next. cfg identifies the provider, model and system
// instruction that are part of every key.
func NewClient(next model.Client, store Store, cfg model.Config, handler slog.Handler) *Client {
	if handler == nil {
		handler = slog.DiscardHandler
	}
	return &Client{
		next:   next,
		store:  store,
		cfg:    cfg,
		logger: slog.New(handler).With(slog.String("component", "cachingClient")),
	}
}

// Stream implements model.Client.
func (c *Client) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	key := Key(c.cfg, prompt)
	return func(yield func(string, error) bool) {
		if entry, ok := c.store.Get(key); ok {
			c.logger.Debug("Cache hit", slog.String("key", key[:12]))
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			yield(entry.Response, nil)
			return
		}

		var sb strings.Builder
		for fragment, err := range c.next.Stream(ctx, prompt) {
			if err != nil {
				yield("", err)
				return
			}
			sb.WriteString(fragment)
			if !yield(fragment, nil) {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		c.store.Put(key, Entry{
			Response:  sb.String(),
			Provider:  c.cfg.Provider,
			Model:     c.cfg.Name,
			CreatedAt: time.Now().UTC(),
		})
		c.logger.Debug("Cache stored", slog.String("key", key[:12]))
	}
}
