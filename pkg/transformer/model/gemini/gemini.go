// Package gemini streams completions from Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// Client implements model.Client on top of the genai SDK.
type Client struct {
	cfg    model.Config
	client *genai.Client
	logger *slog.Logger
}

// New creates a Gemini client. An API key is required.
func New(ctx context.Context, cfg model.Config, handler slog.Handler) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini: API key is required", model.ErrProvider)
	}
	if cfg.Name == "" {
		cfg.Name = DefaultModel
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: failed to create client: %w", model.ErrProvider, err)
	}
	if handler == nil {
		handler = slog.DiscardHandler
	}
	return &Client{
		cfg:    cfg,
		client: client,
		logger: slog.New(handler).With(slog.String("component", "gemini")),
	}, nil
}

func (c *Client) generateConfig() *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{}
	if c.cfg.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(c.cfg.System, genai.RoleUser)
	}
	if c.cfg.Temperature > 0 {
		gc.Temperature = genai.Ptr(float32(c.cfg.Temperature))
	}
	if c.cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(c.cfg.MaxTokens)
	}
	return gc
}

// Stream implements model.Client.
func (c *Client) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if c.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
		}
		start := time.Now()
		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.cfg.Name, genai.Text(prompt), c.generateConfig()) {
			if err != nil {
				if ctx.Err() != nil {
					yield("", ctx.Err())
					return
				}
				yield("", fmt.Errorf("%w: gemini: %w", model.ErrProvider, err))
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
		if ctx.Err() != nil {
			yield("", ctx.Err())
			return
		}
		c.logger.Debug("Stream complete", slog.String("model", c.cfg.Name), slog.Duration("duration", time.Since(start)))
	}
}
