// Package anthropic streams completions from the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stackvity/code-transformer/pkg/transformer/model"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultMaxTokens = 4096
	apiVersion       = "2023-06-01"
)

// Client implements model.Client for the Anthropic Messages API.
type Client struct {
	cfg    model.Config
	http   *resty.Client
	logger *slog.Logger
}

// New creates an Anthropic client. An API key is required.
func New(cfg model.Config, handler slog.Handler) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic: API key is required", model.ErrProvider)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Name == "" {
		cfg.Name = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		http.SetTimeout(cfg.Timeout)
	}
	if handler == nil {
		handler = slog.DiscardHandler
	}
	return &Client{
		cfg:    cfg,
		http:   http,
		logger: slog.New(handler).With(slog.String("component", "anthropic")),
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Stream implements model.Client.
func (c *Client) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		body := request{
			Model:     c.cfg.Name,
			MaxTokens: c.cfg.MaxTokens,
			System:    c.cfg.System,
			Messages:  []message{{Role: "user", Content: prompt}},
			Stream:    true,
		}
		if c.cfg.Temperature > 0 {
			body.Temperature = &c.cfg.Temperature
		}

		start := time.Now()
		resp, err := c.http.R().
			SetContext(ctx).
			SetDoNotParseResponse(true).
			SetHeader("Accept", "text/event-stream").
			SetBody(body).
			Post("/v1/messages")
		if err != nil {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}
			yield("", fmt.Errorf("%w: anthropic: %w", model.ErrProvider, err))
			return
		}
		raw := resp.RawBody()
		defer raw.Close()
		if resp.IsError() {
			yield("", model.StatusError("anthropic", resp.Status(), raw))
			return
		}

		var streamErr error
		stopped := false
		scanErr := model.ScanSSE(raw, func(ev model.Event) bool {
			if ev.Data == "" {
				return true
			}
			var se streamEvent
			if err := json.Unmarshal([]byte(ev.Data), &se); err != nil {
				streamErr = fmt.Errorf("%w: anthropic: decode event %q: %w", model.ErrProvider, ev.Name, err)
				return false
			}
			switch se.Type {
			case "content_block_delta":
				if se.Delta.Type == "text_delta" && se.Delta.Text != "" {
					if !yield(se.Delta.Text, nil) {
						stopped = true
						return false
					}
				}
			case "error":
				msg := "unknown error"
				if se.Error != nil {
					msg = se.Error.Type + ": " + se.Error.Message
				}
				streamErr = fmt.Errorf("%w: anthropic: %s", model.ErrProvider, msg)
				return false
			case "message_stop":
				return false
			}
			return true
		})
		if stopped {
			return
		}
		if ctx.Err() != nil {
			yield("", ctx.Err())
			return
		}
		if streamErr == nil && scanErr != nil {
			streamErr = fmt.Errorf("%w: anthropic: read stream: %w", model.ErrProvider, scanErr)
		}
		if streamErr != nil {
			yield("", streamErr)
			return
		}
		c.logger.Debug("Stream complete", slog.String("model", c.cfg.Name), slog.Duration("duration", time.Since(start)))
	}
}
