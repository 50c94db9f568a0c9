// Package openrouter streams chat completions from OpenRouter's
// OpenAI-compatible endpoint.
package openrouter

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
	DefaultBaseURL = "https://openrouter.ai"
	DefaultModel   = "anthropic/claude-3.5-sonnet"
	doneMarker     = "[DONE]"
)

// Client implements model.Client for OpenRouter.
type Client struct {
	cfg    model.Config
	url    string
	http   *resty.Client
	logger *slog.Logger
}

// New creates an OpenRouter client. An API key is required.
func New(cfg model.Config, handler slog.Handler) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openrouter: API key is required", model.ErrProvider)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Name == "" {
		cfg.Name = DefaultModel
	}
	http := resty.New().
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("HTTP-Referer", "https://github.com/stackvity/code-transformer").
		SetHeader("X-Title", "code-transformer").
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		http.SetTimeout(cfg.Timeout)
	}
	if handler == nil {
		handler = slog.DiscardHandler
	}
	return &Client{
		cfg:    cfg,
		url:    chatURL(cfg.BaseURL),
		http:   http,
		logger: slog.New(handler).With(slog.String("component", "openrouter")),
	}, nil
}

// chatURL builds the completions URL whether base already contains /api/v1 or not.
func chatURL(base string) string {
	b := strings.TrimRight(base, "/")
	if idx := strings.Index(b, "/api/v1"); idx >= 0 {
		return b[:idx+len("/api/v1")] + "/chat/completions"
	}
	return b + "/api/v1/chat/completions"
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type chunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Stream implements model.Client.
func (c *Client) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		messages := make([]message, 0, 2)
		if c.cfg.System != "" {
			messages = append(messages, message{Role: "system", Content: c.cfg.System})
		}
		messages = append(messages, message{Role: "user", Content: prompt})
		body := request{Model: c.cfg.Name, Messages: messages, MaxTokens: c.cfg.MaxTokens, Stream: true}
		if c.cfg.Temperature > 0 {
			body.Temperature = &c.cfg.Temperature
		}

		start := time.Now()
		resp, err := c.http.R().
			SetContext(ctx).
			SetDoNotParseResponse(true).
			SetHeader("Accept", "text/event-stream").
			SetBody(body).
			Post(c.url)
		if err != nil {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}
			yield("", fmt.Errorf("%w: openrouter: %w", model.ErrProvider, err))
			return
		}
		raw := resp.RawBody()
		defer raw.Close()
		if resp.IsError() {
			yield("", model.StatusError("openrouter", resp.Status(), raw))
			return
		}

		var streamErr error
		stopped := false
		scanErr := model.ScanSSE(raw, func(ev model.Event) bool {
			data := strings.TrimSpace(ev.Data)
			if data == "" {
				return true
			}
			if data == doneMarker {
				return false
			}
			var ch chunk
			if err := json.Unmarshal([]byte(data), &ch); err != nil {
				streamErr = fmt.Errorf("%w: openrouter: decode chunk: %w", model.ErrProvider, err)
				return false
			}
			if ch.Error != nil {
				streamErr = fmt.Errorf("%w: openrouter: %s", model.ErrProvider, ch.Error.Message)
				return false
			}
			for _, choice := range ch.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !yield(choice.Delta.Content, nil) {
					stopped = true
					return false
				}
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
			streamErr = fmt.Errorf("%w: openrouter: read stream: %w", model.ErrProvider, scanErr)
		}
		if streamErr != nil {
			yield("", streamErr)
			return
		}
		c.logger.Debug("Stream complete", slog.String("model", c.cfg.Name), slog.Duration("duration", time.Since(start)))
	}
}
