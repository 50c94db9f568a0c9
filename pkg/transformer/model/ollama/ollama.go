// Package ollama streams chat completions from a local Ollama server.
package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen2.5-coder"
)

// Client implements model.Client for Ollama's /api/chat endpoint.
type Client struct {
	cfg    model.Config
	http   *resty.Client
	logger *slog.Logger
}

// New creates an Ollama client. No API key is needed.
func New(cfg model.Config, handler slog.Handler) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Name == "" {
		cfg.Name = DefaultModel
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
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
		logger: slog.New(handler).With(slog.String("component", "ollama")),
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model    string         `json:"model"`
	Messages []message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

// Stream implements model.Client.
func (c *Client) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		messages := make([]message, 0, 2)
		if c.cfg.System != "" {
			messages = append(messages, message{Role: "system", Content: c.cfg.System})
		}
		messages = append(messages, message{Role: "user", Content: prompt})
		body := request{Model: c.cfg.Name, Messages: messages, Stream: true}
		options := map[string]any{}
		if c.cfg.Temperature > 0 {
			options["temperature"] = c.cfg.Temperature
		}
		if c.cfg.MaxTokens > 0 {
			options["num_predict"] = c.cfg.MaxTokens
		}
		if len(options) > 0 {
			body.Options = options
		}

		start := time.Now()
		resp, err := c.http.R().
			SetContext(ctx).
			SetDoNotParseResponse(true).
			SetBody(body).
			Post("/api/chat")
		if err != nil {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}
			yield("", fmt.Errorf("%w: ollama: %w", model.ErrProvider, err))
			return
		}
		raw := resp.RawBody()
		defer raw.Close()
		if resp.IsError() {
			yield("", model.StatusError("ollama", resp.Status(), raw))
			return
		}

		var streamErr error
		stopped := false
		scanErr := model.ScanLines(raw, func(line []byte) bool {
			var ch chunk
			if err := json.Unmarshal(line, &ch); err != nil {
				streamErr = fmt.Errorf("%w: ollama: decode chunk: %w", model.ErrProvider, err)
				return false
			}
			if ch.Error != "" {
				streamErr = fmt.Errorf("%w: ollama: %s", model.ErrProvider, ch.Error)
				return false
			}
			if ch.Message.Content != "" && !yield(ch.Message.Content, nil) {
				stopped = true
				return false
			}
			return !ch.Done
		})
		if stopped {
			return
		}
		if ctx.Err() != nil {
			yield("", ctx.Err())
			return
		}
		if streamErr == nil && scanErr != nil {
			streamErr = fmt.Errorf("%w: ollama: read stream: %w", model.ErrProvider, scanErr)
		}
		if streamErr != nil {
			yield("", streamErr)
			return
		}
		c.logger.Debug("Stream complete", slog.String("model", c.cfg.Name), slog.Duration("duration", time.Since(start)))
	}
}
