// --- START OF FINAL REVISED FILE pkg/transformer/transformer.go ---
package transformer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stackvity/code-transformer/pkg/transformer/content"
	"github.com/stackvity/code-transformer/pkg/transformer/encoding"
	"github.com/stackvity/code-transformer/pkg/transformer/language"
	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stackvity/code-transformer/pkg/transformer/prompt"
	"github.com/stackvity/code-transformer/pkg/transformer/response"
)

// Transformer composes language detection, prompt rendering, one streamed
// model call and response parsing. It holds no per-request state and is
// safe for concurrent use.
type Transformer struct {
	opts     Options
	client   model.Client
	detector language.Detector
	builder  prompt.Builder
	decoder  encoding.Decoder
	hooks    Hooks
	logger   *slog.Logger
	now      func() time.Time
}

// New validates opts and fills in default collaborators. A nil ModelClient
// is accepted; Transform then fails with ErrMissingCollaborator.
func New(opts Options) (*Transformer, error) {
	handler := opts.Logger
	if handler == nil {
		handler = slog.DiscardHandler
	}
	logger := slog.New(handler).With(slog.String("component", "transformer"))

	if err := validateOptions(&opts); err != nil {
		logger.Error(err.Error())
		return nil, err
	}

	detector := opts.LanguageDetector
	if detector == nil {
		detector = NewDetector(opts.Detector, opts.LanguageMappingsOverride)
	}

	builder := opts.PromptBuilder
	if builder == nil {
		var err error
		if builder, err = NewPromptBuilder(opts.PromptTemplatePath); err != nil {
			return nil, err
		}
	}

	decoder := opts.Decoder
	if decoder == nil {
		decoder = encoding.NewDecoder(opts.DefaultEncoding)
	}

	hooks := opts.EventHooks
	if hooks == nil {
		hooks = &NoOpHooks{}
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	if opts.ModelClient == nil {
		logger.Warn("No model client provided; transformations will fail until one is configured.")
	}

	return &Transformer{
		opts:     opts,
		client:   opts.ModelClient,
		detector: detector,
		builder:  builder,
		decoder:  decoder,
		hooks:    hooks,
		logger:   logger,
		now:      now,
	}, nil
}

func validateOptions(opts *Options) error {
	switch opts.Detector {
	case "":
		opts.Detector = DefaultDetector
	case DetectorRules, DetectorEnry:
	default:
		return fmt.Errorf("%w: invalid detector %q (want %q or %q)", ErrConfigValidation, opts.Detector, DetectorRules, DetectorEnry)
	}
	switch opts.Batch.OnErrorMode {
	case "":
		opts.Batch.OnErrorMode = DefaultOnErrorMode
	case OnErrorContinue, OnErrorStop:
	default:
		return fmt.Errorf("%w: invalid batch onError mode %q", ErrConfigValidation, opts.Batch.OnErrorMode)
	}
	if opts.Batch.Concurrency < 0 {
		return fmt.Errorf("%w: batch concurrency cannot be negative", ErrConfigValidation)
	}
	if opts.Batch.MaxFileSizeMB < 0 {
		return fmt.Errorf("%w: batch maxFileSizeMB cannot be negative", ErrConfigValidation)
	}
	if opts.Mode != "" {
		mode, err := ParseMode(string(opts.Mode))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfigValidation, err)
		}
		opts.Mode = mode
	}
	return nil
}

// NewDetector returns the detector implementation selected by kind, with
// extension overrides applied.
func NewDetector(kind DetectorKind, overrides map[string]string) language.Detector {
	if kind == DetectorEnry {
		return language.NewEnryDetector(overrides)
	}
	return language.NewRuleDetector(overrides)
}

// NewPromptBuilder returns the embedded prompt builder, with the full form
// template replaced by templatePath when it is set. Load failures wrap
// ErrConfigValidation.
func NewPromptBuilder(templatePath string) (prompt.Builder, error) {
	if templatePath == "" {
		return prompt.NewBuilder(nil)
	}
	tmpl, err := prompt.LoadTemplateFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return prompt.NewBuilder(tmpl)
}

// Detector returns the language detector in use.
func (t *Transformer) Detector() language.Detector { return t.detector }

// Decoder returns the input decoder in use.
func (t *Transformer) Decoder() encoding.Decoder { return t.decoder }

// SystemPrompt returns the system instruction for model providers.
func (t *Transformer) SystemPrompt() string { return t.builder.System() }

// DecodeInput converts raw input bytes to UTF-8 source text, rejecting
// binary content with ErrBinaryInput.
func (t *Transformer) DecodeInput(data []byte) (string, error) {
	text, err := t.decoder.DecodeText(data)
	if err != nil {
		if errors.Is(err, encoding.ErrBinaryContent) {
			return "", fmt.Errorf("%w: %w", ErrBinaryInput, err)
		}
		return "", err
	}
	return text, nil
}

// normalizedRequest is a validated copy of a Request.
type normalizedRequest struct {
	code         string
	target       string
	source       string
	mode         Mode
	instructions string
	fileName     string
}

func (t *Transformer) validate(req Request) (normalizedRequest, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return normalizedRequest{}, fmt.Errorf("%w: code is empty", ErrInvalidRequest)
	}
	target := strings.TrimSpace(req.TargetLanguage)
	if target == "" {
		return normalizedRequest{}, fmt.Errorf("%w: target language is empty", ErrInvalidRequest)
	}
	rawMode := string(req.Mode)
	if rawMode == "" {
		rawMode = string(t.opts.Mode)
	}
	mode, err := ParseMode(rawMode)
	if err != nil {
		return normalizedRequest{}, err
	}
	return normalizedRequest{
		code:         code,
		target:       target,
		source:       strings.TrimSpace(req.SourceLanguage),
		mode:         mode,
		instructions: strings.TrimSpace(req.Instructions),
		fileName:     strings.TrimSpace(req.FileName),
	}, nil
}

// Transform runs the full form transformation.
//
// The request is validated before anything else; ErrInvalidRequest is
// returned without contacting the model. Exactly one model stream is
// consumed. Errors from the model client are returned unmodified, and a
// cancelled ctx yields ctx.Err() without parsing a partial reply.
func (t *Transformer) Transform(ctx context.Context, req Request) (Result, error) {
	nr, err := t.validate(req)
	if err != nil {
		return Result{}, err
	}
	if t.client == nil {
		return Result{}, ErrMissingCollaborator
	}

	requestID := uuid.NewString()
	logger := t.logger.With(slog.String("requestID", requestID))

	code := nr.code
	if t.opts.CleanDocument {
		if cleaned := content.Clean(code); cleaned != "" {
			code = cleaned
		}
	}

	source := nr.source
	if source == "" {
		source = t.detector.Detect(code, nr.fileName)
		logger.Debug("Detected source language", slog.String("language", source), slog.String("fileName", nr.fileName))
	}

	text, err := t.builder.Build(prompt.Data{
		Mode:           string(nr.mode),
		SourceLanguage: source,
		TargetLanguage: nr.target,
		Instructions:   nr.instructions,
		FileName:       nr.fileName,
		Code:           code,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPromptRender, err)
	}

	start := t.now()
	logger.Info("Transformation started",
		slog.String("mode", string(nr.mode)),
		slog.String("source", source),
		slog.String("target", nr.target))

	raw, err := t.stream(ctx, requestID, text)
	if err != nil {
		logger.Warn("Transformation aborted", slog.String("error", err.Error()))
		return Result{}, err
	}

	parsed := response.Parse(raw)
	if parsed.ExtractionFailed() {
		logger.Warn("Model reply contained no code block")
	}
	logger.Info("Transformation finished", slog.Duration("duration", t.now().Sub(start)))

	return Result{
		TransformedCode:   parsed.Code,
		SourceLanguage:    source,
		TargetLanguage:    nr.target,
		Explanation:       parsed.Explanation,
		SuggestedFileName: SuggestFileName(nr.fileName, nr.target),
	}, nil
}

// TransformSimple runs the simplified form: the source language is detected
// from the code alone and the filename base is always DefaultBaseName.
func (t *Transformer) TransformSimple(ctx context.Context, req SimpleRequest) (SimpleResult, error) {
	nr, err := t.validate(Request{Code: req.Code, TargetLanguage: req.TargetLanguage, Instructions: req.Instructions, Mode: ModeTranslate})
	if err != nil {
		return SimpleResult{}, err
	}
	if t.client == nil {
		return SimpleResult{}, ErrMissingCollaborator
	}

	requestID := uuid.NewString()
	logger := t.logger.With(slog.String("requestID", requestID))

	source := t.detector.Detect(nr.code, "")
	text, err := t.builder.BuildSimple(prompt.Data{
		Mode:           string(ModeTranslate),
		SourceLanguage: source,
		TargetLanguage: nr.target,
		Instructions:   nr.instructions,
		Code:           nr.code,
	})
	if err != nil {
		return SimpleResult{}, fmt.Errorf("%w: %w", ErrPromptRender, err)
	}

	logger.Info("Simple transformation started", slog.String("source", source), slog.String("target", nr.target))
	raw, err := t.stream(ctx, requestID, text)
	if err != nil {
		logger.Warn("Simple transformation aborted", slog.String("error", err.Error()))
		return SimpleResult{}, err
	}

	parsed := response.Parse(raw)
	return SimpleResult{
		TransformedCode: parsed.Code,
		Explanation:     parsed.Explanation,
		FileName:        DefaultBaseName + language.ExtensionFor(nr.target),
	}, nil
}

// stream consumes one model stream, forwarding fragments to the hooks in
// emission order and returning their concatenation.
func (t *Transformer) stream(ctx context.Context, requestID, text string) (string, error) {
	var sb strings.Builder
	for fragment, err := range t.client.Stream(ctx, text) {
		if err != nil {
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		sb.WriteString(fragment)
		if hookErr := t.hooks.OnFragment(requestID, fragment); hookErr != nil {
			t.logger.Debug("OnFragment hook failed", slog.String("requestID", requestID), slog.String("hookError", hookErr.Error()))
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// SuggestFileName derives the output filename: the base of fileName with its
// last extension removed (or DefaultBaseName when fileName is empty) plus the
// canonical extension of targetLanguage.
func SuggestFileName(fileName, targetLanguage string) string {
	base := DefaultBaseName
	if name := filepath.Base(strings.TrimSpace(fileName)); fileName != "" && name != "." && name != string(filepath.Separator) {
		if stem := strings.TrimSuffix(name, filepath.Ext(name)); stem != "" {
			base = stem
		}
	}
	return base + language.ExtensionFor(targetLanguage)
}

// --- END OF FINAL REVISED FILE pkg/transformer/transformer.go ---
