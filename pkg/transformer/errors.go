// --- START OF FINAL REVISED FILE pkg/transformer/errors.go ---
package transformer

import "errors"

// --- Exported Error Variables ---
// Library users can check against these using errors.Is. Errors produced by
// the model collaborator are never wrapped in these; they are returned as is.

var (
	// ErrInvalidRequest indicates a request with blank code, a blank target
	// language or an unknown mode. It is returned before any model call.
	ErrInvalidRequest = errors.New("invalid transformation request")

	// ErrMissingCollaborator indicates that no model client was configured.
	ErrMissingCollaborator = errors.New("no model client configured")

	// ErrPromptRender indicates that the prompt template failed to execute.
	ErrPromptRender = errors.New("failed to render prompt")

	// ErrConfigValidation indicates that the provided Options failed validation.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrArchive indicates a failure to read, extract or create an archive
	// during batch processing.
	ErrArchive = errors.New("archive operation failed")

	// ErrWriteFailed indicates a failure to write a transformed file.
	ErrWriteFailed = errors.New("failed to write output file")

	// ErrBinaryInput indicates that the provided input is binary rather than
	// source text.
	ErrBinaryInput = errors.New("input is not text")
)

// --- END OF FINAL REVISED FILE pkg/transformer/errors.go ---
