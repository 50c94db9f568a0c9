// --- START OF FINAL REVISED FILE pkg/transformer/types.go ---
package transformer

import (
	"fmt"
	"strings"

	"github.com/stackvity/code-transformer/pkg/transformer/response"
)

// Mode selects the kind of transformation requested from the model.
type Mode string

const (
	ModeTranslate Mode = "translate"
	ModeModernize Mode = "modernize"
)

// ParseMode normalizes s to a Mode. An empty string yields ModeTranslate.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTranslate:
		return ModeTranslate, nil
	case ModeModernize:
		return ModeModernize, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q (want %q or %q)", ErrInvalidRequest, s, ModeTranslate, ModeModernize)
	}
}

// Request is one full form transformation request.
type Request struct {
	Code           string `json:"code"`
	TargetLanguage string `json:"targetLanguage"`
	// SourceLanguage is detected from Code and FileName when empty.
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	Mode           Mode   `json:"mode,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
	FileName       string `json:"fileName,omitempty"`
}

// Result is the structured outcome of Transform.
type Result struct {
	TransformedCode   string `json:"transformedCode" yaml:"transformedCode"`
	SourceLanguage    string `json:"sourceLanguage" yaml:"sourceLanguage"`
	TargetLanguage    string `json:"targetLanguage" yaml:"targetLanguage"`
	Explanation       string `json:"explanation" yaml:"explanation"`
	SuggestedFileName string `json:"suggestedFileName" yaml:"suggestedFileName"`
}

// ExtractionFailed reports whether the model reply contained no code block.
func (r Result) ExtractionFailed() bool {
	return r.TransformedCode == ExtractionFailureSentinel
}

// SimpleRequest is the simplified invocation form. The source language is
// always detected from the code alone.
type SimpleRequest struct {
	Code           string `json:"code"`
	TargetLanguage string `json:"targetLanguage"`
	Instructions   string `json:"instructions,omitempty"`
}

// SimpleResult is the outcome of TransformSimple.
type SimpleResult struct {
	TransformedCode string `json:"transformedCode" yaml:"transformedCode"`
	Explanation     string `json:"explanation" yaml:"explanation"`
	FileName        string `json:"filename" yaml:"filename"`
}

// ExtractionFailed reports whether the model reply contained no code block.
func (r SimpleResult) ExtractionFailed() bool {
	return r.TransformedCode == ExtractionFailureSentinel
}

// ExtractionFailureSentinel is the visible failure marker placed in the
// transformed code when the model reply has no fenced block.
const ExtractionFailureSentinel = response.ExtractionFailure

// Status defines the processing states of a file during a batch run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// OnErrorMode defines the batch behavior when a single file fails.
type OnErrorMode string

const (
	OnErrorContinue OnErrorMode = "continue"
	OnErrorStop     OnErrorMode = "stop"
)

// OutputFormat defines how the CLI prints results and reports.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// DetectorKind selects the language detector implementation.
type DetectorKind string

const (
	DetectorRules DetectorKind = "rules"
	DetectorEnry  DetectorKind = "enry"
)

// --- END OF FINAL REVISED FILE pkg/transformer/types.go ---
