// --- START OF NEW FILE internal/cli/render/render.go ---
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/stackvity/code-transformer/pkg/transformer"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const defaultWrapWidth = 100

// Printer writes results and reports in the configured output format.
type Printer struct {
	w      io.Writer
	format transformer.OutputFormat
	// styled enables glamour rendering of explanations in text output.
	styled bool
	width  int
}

// NewPrinter creates a Printer. Explanations are rendered with glamour only
// when styled is true and the format is text.
func NewPrinter(w io.Writer, format transformer.OutputFormat, styled bool) *Printer { // minimal comment
	if format == "" {
		format = transformer.OutputFormatText
	}
	return &Printer{w: w, format: format, styled: styled, width: terminalWidth(w)}
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWrapWidth
}

// Result prints the outcome of a full form transformation.
func (p *Printer) Result(r transformer.Result) error {
	if p.format != transformer.OutputFormatText {
		return p.structured(r)
	}
	fmt.Fprintf(p.w, "Source: %s\nTarget: %s\nSuggested file: %s\n\n", r.SourceLanguage, r.TargetLanguage, r.SuggestedFileName)
	return p.codeAndExplanation(r.TransformedCode, r.Explanation)
}

// SimpleResult prints the outcome of a simplified transformation.
func (p *Printer) SimpleResult(r transformer.SimpleResult) error {
	if p.format != transformer.OutputFormatText {
		return p.structured(r)
	}
	fmt.Fprintf(p.w, "File: %s\n\n", r.FileName)
	return p.codeAndExplanation(r.TransformedCode, r.Explanation)
}

// Detection is the printable outcome of the detect command.
type Detection struct {
	Language  string `json:"language" yaml:"language"`
	Extension string `json:"extension" yaml:"extension"`
}

// Detection prints a detected language label and its extension.
func (p *Printer) Detection(d Detection) error {
	if p.format != transformer.OutputFormatText {
		return p.structured(d)
	}
	_, err := fmt.Fprintf(p.w, "%s (%s)\n", d.Language, d.Extension)
	return err
}

// Report prints a batch report. Text output is a short summary followed by
// the skipped and failed entries.
func (p *Printer) Report(r transformer.BatchReport) error {
	if p.format != transformer.OutputFormatText {
		return p.structured(r)
	}
	s := r.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "Archive: %s\n", s.ArchivePath)
	fmt.Fprintf(&b, "Target: %s (%s)\n", s.TargetLanguage, s.Mode)
	fmt.Fprintf(&b, "Files: %d total, %d transformed, %d skipped, %d warnings, %d errors\n",
		s.TotalFiles, s.ProcessedCount, s.SkippedCount, s.WarningCount, s.ErrorCount)
	fmt.Fprintf(&b, "Duration: %.2fs\n", s.DurationSeconds)
	if s.OutputArchive != "" {
		fmt.Fprintf(&b, "Output: %s\n", s.OutputArchive)
	}
	if len(r.SkippedFiles) > 0 {
		b.WriteString("\nSkipped:\n")
		for _, sk := range r.SkippedFiles {
			fmt.Fprintf(&b, "  %s: %s\n", sk.Path, sk.Reason)
		}
	}
	if len(r.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range r.Errors {
			marker := ""
			if e.IsFatal {
				marker = " (fatal)"
			}
			fmt.Fprintf(&b, "  %s: %s%s\n", e.Path, e.Error, marker)
		}
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) codeAndExplanation(code, explanation string) error {
	if _, err := fmt.Fprintf(p.w, "%s\n", strings.TrimRight(code, "\n")); err != nil {
		return err
	}
	if explanation == "" {
		return nil
	}
	text := explanation
	if p.styled {
		rendered, err := p.markdown(explanation)
		if err != nil {
			return err
		}
		text = rendered
	}
	_, err := fmt.Fprintf(p.w, "\nExplanation:\n%s\n", strings.TrimRight(text, "\n"))
	return err
}

func (p *Printer) markdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(p.width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render explanation: %w", err)
	}
	return out, nil
}

func (p *Printer) structured(v any) error {
	switch p.format {
	case transformer.OutputFormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case transformer.OutputFormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", p.format)
	}
}

// --- END OF NEW FILE internal/cli/render/render.go ---
