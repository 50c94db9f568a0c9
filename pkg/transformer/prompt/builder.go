// --- START OF FINAL REVISED FILE pkg/transformer/prompt/builder.go ---
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Data holds the values available to prompt templates.
// Custom templates may reference any of these fields.
type Data struct {
	Mode           string
	SourceLanguage string
	TargetLanguage string
	Instructions   string
	FileName       string
	Code           string
}

// Builder renders the instruction text sent to the model.
//
// Stability: Public Stable API - Implementations can be provided externally.
// Implementations MUST be deterministic for identical Data.
type Builder interface {
	// Build renders the full form prompt.
	Build(data Data) (string, error)
	// BuildSimple renders the simplified form prompt.
	BuildSimple(data Data) (string, error)
	// System returns the system instruction for providers that accept one.
	System() string
}

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"trim":  strings.TrimSpace,
}

type templateBuilder struct {
	full   *template.Template
	simple *template.Template
	system string
}

// NewBuilder creates a Builder from the embedded templates. A non-nil full
// template replaces the embedded full form template.
func NewBuilder(full *template.Template) (Builder, error) { // minimal comment
	simple, err := parseEmbedded("simple.tmpl")
	if err != nil {
		return nil, err
	}
	if full == nil {
		if full, err = parseEmbedded("full.tmpl"); err != nil {
			return nil, err
		}
	}
	system, err := templateFS.ReadFile("templates/system.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read embedded system prompt: %w", err)
	}
	return &templateBuilder{full: full, simple: simple, system: strings.TrimSpace(string(system))}, nil
}

// LoadTemplateFile parses a custom full form template from disk. The
// template functions lower, upper and trim are available.
func LoadTemplateFile(path string) (*template.Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template %s: %w", path, err)
	}
	tmpl, err := template.New("custom").Funcs(funcs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", path, err)
	}
	return tmpl, nil
}

func parseEmbedded(name string) (*template.Template, error) {
	content, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("read embedded template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse embedded template %s: %w", name, err)
	}
	return tmpl, nil
}

// Build implements Builder.
func (b *templateBuilder) Build(data Data) (string, error) {
	return render(b.full, data)
}

// BuildSimple implements Builder.
func (b *templateBuilder) BuildSimple(data Data) (string, error) {
	return render(b.simple, data)
}

// System implements Builder.
func (b *templateBuilder) System() string {
	return b.system
}

func render(tmpl *template.Template, data Data) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed for %q: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// --- END OF FINAL REVISED FILE pkg/transformer/prompt/builder.go ---
