// --- START OF NEW FILE pkg/transformer/language/enry.go ---
package language

import (
	"github.com/go-enry/go-enry/v2"
)

// enryDetector implements Detector using go-enry for filenames and
// interpreter hints the built-in table does not know (Makefile, Dockerfile,
// shebang lines, editor modelines). Content without such hints falls through
// to the ordered heuristic rules so the Unknown sentinel keeps its meaning.
type enryDetector struct {
	fallback  *ruleDetector
	overrides map[string]string
}

// NewEnryDetector creates a Detector backed by go-enry.
// Overrides behave exactly as in NewRuleDetector.
func NewEnryDetector(overrides map[string]string) Detector { // minimal comment
	normalized := normalizeOverrides(overrides)
	return &enryDetector{
		fallback:  &ruleDetector{rules: defaultRules, overrides: normalized},
		overrides: normalized,
	}
}

// Detect implements the Detector interface.
// Order: overrides and built-in table, enry filename analysis, shebang,
// modeline, heuristic content rules.
func (d *enryDetector) Detect(content string, fileName string) string {
	if lang, ok := lookupFileName(fileName, d.overrides); ok {
		return lang
	}

	data := []byte(content)
	if fileName != "" {
		if lang := enry.GetLanguage(fileName, data); usable(lang) {
			return lang
		}
	}
	if lang, safe := enry.GetLanguageByShebang(data); safe && usable(lang) {
		return lang
	}
	if lang, safe := enry.GetLanguageByModeline(data); safe && usable(lang) {
		return lang
	}

	return d.fallback.Detect(content, "")
}

// usable filters out enry's empty and plain-text answers.
func usable(lang string) bool {
	return lang != "" && lang != "Text"
}

// --- END OF NEW FILE pkg/transformer/language/enry.go ---
