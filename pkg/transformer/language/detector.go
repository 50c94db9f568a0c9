// --- START OF FINAL REVISED FILE pkg/transformer/language/detector.go ---
package language

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Unknown is the label returned when neither the filename nor the content
// identifies a language.
const Unknown = "Unknown"

// Detector defines the interface for guessing the programming language of a
// code snippet from its content and an optional filename.
//
// Stability: Public Stable API - Implementations can be provided externally.
// Implementations MUST be deterministic: the same (content, fileName) pair
// always yields the same label.
type Detector interface {
	// Detect returns a language label from the fixed vocabulary (e.g. "Python",
	// "C++") or Unknown. It never fails; missing evidence degrades to Unknown.
	Detect(content string, fileName string) string
}

// Rule pairs a content pattern with the language it indicates.
type Rule struct {
	Pattern  *regexp.Regexp
	Language string
}

// defaultRules is evaluated top to bottom and the first match wins.
// Several patterns overlap: the Python function rule precedes the looser Ruby
// `def` rule, so `def name(...):` content is always reported as Python.
var defaultRules = []Rule{
	{regexp.MustCompile(`def\s+\w+\s*\(.*\)\s*:`), "Python"},
	{regexp.MustCompile(`function\s+\w+\s*\(.*\)\s*\{`), "JavaScript"},
	{regexp.MustCompile(`public\s+class\s+\w+`), "Java"},
	{regexp.MustCompile(`#include\s*<.*>`), "C++"},
	{regexp.MustCompile(`using\s+System;`), "C#"},
	{regexp.MustCompile(`func\s+\w+\s*\(.*\)`), "Go"},
	{regexp.MustCompile(`fn\s+\w+\s*\(.*\)`), "Rust"},
	{regexp.MustCompile(`<\?php`), "PHP"},
	{regexp.MustCompile(`def\s+\w+`), "Ruby"},
	{regexp.MustCompile(`sub\s+\w+\s*\{`), "Perl"},
	{regexp.MustCompile(`console\.log`), "JavaScript"},
	{regexp.MustCompile(`print\s*\(`), "Python"},
	{regexp.MustCompile(`System\.out\.println`), "Java"},
	{regexp.MustCompile(`cout\s*<<`), "C++"},
	{regexp.MustCompile(`(?i)SELECT\s+.*\s+FROM`), "SQL"},
	{regexp.MustCompile(`(?i)<html|<div|<span`), "HTML"},
	{regexp.MustCompile(`\{[^}]*color\s*:`), "CSS"},
}

// extensionLanguages maps a lowercase extension (without the dot) to a label.
var extensionLanguages = map[string]string{
	"py":    "Python",
	"js":    "JavaScript",
	"ts":    "TypeScript",
	"java":  "Java",
	"cpp":   "C++",
	"c":     "C",
	"cs":    "C#",
	"go":    "Go",
	"rs":    "Rust",
	"php":   "PHP",
	"rb":    "Ruby",
	"swift": "Swift",
	"kt":    "Kotlin",
	"scala": "Scala",
	"pl":    "Perl",
	"sh":    "Shell",
	"ps1":   "PowerShell",
	"sql":   "SQL",
	"r":     "R",
	"m":     "MATLAB",
	"html":  "HTML",
	"css":   "CSS",
}

// Rules returns a copy of the ordered content rules used by the default detector.
func Rules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// LanguageForFileName looks up the label for fileName's extension in the
// built-in table. The boolean reports whether the extension is known.
func LanguageForFileName(fileName string) (string, bool) {
	ext := normalizeExt(filepath.Ext(fileName))
	if ext == "" {
		return "", false
	}
	lang, ok := extensionLanguages[ext]
	return lang, ok
}

// ruleDetector implements Detector with a filename table followed by the
// ordered content rules.
type ruleDetector struct {
	rules     []Rule
	overrides map[string]string // normalized extension (no dot) -> label
}

// NewRuleDetector creates the default heuristic detector.
// Overrides map extensions to labels and are consulted before the built-in
// extension table. Keys are normalized (trimmed, lowercased, leading dot
// removed); entries with an empty key or value are skipped. Label case is kept
// because labels are matched case-sensitively by ExtensionFor.
func NewRuleDetector(overrides map[string]string) Detector { // minimal comment
	return &ruleDetector{
		rules:     defaultRules,
		overrides: normalizeOverrides(overrides),
	}
}

// Detect implements the Detector interface.
func (d *ruleDetector) Detect(content string, fileName string) string {
	if lang, ok := d.byFileName(fileName); ok {
		return lang
	}
	for _, rule := range d.rules {
		if rule.Pattern.MatchString(content) {
			return rule.Language
		}
	}
	return Unknown
}

func (d *ruleDetector) byFileName(fileName string) (string, bool) {
	return lookupFileName(fileName, d.overrides)
}

// lookupFileName checks user overrides first, then the built-in table.
func lookupFileName(fileName string, overrides map[string]string) (string, bool) {
	if fileName == "" {
		return "", false
	}
	ext := normalizeExt(filepath.Ext(fileName))
	if ext == "" {
		return "", false
	}
	if lang, ok := overrides[ext]; ok {
		return lang, true
	}
	lang, ok := extensionLanguages[ext]
	return lang, ok
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

func normalizeOverrides(overrides map[string]string) map[string]string {
	normalized := make(map[string]string, len(overrides))
	for ext, lang := range overrides {
		normalizedExt := normalizeExt(ext)
		normalizedLang := strings.TrimSpace(lang)
		// Skip invalid entries
		if normalizedExt == "" || normalizedLang == "" {
			continue
		}
		normalized[normalizedExt] = normalizedLang
	}
	return normalized
}

// --- END OF FINAL REVISED FILE pkg/transformer/language/detector.go ---
