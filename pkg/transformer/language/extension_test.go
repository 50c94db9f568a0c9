package language_test

import (
	"testing"

	"github.com/stackvity/code-transformer/pkg/transformer/language"
	"github.com/stretchr/testify/assert"
)

func TestExtensionFor(t *testing.T) {
	testCases := []struct {
		language string
		expected string
	}{
		{"Python", ".py"},
		{"C++", ".cpp"},
		{"C#", ".cs"},
		{"PowerShell", ".ps1"},
		{"MATLAB", ".m"},
		{"R", ".r"},
		{"CSS", ".css"},
		{"python", ".txt"},
		{"Unknown", ".txt"},
		{"", ".txt"},
		{"Brainfuck", ".txt"},
	}
	for _, tc := range testCases {
		t.Run(tc.language, func(t *testing.T) {
			assert.Equal(t, tc.expected, language.ExtensionFor(tc.language))
		})
	}
}

// Every label the filename table can produce must map back to an extension
// that resolves to the same label.
func TestExtensionFor_RoundTripsFileNameTable(t *testing.T) {
	for _, lang := range []string{
		"JavaScript", "TypeScript", "Python", "Java", "C++", "C", "C#", "Go",
		"Rust", "PHP", "Ruby", "Swift", "Kotlin", "Scala", "Perl", "Shell",
		"PowerShell", "SQL", "R", "MATLAB", "HTML", "CSS",
	} {
		ext := language.ExtensionFor(lang)
		assert.NotEqual(t, language.DefaultExtension, ext, lang)
		got, ok := language.LanguageForFileName("file" + ext)
		assert.True(t, ok, lang)
		assert.Equal(t, lang, got)
	}
}
