package language_test

import (
	"testing"

	"github.com/stackvity/code-transformer/pkg/transformer/language"
	"github.com/stretchr/testify/assert"
)

func TestEnryDetector_Detect(t *testing.T) {
	detector := language.NewEnryDetector(map[string]string{".tpl": "HTML"})

	testCases := []struct {
		name     string
		content  string
		fileName string
		expected string
	}{
		{name: "Built-in table wins", content: "SELECT 1 FROM dual", fileName: "query.py", expected: "Python"},
		{name: "Override wins", content: "", fileName: "page.tpl", expected: "HTML"},
		{name: "Makefile by name", content: "all:\n\tgo build ./...\n", fileName: "Makefile", expected: "Makefile"},
		{name: "Shebang", content: "#!/usr/bin/env python3\nx = 1\n", expected: "Python"},
		{name: "Heuristic fallback", content: "fn main() {}", expected: "Rust"},
		{name: "Nothing to go on", content: "just some prose", expected: language.Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, detector.Detect(tc.content, tc.fileName))
		})
	}
}
