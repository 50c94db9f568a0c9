// Package content strips document artifacts from text pasted out of PDFs
// and word processors before it is sent for transformation.
package content

import (
	"regexp"
	"strings"
)

var (
	pageLine    = regexp.MustCompile(`(?m)^[ \t]*Page \d+.*$`)
	numberLine  = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
	extraBlank  = regexp.MustCompile(`\n{3,}`)
	fencedBlock = regexp.MustCompile("(?s)```[^\\n`]*\\n(.*?)```")
)

// Clean removes page headers, standalone page numbers and form feeds, and
// collapses runs of blank lines. When the text contains fenced code blocks
// only their interiors are kept, joined by newlines.
//
// Standalone number lines are removed even inside code, so callers enable
// this only for document uploads.
func Clean(text string) string {
	cleaned := strings.ReplaceAll(text, "\r\n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\f", "")
	cleaned = pageLine.ReplaceAllString(cleaned, "")
	cleaned = numberLine.ReplaceAllString(cleaned, "")
	cleaned = extraBlank.ReplaceAllString(cleaned, "\n\n")

	if blocks := fencedBlock.FindAllStringSubmatch(cleaned, -1); len(blocks) > 0 {
		parts := make([]string, 0, len(blocks))
		for _, m := range blocks {
			parts = append(parts, m[1])
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	}
	return strings.TrimSpace(cleaned)
}
