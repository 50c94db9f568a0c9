// Package response extracts the transformed code and the explanation from a
// model's free-text reply.
package response

import (
	"regexp"
	"strings"
)

// ExtractionFailure is placed in Parsed.Code when the reply contains no
// fenced code block.
const ExtractionFailure = "Error: Could not extract transformed code"

const fence = "```"

var (
	// codeBlock matches the first fenced block. The tag runs to the end of the
	// opening line so tags such as c++ and c# are accepted.
	codeBlock = regexp.MustCompile("(?s)```[^\\n`]*\\n(.*?)```")
	// explanationHeading matches "**Explanation:**" or a markdown heading
	// named Explanation, in any case.
	explanationHeading = regexp.MustCompile(`(?im)(?:\*\*\s*Explanation\s*:?\s*\*\*\s*:?|^#{1,6}\s*Explanation\s*:?[ \t]*$)`)
	// nextSection finds the start of the following heading line.
	nextSection = regexp.MustCompile(`\n(?:\*\*|#)`)
)

// Parsed holds the two fields recovered from a reply.
type Parsed struct {
	Code        string
	Explanation string
}

// ExtractionFailed reports whether no code block was found.
func (p Parsed) ExtractionFailed() bool {
	return p.Code == ExtractionFailure
}

// Parse never fails; missing pieces degrade to the documented fallbacks.
//
// Code is the trimmed interior of the first fenced block, or
// ExtractionFailure. Explanation is the text after the Explanation heading up
// to the next heading line, possibly empty; only without a heading is it the
// text after the last fence, and if that is empty the whole reply.
func Parse(raw string) Parsed {
	text := normalizeNewlines(raw)
	return Parsed{
		Code:        extractCode(text),
		Explanation: extractExplanation(text),
	}
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func extractCode(text string) string {
	m := codeBlock.FindStringSubmatch(text)
	if m == nil {
		return ExtractionFailure
	}
	return strings.TrimSpace(m[1])
}

func extractExplanation(text string) string {
	if loc := explanationHeading.FindStringIndex(text); loc != nil {
		rest := text[loc[1]:]
		if end := nextSection.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		return strings.TrimSpace(rest)
	}

	if idx := strings.LastIndex(text, fence); idx >= 0 {
		if tail := strings.TrimSpace(text[idx+len(fence):]); tail != "" {
			return tail
		}
	}
	return strings.TrimSpace(text)
}
