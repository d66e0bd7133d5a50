// Package chunker splits note text into addressable spans for embedding.
//
// Policies are pure functions: identical input text always yields an
// identical span sequence, and no policy ever touches state outside its
// arguments. Offsets are byte offsets into the original text so callers
// can jump back to the exact location of a match.
package chunker

import (
	"strings"

	"github.com/custodia-labs/noteseek/internal/core/domain"
)

// Span is one chunk of a note's text.
type Span struct {
	// StartOffset is the byte position of the span within the input text.
	StartOffset int

	// Text is the literal content of the span.
	Text string
}

// Policy produces the ordered span sequence for a note's text.
// An empty input yields zero spans; callers must handle an empty sequence.
type Policy func(text string) []Span

// Whole treats the entire text as a single span at offset 0.
func Whole(text string) []Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []Span{{StartOffset: 0, Text: text}}
}

// Paragraph splits on runs of two or more consecutive newlines. Each
// resulting span starts at the byte offset of its first character in the
// original text; the final span extends to end-of-text. Whitespace-only
// spans are filtered out.
func Paragraph(text string) []Span {
	if text == "" {
		return nil
	}

	var spans []Span
	start := 0
	i := 0
	for i < len(text) {
		if text[i] == '\n' && i+1 < len(text) && text[i+1] == '\n' {
			// End of paragraph: consume the whole newline run.
			end := i
			for i < len(text) && text[i] == '\n' {
				i++
			}
			if span, ok := makeSpan(text, start, end); ok {
				spans = append(spans, span)
			}
			start = i
			continue
		}
		i++
	}

	if span, ok := makeSpan(text, start, len(text)); ok {
		spans = append(spans, span)
	}

	return spans
}

// makeSpan builds a span over text[start:end], rejecting whitespace-only
// content.
func makeSpan(text string, start, end int) (Span, bool) {
	if start >= end {
		return Span{}, false
	}
	content := text[start:end]
	if strings.TrimSpace(content) == "" {
		return Span{}, false
	}
	return Span{StartOffset: start, Text: content}, true
}

// Policy names recognised by PolicyByName.
const (
	PolicyWhole     = "whole"
	PolicyParagraph = "paragraph"
)

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case PolicyWhole:
		return Whole, nil
	case PolicyParagraph, "":
		return Paragraph, nil
	default:
		return nil, domain.ErrInvalidInput
	}
}
