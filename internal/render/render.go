// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns a raw bot response string into a structured sequence
// of typed display blocks.
//
// The renderer is a best-effort syntactic formatter driven by regular
// expressions, not a markdown parser with a grammar. Malformed or unbalanced
// markers fall through to plain-text treatment for that line. The transform
// is one-way: rendering the textual representation of a rendered result is
// not guaranteed to reproduce it.
package render

import (
	"regexp"
	"strings"
)

// =============================================================================
// BLOCK TYPES
// =============================================================================

// BlockKind identifies a top-level display block.
type BlockKind int

const (
	// BlockThinking is the visually distinct leading segment extracted from
	// a <think>...</think> pair.
	BlockThinking BlockKind = iota
	// BlockParagraph is a container of spans produced from one paragraph
	// group of the response.
	BlockParagraph
)

// SpanKind classifies one rendered unit within a paragraph.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanHeading
	SpanEmphasis
	SpanNumberedStep
	SpanInlineMath
	SpanBlockMath
)

// Span is a single typed unit of paragraph content. Text holds the content
// with its markers already stripped.
type Span struct {
	Kind SpanKind
	Text string
}

// Block is one display block of a rendered response.
type Block struct {
	Kind  BlockKind
	Text  string // thinking content; empty for paragraphs
	Spans []Span // paragraph content; nil for thinking blocks
}

// =============================================================================
// PATTERNS
// =============================================================================

var (
	// First <think>...</think> pair, non-greedy across newlines.
	thinkRe = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

	// A run delimited by one or two $ on each side with no interior $.
	mathRe = regexp.MustCompile(`\${1,2}[^$]+\${1,2}`)

	blockMathRe  = regexp.MustCompile(`^\$\$[^$]+\$\$$`)
	inlineMathRe = regexp.MustCompile(`^\$[^$]+\$$`)

	// Numbered step: "1. **Title** ..." style lines.
	stepRe = regexp.MustCompile(`^\d+\.\s+\*\*.+\*\*`)

	// Any **...** run within a line.
	boldRe = regexp.MustCompile(`\*\*.+\*\*`)
)

const headingPrefix = "### "

// =============================================================================
// RENDER
// =============================================================================

// Render parses a raw response string into an ordered sequence of display
// blocks. The original top-to-bottom, left-to-right order is preserved.
// Render is pure and has no side effects.
func Render(raw string) []Block {
	var blocks []Block

	thinking, rest := ExtractThinking(raw)
	if thinking != "" {
		blocks = append(blocks, Block{Kind: BlockThinking, Text: thinking})
	}

	// Blank-line boundaries delimit paragraph groups.
	for _, group := range strings.Split(rest, "\n\n") {
		spans := parseParagraph(group)
		if len(spans) == 0 {
			continue
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, Spans: spans})
	}

	return blocks
}

// ExtractThinking splits off the leading thinking segment, if any. At most
// one segment is recognized: the first opening marker to the first closing
// marker. The returned remainder has the segment removed and surrounding
// whitespace trimmed.
func ExtractThinking(raw string) (thinking, rest string) {
	m := thinkRe.FindStringSubmatchIndex(raw)
	if m == nil {
		return "", strings.TrimSpace(raw)
	}

	thinking = strings.TrimSpace(raw[m[2]:m[3]])
	rest = strings.TrimSpace(raw[:m[0]] + raw[m[1]:])
	return thinking, rest
}

// parseParagraph splits one paragraph group line-by-line into spans.
func parseParagraph(group string) []Span {
	var spans []Span

	for _, line := range strings.Split(group, "\n") {
		if strings.HasPrefix(line, headingPrefix) {
			spans = append(spans, Span{Kind: SpanHeading, Text: strings.TrimPrefix(line, headingPrefix)})
			continue
		}
		spans = append(spans, parseInline(line)...)
	}

	// A paragraph of nothing but empty text spans renders as nothing.
	for _, s := range spans {
		if s.Kind != SpanText || s.Text != "" {
			return spans
		}
	}
	return nil
}

// parseInline splits a line on math expressions and classifies each segment.
func parseInline(text string) []Span {
	var spans []Span

	last := 0
	for _, loc := range mathRe.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			spans = append(spans, classifyText(text[last:loc[0]])...)
		}
		spans = append(spans, classifyMath(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	if last < len(text) || len(spans) == 0 {
		spans = append(spans, classifyText(text[last:])...)
	}

	return spans
}

// classifyMath turns a matched $-delimited run into a math span. Double
// delimiters make a block-math unit, single delimiters an inline unit; the
// span text holds the inner expression with delimiters stripped.
func classifyMath(seg string) Span {
	if blockMathRe.MatchString(seg) {
		return Span{Kind: SpanBlockMath, Text: strings.Trim(seg, "$")}
	}
	if inlineMathRe.MatchString(seg) {
		return Span{Kind: SpanInlineMath, Text: strings.Trim(seg, "$")}
	}
	// Not fully wrapped; fall through to plain-text handling.
	return Span{Kind: SpanText, Text: seg}
}

// classifyText splits a plain segment by embedded newlines and classifies
// each sub-line as a numbered step, an emphasis run, or plain text.
func classifyText(seg string) []Span {
	var spans []Span

	for _, line := range strings.Split(seg, "\n") {
		switch {
		case stepRe.MatchString(line):
			spans = append(spans, Span{Kind: SpanNumberedStep, Text: stripBold(line)})
		case boldRe.MatchString(line):
			spans = append(spans, Span{Kind: SpanEmphasis, Text: stripBold(line)})
		default:
			spans = append(spans, Span{Kind: SpanText, Text: line})
		}
	}

	return spans
}

// stripBold removes every ** marker from a line.
func stripBold(line string) string {
	return strings.ReplaceAll(line, "**", "")
}
