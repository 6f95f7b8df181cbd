// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"testing"
)

// collectSpans flattens the spans of every paragraph block.
func collectSpans(blocks []Block) []Span {
	var spans []Span
	for _, b := range blocks {
		if b.Kind == BlockParagraph {
			spans = append(spans, b.Spans...)
		}
	}
	return spans
}

func TestRender_Emphasis(t *testing.T) {
	blocks := Render("**bold** text")

	spans := collectSpans(blocks)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Kind != SpanEmphasis {
		t.Errorf("Kind = %v, want SpanEmphasis", spans[0].Kind)
	}
	if spans[0].Text != "bold text" {
		t.Errorf("Text = %q, want %q", spans[0].Text, "bold text")
	}
}

func TestRender_InlineMath(t *testing.T) {
	blocks := Render("$x^2$")

	spans := collectSpans(blocks)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Kind != SpanInlineMath || spans[0].Text != "x^2" {
		t.Errorf("got %v %q, want inline math %q", spans[0].Kind, spans[0].Text, "x^2")
	}
}

func TestRender_BlockMath(t *testing.T) {
	blocks := Render("$$E=mc^2$$")

	spans := collectSpans(blocks)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Kind != SpanBlockMath || spans[0].Text != "E=mc^2" {
		t.Errorf("got %v %q, want block math %q", spans[0].Kind, spans[0].Text, "E=mc^2")
	}
}

func TestRender_Thinking(t *testing.T) {
	blocks := Render("<think>plan</think>answer")

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Kind != BlockThinking || blocks[0].Text != "plan" {
		t.Errorf("first block = %v %q, want thinking %q", blocks[0].Kind, blocks[0].Text, "plan")
	}
	if blocks[1].Kind != BlockParagraph {
		t.Fatalf("second block should be a paragraph")
	}
	if got := blocks[1].Spans[0].Text; got != "answer" {
		t.Errorf("main text = %q, want %q", got, "answer")
	}
}

func TestExtractThinking_FirstPairOnly(t *testing.T) {
	thinking, rest := ExtractThinking("<think>a</think>x<think>b</think>")

	if thinking != "a" {
		t.Errorf("thinking = %q, want %q", thinking, "a")
	}
	// Only the first pair is recognized; later markers stay in the text.
	if rest != "x<think>b</think>" {
		t.Errorf("rest = %q, want %q", rest, "x<think>b</think>")
	}
}

func TestExtractThinking_Absent(t *testing.T) {
	thinking, rest := ExtractThinking("  plain answer  ")

	if thinking != "" {
		t.Errorf("thinking = %q, want empty", thinking)
	}
	if rest != "plain answer" {
		t.Errorf("rest = %q, want %q", rest, "plain answer")
	}
}

func TestRender_Heading(t *testing.T) {
	blocks := Render("### Results\nsome detail")

	spans := collectSpans(blocks)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Kind != SpanHeading || spans[0].Text != "Results" {
		t.Errorf("heading span = %v %q", spans[0].Kind, spans[0].Text)
	}
	if spans[1].Kind != SpanText || spans[1].Text != "some detail" {
		t.Errorf("text span = %v %q", spans[1].Kind, spans[1].Text)
	}
}

func TestRender_NumberedStep(t *testing.T) {
	blocks := Render("1. **Install** the package")

	spans := collectSpans(blocks)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Kind != SpanNumberedStep {
		t.Errorf("Kind = %v, want SpanNumberedStep", spans[0].Kind)
	}
	if spans[0].Text != "1. Install the package" {
		t.Errorf("Text = %q, want markers stripped", spans[0].Text)
	}
}

func TestRender_MixedMathAndText(t *testing.T) {
	blocks := Render("the area is $\\pi r^2$ exactly")

	spans := collectSpans(blocks)
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3: %#v", len(spans), spans)
	}
	if spans[0].Kind != SpanText || spans[0].Text != "the area is " {
		t.Errorf("leading span = %v %q", spans[0].Kind, spans[0].Text)
	}
	if spans[1].Kind != SpanInlineMath || spans[1].Text != "\\pi r^2" {
		t.Errorf("math span = %v %q", spans[1].Kind, spans[1].Text)
	}
	if spans[2].Kind != SpanText || spans[2].Text != " exactly" {
		t.Errorf("trailing span = %v %q", spans[2].Kind, spans[2].Text)
	}
}

func TestRender_ParagraphGrouping(t *testing.T) {
	blocks := Render("first paragraph\n\nsecond paragraph")

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	for _, b := range blocks {
		if b.Kind != BlockParagraph {
			t.Errorf("block kind = %v, want paragraph", b.Kind)
		}
	}
}

func TestRender_MalformedMarkersFallThrough(t *testing.T) {
	// Unbalanced ** and $ must degrade to plain text, not error.
	tests := []string{
		"**unclosed bold",
		"lonely $ dollar",
		"$x",
	}

	for _, in := range tests {
		spans := collectSpans(Render(in))
		for _, s := range spans {
			if s.Kind != SpanText {
				t.Errorf("Render(%q) produced %v span, want plain text only", in, s.Kind)
			}
		}
	}
}

func TestRender_EmptyInput(t *testing.T) {
	if blocks := Render(""); len(blocks) != 0 {
		t.Errorf("Render(\"\") = %d blocks, want 0", len(blocks))
	}
	if blocks := Render("\n\n\n\n"); len(blocks) != 0 {
		t.Errorf("blank input = %d blocks, want 0", len(blocks))
	}
}
