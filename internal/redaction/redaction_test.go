package redaction_test

import (
	"errors"
	"strings"
	"testing"

	"podium/internal/redaction"
	"podium/internal/services"
)

func TestSpanRoundTrip(t *testing.T) {
	text := "I want to thank [REDACT: Sandra Bullock], the crew of [REDACT: Gravity], and my mother."

	spans, err := redaction.ExtractSpans(text)
	if err != nil {
		t.Fatalf("ExtractSpans: %v", err)
	}
	want := []string{"Sandra Bullock", "Gravity"}
	if len(spans) != len(want) {
		t.Fatalf("expected %d spans, got %d: %v", len(want), len(spans), spans)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Fatalf("span %d = %q, want %q", i, spans[i], want[i])
		}
	}

	display, err := redaction.RenderDisplay(text)
	if err != nil {
		t.Fatalf("RenderDisplay: %v", err)
	}
	if got := strings.Count(display, redaction.Placeholder); got != len(want) {
		t.Fatalf("expected %d placeholders, got %d in %q", len(want), got, display)
	}
	if strings.Contains(display, "[REDACT:") || strings.Contains(display, "]") {
		t.Fatalf("display still contains raw markup: %q", display)
	}
	if display != "I want to thank ______, the crew of ______, and my mother." {
		t.Fatalf("unexpected display form: %q", display)
	}
}

func TestRenderDisplayPreservesSurroundingText(t *testing.T) {
	text := "To [REDACT: my wife]: thank you,\n\talways."
	display, err := redaction.RenderDisplay(text)
	if err != nil {
		t.Fatalf("RenderDisplay: %v", err)
	}
	if display != "To ______: thank you,\n\talways." {
		t.Fatalf("unexpected display form: %q", display)
	}
}

func TestAdjacentSpansStayDistinct(t *testing.T) {
	spans, err := redaction.ExtractSpans("[REDACT: one][REDACT: two]")
	if err != nil {
		t.Fatalf("ExtractSpans: %v", err)
	}
	if len(spans) != 2 || spans[0] != "one" || spans[1] != "two" {
		t.Fatalf("expected two distinct spans, got %v", spans)
	}
}

func TestNoSpans(t *testing.T) {
	spans, err := redaction.ExtractSpans("Nothing hidden here.")
	if err != nil {
		t.Fatalf("ExtractSpans: %v", err)
	}
	if len(spans) != 0 {
		t.Fatalf("expected no spans, got %v", spans)
	}
	display, err := redaction.RenderDisplay("Nothing hidden here.")
	if err != nil {
		t.Fatalf("RenderDisplay: %v", err)
	}
	if display != "Nothing hidden here." {
		t.Fatalf("display changed span-free text: %q", display)
	}
}

func TestMalformedMarkup(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "nested", text: "[REDACT: a [REDACT: b] c]"},
		{name: "unterminated", text: "[REDACT: a"},
		{name: "nested after literal", text: "thanks to [REDACT: [REDACT: x]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := redaction.Validate(tt.text)
			if err == nil {
				t.Fatal("expected MalformedMarkupError")
			}
			var malformed *redaction.MalformedMarkupError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedMarkupError, got %T: %v", err, err)
			}
			if !errors.Is(err, services.ErrMalformedMarkup) {
				t.Fatalf("error does not match sentinel: %v", err)
			}
			if !services.RowScoped(err) {
				t.Fatalf("malformed markup must stay row-scoped: %v", err)
			}
		})
	}
}

func TestRestore(t *testing.T) {
	text := "Thank you [REDACT: Steven Spielberg] for believing in [REDACT: this film]."
	restored, err := redaction.Restore(text)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored != "Thank you Steven Spielberg for believing in this film." {
		t.Fatalf("unexpected restore: %q", restored)
	}
}

func TestBareCloseBracketIsProse(t *testing.T) {
	text := "A list: a] and [REDACT: b]."
	if err := redaction.Validate(text); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	spans, err := redaction.ExtractSpans(text)
	if err != nil {
		t.Fatalf("ExtractSpans: %v", err)
	}
	if len(spans) != 1 || spans[0] != "b" {
		t.Fatalf("unexpected spans: %v", spans)
	}
}
