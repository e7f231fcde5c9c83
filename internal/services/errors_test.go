package services_test

import (
	"errors"
	"strings"
	"testing"

	"podium/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "gemini", "generate", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"gemini", "generate", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "labeler", "run", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected default transient marker, got %v", err)
	}
}

func TestRowScopedClassification(t *testing.T) {
	parseErr := services.Wrap(services.ErrParse, "parse", "score", "not an integer", nil)
	if !services.RowScoped(parseErr) {
		t.Fatalf("expected parse error to be row scoped: %v", parseErr)
	}

	markupErr := services.Wrap(services.ErrMalformedMarkup, "redaction", "decode", "unterminated span", nil)
	if !services.RowScoped(markupErr) {
		t.Fatalf("expected markup error to be row scoped: %v", markupErr)
	}

	fatalErr := services.Wrap(services.ErrFatal, "gemini", "generate", "auth rejected", nil)
	if services.RowScoped(fatalErr) {
		t.Fatalf("expected fatal error to abort, got row scoped: %v", fatalErr)
	}

	if services.RowScoped(nil) {
		t.Fatal("nil error must not be row scoped")
	}
}
