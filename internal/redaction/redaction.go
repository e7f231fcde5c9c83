// Package redaction encodes and decodes the inline span markup used to
// hide answer-revealing fragments of a speech. The model marks spans as
// [REDACT: original text]; the display form swaps each span for a
// fixed-width blank while the span list keeps the covered originals in
// speech order.
package redaction

import (
	"fmt"
	"strings"
	"unicode"

	"podium/internal/services"
)

// Placeholder is the blank token substituted for every redacted span in
// the display form. Its width never varies with span length.
const Placeholder = "______"

const (
	markerOpen  = "[REDACT:"
	markerClose = "]"
)

// MalformedMarkupError reports markup the codec cannot decode, such as a
// span that opens inside another span or never closes.
type MalformedMarkupError struct {
	Reason string
	Offset int
}

func (e *MalformedMarkupError) Error() string {
	return fmt.Sprintf("malformed redaction markup at offset %d: %s", e.Offset, e.Reason)
}

func (e *MalformedMarkupError) Unwrap() error {
	return services.ErrMalformedMarkup
}

type segment struct {
	text string
	span bool
}

// split walks the text once, emitting literal and span segments in order.
// Span text keeps everything between the markers except the leading
// whitespace after the opening colon.
func split(text string) ([]segment, error) {
	var segments []segment
	rest := text
	offset := 0
	for {
		start := strings.Index(rest, markerOpen)
		if start < 0 {
			if rest != "" {
				segments = append(segments, segment{text: rest})
			}
			return segments, nil
		}
		if start > 0 {
			segments = append(segments, segment{text: rest[:start]})
		}
		body := rest[start+len(markerOpen):]
		end := strings.Index(body, markerClose)
		if end < 0 {
			return nil, &MalformedMarkupError{Reason: "span never closes", Offset: offset + start}
		}
		if nested := strings.Index(body[:end], markerOpen); nested >= 0 {
			return nil, &MalformedMarkupError{
				Reason: "span opens inside another span",
				Offset: offset + start + len(markerOpen) + nested,
			}
		}
		original := strings.TrimLeftFunc(body[:end], unicode.IsSpace)
		segments = append(segments, segment{text: original, span: true})
		consumed := start + len(markerOpen) + end + len(markerClose)
		rest = rest[consumed:]
		offset += consumed
	}
}

// Validate checks the markup without transforming it.
func Validate(text string) error {
	_, err := split(text)
	return err
}

// RenderDisplay replaces every span with Placeholder and passes all other
// text through unchanged, including whitespace and punctuation adjacent
// to spans.
func RenderDisplay(text string) (string, error) {
	segments, err := split(text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, seg := range segments {
		if seg.span {
			b.WriteString(Placeholder)
		} else {
			b.WriteString(seg.text)
		}
	}
	return b.String(), nil
}

// ExtractSpans returns the original covered text of each span in document
// order. Adjacent spans yield distinct entries.
func ExtractSpans(text string) ([]string, error) {
	segments, err := split(text)
	if err != nil {
		return nil, err
	}
	var spans []string
	for _, seg := range segments {
		if seg.span {
			spans = append(spans, seg.text)
		}
	}
	return spans, nil
}

// Restore replaces every span with its covered original, reconstructing
// the unredacted text for comparison against the source speech.
func Restore(text string) (string, error) {
	segments, err := split(text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.text)
	}
	return b.String(), nil
}
