// Package parse turns raw model responses into typed label values. One
// parser per output shape; anything a parser cannot accept is rejected
// rather than coerced, so an unlabeled cell always means "no label yet"
// and never "wrong label".
package parse

import (
	"fmt"
	"strconv"
	"strings"

	"podium/internal/labels"
	"podium/internal/redaction"
	"podium/internal/services"
	"podium/internal/textutil"
)

// Kind selects which parser decodes a task's model output.
type Kind string

const (
	KindScore    Kind = "score"
	KindText     Kind = "text"
	KindRedacted Kind = "redacted"
)

// Score bounds for the integer score parser.
const (
	MinScore = 1
	MaxScore = 5
)

// Parse decodes raw model output for the given kind. source is the
// original speech text; only KindRedacted reads it, to measure how far
// the model drifted from the unmarked source. The returned similarity is
// that measurement for KindRedacted and 1 otherwise, so callers can
// apply a single warn threshold.
func Parse(kind Kind, raw, source string) (labels.Value, float64, error) {
	switch kind {
	case KindScore:
		value, err := Score(raw)
		return value, 1, err
	case KindText:
		value, err := Text(raw)
		return value, 1, err
	case KindRedacted:
		return Redacted(raw, source)
	default:
		return labels.Value{}, 0, services.Wrap(services.ErrConfiguration,
			"parse", "dispatch", fmt.Sprintf("unknown parser kind %q", kind), nil)
	}
}

// Score accepts text holding a single integer between MinScore and
// MaxScore. Extra text, non-numeric content, and out-of-range values are
// all rejected; nothing is clamped.
func Score(raw string) (labels.Value, error) {
	text := strings.TrimSpace(raw)
	score, err := strconv.Atoi(text)
	if err != nil {
		return labels.Value{}, services.Wrap(services.ErrParse,
			"parse", "score", fmt.Sprintf("not a bare integer: %q", text), nil)
	}
	if score < MinScore || score > MaxScore {
		return labels.Value{}, services.Wrap(services.ErrParse,
			"parse", "score", fmt.Sprintf("score %d outside %d-%d", score, MinScore, MaxScore), nil)
	}
	return labels.Int(score), nil
}

// Text accepts nonempty text after trimming surrounding whitespace and
// quoting.
func Text(raw string) (labels.Value, error) {
	text := trimQuoting(raw)
	if text == "" {
		return labels.Value{}, services.Wrap(services.ErrParse,
			"parse", "text", "empty response", nil)
	}
	return labels.Text(text), nil
}

// Redacted accepts speech text carrying redaction markup. Unbalanced or
// nested markup is rejected. The similarity between the restored text and
// the source speech is returned for the caller's advisory drift warning;
// drift alone never fails the parse.
func Redacted(raw, source string) (labels.Value, float64, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return labels.Value{}, 0, services.Wrap(services.ErrParse,
			"parse", "redacted", "empty response", nil)
	}
	restored, err := redaction.Restore(text)
	if err != nil {
		return labels.Value{}, 0, err
	}
	similarity := textutil.CosineSimilarity(
		textutil.NewFingerprint(restored),
		textutil.NewFingerprint(source),
	)
	return labels.Text(text), similarity, nil
}

func trimQuoting(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, `'`)
	return strings.TrimSpace(s)
}
