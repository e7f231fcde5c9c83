package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks startup problems: broken task declarations,
	// unresolved prompt placeholders, invalid config values. Never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks rejected caller input (bad key, unknown task).
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups that matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks retryable LLM failures (rate limits, network).
	ErrTransient = errors.New("transient llm failure")
	// ErrFatal marks LLM failures that must abort the run (auth, bad request).
	ErrFatal = errors.New("fatal llm failure")
	// ErrParse marks model output a task parser rejected. Row-scoped.
	ErrParse = errors.New("parse error")
	// ErrMalformedMarkup marks redaction markup that cannot be decoded. Row-scoped.
	ErrMalformedMarkup = errors.New("malformed redaction markup")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// RowScoped reports whether the error should skip the current row and let the
// run continue. Parse and markup failures leave the cell absent so the key
// becomes pending again on the next run; everything else aborts.
func RowScoped(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrMalformedMarkup)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
