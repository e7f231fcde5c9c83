package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	taskKey  contextKey = "task"
	keyKey   contextKey = "label_key"
)

// WithRunID annotates context with the labeling run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTask annotates context with the labeling task name.
func WithTask(ctx context.Context, task string) context.Context {
	if task == "" {
		return ctx
	}
	return context.WithValue(ctx, taskKey, task)
}

// TaskFromContext returns the task name if present.
func TaskFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(taskKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLabelKey annotates context with the label key being processed.
func WithLabelKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, keyKey, key)
}

// LabelKeyFromContext returns the label key if present.
func LabelKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(keyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
