package labeler

import (
	"context"
	"fmt"
	"strings"

	"podium/internal/labels"
	"podium/internal/logging"
	"podium/internal/parse"
	"podium/internal/services"
	"podium/internal/speech"
	"podium/internal/tasks"
)

// RelabelRequest targets one cell for replacement. Film selects the row
// by case-insensitive substring against catalog film titles; Category
// narrows the match when one film won in several categories. Override,
// when set, is parsed in place of a model response and no model call is
// made. Note, when set, is appended to the prompt as reviewer guidance.
type RelabelRequest struct {
	Film     string
	Category string
	Task     string
	Note     string
	Override string
}

// RelabelResult reports the replaced cell and the downstream columns the
// replacement made stale. Stale columns keep their old values; clearing
// or relabeling them is the caller's decision.
type RelabelResult struct {
	Key         speech.Key
	Film        string
	Task        string
	Column      string
	Previous    labels.Value
	HadPrevious bool
	Value       labels.Value
	Overridden  bool
	Stale       []string
}

// Relabel replaces a single cell, overwriting any existing value. The
// existing value survives any failure: the cell is only written after the
// replacement parses.
func (e *Engine) Relabel(ctx context.Context, req RelabelRequest) (*RelabelResult, error) {
	task, ok := e.registry.ByName(strings.TrimSpace(req.Task))
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "labeler", "relabel",
			fmt.Sprintf("unknown task %q (tasks: %s)", req.Task, strings.Join(e.registry.Names(), ", ")), nil)
	}
	record, err := e.resolveRecord(req.Film, req.Category)
	if err != nil {
		return nil, err
	}
	key := record.Key()
	ctx = services.WithLabelKey(services.WithTask(ctx, task.Name), key.String())
	logger := logging.WithContext(ctx, e.logger)

	previous, hadPrevious, err := e.store.Get(ctx, key, task.Column)
	if err != nil {
		return nil, err
	}

	value := labels.Value{}
	overridden := strings.TrimSpace(req.Override) != ""
	if overridden {
		parsed, _, err := parse.Parse(task.Parser, req.Override, record.SpeechText)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "labeler", "relabel",
				fmt.Sprintf("override rejected by the %s parser", task.Parser), err)
		}
		value = parsed
	} else {
		row, err := e.store.Row(ctx, key)
		if err != nil {
			return nil, err
		}
		prompt, err := e.registry.Render(task, record, row)
		if err != nil {
			return nil, err
		}
		if note := strings.TrimSpace(req.Note); note != "" {
			prompt += "\n\nNote from reviewer: " + note
		}
		raw, err := e.client.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}
		parsed, similarity, err := parse.Parse(task.Parser, raw, record.SpeechText)
		if err != nil {
			return nil, err
		}
		e.warnDrift(logger, task, similarity)
		value = parsed
	}

	if err := e.store.SetCell(ctx, key, task.Column, value); err != nil {
		return nil, err
	}
	stale, err := e.staleDependents(ctx, task, key)
	if err != nil {
		return nil, err
	}

	logger.Info("cell relabeled",
		logging.String("column", task.Column),
		logging.Bool("override", overridden),
		logging.Int("stale_columns", len(stale)))

	return &RelabelResult{
		Key:         key,
		Film:        record.FilmTitle,
		Task:        task.Name,
		Column:      task.Column,
		Previous:    previous,
		HadPrevious: hadPrevious,
		Value:       value,
		Overridden:  overridden,
		Stale:       stale,
	}, nil
}

// resolveRecord finds exactly one catalog record by film substring.
func (e *Engine) resolveRecord(filmQuery, categoryQuery string) (speech.Record, error) {
	if strings.TrimSpace(filmQuery) == "" {
		return speech.Record{}, services.Wrap(services.ErrValidation, "labeler", "relabel",
			"film query is required", nil)
	}
	matches := e.catalog.FindByFilm(filmQuery, categoryQuery)
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return speech.Record{}, services.Wrap(services.ErrNotFound, "labeler", "relabel",
			fmt.Sprintf("no speech matches film %q", filmQuery), nil)
	}
	candidates := make([]string, len(matches))
	for i, match := range matches {
		candidates[i] = fmt.Sprintf("%s (%d, %s)", match.FilmTitle, match.Year, match.Category)
	}
	return speech.Record{}, services.Wrap(services.ErrValidation, "labeler", "relabel",
		fmt.Sprintf("film %q matches %d speeches, narrow with a category: %s",
			filmQuery, len(matches), strings.Join(candidates, "; ")), nil)
}

// staleDependents returns the columns downstream of the relabeled column
// that hold values computed from its old value. Registry order is
// dependency order, so a single forward pass covers transitive reach.
func (e *Engine) staleDependents(ctx context.Context, relabeled tasks.Task, key speech.Key) ([]string, error) {
	row, err := e.store.Row(ctx, key)
	if err != nil {
		return nil, err
	}
	tainted := map[string]bool{relabeled.Column: true}
	var stale []string
	for _, task := range e.registry.Tasks() {
		reached := false
		for _, dep := range task.Dependencies {
			if tainted[dep] {
				reached = true
				break
			}
		}
		if !reached {
			continue
		}
		tainted[task.Column] = true
		if _, present := row[task.Column]; present {
			stale = append(stale, task.Column)
		}
	}
	return stale, nil
}
