package tasks

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"podium/internal/labels"
	"podium/internal/services"
	"podium/internal/speech"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// recordPlaceholders are the substitutions every template may use,
// regardless of task dependencies.
func recordPlaceholders(record speech.Record) map[string]string {
	return map[string]string{
		"year":         strconv.Itoa(record.Year),
		"ceremony":     strconv.Itoa(record.Ceremony),
		"category":     record.Category,
		"film_title":   record.FilmTitle,
		"winner_raw":   record.WinnerRaw,
		"winner_clean": record.Winner,
		"speech_clean": record.SpeechText,
	}
}

// Render substitutes the task's template placeholders from the speech
// record and from the task's dependency cells in the label row. Rendering
// is pure; it never calls out or mutates anything.
func (r *Registry) Render(task Task, record speech.Record, row map[string]labels.Value) (string, error) {
	template, ok := r.templates[task.Name]
	if !ok {
		return "", configErr("render", fmt.Sprintf("task %q has no prompt template", task.Name))
	}

	values := recordPlaceholders(record)
	for _, dep := range task.Dependencies {
		cell, present := row[dep]
		if !present {
			return "", services.Wrap(services.ErrValidation, "tasks", "render",
				fmt.Sprintf("dependency column %q is absent for %s", dep, record.Key()), nil)
		}
		values[dep] = cell.String()
	}

	var missing []string
	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := values[name]; ok {
			return value
		}
		missing = append(missing, name)
		return match
	})
	if len(missing) > 0 {
		return "", configErr("render", fmt.Sprintf(
			"task %q template references unresolved placeholders: %s", task.Name, strings.Join(missing, ", ")))
	}
	return rendered, nil
}

// checkPlaceholders verifies at registry build time that every
// placeholder a template references is resolvable from the speech record
// or the task's declared dependencies.
func checkPlaceholders(task Task, template string) error {
	allowed := map[string]bool{
		"year": true, "ceremony": true, "category": true, "film_title": true,
		"winner_raw": true, "winner_clean": true, "speech_clean": true,
	}
	for _, dep := range task.Dependencies {
		allowed[dep] = true
	}

	seen := map[string]bool{}
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name := match[1]
		if !allowed[name] && !seen[name] {
			seen[name] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return configErr("validate", fmt.Sprintf(
		"task %q template references placeholders outside its record fields and dependencies: %s",
		task.Name, strings.Join(names, ", ")))
}
