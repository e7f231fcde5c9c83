// Package tasks defines the labeling task registry: which prompts run,
// in what order, which parser types each response, which label column
// each task writes, and which earlier columns a task needs before it can
// run for a key. Adding a task means adding a prompt file and a registry
// entry, not engine changes.
package tasks

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"podium/internal/parse"
	"podium/internal/services"
)

//go:embed prompts/*.md
var promptFS embed.FS

// Task describes one labeling pass.
type Task struct {
	// Name identifies the task and its prompt template.
	Name string
	// Column is the label column the task writes.
	Column string
	// Parser types the model's response.
	Parser parse.Kind
	// Dependencies are label columns that must already be present for a
	// key before this task may run on it. Each must be produced by an
	// earlier task in the registry.
	Dependencies []string
}

// Registry holds the configured tasks in execution order together with
// their prompt templates.
type Registry struct {
	tasks     []Task
	byName    map[string]int
	templates map[string]string
}

// Default builds the registry for the speech labeling pipeline.
func Default() (*Registry, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return New(DefaultTasks(), templates)
}

// DefaultTasks returns the standard task definitions in execution order.
func DefaultTasks() []Task {
	return []Task{
		{Name: "distinctiveness", Column: "distinctiveness", Parser: parse.KindScore},
		{Name: "redaction", Column: "redacted_speech", Parser: parse.KindRedacted},
		{Name: "plot_hint", Column: "plot_hint", Parser: parse.KindText},
		{Name: "snippet_selection", Column: "golden_snippet", Parser: parse.KindText, Dependencies: []string{"redacted_speech"}},
		{Name: "snippet_grading", Column: "snippet_grading", Parser: parse.KindScore, Dependencies: []string{"golden_snippet"}},
	}
}

// New validates task definitions and templates and builds a registry.
// Any defect here is a configuration error: the pipeline must refuse to
// start rather than label rows against a broken declaration.
func New(defs []Task, templates map[string]string) (*Registry, error) {
	registry := &Registry{
		byName:    make(map[string]int, len(defs)),
		templates: make(map[string]string, len(defs)),
	}
	producedBy := make(map[string]string, len(defs))
	columns := make(map[string]string, len(defs))

	for i, def := range defs {
		if def.Name == "" || def.Column == "" {
			return nil, configErr("validate", fmt.Sprintf("task %d has empty name or column", i))
		}
		if _, dup := registry.byName[def.Name]; dup {
			return nil, configErr("validate", fmt.Sprintf("duplicate task name %q", def.Name))
		}
		if owner, dup := columns[def.Column]; dup {
			return nil, configErr("validate", fmt.Sprintf("tasks %q and %q both write column %q", owner, def.Name, def.Column))
		}
		switch def.Parser {
		case parse.KindScore, parse.KindText, parse.KindRedacted:
		default:
			return nil, configErr("validate", fmt.Sprintf("task %q uses unknown parser %q", def.Name, def.Parser))
		}

		for _, dep := range def.Dependencies {
			if _, ok := producedBy[dep]; !ok {
				return nil, configErr("validate", fmt.Sprintf(
					"task %q depends on column %q, which no earlier task produces", def.Name, dep))
			}
		}

		template, ok := templates[def.Name]
		if !ok || strings.TrimSpace(template) == "" {
			return nil, configErr("validate", fmt.Sprintf("task %q has no prompt template", def.Name))
		}
		if err := checkPlaceholders(def, template); err != nil {
			return nil, err
		}

		registry.byName[def.Name] = i
		registry.tasks = append(registry.tasks, def)
		registry.templates[def.Name] = template
		producedBy[def.Column] = def.Name
		columns[def.Column] = def.Name
	}

	if len(registry.tasks) == 0 {
		return nil, configErr("validate", "no tasks configured")
	}
	return registry, nil
}

// Tasks returns the tasks in execution order.
func (r *Registry) Tasks() []Task {
	return r.tasks
}

// ByName returns the task with the given name.
func (r *Registry) ByName(name string) (Task, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Task{}, false
	}
	return r.tasks[idx], true
}

// Names returns the task names in execution order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tasks))
	for i, task := range r.tasks {
		names[i] = task.Name
	}
	return names
}

func loadTemplates() (map[string]string, error) {
	entries, err := fs.Glob(promptFS, "prompts/*.md")
	if err != nil {
		return nil, configErr("load templates", err.Error())
	}
	templates := make(map[string]string, len(entries))
	for _, path := range entries {
		content, err := promptFS.ReadFile(path)
		if err != nil {
			return nil, configErr("load templates", fmt.Sprintf("read %s: %v", path, err))
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "prompts/"), ".md")
		templates[name] = string(content)
	}
	return templates, nil
}

func configErr(operation, message string) error {
	return services.Wrap(services.ErrConfiguration, "tasks", operation, message, nil)
}
