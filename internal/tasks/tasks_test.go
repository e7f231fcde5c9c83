package tasks_test

import (
	"errors"
	"strings"
	"testing"

	"podium/internal/labels"
	"podium/internal/parse"
	"podium/internal/services"
	"podium/internal/speech"
	"podium/internal/tasks"
)

func TestDefaultRegistryOrderAndColumns(t *testing.T) {
	registry, err := tasks.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	wantOrder := []string{"distinctiveness", "redaction", "plot_hint", "snippet_selection", "snippet_grading"}
	names := registry.Names()
	if len(names) != len(wantOrder) {
		t.Fatalf("expected %d tasks, got %d", len(wantOrder), len(names))
	}
	for i, want := range wantOrder {
		if names[i] != want {
			t.Fatalf("task %d = %q, want %q", i, names[i], want)
		}
	}

	wantColumns := map[string]string{
		"distinctiveness":   "distinctiveness",
		"redaction":         "redacted_speech",
		"plot_hint":         "plot_hint",
		"snippet_selection": "golden_snippet",
		"snippet_grading":   "snippet_grading",
	}
	for name, column := range wantColumns {
		task, ok := registry.ByName(name)
		if !ok {
			t.Fatalf("missing task %q", name)
		}
		if task.Column != column {
			t.Fatalf("task %q writes %q, want %q", name, task.Column, column)
		}
	}

	selection, _ := registry.ByName("snippet_selection")
	if len(selection.Dependencies) != 1 || selection.Dependencies[0] != "redacted_speech" {
		t.Fatalf("unexpected snippet_selection dependencies: %v", selection.Dependencies)
	}
	grading, _ := registry.ByName("snippet_grading")
	if len(grading.Dependencies) != 1 || grading.Dependencies[0] != "golden_snippet" {
		t.Fatalf("unexpected snippet_grading dependencies: %v", grading.Dependencies)
	}
}

func TestNewRejectsBrokenDeclarations(t *testing.T) {
	templates := map[string]string{
		"first":  "Rate {speech_clean}.",
		"second": "Use {first_column}.",
	}

	tests := []struct {
		name string
		defs []tasks.Task
	}{
		{
			name: "dependency on unproduced column",
			defs: []tasks.Task{
				{Name: "first", Column: "first_column", Parser: parse.KindScore},
				{Name: "second", Column: "second_column", Parser: parse.KindText, Dependencies: []string{"never_produced"}},
			},
		},
		{
			name: "dependency on later task",
			defs: []tasks.Task{
				{Name: "second", Column: "second_column", Parser: parse.KindText, Dependencies: []string{"first_column"}},
				{Name: "first", Column: "first_column", Parser: parse.KindScore},
			},
		},
		{
			name: "duplicate task name",
			defs: []tasks.Task{
				{Name: "first", Column: "first_column", Parser: parse.KindScore},
				{Name: "first", Column: "second_column", Parser: parse.KindText},
			},
		},
		{
			name: "duplicate column",
			defs: []tasks.Task{
				{Name: "first", Column: "first_column", Parser: parse.KindScore},
				{Name: "second", Column: "first_column", Parser: parse.KindText},
			},
		},
		{
			name: "unknown parser",
			defs: []tasks.Task{
				{Name: "first", Column: "first_column", Parser: parse.Kind("sentiment")},
			},
		},
		{
			name: "missing template",
			defs: []tasks.Task{
				{Name: "third", Column: "third_column", Parser: parse.KindScore},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tasks.New(tt.defs, templates)
			if err == nil {
				t.Fatal("expected configuration error")
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestNewRejectsUnresolvablePlaceholder(t *testing.T) {
	defs := []tasks.Task{
		{Name: "first", Column: "first_column", Parser: parse.KindScore},
	}
	templates := map[string]string{
		"first": "Rate {speech_clean} against {first_column}.",
	}
	_, err := tasks.New(defs, templates)
	if err == nil {
		t.Fatal("expected configuration error for placeholder outside record fields and dependencies")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !strings.Contains(err.Error(), "first_column") {
		t.Fatalf("error should name the bad placeholder: %v", err)
	}
}

func TestRenderSubstitutesRecordAndDependencies(t *testing.T) {
	defs := []tasks.Task{
		{Name: "mark", Column: "marked", Parser: parse.KindRedacted},
		{Name: "pick", Column: "picked", Parser: parse.KindText, Dependencies: []string{"marked"}},
	}
	templates := map[string]string{
		"mark": "Film {film_title} ({year}, {category}) by {winner_clean}:\n{speech_clean}",
		"pick": "Choose from:\n{marked}",
	}
	registry, err := tasks.New(defs, templates)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	record := speech.Record{
		Year:       2013,
		Category:   speech.CategoryDirecting,
		FilmTitle:  "Gravity",
		Winner:     "Alfonso Cuaron",
		SpeechText: "Thank you all.",
	}

	mark, _ := registry.ByName("mark")
	prompt, err := registry.Render(mark, record, nil)
	if err != nil {
		t.Fatalf("Render mark: %v", err)
	}
	want := "Film Gravity (2013, Directing) by Alfonso Cuaron:\nThank you all."
	if prompt != want {
		t.Fatalf("Render mark = %q, want %q", prompt, want)
	}

	pick, _ := registry.ByName("pick")
	row := map[string]labels.Value{"marked": labels.Text("Thank you [REDACT: all].")}
	prompt, err = registry.Render(pick, record, row)
	if err != nil {
		t.Fatalf("Render pick: %v", err)
	}
	if prompt != "Choose from:\nThank you [REDACT: all]." {
		t.Fatalf("Render pick = %q", prompt)
	}
}

func TestRenderRequiresDependencyCell(t *testing.T) {
	defs := []tasks.Task{
		{Name: "mark", Column: "marked", Parser: parse.KindRedacted},
		{Name: "pick", Column: "picked", Parser: parse.KindText, Dependencies: []string{"marked"}},
	}
	templates := map[string]string{
		"mark": "{speech_clean}",
		"pick": "{marked}",
	}
	registry, err := tasks.New(defs, templates)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pick, _ := registry.ByName("pick")
	record := speech.Record{Year: 2013, Category: speech.CategoryDirecting, FilmTitle: "Gravity", Winner: "A", SpeechText: "B"}
	_, err = registry.Render(pick, record, map[string]labels.Value{})
	if err == nil {
		t.Fatal("expected error for absent dependency cell")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDefaultTemplatesRender(t *testing.T) {
	registry, err := tasks.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	record := speech.Record{
		Year:       1994,
		Ceremony:   67,
		Category:   speech.CategoryBestPicture,
		FilmTitle:  "Forrest Gump",
		WinnerRaw:  "Wendy Finerman (producer)",
		Winner:     "Wendy Finerman",
		SpeechText: "This belongs to everyone who never stopped believing.",
	}
	row := map[string]labels.Value{
		"redacted_speech": labels.Text("This belongs to [REDACT: everyone]."),
		"golden_snippet":  labels.Text("This belongs to [REDACT: everyone]."),
	}
	wantContains := map[string]string{
		"distinctiveness":   record.SpeechText,
		"redaction":         record.SpeechText,
		"plot_hint":         record.FilmTitle,
		"snippet_selection": "This belongs to [REDACT: everyone].",
		"snippet_grading":   "This belongs to [REDACT: everyone].",
	}
	for _, task := range registry.Tasks() {
		prompt, err := registry.Render(task, record, row)
		if err != nil {
			t.Fatalf("Render %s: %v", task.Name, err)
		}
		if !strings.Contains(prompt, wantContains[task.Name]) {
			t.Fatalf("task %s prompt missing %q:\n%s", task.Name, wantContains[task.Name], prompt)
		}
	}
}
