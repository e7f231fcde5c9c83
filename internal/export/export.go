package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"podium/internal/config"
	"podium/internal/labels"
	"podium/internal/logging"
	"podium/internal/redaction"
	"podium/internal/services"
	"podium/internal/speech"
	"podium/internal/tasks"
	"podium/internal/textutil"
)

// Artifact names under the export directory.
const (
	MergedViewName = "speeches_with_labels.csv"
	GameDataName   = "data.json"
)

// Label columns the game payload draws from. They match the default
// task registry; catalogs labeled under a custom registry still get the
// merged view, which follows whatever columns that registry defines.
const (
	columnRedacted = "redacted_speech"
	columnPlotHint = "plot_hint"
	columnSnippet  = "golden_snippet"
	columnGrading  = "snippet_grading"
)

// Exporter publishes the merged view and the game payload from one
// catalog and label store pairing.
type Exporter struct {
	cfg      *config.Config
	catalog  *speech.Catalog
	store    *labels.Store
	registry *tasks.Registry
	logger   *slog.Logger
	rng      *rand.Rand
}

// Option adjusts exporter construction.
type Option func(*Exporter)

// WithRand replaces the source used to sample film options. Tests pass
// a seeded source to make option picks reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(e *Exporter) {
		e.rng = rng
	}
}

// New builds an exporter over the given catalog and store.
func New(cfg *config.Config, catalog *speech.Catalog, store *labels.Store, registry *tasks.Registry, logger *slog.Logger, opts ...Option) (*Exporter, error) {
	if cfg == nil || catalog == nil || store == nil || registry == nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "new",
			"exporter requires config, catalog, store, and registry", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Exporter{
		cfg:      cfg,
		catalog:  catalog,
		store:    store,
		registry: registry,
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Report summarizes one export run.
type Report struct {
	MergedRows   int
	GameSpeeches int
	Skipped      int
	Categories   int
	MergedPath   string
	GamePath     string
}

// GameSpeech is one playable speech in the game payload.
type GameSpeech struct {
	ID                string   `json:"id"`
	Year              int      `json:"year"`
	Category          string   `json:"category"`
	FilmTitle         string   `json:"film_title"`
	Winner            string   `json:"winner_clean"`
	GoldenSnippet     string   `json:"golden_snippet"`
	SnippetDisplay    string   `json:"snippet_display"`
	Redactions        []string `json:"redactions"`
	FullSpeechDisplay string   `json:"full_speech_display"`
	FullSpeechRaw     string   `json:"full_speech_raw"`
	PlotHint          string   `json:"plot_hint,omitempty"`
	SnippetGrading    int      `json:"snippet_grading"`
	FilmOptions       []string `json:"film_options"`
}

// GameData is the complete payload served to the trivia game.
type GameData struct {
	Speeches   []GameSpeech `json:"speeches"`
	Categories []string     `json:"categories"`
}

// Run writes the merged view and the game payload into the export
// directory. Both files land through temp-and-rename so consumers never
// read a partial artifact.
func (e *Exporter) Run(ctx context.Context) (*Report, error) {
	logger := logging.WithContext(ctx, e.logger)
	start := time.Now()

	all, err := e.store.All(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		MergedPath: filepath.Join(e.cfg.Paths.ExportDir, MergedViewName),
		GamePath:   filepath.Join(e.cfg.Paths.ExportDir, GameDataName),
	}

	if err := e.writeMergedView(report.MergedPath, all); err != nil {
		return nil, services.Wrap(services.ErrFatal, "export", "merged_view", "write merged view", err)
	}
	report.MergedRows = e.catalog.Len()
	logger.Info("merged view written",
		logging.String("path", report.MergedPath),
		logging.Int("rows", report.MergedRows))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, skipped := e.buildGameData(ctx, all)
	if err := writeJSON(report.GamePath, data); err != nil {
		return nil, services.Wrap(services.ErrFatal, "export", "game_data", "write game payload", err)
	}
	report.GameSpeeches = len(data.Speeches)
	report.Skipped = skipped
	report.Categories = len(data.Categories)
	logger.Info("game payload written",
		logging.String("path", report.GamePath),
		logging.Int("speeches", report.GameSpeeches),
		logging.Int("categories", report.Categories),
		logging.Int("skipped", report.Skipped))

	logger.Info("export completed",
		logging.Duration("export_duration", time.Since(start)))
	return report, nil
}

// writeMergedView joins every catalog row with its label cells and
// writes the result as CSV. Rows keep catalog order; absent cells stay
// empty. Label columns follow task execution order.
func (e *Exporter) writeMergedView(path string, all map[speech.Key]map[string]labels.Value) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create merged view: %w", err)
	}

	header := []string{
		speech.ColumnYear, speech.ColumnCeremony, speech.ColumnCategory,
		speech.ColumnFilmTitle, speech.ColumnWinnerRaw, speech.ColumnWinner,
		speech.ColumnSpeechText,
	}
	taskColumns := make([]string, 0, len(e.registry.Tasks()))
	for _, task := range e.registry.Tasks() {
		taskColumns = append(taskColumns, task.Column)
	}
	header = append(header, taskColumns...)

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("write merged view header: %w", err)
	}
	for _, record := range e.catalog.Records() {
		row := []string{
			strconv.Itoa(record.Year), strconv.Itoa(record.Ceremony), record.Category,
			record.FilmTitle, record.WinnerRaw, record.Winner, record.SpeechText,
		}
		cells := all[record.Key()]
		for _, column := range taskColumns {
			row = append(row, cells[column].String())
		}
		if err := writer.Write(row); err != nil {
			file.Close()
			return fmt.Errorf("write merged row %s: %w", record.Key(), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush merged view: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close merged view: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace merged view: %w", err)
	}
	return nil
}

// buildGameData assembles the playable speeches. A speech qualifies
// when its snippet grade meets the configured floor; qualifying rows
// with unusable stored markup are skipped with a warning rather than
// sinking the whole export.
func (e *Exporter) buildGameData(ctx context.Context, all map[speech.Key]map[string]labels.Value) (*GameData, int) {
	logger := logging.WithContext(ctx, e.logger)
	minGrade := int64(e.cfg.Export.MinSnippetGrade)

	speeches := make([]GameSpeech, 0, e.catalog.Len())
	categorySet := make(map[string]bool)
	skipped := 0

	for _, record := range e.catalog.Records() {
		cells := all[record.Key()]
		grade, ok := cells[columnGrading]
		if !ok || grade.Kind != labels.ValueInt || grade.Int < minGrade {
			continue
		}
		snippetCell, ok := cells[columnSnippet]
		if !ok {
			logger.Warn("graded speech lacks a snippet; skipping",
				logging.String("key", record.Key().String()))
			skipped++
			continue
		}
		redactedCell, ok := cells[columnRedacted]
		if !ok {
			logger.Warn("graded speech lacks a redacted speech; skipping",
				logging.String("key", record.Key().String()))
			skipped++
			continue
		}

		snippet := stripOuterQuotes(snippetCell.Text)
		redacted := stripOuterQuotes(redactedCell.Text)

		snippetDisplay, err := redaction.RenderDisplay(snippet)
		if err != nil {
			logger.Warn("stored snippet markup unusable; skipping",
				logging.String("key", record.Key().String()),
				logging.Error(err))
			skipped++
			continue
		}
		spans, err := redaction.ExtractSpans(snippet)
		if err != nil {
			logger.Warn("stored snippet markup unusable; skipping",
				logging.String("key", record.Key().String()),
				logging.Error(err))
			skipped++
			continue
		}
		if spans == nil {
			// Consumers expect an array even when the snippet kept
			// every word.
			spans = []string{}
		}
		fullDisplay, err := redaction.RenderDisplay(redacted)
		if err != nil {
			logger.Warn("stored redacted speech markup unusable; skipping",
				logging.String("key", record.Key().String()),
				logging.Error(err))
			skipped++
			continue
		}
		// Raw text comes from the stored markup, not the row store, so it
		// stays word-aligned with the display form even when the model
		// reworded something.
		fullRaw, err := redaction.Restore(redacted)
		if err != nil {
			logger.Warn("stored redacted speech markup unusable; skipping",
				logging.String("key", record.Key().String()),
				logging.Error(err))
			skipped++
			continue
		}

		entry := GameSpeech{
			ID:                fmt.Sprintf("%d-%s", record.Year, textutil.Slug(record.Category)),
			Year:              record.Year,
			Category:          record.Category,
			FilmTitle:         record.FilmTitle,
			Winner:            record.Winner,
			GoldenSnippet:     snippet,
			SnippetDisplay:    snippetDisplay,
			Redactions:        spans,
			FullSpeechDisplay: fullDisplay,
			FullSpeechRaw:     fullRaw,
			SnippetGrading:    int(grade.Int),
			FilmOptions:       e.pickFilmOptions(record),
		}
		if hint, ok := cells[columnPlotHint]; ok {
			entry.PlotHint = hint.Text
		}
		speeches = append(speeches, entry)
		categorySet[record.Category] = true
	}

	categories := make([]string, 0, len(categorySet))
	for category := range categorySet {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	return &GameData{Speeches: speeches, Categories: categories}, skipped
}

// writeJSON marshals the payload with two-space indentation and lands
// it through a temp file.
func writeJSON(path string, data *GameData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal game payload: %w", err)
	}
	body = append(body, '\n')
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("write game payload: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace game payload: %w", err)
	}
	return nil
}
