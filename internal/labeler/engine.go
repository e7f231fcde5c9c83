package labeler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"podium/internal/config"
	"podium/internal/labels"
	"podium/internal/logging"
	"podium/internal/parse"
	"podium/internal/services"
	"podium/internal/speech"
	"podium/internal/tasks"
)

// Generator produces model text for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine labels catalog rows task by task, persisting each task's batch
// before starting the next.
type Engine struct {
	cfg      *config.Config
	catalog  *speech.Catalog
	store    *labels.Store
	registry *tasks.Registry
	client   Generator
	logger   *slog.Logger

	interval time.Duration
	sleeper  func(time.Duration)
}

// Option customizes engine construction.
type Option func(*Engine)

// WithSleeper overrides the pacing sleep between model requests.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(e *Engine) {
		if sleeper != nil {
			e.sleeper = sleeper
		}
	}
}

// New constructs a labeling engine over the given catalog and label store.
func New(cfg *config.Config, catalog *speech.Catalog, store *labels.Store, registry *tasks.Registry, client Generator, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil || catalog == nil || store == nil || registry == nil || client == nil {
		return nil, services.Wrap(services.ErrConfiguration, "labeler", "new",
			"engine requires config, catalog, store, registry, and client", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	engine := &Engine{
		cfg:      cfg,
		catalog:  catalog,
		store:    store,
		registry: registry,
		client:   client,
		logger:   logger,
		interval: time.Duration(cfg.Gemini.RequestIntervalMS) * time.Millisecond,
		sleeper:  time.Sleep,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// TaskReport summarizes one task's pass over the catalog.
type TaskReport struct {
	Task    string
	Column  string
	Pending int
	Labeled int
	Skipped int
	Merged  int
}

// RunReport summarizes a labeling run.
type RunReport struct {
	RunID string
	Tasks []TaskReport
}

// TotalLabeled returns the number of cells labeled across all tasks.
func (r *RunReport) TotalLabeled() int {
	total := 0
	for _, task := range r.Tasks {
		total += task.Labeled
	}
	return total
}

// TotalSkipped returns the number of rows skipped across all tasks.
func (r *RunReport) TotalSkipped() int {
	total := 0
	for _, task := range r.Tasks {
		total += task.Skipped
	}
	return total
}

// Run executes every registered task in order against the catalog. Tasks
// completed before an abort keep their merged batches; the in-flight
// task's batch is discarded unmerged.
func (e *Engine) Run(ctx context.Context) (*RunReport, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, e.logger)

	start := time.Now()
	logger.Info("labeling run started",
		logging.Int("records", e.catalog.Len()),
		logging.Int("tasks", len(e.registry.Tasks())))

	report := &RunReport{RunID: runID}
	for _, task := range e.registry.Tasks() {
		taskReport, err := e.runTask(ctx, task)
		if err != nil {
			logger.Error("labeling run aborted",
				logging.String("task", task.Name),
				logging.Error(err))
			return nil, err
		}
		report.Tasks = append(report.Tasks, taskReport)
	}

	logger.Info("labeling run completed",
		logging.Int("labeled", report.TotalLabeled()),
		logging.Int("skipped", report.TotalSkipped()),
		logging.Duration("run_duration", time.Since(start)))
	return report, nil
}

func (e *Engine) runTask(ctx context.Context, task tasks.Task) (TaskReport, error) {
	ctx = services.WithTask(ctx, task.Name)
	logger := logging.WithContext(ctx, e.logger)
	report := TaskReport{Task: task.Name, Column: task.Column}

	existing, err := e.store.ColumnValues(ctx, task.Column)
	if err != nil {
		return report, err
	}
	deps := make(map[string]map[speech.Key]labels.Value, len(task.Dependencies))
	for _, dep := range task.Dependencies {
		values, err := e.store.ColumnValues(ctx, dep)
		if err != nil {
			return report, err
		}
		deps[dep] = values
	}

	pending := e.pendingRecords(task, existing, deps)
	report.Pending = len(pending)
	if len(pending) == 0 {
		logger.Info("task already current", logging.Int("present", len(existing)))
		return report, nil
	}
	if limit := e.cfg.Labeling.SampleRows; limit > 0 && len(pending) > limit {
		logger.Info("sampling pending rows",
			logging.Int("pending", len(pending)),
			logging.Int("sample_rows", limit))
		pending = pending[:limit]
	}

	taskStart := time.Now()
	logger.Info("task started",
		logging.Int("pending", report.Pending),
		logging.Int("present", len(existing)))

	staged := make(map[speech.Key]labels.Value, len(pending))
	for _, record := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		key := record.Key()
		rowCtx := services.WithLabelKey(ctx, key.String())
		rowLogger := logging.WithContext(rowCtx, e.logger)

		row := make(map[string]labels.Value, len(task.Dependencies))
		for _, dep := range task.Dependencies {
			if cell, ok := deps[dep][key]; ok {
				row[dep] = cell
			}
		}
		prompt, err := e.registry.Render(task, record, row)
		if err != nil {
			return report, err
		}

		raw, err := e.client.Generate(rowCtx, prompt)
		if err != nil {
			if !services.RowScoped(err) {
				return report, err
			}
			rowLogger.Warn("model response unusable; cell stays absent", logging.Error(err))
			report.Skipped++
			e.pace()
			continue
		}
		e.pace()

		value, similarity, err := parse.Parse(task.Parser, raw, record.SpeechText)
		if err != nil {
			if !services.RowScoped(err) {
				return report, err
			}
			rowLogger.Warn("model response failed to parse; cell stays absent", logging.Error(err))
			report.Skipped++
			continue
		}
		e.warnDrift(rowLogger, task, similarity)

		staged[key] = value
		report.Labeled++
	}

	merged, err := e.store.MergeColumn(ctx, task.Column, staged)
	if err != nil {
		return report, err
	}
	report.Merged = merged

	logger.Info("task completed",
		logging.Int("labeled", report.Labeled),
		logging.Int("merged", merged),
		logging.Int("skipped", report.Skipped),
		logging.Duration("task_duration", time.Since(taskStart)))
	return report, nil
}

// pendingRecords returns, in catalog order, the records whose output cell
// is absent and whose dependency cells are all present.
func (e *Engine) pendingRecords(task tasks.Task, existing map[speech.Key]labels.Value, deps map[string]map[speech.Key]labels.Value) []speech.Record {
	var pending []speech.Record
	for _, record := range e.catalog.Records() {
		key := record.Key()
		if _, done := existing[key]; done {
			continue
		}
		ready := true
		for _, dep := range task.Dependencies {
			if _, ok := deps[dep][key]; !ok {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}
		pending = append(pending, record)
	}
	return pending
}

func (e *Engine) pace() {
	if e.interval <= 0 {
		return
	}
	e.sleeper(e.interval)
}

func (e *Engine) warnDrift(logger *slog.Logger, task tasks.Task, similarity float64) {
	if task.Parser != parse.KindRedacted {
		return
	}
	threshold := e.cfg.Labeling.SimilarityWarnThreshold
	if threshold <= 0 || similarity >= threshold {
		return
	}
	logger.Warn("restored text drifts from source speech",
		logging.Float64("similarity", similarity),
		logging.Float64("threshold", threshold))
}
