package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"podium/internal/config"
	"podium/internal/labeler"
	"podium/internal/labels"
	"podium/internal/logging"
	"podium/internal/preflight"
	"podium/internal/speech"
	"podium/internal/tasks"
	"podium/internal/watcher"
)

func newLabelCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var sampleRows int

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Label pending rows with the Gemini API",
		Long: "Label runs every registered task over the row store, sending one prompt\n" +
			"per pending row and merging each task's batch into the label store before\n" +
			"the next task starts. Rows labeled by an earlier run are left untouched,\n" +
			"so interrupted runs resume where they stopped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if sampleRows > 0 {
				cfg.Labeling.SampleRows = sampleRows
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			results := preflight.RunAll(runCtx, cfg)
			if !preflight.Ready(results) {
				for _, result := range results {
					if !result.Passed {
						fmt.Fprintln(out, renderStatusLine(result.Name, statusError, result.Detail, shouldColorize(out)))
					}
				}
				return fmt.Errorf("preflight failed; fix the checks above or run podium status")
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			lock := labeler.NewRunLock(cfg.LockPath())
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer lock.Release()

			store, err := labels.Open(cfg.Paths.LabelsDB)
			if err != nil {
				return err
			}
			defer store.Close()

			registry, err := tasks.Default()
			if err != nil {
				return err
			}
			client := newGeminiClient(cfg)

			runOnce := func(runCtx context.Context) error {
				engine, err := newEngine(cfg, store, registry, client, logger)
				if err != nil {
					return err
				}
				report, err := engine.Run(runCtx)
				if report != nil {
					printRunReport(out, report)
				}
				return err
			}

			if err := runOnce(runCtx); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			debounce := time.Duration(cfg.Watch.DebounceSeconds) * time.Second
			w, err := watcher.New(cfg.Paths.SpeechesCSV, debounce, runOnce, logger)
			if err != nil {
				return err
			}
			defer w.Close()
			fmt.Fprintf(out, "Watching %s (debounce %s, Ctrl-C to stop)\n", cfg.Paths.SpeechesCSV, debounce)
			return w.Watch(runCtx)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and relabel whenever the row store changes")
	cmd.Flags().IntVar(&sampleRows, "sample", 0, "Label only the first N pending rows per task")

	return cmd
}

// newEngine loads the row store fresh and assembles the labeling engine
// around it. Watch mode builds a new engine per trigger so every pass sees
// the catalog that fired the event.
func newEngine(cfg *config.Config, store *labels.Store, registry *tasks.Registry, client labeler.Generator, logger *slog.Logger) (*labeler.Engine, error) {
	catalog, err := speech.LoadCatalog(cfg.Paths.SpeechesCSV)
	if err != nil {
		return nil, err
	}
	return labeler.New(cfg, catalog, store, registry, client, logger)
}

func printRunReport(out io.Writer, report *labeler.RunReport) {
	rows := make([][]string, 0, len(report.Tasks))
	for _, task := range report.Tasks {
		rows = append(rows, []string{
			task.Task,
			task.Column,
			strconv.Itoa(task.Pending),
			strconv.Itoa(task.Labeled),
			strconv.Itoa(task.Skipped),
			strconv.Itoa(task.Merged),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Task", "Column", "Pending", "Labeled", "Skipped", "Merged"},
		rows, 2, 3, 4, 5,
	))
	fmt.Fprintf(out, "Run %s labeled %d cells (%d rows skipped)\n",
		report.RunID, report.TotalLabeled(), report.TotalSkipped())
}
