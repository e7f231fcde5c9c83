package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podium/internal/export"
	"podium/internal/labels"
	"podium/internal/logging"
	"podium/internal/parse"
	"podium/internal/preflight"
	"podium/internal/speech"
	"podium/internal/tasks"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show preflight checks and labeling coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				kind := statusError
				if result.Passed {
					kind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if preflight.Ready(results) {
				fmt.Fprintln(out, renderStatusLine("Summary", statusOK, "ready to label", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Summary", statusError, "not ready; fix the failing checks", colorize))
			}

			catalog, err := speech.LoadCatalog(cfg.Paths.SpeechesCSV)
			if err != nil {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderStatusLine("Coverage", statusWarn, "row store unavailable; run podium ingest", colorize))
				return nil
			}
			store, err := labels.Open(cfg.Paths.LabelsDB)
			if err != nil {
				return err
			}
			defer store.Close()
			registry, err := tasks.Default()
			if err != nil {
				return err
			}
			exporter, err := export.New(cfg, catalog, store, registry, logging.NewNop())
			if err != nil {
				return err
			}
			coverage, err := exporter.Coverage(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Coverage", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "%d speeches in the row store\n", coverage.Records)
			taskRows := make([][]string, 0, len(coverage.Tasks))
			for _, task := range coverage.Tasks {
				taskRows = append(taskRows, []string{
					task.Task,
					strconv.Itoa(task.Labeled),
					strconv.Itoa(task.Pending),
					strconv.Itoa(task.Blocked),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Task", "Labeled", "Pending", "Blocked"}, taskRows, 1, 2, 3))

			if len(coverage.Scores) > 0 {
				for _, line := range renderSectionHeader("Scores", colorize) {
					fmt.Fprintln(out, line)
				}
				headers := []string{"Task"}
				numeric := make([]int, 0, parse.MaxScore)
				for score := parse.MinScore; score <= parse.MaxScore; score++ {
					headers = append(headers, strconv.Itoa(score))
					numeric = append(numeric, score-parse.MinScore+1)
				}
				scoreRows := make([][]string, 0, len(coverage.Scores))
				for _, dist := range coverage.Scores {
					row := []string{dist.Task}
					for _, count := range dist.Counts {
						row = append(row, strconv.Itoa(count))
					}
					scoreRows = append(scoreRows, row)
				}
				fmt.Fprintln(out, renderTable(headers, scoreRows, numeric...))
			}

			fmt.Fprintf(out, "%d of %d speeches meet the snippet grade floor (>= %d)\n",
				coverage.Eligible, coverage.Records, cfg.Export.MinSnippetGrade)
			return nil
		},
	}
}
