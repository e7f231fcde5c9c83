package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"podium/internal/ingest"
	"podium/internal/logging"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Clean the raw speech archives into the row store",
		Long: "Ingest reads whichever raw archives the configuration points at, cleans\n" +
			"and merges them, and writes the row store the labeling passes consume.\n" +
			"Rerunning ingest rewrites the row store in place; labels are keyed by\n" +
			"year and category, so existing labels survive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			pipeline, err := ingest.New(cfg, logger)
			if err != nil {
				return err
			}
			report, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Row store written to %s\n", report.OutputPath)
			fmt.Fprintf(out, "  Kaggle rows:   %d (%d skipped)\n", report.KaggleRows, report.KaggleSkipped)
			fmt.Fprintf(out, "  Academy rows:  %d (%d skipped)\n", report.AcademyRows, report.AcademySkipped)
			fmt.Fprintf(out, "  Duplicates:    %d\n", report.Duplicates)
			fmt.Fprintf(out, "  Speeches kept: %d (%d-%d)\n", report.Rows, report.YearMin, report.YearMax)
			if report.EmptyWinners > 0 || report.EmptySpeeches > 0 {
				fmt.Fprintf(out, "  Empty fields:  %d winners, %d speeches\n", report.EmptyWinners, report.EmptySpeeches)
			}

			categories := make([]string, 0, len(report.Categories))
			for category := range report.Categories {
				categories = append(categories, category)
			}
			sort.Strings(categories)
			rows := make([][]string, 0, len(categories))
			for _, category := range categories {
				rows = append(rows, []string{category, strconv.Itoa(report.Categories[category])})
			}
			fmt.Fprintln(out, renderTable([]string{"Category", "Speeches"}, rows, 1))
			return nil
		},
	}
}
