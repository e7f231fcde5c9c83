package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podium/internal/export"
	"podium/internal/labels"
	"podium/internal/logging"
	"podium/internal/speech"
	"podium/internal/tasks"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the merged label view and the game payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			catalog, err := speech.LoadCatalog(cfg.Paths.SpeechesCSV)
			if err != nil {
				return err
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

			exporter, err := export.New(cfg, catalog, store, registry, logger)
			if err != nil {
				return err
			}
			report, err := exporter.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Merged view:  %s (%d rows)\n", report.MergedPath, report.MergedRows)
			fmt.Fprintf(out, "Game payload: %s (%d speeches, %d categories, %d skipped)\n",
				report.GamePath, report.GameSpeeches, report.Categories, report.Skipped)
			return nil
		},
	}
}
