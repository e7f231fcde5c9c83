package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podium/internal/labeler"
	"podium/internal/labels"
	"podium/internal/logging"
	"podium/internal/tasks"
	"podium/internal/textutil"
)

func newRelabelCommand(ctx *commandContext) *cobra.Command {
	var req labeler.RelabelRequest

	cmd := &cobra.Command{
		Use:   "relabel",
		Short: "Replace one labeled cell, selected by film",
		Long: "Relabel re-runs a single task against a single row and overwrites the\n" +
			"stored cell. With --override the given value is parsed and stored without\n" +
			"a model call. Downstream columns computed from the old value are reported\n" +
			"as stale but left in place.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
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
			engine, err := newEngine(cfg, store, registry, newGeminiClient(cfg), logger)
			if err != nil {
				return err
			}

			result, err := engine.Relabel(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Relabeled %s for %s (%d %s)\n", result.Task, result.Film, result.Key.Year, result.Key.Category)
			previous := "(none)"
			if result.HadPrevious {
				previous = result.Previous.String()
			}
			fmt.Fprintf(out, "  Column:   %s\n", result.Column)
			fmt.Fprintf(out, "  Previous: %s\n", previous)
			fmt.Fprintf(out, "  Value:    %s\n", result.Value.String())
			fmt.Fprintf(out, "  Source:   %s\n", textutil.Ternary(result.Overridden, "override", "model"))
			if len(result.Stale) > 0 {
				fmt.Fprintf(out, "Stale dependent columns: %s\n", strings.Join(result.Stale, ", "))
				fmt.Fprintln(out, "Relabel them too, or they will carry values computed from the old cell.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Film, "film", "", "Film title to match (case-insensitive substring)")
	cmd.Flags().StringVar(&req.Category, "category", "", "Category, for films that won more than once")
	cmd.Flags().StringVar(&req.Task, "task", "", "Task whose cell to replace")
	cmd.Flags().StringVar(&req.Note, "note", "", "Reviewer guidance appended to the prompt")
	cmd.Flags().StringVar(&req.Override, "override", "", "Store this value directly instead of calling the model")
	cmd.MarkFlagRequired("film")
	cmd.MarkFlagRequired("task")

	return cmd
}
