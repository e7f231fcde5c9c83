package preflight

import (
	"context"

	"podium/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. The
// Gemini check goes last so the local failures an operator can fix
// without a network round trip surface first.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Export directory", cfg.Paths.ExportDir),
		CheckRowStore(cfg.Paths.SpeechesCSV),
		CheckLabelStore(cfg.Paths.LabelsDB),
	}
	results = append(results, CheckGemini(ctx, cfg))
	return results
}

// Ready reports whether every result passed.
func Ready(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return len(results) > 0
}
