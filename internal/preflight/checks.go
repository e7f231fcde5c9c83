package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"podium/internal/config"
	"podium/internal/labels"
	"podium/internal/services/gemini"
	"podium/internal/speech"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRowStore verifies the cleaned row store exists and parses.
func CheckRowStore(path string) Result {
	const name = "Row store"

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s missing (run podium ingest first)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	catalog, err := speech.LoadCatalog(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreadable (%v)", err)}
	}
	detail := fmt.Sprintf("%d speeches", catalog.Len())
	if skipped := catalog.Skipped(); skipped > 0 {
		detail = fmt.Sprintf("%s (%d rows skipped)", detail, skipped)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckLabelStore verifies an existing label database opens with the
// current schema. A store that has never been created passes; the first
// labeling run creates it.
func CheckLabelStore(path string) Result {
	const name = "Label store"

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: "not created yet (first run creates it)"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	store, err := labels.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unusable (%v)", err)}
	}
	defer store.Close()

	counts, err := store.ColumnCounts(context.Background())
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreadable (%v)", err)}
	}
	cells := 0
	for _, count := range counts {
		cells += count
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d label cells across %d columns", cells, len(counts))}
}

// CheckGemini verifies that the Gemini API is reachable and the key is
// valid. It uses a 30-second timeout and a single attempt (no retries).
func CheckGemini(ctx context.Context, cfg *config.Config) Result {
	const name = "Gemini API"

	if cfg.Gemini.APIKey == "" {
		return Result{Name: name, Detail: "API key missing (set gemini.api_key or GEMINI_API_KEY)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := gemini.NewClient(gemini.Config{
		APIKey:         cfg.Gemini.APIKey,
		BaseURL:        cfg.Gemini.BaseURL,
		Model:          cfg.Gemini.Model,
		TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
	}, gemini.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeGeminiError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (model %s)", client.Model())}
}

// summarizeGeminiError produces a human-readable summary for health
// check failures.
func summarizeGeminiError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
