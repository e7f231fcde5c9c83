package testsupport

import (
	"path/filepath"
	"testing"

	"podium/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ExportDir = filepath.Join(base, "export")
	cfg.Paths.SpeechesCSV = filepath.Join(base, "data", "cleaned_speeches.csv")
	cfg.Paths.LabelsDB = filepath.Join(base, "data", "labels.db")
	cfg.Ingest.KaggleCSV = filepath.Join(base, "raw", "kaggle_speeches.csv")
	cfg.Ingest.AcademyCSV = filepath.Join(base, "raw", "academy_scraped.csv")
	cfg.Gemini.APIKey = "test"
	cfg.Gemini.RequestIntervalMS = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithGeminiKey sets the Gemini API key on the test config.
func WithGeminiKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Gemini.APIKey = key
	}
}

// WithSampleRows caps the number of rows labeled per task.
func WithSampleRows(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Labeling.SampleRows = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
