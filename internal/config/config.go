package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
	SpeechesCSV string `toml:"speeches_csv"`
	LabelsDB    string `toml:"labels_db"`
	ExportDir   string `toml:"export_dir"`
}

// Gemini contains connection settings for the generative language API.
type Gemini struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	Model             string `toml:"model"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RetryMaxAttempts  int    `toml:"retry_max_attempts"`
	RequestIntervalMS int    `toml:"request_interval_ms"`
}

// Labeling contains settings for the incremental labeling engine.
type Labeling struct {
	// SampleRows labels only the first N eligible rows when positive.
	// Useful for cheap trial runs against a new prompt.
	SampleRows int `toml:"sample_rows"`
	// SimilarityWarnThreshold is the cosine similarity below which the
	// redaction parser warns that unmarked text drifted from the source.
	SimilarityWarnThreshold float64 `toml:"similarity_warn_threshold"`
}

// Ingest contains locations of the raw speech sources and cleaning bounds.
type Ingest struct {
	KaggleCSV  string `toml:"kaggle_csv"`
	AcademyCSV string `toml:"academy_csv"`
	MinYear    int    `toml:"min_year"`
}

// Export contains settings for the game payload export.
type Export struct {
	MinSnippetGrade int `toml:"min_snippet_grade"`
	FilmOptions     int `toml:"film_options"`
}

// Watch contains settings for row-store watch mode.
type Watch struct {
	DebounceSeconds int `toml:"debounce_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Podium.
//
// Configuration sections by subsystem:
//   - Paths: data directory, row store, label database, export directory
//   - Gemini: generative language API connection settings
//   - Labeling: engine sampling and advisory-check thresholds
//   - Ingest: raw CSV locations and the year cutoff
//   - Export: game payload filtering and option counts
//   - Watch: row-store watch mode debounce
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Gemini   Gemini   `toml:"gemini"`
	Labeling Labeling `toml:"labeling"`
	Ingest   Ingest   `toml:"ingest"`
	Export   Export   `toml:"export"`
	Watch    Watch    `toml:"watch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/podium/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("podium.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		c.Paths.LogDir,
		c.Paths.ExportDir,
		filepath.Dir(c.Paths.LabelsDB),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// GeminiConfig contains the trimmed connection settings the client consumes.
type GeminiConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	TimeoutSeconds    int
	RetryMaxAttempts  int
	RequestIntervalMS int
}

// GetGemini returns the generative language API connection settings.
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:            strings.TrimSpace(c.Gemini.APIKey),
		BaseURL:           strings.TrimSpace(c.Gemini.BaseURL),
		Model:             strings.TrimSpace(c.Gemini.Model),
		TimeoutSeconds:    c.Gemini.TimeoutSeconds,
		RetryMaxAttempts:  c.Gemini.RetryMaxAttempts,
		RequestIntervalMS: c.Gemini.RequestIntervalMS,
	}
}

// LockPath returns the advisory lock file guarding single-run execution.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "podium.lock")
}
