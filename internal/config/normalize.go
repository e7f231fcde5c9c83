package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGemini()
	if err := c.normalizeIngestDefaults(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.SpeechesCSV) == "" {
		c.Paths.SpeechesCSV = filepath.Join(c.Paths.DataDir, "cleaned_speeches.csv")
	}
	if c.Paths.SpeechesCSV, err = expandPath(c.Paths.SpeechesCSV); err != nil {
		return fmt.Errorf("paths.speeches_csv: %w", err)
	}

	if strings.TrimSpace(c.Paths.LabelsDB) == "" {
		c.Paths.LabelsDB = filepath.Join(c.Paths.DataDir, "labels.db")
	}
	if c.Paths.LabelsDB, err = expandPath(c.Paths.LabelsDB); err != nil {
		return fmt.Errorf("paths.labels_db: %w", err)
	}

	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = filepath.Join(c.Paths.DataDir, "export")
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
	if c.Gemini.RetryMaxAttempts <= 0 {
		c.Gemini.RetryMaxAttempts = defaultRetryMaxAttempts
	}
	if c.Gemini.RequestIntervalMS < 0 {
		c.Gemini.RequestIntervalMS = defaultRequestIntervalMS
	}
}

func (c *Config) normalizeIngestDefaults() error {
	var err error
	rawDir := filepath.Join(c.Paths.DataDir, "raw")
	if strings.TrimSpace(c.Ingest.KaggleCSV) == "" {
		c.Ingest.KaggleCSV = filepath.Join(rawDir, "kaggle_speeches.csv")
	} else if c.Ingest.KaggleCSV, err = expandPath(c.Ingest.KaggleCSV); err != nil {
		return fmt.Errorf("ingest.kaggle_csv: %w", err)
	}
	if strings.TrimSpace(c.Ingest.AcademyCSV) == "" {
		c.Ingest.AcademyCSV = filepath.Join(rawDir, "academy_scraped.csv")
	} else if c.Ingest.AcademyCSV, err = expandPath(c.Ingest.AcademyCSV); err != nil {
		return fmt.Errorf("ingest.academy_csv: %w", err)
	}
	if c.Ingest.MinYear == 0 {
		c.Ingest.MinYear = defaultMinYear
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "":
		c.Logging.Format = defaultLogFormat
	case "auto", "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
