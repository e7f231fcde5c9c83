package config

import "errors"

// Validate ensures the configuration is usable. The Gemini API key is
// deliberately not required here: ingest, export, and status work without
// one, and the labeler rejects a missing key at construction.
func (c *Config) Validate() error {
	if err := c.validateLabeling(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLabeling() error {
	if c.Labeling.SampleRows < 0 {
		return errors.New("labeling.sample_rows must be >= 0")
	}
	if c.Labeling.SimilarityWarnThreshold < 0 || c.Labeling.SimilarityWarnThreshold > 1 {
		return errors.New("labeling.similarity_warn_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.MinYear <= 0 {
		return errors.New("ingest.min_year must be positive")
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.MinSnippetGrade < 1 || c.Export.MinSnippetGrade > 5 {
		return errors.New("export.min_snippet_grade must be between 1 and 5")
	}
	if c.Export.FilmOptions < 2 {
		return errors.New("export.film_options must be at least 2")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceSeconds <= 0 {
		return errors.New("watch.debounce_seconds must be positive")
	}
	return nil
}
