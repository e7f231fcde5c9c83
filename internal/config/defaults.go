package config

const (
	defaultDataDir = "~/.local/share/podium/data"
	defaultLogDir  = "~/.local/share/podium/logs"

	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel          = "gemini-2.0-flash"
	defaultGeminiTimeoutSeconds = 120
	defaultRetryMaxAttempts     = 5
	defaultRequestIntervalMS    = 500

	defaultSimilarityWarnThreshold = 0.90

	// First ceremony year with reliable speech transcripts in both sources.
	defaultMinYear = 1993

	defaultMinSnippetGrade = 3
	defaultFilmOptions     = 6

	defaultWatchDebounceSeconds = 2

	defaultLogFormat = "auto"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Gemini: Gemini{
			BaseURL:           defaultGeminiBaseURL,
			Model:             defaultGeminiModel,
			TimeoutSeconds:    defaultGeminiTimeoutSeconds,
			RetryMaxAttempts:  defaultRetryMaxAttempts,
			RequestIntervalMS: defaultRequestIntervalMS,
		},
		Labeling: Labeling{
			SimilarityWarnThreshold: defaultSimilarityWarnThreshold,
		},
		Ingest: Ingest{
			MinYear: defaultMinYear,
		},
		Export: Export{
			MinSnippetGrade: defaultMinSnippetGrade,
			FilmOptions:     defaultFilmOptions,
		},
		Watch: Watch{
			DebounceSeconds: defaultWatchDebounceSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
