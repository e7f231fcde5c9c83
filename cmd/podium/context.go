package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"podium/internal/config"
	"podium/internal/services/gemini"
)

// commandContext resolves configuration once per invocation and shares the
// result across subcommands.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// newGeminiClient maps the resolved connection settings onto the API client.
func newGeminiClient(cfg *config.Config) *gemini.Client {
	settings := cfg.GetGemini()
	return gemini.NewClient(gemini.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		TimeoutSeconds: settings.TimeoutSeconds,
	}, gemini.WithRetryMaxAttempts(settings.RetryMaxAttempts))
}
