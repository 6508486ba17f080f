// Package config loads scribe configuration from scribe.yaml plus
// environment variables. Secrets (API keys, tokens) come from the
// environment only; the YAML file holds tunables and the user profile.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelsConfig holds the model names used by the two pipeline stages.
// Analysis is an ordered ladder: the first entry is the primary model,
// the rest are fallbacks tried in order.
type ModelsConfig struct {
	Extraction string   `yaml:"extraction"`
	Analysis   []string `yaml:"analysis"`
}

// DiscordConfig configures the optional manifest notifier.
type DiscordConfig struct {
	ChannelID string `yaml:"channel_id"`
}

// OllamaConfig configures the embedding indexer handoff.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Config is the process-wide configuration for the scribe pipeline.
type Config struct {
	DBPath   string `yaml:"db_path"`
	InboxDir string `yaml:"inbox_dir"`

	// UserProfile is the fixed paragraph describing the speaker,
	// injected into the Stage-2 prompt.
	UserProfile string `yaml:"user_profile"`

	Models ModelsConfig `yaml:"models"`

	// ContextBudgetChars bounds the serialized Stage-1 context package.
	ContextBudgetChars int `yaml:"context_budget_chars"`
	// MaxTranscriptChars bounds the transcript embedded in the Stage-2
	// prompt; longer transcripts are middle-truncated.
	MaxTranscriptChars int `yaml:"max_transcript_chars"`

	Discord DiscordConfig `yaml:"discord"`
	Ollama  OllamaConfig  `yaml:"ollama"`

	// Filled from the environment, never from YAML.
	AnthropicAPIKey string `yaml:"-"`
	DiscordToken    string `yaml:"-"`
}

// Default returns a config with all tunables at their shipped defaults.
func Default() *Config {
	return &Config{
		DBPath:   "state/scribe.db",
		InboxDir: "inbox",
		Models: ModelsConfig{
			Extraction: "claude-haiku-4-5",
			Analysis:   []string{"claude-sonnet-4-5", "claude-haiku-4-5"},
		},
		ContextBudgetChars: 100_000,
		MaxTranscriptChars: 150_000,
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "nomic-embed-text",
		},
	}
}

// Load reads the YAML file at path (if it exists) over the defaults,
// then pulls secrets from the environment. A missing file is not an
// error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")

	if len(cfg.Models.Analysis) == 0 {
		return nil, fmt.Errorf("config: models.analysis must list at least one model")
	}

	return cfg, nil
}
