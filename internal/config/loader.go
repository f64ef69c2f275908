package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// validProviderNames lists the language-model backends the service can
// construct. Must stay in sync with the provider factory.
var validProviderNames = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"gemini":    true,
	"ollama":    true,
	"deepseek":  true,
	"mistral":   true,
	"groq":      true,
	"llamacpp":  true,
	"llamafile": true,
}

// Load reads and parses the YAML configuration file at path, then validates
// it. Unknown YAML keys are rejected so typos surface at startup instead of
// silently falling back to defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader parses YAML configuration from r and validates it.
func LoadFromReader(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills zero-valued fields that have a sensible default.
func (c *Config) applyDefaults() {
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
}

// Validate checks the configuration for errors. All problems are collected
// and joined so the operator sees every mistake at once. Suspicious but
// workable settings are logged as warnings instead.
func (c *Config) Validate() error {
	var errs []error

	if !c.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level: unknown level %q", c.Server.LogLevel))
	}

	if c.LLM.Name == "" {
		slog.Warn("no llm provider configured, extraction will use the rules path only")
	} else if !validProviderNames[c.LLM.Name] {
		errs = append(errs, fmt.Errorf("llm.name: unknown provider %q", c.LLM.Name))
	}
	if c.LLM.Name != "" && c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model: required when a provider is configured"))
	}

	errs = append(errs, c.Routing.validate()...)

	if c.Extraction.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("extraction.timeout_seconds: must not be negative, got %d", c.Extraction.TimeoutSeconds))
	}
	if c.Extraction.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("extraction.max_tokens: must not be negative, got %d", c.Extraction.MaxTokens))
	}

	if c.Store.PostgresDSN == "" {
		slog.Warn("no postgres dsn configured, prescriptions will not be persisted")
	}

	return errors.Join(errs...)
}

func (r RoutingConfig) validate() []error {
	var errs []error
	if r.CorruptedMaxWords < 0 {
		errs = append(errs, fmt.Errorf("routing.corrupted_max_words: must not be negative, got %d", r.CorruptedMaxWords))
	}
	if r.PrimaryMinWords < 0 {
		errs = append(errs, fmt.Errorf("routing.primary_min_words: must not be negative, got %d", r.PrimaryMinWords))
	}
	if r.EnsembleMinWords < 0 {
		errs = append(errs, fmt.Errorf("routing.ensemble_min_words: must not be negative, got %d", r.EnsembleMinWords))
	}
	if r.PrimaryMinConfidence < 0 || r.PrimaryMinConfidence > 1 {
		errs = append(errs, fmt.Errorf("routing.primary_min_confidence: must be within [0, 1], got %v", r.PrimaryMinConfidence))
	}
	if r.EnsembleMinConfidence < 0 || r.EnsembleMinConfidence > 1 {
		errs = append(errs, fmt.Errorf("routing.ensemble_min_confidence: must be within [0, 1], got %v", r.EnsembleMinConfidence))
	}

	t := r.Thresholds()
	if t.EnsembleMinWords > t.PrimaryMinWords {
		slog.Warn("routing.ensemble_min_words exceeds routing.primary_min_words, ensemble route becomes unreachable",
			"ensemble_min_words", t.EnsembleMinWords,
			"primary_min_words", t.PrimaryMinWords)
	}
	return errs
}
