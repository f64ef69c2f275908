package config_test

import (
	"testing"

	"github.com/MrWong99/rxtract/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server:  config.ServerConfig{LogLevel: config.LogInfo},
		Routing: config.RoutingConfig{PrimaryMinWords: 100},
	}
	d := config.Diff(cfg, cfg)
	if !d.Empty() {
		t.Errorf("expected empty diff for identical configs, got %+v", d)
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Server: config.ServerConfig{LogLevel: config.LogInfo}}
	new := &config.Config{Server: config.ServerConfig{LogLevel: config.LogDebug}}

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("expected NewLogLevel=debug, got %q", d.NewLogLevel)
	}
	if d.RestartRequired {
		t.Error("log level change should not require restart")
	}
}

func TestDiff_RoutingChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Routing: config.RoutingConfig{PrimaryMinWords: 100}}
	new := &config.Config{Routing: config.RoutingConfig{PrimaryMinWords: 80}}

	d := config.Diff(old, new)
	if !d.RoutingChanged {
		t.Error("expected RoutingChanged=true")
	}
	if d.RestartRequired {
		t.Error("routing change should not require restart")
	}
}

func TestDiff_ExtractionChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Extraction: config.ExtractionConfig{TimeoutSeconds: 30}}
	new := &config.Config{Extraction: config.ExtractionConfig{TimeoutSeconds: 60}}

	d := config.Diff(old, new)
	if !d.ExtractionChanged {
		t.Error("expected ExtractionChanged=true")
	}
}

func TestDiff_ProviderChangeRequiresRestart(t *testing.T) {
	t.Parallel()
	old := &config.Config{LLM: config.ProviderEntry{Name: "openai", Model: "gpt-4o-mini"}}
	new := &config.Config{LLM: config.ProviderEntry{Name: "groq", Model: "llama-3.1-8b-instant"}}

	d := config.Diff(old, new)
	if !d.RestartRequired {
		t.Error("expected RestartRequired=true for provider change")
	}
}

func TestDiff_StoreChangeRequiresRestart(t *testing.T) {
	t.Parallel()
	old := &config.Config{Store: config.StoreConfig{PostgresDSN: "postgres://a"}}
	new := &config.Config{Store: config.StoreConfig{PostgresDSN: "postgres://b"}}

	d := config.Diff(old, new)
	if !d.RestartRequired {
		t.Error("expected RestartRequired=true for store change")
	}
}

func TestDiff_MultipleChanges(t *testing.T) {
	t.Parallel()
	old := &config.Config{
		Server:  config.ServerConfig{LogLevel: config.LogInfo},
		Routing: config.RoutingConfig{EnsembleMinWords: 50},
	}
	new := &config.Config{
		Server:  config.ServerConfig{LogLevel: config.LogWarn},
		Routing: config.RoutingConfig{EnsembleMinWords: 40},
	}

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if !d.RoutingChanged {
		t.Error("expected RoutingChanged=true")
	}
	if d.Empty() {
		t.Error("diff should not be empty")
	}
}
