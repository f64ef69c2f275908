// Command rxtract extracts structured prescriptions from medical
// consultation transcripts. It reads one or more transcript files (or
// stdin), runs each through the extraction pipeline, prints the resulting
// prescriptions as JSON, and optionally persists them to PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/rxtract/internal/config"
	"github.com/MrWong99/rxtract/internal/observe"
	"github.com/MrWong99/rxtract/internal/pipeline"
	"github.com/MrWong99/rxtract/internal/store"
	"github.com/MrWong99/rxtract/internal/vocab"
	"github.com/MrWong99/rxtract/pkg/provider/llm"
	"github.com/MrWong99/rxtract/pkg/provider/llm/anyllm"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	confidence := flag.Float64("confidence", 1.0, "transcription confidence in [0, 1]")
	language := flag.String("language", "en", "detected language code")
	langConfidence := flag.Float64("language-confidence", 1.0, "language-detection confidence in [0, 1]")
	rulesOnly := flag.Bool("rules-only", false, "skip the model path and use deterministic extraction only")
	watch := flag.Bool("watch-config", false, "reload routing thresholds when the config file changes")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "rxtract: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "rxtract: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.Slog(),
	}))
	slog.SetDefault(logger)

	slog.Info("rxtract starting",
		"version", version,
		"config", *configPath,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "rxtract",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(cfg.Server.MetricsAddr)
	}

	// ── Model provider ────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	var provider llm.Provider
	if cfg.LLM.Name != "" {
		provider, err = reg.CreateLLM(cfg.LLM)
		if err != nil {
			slog.Error("failed to create model provider", "name", cfg.LLM.Name, "err", err)
			return 1
		}
		slog.Info("provider created", "name", cfg.LLM.Name, "model", cfg.LLM.Model)
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	pipe := pipeline.New(vocab.MustNew(), provider,
		pipeline.WithThresholds(cfg.Routing.Thresholds()),
		pipeline.WithTimeout(cfg.Extraction.Timeout()),
		pipeline.WithMaxTokens(cfg.Extraction.MaxTokens),
		pipeline.WithLogger(logger),
		pipeline.WithProviderName(cfg.LLM.Name),
	)

	if *watch {
		watcher, err := config.NewWatcher(*configPath, func(new *config.Config, diff config.ConfigDiff) {
			if diff.RoutingChanged {
				pipe.SetThresholds(new.Routing.Thresholds())
				slog.Info("routing thresholds reloaded")
			}
			if diff.RestartRequired {
				slog.Warn("provider or store settings changed, restart required to apply")
			}
		})
		if err != nil {
			slog.Error("failed to start config watcher", "err", err)
			return 1
		}
		defer watcher.Stop()
	}

	// ── Store (optional) ──────────────────────────────────────────────────────
	var st store.Store
	if cfg.Store.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to postgres", "err", err)
			return 1
		}
		defer pool.Close()

		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("failed to migrate schema", "err", err)
			return 1
		}
		st = pg
		slog.Info("prescription store ready")
	}

	// ── Process transcripts ───────────────────────────────────────────────────
	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	in := pipeline.Input{
		Confidence:         *confidence,
		Language:           *language,
		LanguageConfidence: *langConfidence,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	exit := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			slog.Info("interrupted, stopping")
			break
		}

		transcript, err := readTranscript(path)
		if err != nil {
			slog.Error("failed to read transcript", "path", path, "err", err)
			exit = 1
			continue
		}

		in.Transcript = transcript
		rx := pipe.Extract(ctx, in, !*rulesOnly)

		if st != nil {
			id, err := st.Save(ctx, rx)
			if err != nil {
				slog.Error("failed to persist prescription", "path", path, "err", err)
				exit = 1
			} else {
				slog.Info("prescription persisted", "path", path, "id", id)
			}
		}

		if err := enc.Encode(rx); err != nil {
			slog.Error("failed to encode output", "err", err)
			return 1
		}
	}

	return exit
}

// readTranscript reads a transcript from the given path, or stdin for "-".
func readTranscript(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// serveMetrics exposes the Prometheus exporter bridge on addr.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	slog.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Warn("metrics server stopped", "err", err)
	}
}

// registerBuiltinProviders wires the supported model backends into reg.
// Every remote backend shares the same pattern: optional APIKey plus
// optional BaseURL.
func registerBuiltinProviders(reg *config.Registry) {
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})
}
