// Package pipeline runs the full transcript-to-prescription flow: transcript
// cleanup, quality analysis, route selection, the extraction cascade, drug
// and dose normalization, and advisory validation. One [Pipeline.Extract] call
// handles one consultation end to end and always produces a usable result.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/MrWong99/rxtract/internal/extract"
	"github.com/MrWong99/rxtract/internal/normalize"
	"github.com/MrWong99/rxtract/internal/observe"
	"github.com/MrWong99/rxtract/internal/routing"
	"github.com/MrWong99/rxtract/internal/validate"
	"github.com/MrWong99/rxtract/internal/vocab"
	"github.com/MrWong99/rxtract/pkg/provider/llm"
)

// Input is one transcribed consultation to process.
type Input struct {
	// Transcript is the raw speech-to-text output.
	Transcript string

	// Confidence is the upstream transcription confidence in [0, 1].
	Confidence float64

	// Language is the detected language code (e.g., "en", "ta").
	Language string

	// LanguageConfidence is the language-detection confidence in [0, 1].
	LanguageConfidence float64
}

// Prescription is the finished output for one consultation: the normalized
// record plus routing metadata and validation findings.
type Prescription struct {
	Record extract.Record `json:"prescription"`

	// Method is the extraction path that produced Record.
	Method extract.Method `json:"extraction_method"`

	// Route is the strategy the quality analysis selected.
	Route routing.Route `json:"route"`

	// QualityScore is the overall transcript quality in [0, 1].
	QualityScore float64 `json:"quality_score"`

	Language string `json:"language,omitempty"`

	// Warnings are advisory findings: validation output plus, for unusable
	// input, the user-facing advisory. They never block the result.
	Warnings []string `json:"warnings,omitempty"`

	// Advisory carries a user-facing note for unusable input.
	Advisory string `json:"advisory,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Pipeline is the orchestrator. Safe for concurrent use; route thresholds
// can be swapped at runtime via [Pipeline.SetThresholds].
type Pipeline struct {
	analyzer   *routing.Analyzer
	cascade    *extract.Cascade
	normalizer *normalize.Normalizer
	validator  *validate.Validator
	metrics      *observe.Metrics
	logger       *slog.Logger
	timeout      time.Duration
	maxTokens    int
	hasPrimary   bool
	providerName string

	mu       sync.RWMutex
	selector *routing.Selector
}

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithThresholds overrides the default route-selection thresholds.
func WithThresholds(t routing.Thresholds) Option {
	return func(p *Pipeline) {
		p.selector = routing.NewSelector(t)
	}
}

// WithTimeout bounds one full extraction, including model retries.
// The default is 60 seconds.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger overrides the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics overrides the metrics sink. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithMaxTokens caps the completion size requested from the model.
func WithMaxTokens(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithProviderName labels provider-error metrics with the backend name.
func WithProviderName(name string) Option {
	return func(p *Pipeline) {
		p.providerName = name
	}
}

// New assembles a pipeline over the given vocabulary and model provider.
// A nil provider is allowed: every route that would call the model is then
// downgraded to the deterministic rules path.
func New(voc *vocab.Vocabulary, provider llm.Provider, opts ...Option) *Pipeline {
	p := &Pipeline{
		analyzer: routing.NewAnalyzer(),
		selector: routing.NewSelector(routing.DefaultThresholds()),
		logger:   slog.Default(),
		timeout:  60 * time.Second,
	}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}

	p.normalizer = normalize.New(voc, normalize.WithLogger(p.logger))
	p.validator = validate.New(voc, validate.WithLogger(p.logger))

	rules := extract.NewRules(voc, p.normalizer)

	var primary *extract.PrimaryExtractor
	if provider != nil {
		popts := []extract.PrimaryOption{
			extract.WithLogger(p.logger),
			extract.WithMetrics(p.metrics),
		}
		if p.maxTokens > 0 {
			popts = append(popts, extract.WithMaxTokens(p.maxTokens))
		}
		primary = extract.NewPrimary(provider, popts...)
		p.hasPrimary = true
	}
	p.cascade = extract.NewCascade(primary, rules, p.logger)

	return p
}

// SetThresholds swaps the route-selection thresholds at runtime. In-flight
// extractions keep the thresholds they started with.
func (p *Pipeline) SetThresholds(t routing.Thresholds) {
	p.mu.Lock()
	p.selector = routing.NewSelector(t)
	p.mu.Unlock()
}

// Extract processes one consultation. It never returns an error: unusable
// input yields an empty record with an advisory, and model failures degrade
// to the rules path inside the cascade. preferPrimary=false forces the
// deterministic rules path regardless of transcript quality.
func (p *Pipeline) Extract(ctx context.Context, in Input, preferPrimary bool) *Prescription {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "pipeline.extract")
	defer span.End()

	cleaned, modified := p.normalizer.CleanTranscript(in.Transcript)
	if modified {
		p.logger.Debug("transcript cleaned", "chars", len(cleaned))
	}

	metrics := p.analyzer.Analyze(cleaned, in.Confidence, in.Language, in.LanguageConfidence)

	p.mu.RLock()
	decision := p.selector.Select(metrics)
	p.mu.RUnlock()

	route := decision.Route
	if route == routing.RoutePrimaryOnly || route == routing.RouteEnsemble {
		switch {
		case !p.hasPrimary:
			p.logger.Debug("no model provider configured, downgrading route",
				"selected", string(route))
			route = routing.RouteFallbackOnly
		case !preferPrimary:
			route = routing.RouteFallbackOnly
		}
	}
	p.metrics.RecordRoute(ctx, string(route))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := p.cascade.Run(ctx, cleaned, route)
	span.SetAttributes(
		attribute.String("rxtract.route", string(route)),
		attribute.String("rxtract.method", string(res.Method)),
	)
	p.recordCascadeMetrics(ctx, res)

	p.normalizeRecord(&res.Record)
	report := p.validator.Validate(&res.Record)
	if n := len(report.Warnings); n > 0 {
		p.metrics.ValidationWarnings.Add(ctx, int64(n))
	}

	// The advisory must reach warning consumers too, not only the dedicated
	// field.
	warnings := report.Warnings
	if res.Advisory != "" {
		warnings = append(warnings, res.Advisory)
	}

	p.metrics.ExtractionDuration.Record(ctx, time.Since(start).Seconds())

	p.logger.Info("extraction finished",
		"route", string(route),
		"method", string(res.Method),
		"quality", decision.QualityScore,
		"medicines", len(res.Record.Medicines),
		"warnings", len(warnings),
		"duration", time.Since(start))

	return &Prescription{
		Record:       res.Record,
		Method:       res.Method,
		Route:        route,
		QualityScore: decision.QualityScore,
		Language:     decision.Language,
		Warnings:     warnings,
		Advisory:     res.Advisory,
		CreatedAt:    time.Now().UTC(),
	}
}

func (p *Pipeline) recordCascadeMetrics(ctx context.Context, res *extract.Result) {
	if res.FellBack {
		p.metrics.RecordFallback(ctx, res.FallbackKind)
		if p.providerName != "" {
			p.metrics.RecordProviderError(ctx, p.providerName, res.FallbackKind)
		}
	}
	if res.Strategy != "" && res.Strategy != extract.StrategyDirect {
		p.metrics.RecordParseRepair(ctx, string(res.Strategy))
	}
}

// normalizeRecord canonicalizes the extracted record in place: drug names to
// their generic vocabulary form, doses to "amount unit", the patient name
// stripped of stutter duplicates, and repeated drugs collapsed to the first
// occurrence.
func (p *Pipeline) normalizeRecord(rec *extract.Record) {
	rec.PatientName = p.normalizer.NormalizePatientName(rec.PatientName)

	seen := make(map[string]struct{}, len(rec.Medicines))
	kept := rec.Medicines[:0]
	for _, med := range rec.Medicines {
		med.Name = p.normalizer.NormalizeName(med.Name)
		med.Dose = p.normalizer.NormalizeDose(med.Dose)

		key := strings.ToLower(med.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, med)
	}
	rec.Medicines = kept
}
