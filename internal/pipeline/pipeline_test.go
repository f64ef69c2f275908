package pipeline

import (
	"context"
	"slices"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/MrWong99/rxtract/internal/extract"
	"github.com/MrWong99/rxtract/internal/routing"
	"github.com/MrWong99/rxtract/internal/vocab"
	"github.com/MrWong99/rxtract/pkg/provider/llm"
	"github.com/MrWong99/rxtract/pkg/provider/llm/mock"
)

// longTranscript builds a transcript with enough distinct words to clear the
// primary-route word threshold. Sentences are varied so transcript cleanup
// does not collapse them.
func longTranscript() string {
	s := "Patient name is John Doe and he has fever with cough since three days. " +
		"The doctor examined the throat and found signs of bacterial infection there. "
	return strings.Repeat(s, 5)
}

const primaryJSON = `{
  "patient_name": "John Doe",
  "complaints": ["fever", "cough"],
  "diagnosis": ["throat infection"],
  "medicines": [
    {"name": "Amoxicillin tablet", "dose": "500 mg", "frequency": "twice a day", "duration": "5 days", "instruction": "after food"}
  ],
  "tests": [],
  "advice": ["drink warm water"]
}`

func newPipeline(t *testing.T, provider llm.Provider, opts ...Option) *Pipeline {
	t.Helper()
	return New(vocab.MustNew(), provider, opts...)
}

func TestExtract_CorruptedInput(t *testing.T) {
	p := newPipeline(t, nil)

	out := p.Extract(context.Background(), Input{
		Transcript: "uh the um",
		Confidence: 0.9,
	}, true)

	if out.Method != extract.MethodCorrupted {
		t.Errorf("method = %q, want %q", out.Method, extract.MethodCorrupted)
	}
	if out.Route != routing.RouteCorrupted {
		t.Errorf("route = %q, want %q", out.Route, routing.RouteCorrupted)
	}
	if out.Advisory == "" {
		t.Error("corrupted result should carry an advisory")
	}
	// Consumers that only read warnings must see the advisory too.
	if !slices.Contains(out.Warnings, out.Advisory) {
		t.Errorf("warnings %q should include the advisory %q", out.Warnings, out.Advisory)
	}
	if len(out.Record.Medicines) != 0 {
		t.Errorf("corrupted record should be empty, got %d medicines", len(out.Record.Medicines))
	}
}

func TestExtract_SpanCarriesRouteAndMethod(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(origTP) })

	p := newPipeline(t, nil)
	p.Extract(context.Background(), Input{Transcript: "uh the um", Confidence: 0.9}, true)

	spans := exp.GetSpans()
	if len(spans) == 0 {
		t.Fatal("no spans recorded")
	}
	span := spans[len(spans)-1]
	if span.Name != "pipeline.extract" {
		t.Fatalf("span name = %q, want %q", span.Name, "pipeline.extract")
	}
	want := map[attribute.Key]string{
		"rxtract.route":  string(routing.RouteCorrupted),
		"rxtract.method": string(extract.MethodCorrupted),
	}
	for _, kv := range span.Attributes {
		if v, ok := want[kv.Key]; ok && kv.Value.AsString() == v {
			delete(want, kv.Key)
		}
	}
	if len(want) != 0 {
		t.Errorf("span missing attributes %v, got %v", want, span.Attributes)
	}
}

func TestExtract_PrimaryPath(t *testing.T) {
	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: primaryJSON},
	}
	p := newPipeline(t, provider)

	out := p.Extract(context.Background(), Input{
		Transcript:         longTranscript(),
		Confidence:         0.9,
		Language:           "en",
		LanguageConfidence: 0.95,
	}, true)

	if out.Method != extract.MethodPrimary {
		t.Fatalf("method = %q, want %q", out.Method, extract.MethodPrimary)
	}
	if out.Route != routing.RoutePrimaryOnly {
		t.Errorf("route = %q, want %q", out.Route, routing.RoutePrimaryOnly)
	}
	if out.Record.PatientName != "John Doe" {
		t.Errorf("patient name = %q, want %q", out.Record.PatientName, "John Doe")
	}
	if len(out.Record.Medicines) != 1 {
		t.Fatalf("medicines = %d, want 1", len(out.Record.Medicines))
	}
	// "Amoxicillin tablet" loses its delivery format during normalization.
	if got := out.Record.Medicines[0].Name; got != "amoxicillin" {
		t.Errorf("medicine name = %q, want %q", got, "amoxicillin")
	}
	if out.QualityScore <= 0 || out.QualityScore > 1 {
		t.Errorf("quality score = %v, want within (0, 1]", out.QualityScore)
	}
	if out.Language != "en" {
		t.Errorf("language = %q, want %q", out.Language, "en")
	}
}

func TestExtract_PrimaryFailureFallsBackToRules(t *testing.T) {
	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "I cannot help with that."},
	}
	p := newPipeline(t, provider)

	out := p.Extract(context.Background(), Input{
		Transcript: longTranscript(),
		Confidence: 0.9,
	}, true)

	if out.Method != extract.MethodRules {
		t.Errorf("method = %q, want %q after primary failure", out.Method, extract.MethodRules)
	}
	// Retry happens once before giving up.
	if got := len(provider.CompleteCalls); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestExtract_NoProviderDowngradesRoute(t *testing.T) {
	p := newPipeline(t, nil)

	out := p.Extract(context.Background(), Input{
		Transcript: longTranscript(),
		Confidence: 0.9,
	}, true)

	if out.Route != routing.RouteFallbackOnly {
		t.Errorf("route = %q, want %q without a provider", out.Route, routing.RouteFallbackOnly)
	}
	if out.Method != extract.MethodRules {
		t.Errorf("method = %q, want %q", out.Method, extract.MethodRules)
	}
}

func TestExtract_DuplicateMedicinesCollapsed(t *testing.T) {
	dupJSON := `{
  "patient_name": "Jane",
  "complaints": [], "diagnosis": [], "tests": [], "advice": [],
  "medicines": [
    {"name": "paracetamol", "dose": "500 mg"},
    {"name": "Paracetamol tablet", "dose": "500 mg"}
  ]
}`
	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: dupJSON},
	}
	p := newPipeline(t, provider)

	out := p.Extract(context.Background(), Input{
		Transcript: longTranscript(),
		Confidence: 0.9,
	}, true)

	if len(out.Record.Medicines) != 1 {
		t.Fatalf("medicines = %d, want 1 after dedup", len(out.Record.Medicines))
	}
	if out.Record.Medicines[0].Name != "paracetamol" {
		t.Errorf("medicine name = %q, want %q", out.Record.Medicines[0].Name, "paracetamol")
	}
}

func TestExtract_DoseNormalized(t *testing.T) {
	pillJSON := `{
  "patient_name": "", "complaints": [], "diagnosis": [], "tests": [], "advice": [],
  "medicines": [{"name": "ibuprofen", "dose": "2 pills"}]
}`
	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: pillJSON},
	}
	p := newPipeline(t, provider)

	out := p.Extract(context.Background(), Input{
		Transcript: longTranscript(),
		Confidence: 0.9,
	}, true)

	if len(out.Record.Medicines) != 1 {
		t.Fatalf("medicines = %d, want 1", len(out.Record.Medicines))
	}
	if got := out.Record.Medicines[0].Dose; got != "2 mg" {
		t.Errorf("dose = %q, want %q", got, "2 mg")
	}
}

func TestExtract_ValidationWarningsAttached(t *testing.T) {
	p := newPipeline(t, nil)

	// Mid-length transcript with no extractable prescription content.
	out := p.Extract(context.Background(), Input{
		Transcript: strings.Repeat("the quick brown fox jumps over a lazy dog today again ", 3),
		Confidence: 0.2,
	}, true)

	if len(out.Warnings) == 0 {
		t.Error("expected validation warnings for an empty extraction")
	}
}

func TestSetThresholds(t *testing.T) {
	p := newPipeline(t, nil)

	in := Input{Transcript: "patient has mild fever and needs rest for two days", Confidence: 0.9}

	out := p.Extract(context.Background(), in, true)
	if out.Route != routing.RouteFallbackOnly {
		t.Fatalf("route = %q, want %q before threshold change", out.Route, routing.RouteFallbackOnly)
	}

	// Raising the corrupted cutoff above the word count reroutes the same
	// input to the corrupted path.
	th := routing.DefaultThresholds()
	th.CorruptedMaxWords = 50
	p.SetThresholds(th)

	out = p.Extract(context.Background(), in, true)
	if out.Route != routing.RouteCorrupted {
		t.Errorf("route = %q, want %q after threshold change", out.Route, routing.RouteCorrupted)
	}
}

func TestExtract_PreferPrimaryFalseForcesRules(t *testing.T) {
	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: primaryJSON},
	}
	p := newPipeline(t, provider)

	out := p.Extract(context.Background(), Input{
		Transcript: longTranscript(),
		Confidence: 0.9,
	}, false)

	if out.Route != routing.RouteFallbackOnly {
		t.Errorf("route = %q, want %q when primary is disabled", out.Route, routing.RouteFallbackOnly)
	}
	if got := len(provider.CompleteCalls); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}
