package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrWong99/rxtract/internal/observe"
	"github.com/MrWong99/rxtract/pkg/provider/llm"
)

// extractionPrompt instructs the model to emit the prescription record as a
// single strict JSON object. The consultation text is substituted for %s.
const extractionPrompt = `You are a medical data extraction specialist. Extract prescription data from the following medical consultation in ANY LANGUAGE.

CRITICAL JSON FORMAT REQUIREMENTS:
- You MUST return STRICTLY VALID JSON ONLY
- Do NOT include markdown, code blocks, or explanations
- Do NOT include comments
- Do NOT use trailing commas
- Ensure ALL strings are properly closed (no unterminated strings)
- Output must begin with { and end with }
- Return compact JSON only (no extra whitespace or newlines inside JSON)
- Keep advice concise (short, actionable strings max 100 chars)
- All medicine names, diagnoses, and complaints MUST be in ENGLISH ONLY

MULTILINGUAL EXTRACTION RULES:
- ENGLISH: extract directly. Diagnoses like viral pharyngitis, bacterial infection, sinusitis, asthma.
- TAMIL/THANGLISH (Tamil words in English letters): 'noi' = disease, 'marunthu' = medicine, 'vali' = pain, 'kaichal' = fever, 'daily X murai' = X times a day, 'food apram' = after food, 'iravu' = at night, 'oru tablet' = 1 tablet, 'rendu tablet' = 2 tablets.
- ARABIC: 'marad' = disease, 'dawa' = medicine, 'alam' = pain, 'humma' = fever, 'marat fi alyawm' = times a day, 'ayyam' = days, 'baada alakl' = after food, 'aspireen' = aspirin.

IMPORTANT EXTRACTION RULES:
- ALWAYS translate medicine names, diagnoses, and complaints to ENGLISH EQUIVALENTS
- For ambiguous terms, use medical context to determine meaning
- If text is very unclear, return null rather than guessing
- Recognize common ASR artifacts: 'inflection' means 'infection', 'paragenesis' means 'pharyngitis', 'antibiotic risk' means 'antibiotics'
- Patient names should be extracted as given, but all clinical data MUST be ENGLISH
- Patient name: extract ONCE, no duplicates
- Capture ALL medicines mentioned: tablets, sprays, lozenges, and supplements
- dose: include units (mg, ml, mcg, gm, iu, tablet, capsule, sprays, lozenge)
- frequency: times per day (e.g., "once a day", "2 times a day", "every 6-8 hours")
- duration: days/weeks (e.g., "5 days") - capture if mentioned per medicine
- instruction: timing/method ("after food", "at night", "topical", "as needed")
- Tests: capture ALL lab tests/investigations mentioned (CBC, CRP, X-ray PNS, nasal swab, any blood test, imaging, or culture)
- Advice: patient guidance strings in English

Return JSON with these exact keys (NO OTHER TEXT, NO EXPLANATIONS):
{
  "patient_name": "string or null",
  "age": null,
  "complaints": ["fever", "throat pain"],
  "diagnosis": ["viral pharyngitis"],
  "medicines": [
    {
      "name": "paracetamol",
      "dose": "500 mg",
      "frequency": "3 times a day",
      "duration": "5 days",
      "instruction": "after food"
    }
  ],
  "tests": [],
  "advice": ["avoid cold drinks", "drink warm water", "rest adequately"]
}

Medical Consultation:
%s

Output ONLY the JSON object. No markdown. No code blocks. No explanations.`

// retryInstruction is appended to the prompt when the first response could
// not be parsed by any recovery strategy.
const retryInstruction = "\n\nIMPORTANT: Return complete valid JSON. Ensure it ends with }. Do not truncate. Return ONLY the JSON object."

const defaultMaxTokens = 2000

// PrimaryExtractor extracts a [Record] by prompting a language model for
// strict JSON and repairing its output when needed. A failed parse gets
// exactly one retry with an explicit completion instruction before the
// extractor gives up with a [KindParse] error.
type PrimaryExtractor struct {
	provider  llm.Provider
	maxTokens int
	logger    *slog.Logger
	metrics   *observe.Metrics
}

// PrimaryOption configures a [PrimaryExtractor].
type PrimaryOption func(*PrimaryExtractor)

// WithMaxTokens caps the completion size requested from the model.
// The default is 2000 tokens, enough for a full prescription record.
func WithMaxTokens(n int) PrimaryOption {
	return func(p *PrimaryExtractor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithMetrics attaches a metrics sink for model-inference latency. Without
// it the extractor records nothing.
func WithMetrics(m *observe.Metrics) PrimaryOption {
	return func(p *PrimaryExtractor) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLogger overrides the logger used by the extractor.
func WithLogger(l *slog.Logger) PrimaryOption {
	return func(p *PrimaryExtractor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPrimary builds a [PrimaryExtractor] on top of the given provider.
func NewPrimary(provider llm.Provider, opts ...PrimaryOption) *PrimaryExtractor {
	p := &PrimaryExtractor{
		provider:  provider,
		maxTokens: defaultMaxTokens,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Extract prompts the model with the consultation transcript and parses the
// response into a [Record]. Failures are always returned as a typed [*Error]
// so callers can tell transport trouble from unparseable output.
func (p *PrimaryExtractor) Extract(ctx context.Context, transcript string) (*Record, Strategy, error) {
	prompt := fmt.Sprintf(extractionPrompt, transcript)

	content, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, "", &Error{Kind: KindTransport, Err: err}
	}

	rec, strategy, perr := parseRecord(content)
	if perr == nil {
		p.logResult(rec, strategy)
		return rec, strategy, nil
	}

	p.logger.Info("model output unparseable, retrying with completion instruction",
		"response_len", len(content))

	content, err = p.complete(ctx, prompt+retryInstruction)
	if err != nil {
		return nil, "", &Error{Kind: KindTransport, Err: err}
	}

	rec, strategy, perr = parseRecord(content)
	if perr != nil {
		return nil, "", &Error{Kind: KindParse, Err: perr}
	}
	p.logResult(rec, strategy)
	return rec, strategy, nil
}

func (p *PrimaryExtractor) complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: 0,
		MaxTokens:   p.maxTokens,
	})
	if p.metrics != nil {
		p.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("provider returned nil response")
	}
	return strings.TrimSpace(resp.Content), nil
}

func (p *PrimaryExtractor) logResult(rec *Record, strategy Strategy) {
	p.logger.Debug("primary extraction parsed",
		"strategy", string(strategy),
		"medicines", len(rec.Medicines),
		"diagnoses", len(rec.Diagnosis))
}
