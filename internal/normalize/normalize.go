// Package normalize canonicalizes noisy extraction output: raw drug-name
// mentions become vocabulary entries, dose strings get proper units, and
// whole transcripts are cleaned of speech-to-text artifacts before
// extraction sees them.
//
// All methods are pure string transformations over the immutable vocabulary,
// so a [Normalizer] is safe for concurrent use.
package normalize

import (
	"log/slog"
	"strings"

	"github.com/MrWong99/rxtract/internal/vocab"
)

// fuzzyCutoffs is the descending similarity cascade used when a corrected
// name still misses the vocabulary. Looser cutoffs only get a chance after
// stricter ones found nothing.
var fuzzyCutoffs = []float64{0.75, 0.65, 0.55, 0.45}

// Normalizer canonicalizes drug names, doses, and transcripts against a
// [vocab.Vocabulary].
type Normalizer struct {
	vocab  *vocab.Vocabulary
	logger *slog.Logger
}

// Option configures a [Normalizer].
type Option func(*Normalizer)

// WithLogger overrides the logger used for normalization traces.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// New builds a [Normalizer] over the given vocabulary.
func New(v *vocab.Vocabulary, opts ...Option) *Normalizer {
	n := &Normalizer{vocab: v, logger: slog.Default()}
	for _, o := range opts {
		o(n)
	}
	return n
}

// NormalizeName canonicalizes a raw drug-name mention through a fixed stage
// order:
//
//  1. strip trailing delivery-format words ("oral paste", "tablet")
//  2. repair phonetic transcription artifacts ("lopassium")
//  3. substitute brand names with generics ("augmentin")
//  4. collapse consecutive duplicate words
//  5. exact vocabulary lookup
//  6. fuzzy vocabulary match through the cutoff cascade
//
// A name that survives every stage unmatched is returned lower-cased rather
// than dropped; the validator flags unknowns downstream.
func (n *Normalizer) NormalizeName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return ""
	}

	name, _ = n.vocab.StripDelivery(name)
	name = n.vocab.CorrectPhonetic(name)
	name = n.vocab.CorrectBrand(name)
	name = collapseRepeats(name)
	name = strings.ToLower(strings.TrimSpace(name))

	if name == "" || n.vocab.Contains(name) {
		return name
	}

	for _, cutoff := range fuzzyCutoffs {
		if match, ok := n.vocab.Nearest(name, cutoff); ok {
			n.logger.Debug("fuzzy drug match", "raw", raw, "match", match, "cutoff", cutoff)
			return match
		}
	}
	return name
}

// NormalizePatientName removes repeated words from a patient name, keeping
// the first occurrence of each ("Rohit Rohit" becomes "Rohit"). Comparison
// is case-insensitive; original casing is preserved.
func (n *Normalizer) NormalizePatientName(name string) string {
	words := strings.Fields(name)
	seen := make(map[string]struct{}, len(words))
	out := words[:0]
	for _, w := range words {
		key := strings.ToLower(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// collapseRepeats removes consecutive duplicate words, case-insensitively.
func collapseRepeats(s string) string {
	words := strings.Fields(s)
	out := words[:0]
	for _, w := range words {
		if len(out) > 0 && strings.EqualFold(out[len(out)-1], w) {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
