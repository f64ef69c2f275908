// Package routing decides which extraction strategy to trust for a given
// transcript. The [Analyzer] scores transcript reliability from lexical and
// length signals combined with upstream confidences; the [Selector] maps the
// score, word count, and confidence onto one of four routes.
//
// Both components are pure: identical inputs always produce identical
// outputs, with no hidden state.
package routing

import "strings"

// medicalKeywords is the fixed domain-keyword set used for keyword density.
var medicalKeywords = []string{
	"medicine", "drug", "tablet", "pill", "dose", "mg", "ml",
	"fever", "pain", "infection", "doctor", "patient", "treatment",
	"cough", "throat", "cold", "allergy", "diagnosis", "symptom",
	"antibiotic", "bacterial", "daily", "prescribe",
}

const minTranscriptLength = 20

// Metrics is the derived quality profile of a transcript. All score fields
// are in [0, 1]. A Metrics value is never mutated after [Analyzer.Analyze]
// returns it.
type Metrics struct {
	// TranscriptQuality scores lexical diversity and sentence structure.
	TranscriptQuality float64

	// Completeness is a step function of transcript character length.
	Completeness float64

	// LanguageClarity is the upstream language-detection confidence.
	LanguageClarity float64

	// ExternalConfidence is the upstream transcription confidence.
	ExternalConfidence float64

	// KeywordDensity is the fraction of the domain-keyword set present in
	// the lower-cased text, capped at 1.0.
	KeywordDensity float64

	// OverallQuality is the fixed weighted sum:
	// 0.35*quality + 0.25*completeness + 0.25*clarity + 0.15*confidence.
	OverallQuality float64

	// Language is the detected language code, carried for routing metadata.
	Language string

	// WordCount and CharCount describe the raw transcript.
	WordCount int
	CharCount int
}

// Analyzer scores transcript reliability. The zero value is ready to use.
type Analyzer struct{}

// NewAnalyzer returns a ready [Analyzer].
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze derives [Metrics] from the transcript and the upstream confidences.
// It is a pure function of its inputs.
func (a *Analyzer) Analyze(transcript string, confidence float64, language string, languageConfidence float64) Metrics {
	words := strings.Fields(transcript)

	m := Metrics{
		TranscriptQuality:  transcriptQuality(transcript, words),
		Completeness:       completeness(len(transcript)),
		LanguageClarity:    languageConfidence,
		ExternalConfidence: confidence,
		KeywordDensity:     keywordDensity(transcript),
		Language:           language,
		WordCount:          len(words),
		CharCount:          len(transcript),
	}

	m.OverallQuality = m.TranscriptQuality*0.35 +
		m.Completeness*0.25 +
		m.LanguageClarity*0.25 +
		m.ExternalConfidence*0.15

	return m
}

// transcriptQuality combines unique-word ratio (weight 0.6) with average
// sentence length normalized to 20 words (weight 0.4). Transcripts below the
// minimum length floor at 0.2.
func transcriptQuality(transcript string, words []string) float64 {
	if len(transcript) < minTranscriptLength {
		return 0.2
	}

	uniqueRatio := 0.0
	if len(words) > 0 {
		seen := make(map[string]struct{}, len(words))
		for _, w := range words {
			seen[w] = struct{}{}
		}
		uniqueRatio = float64(len(seen)) / float64(len(words))
	}

	sentences := strings.Count(transcript, ".") +
		strings.Count(transcript, "?") +
		strings.Count(transcript, "!")
	if sentences < 1 {
		sentences = 1
	}
	avgSentenceLen := float64(len(words)) / float64(sentences)

	q := uniqueRatio*0.6 + min(avgSentenceLen/20, 1.0)*0.4
	return min(q, 1.0)
}

// completeness is a step function of character length.
func completeness(chars int) float64 {
	switch {
	case chars < 50:
		return 0.2
	case chars < 150:
		return 0.5
	case chars < 400:
		return 0.8
	default:
		return 1.0
	}
}

// keywordDensity is the fraction of the domain-keyword set found in the
// lower-cased text.
func keywordDensity(transcript string) float64 {
	lower := strings.ToLower(transcript)
	found := 0
	for _, kw := range medicalKeywords {
		if strings.Contains(lower, kw) {
			found++
		}
	}
	return min(float64(found)/float64(len(medicalKeywords)), 1.0)
}
