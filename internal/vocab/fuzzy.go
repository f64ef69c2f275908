package vocab

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// JaroWinklerMatcher implements [Matcher] using Jaro-Winkler string
// similarity with a Double Metaphone phonetic prefilter.
//
// Candidates that share at least one Double Metaphone code with the input are
// ranked first; among them the highest Jaro-Winkler score wins, provided it
// reaches the caller's cutoff. When no phonetic candidate qualifies, a
// secondary pass ranks the remaining vocabulary by pure Jaro-Winkler score
// against the same cutoff. Multi-word entries are compared full-string,
// space-stripped, and best-pairwise-token, keeping the maximum.
//
// The zero value is not usable; construct with [NewJaroWinklerMatcher].
// A JaroWinklerMatcher is read-only after construction and safe for
// concurrent use.
type JaroWinklerMatcher struct{}

var _ Matcher = (*JaroWinklerMatcher)(nil)

// NewJaroWinklerMatcher returns the default fuzzy [Matcher].
func NewJaroWinklerMatcher() *JaroWinklerMatcher {
	return &JaroWinklerMatcher{}
}

// Nearest implements [Matcher].
func (m *JaroWinklerMatcher) Nearest(candidate string, vocabulary []string, cutoff float64) (string, bool) {
	cand := strings.ToLower(strings.TrimSpace(candidate))
	if cand == "" || len(vocabulary) == 0 {
		return "", false
	}

	candTokens := strings.Fields(cand)
	candCodes := metaphoneCodes(candTokens)

	var (
		best         string
		bestScore    float64
		bestPhonetic bool
	)

	for _, entry := range vocabulary {
		entryLower := strings.ToLower(strings.TrimSpace(entry))
		if entryLower == "" {
			continue
		}
		entryTokens := strings.Fields(entryLower)

		score := bestSimilarity(candTokens, entryTokens, cand, entryLower)
		if score < cutoff {
			continue
		}

		phonetic := codesOverlap(candCodes, metaphoneCodes(entryTokens))
		switch {
		case phonetic && !bestPhonetic:
			best, bestScore, bestPhonetic = entry, score, true
		case phonetic == bestPhonetic && score > bestScore:
			best, bestScore = entry, score
		}
	}

	return best, best != ""
}

// metaphoneCodes returns the union of Double Metaphone codes for the tokens.
func metaphoneCodes(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestSimilarity computes the highest Jaro-Winkler similarity between the
// candidate and a vocabulary entry across three comparison strategies:
// full strings, space-stripped strings, and best pairwise token score.
func bestSimilarity(candTokens, entryTokens []string, candFull, entryFull string) float64 {
	score := matchr.JaroWinkler(candFull, entryFull, false)

	if len(candTokens) > 1 || len(entryTokens) > 1 {
		if s := matchr.JaroWinkler(strings.Join(candTokens, ""), strings.Join(entryTokens, ""), false); s > score {
			score = s
		}
	}

	for _, ct := range candTokens {
		for _, et := range entryTokens {
			if s := matchr.JaroWinkler(ct, et, false); s > score {
				score = s
			}
		}
	}

	return score
}
