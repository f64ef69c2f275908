// Package vocab holds the controlled medical vocabulary used across the
// extraction pipeline: known drug names, dangerous drug-pair combinations,
// valid dose-unit patterns, and the ordered correction tables consumed by the
// drug normalizer and the rule-based extractor.
//
// A [Vocabulary] is immutable after construction and safe for concurrent use.
// All regex tables are ordered lists compiled once in [New]; corrections are
// applied in registration order so output is reproducible across runs.
package vocab

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Substitution is a single compiled (pattern, replacement) rewrite rule.
type Substitution struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// DeliveryFormat is a compiled suffix pattern for a delivery-format word
// (tablet, syrup, spray, ...) together with its canonical form name, used by
// the normalizer to infer a dose unit after stripping.
type DeliveryFormat struct {
	Pattern *regexp.Regexp
	Form    string
}

// Keyword is an entry of a priority-ordered keyword table. A lower Priority
// value wins: more specific labels shadow generic ones.
type Keyword struct {
	Keyword  string
	Label    string
	Priority int
}

// AdviceRule maps trigger keywords found in a transcript to a fixed,
// curated advice phrase.
type AdviceRule struct {
	Keywords []string
	Advice   string
}

// Matcher finds the vocabulary entry nearest to a candidate string.
// Implementations must be safe for concurrent use. The similarity algorithm
// is pluggable; see [JaroWinklerMatcher] for the default.
type Matcher interface {
	// Nearest returns the closest entry of vocabulary to candidate with a
	// similarity of at least cutoff, and whether any entry qualified.
	Nearest(candidate string, vocabulary []string, cutoff float64) (string, bool)
}

// Option is a functional option for configuring a [Vocabulary].
type Option func(*Vocabulary)

// WithMatcher overrides the fuzzy [Matcher] used by [Vocabulary.Nearest].
// The default is a [JaroWinklerMatcher].
func WithMatcher(m Matcher) Option {
	return func(v *Vocabulary) {
		v.matcher = m
	}
}

// WithExtraDrugs adds drug names to the built-in known-drug set, for
// deployments that carry a site-specific formulary on top of the defaults.
func WithExtraDrugs(names ...string) Option {
	return func(v *Vocabulary) {
		for _, n := range names {
			v.addDrug(n)
		}
	}
}

// Vocabulary is the read-only store of drug names, dangerous combinations,
// dose-unit patterns, and correction tables.
type Vocabulary struct {
	drugs    map[string]struct{}
	drugList []string

	dangerous map[string]string

	dosePatterns    []*regexp.Regexp
	deliveryFormats []DeliveryFormat
	phonetic        []Substitution
	brandGeneric    []Substitution
	medicalTerms    []Substitution

	complaintKeywords []Keyword
	diagnosisKeywords []Keyword
	adviceRules       []AdviceRule

	matcher Matcher
}

// New builds a [Vocabulary] from the built-in tables, applying any options.
// Returns an error if a built-in pattern fails to compile, which indicates a
// programming error in the table data.
func New(opts ...Option) (*Vocabulary, error) {
	v := &Vocabulary{
		drugs:     make(map[string]struct{}, len(knownDrugs)),
		dangerous: make(map[string]string, len(dangerousCombinations)),
		matcher:   NewJaroWinklerMatcher(),
	}

	for _, d := range knownDrugs {
		v.addDrug(d)
	}
	for _, c := range dangerousCombinations {
		v.dangerous[pairKey(c.a, c.b)] = c.reason
	}

	var err error
	if v.dosePatterns, err = compileAll(dosePatterns); err != nil {
		return nil, err
	}
	if v.deliveryFormats, err = compileFormats(deliveryFormats); err != nil {
		return nil, err
	}
	if v.phonetic, err = compileSubs(phoneticCorrections); err != nil {
		return nil, err
	}
	if v.brandGeneric, err = compileSubs(brandGenericMap); err != nil {
		return nil, err
	}
	if v.medicalTerms, err = compileSubs(medicalTermCorrections); err != nil {
		return nil, err
	}

	v.complaintKeywords = complaintKeywords
	v.diagnosisKeywords = diagnosisKeywords
	v.adviceRules = adviceRules

	for _, o := range opts {
		o(v)
	}

	// Keep the lookup order of fuzzy matching stable regardless of map
	// iteration order.
	sort.Strings(v.drugList)

	return v, nil
}

// MustNew is like [New] but panics on error. Intended for package-level
// construction in tests and in main, where a broken built-in table should
// abort immediately.
func MustNew(opts ...Option) *Vocabulary {
	v, err := New(opts...)
	if err != nil {
		panic("vocab: " + err.Error())
	}
	return v
}

// Contains reports whether name is a known drug (case-insensitive).
func (v *Vocabulary) Contains(name string) bool {
	_, ok := v.drugs[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Drugs returns the known drug names in a stable sorted order. The returned
// slice must not be modified.
func (v *Vocabulary) Drugs() []string {
	return v.drugList
}

// Nearest finds the known drug closest to candidate using the configured
// [Matcher], requiring a similarity of at least cutoff.
func (v *Vocabulary) Nearest(candidate string, cutoff float64) (string, bool) {
	return v.matcher.Nearest(strings.ToLower(strings.TrimSpace(candidate)), v.drugList, cutoff)
}

// DangerousPair looks up the unordered pair (a, b) in the dangerous
// combination table and returns the registered explanation.
func (v *Vocabulary) DangerousPair(a, b string) (string, bool) {
	reason, ok := v.dangerous[pairKey(a, b)]
	return reason, ok
}

// ValidDose reports whether dose matches any recognized dose-unit pattern.
func (v *Vocabulary) ValidDose(dose string) bool {
	d := strings.ToLower(dose)
	for _, p := range v.dosePatterns {
		if p.MatchString(d) {
			return true
		}
	}
	return false
}

// StripDelivery removes a trailing delivery-format word from name and returns
// the residual string plus the canonical form that was stripped ("" when
// nothing matched). Only the first matching suffix per pass is removed; the
// scan repeats so that stacked suffixes ("sucralfate oral paste") collapse.
func (v *Vocabulary) StripDelivery(name string) (string, string) {
	out := name
	form := ""
	for {
		stripped := false
		for _, df := range v.deliveryFormats {
			if df.Pattern.MatchString(out) {
				out = strings.TrimSpace(df.Pattern.ReplaceAllString(out, ""))
				form = df.Form
				stripped = true
				break
			}
		}
		if !stripped || out == "" {
			return out, form
		}
	}
}

// CorrectPhonetic applies the phonetic-transcription correction table to s
// in registration order.
func (v *Vocabulary) CorrectPhonetic(s string) string {
	return applySubs(v.phonetic, s)
}

// CorrectBrand applies brand-to-generic substitution to s.
func (v *Vocabulary) CorrectBrand(s string) string {
	return applySubs(v.brandGeneric, s)
}

// CorrectMedicalTerms applies the general medical-term correction table to s.
// Used on full transcript text before keyword extraction, not on drug names.
func (v *Vocabulary) CorrectMedicalTerms(s string) string {
	return applySubs(v.medicalTerms, s)
}

// ComplaintKeywords returns the priority-ordered complaint keyword table.
func (v *Vocabulary) ComplaintKeywords() []Keyword {
	return v.complaintKeywords
}

// DiagnosisKeywords returns the priority-ordered diagnosis keyword table.
func (v *Vocabulary) DiagnosisKeywords() []Keyword {
	return v.diagnosisKeywords
}

// AdviceRules returns the curated keyword-to-advice table.
func (v *Vocabulary) AdviceRules() []AdviceRule {
	return v.adviceRules
}

func (v *Vocabulary) addDrug(name string) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return
	}
	if _, ok := v.drugs[n]; ok {
		return
	}
	v.drugs[n] = struct{}{}
	v.drugList = append(v.drugList, n)
}

// pairKey builds the canonical unordered key for a drug pair.
func pairKey(a, b string) string {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func applySubs(subs []Substitution, s string) string {
	for _, sub := range subs {
		s = sub.Pattern.ReplaceAllString(s, sub.Replacement)
	}
	return strings.TrimSpace(s)
}

type rawSub struct {
	pattern     string
	replacement string
}

type rawFormat struct {
	pattern string
	form    string
}

type rawPair struct {
	a, b   string
	reason string
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("vocab: compile %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func compileSubs(subs []rawSub) ([]Substitution, error) {
	out := make([]Substitution, 0, len(subs))
	for _, s := range subs {
		re, err := regexp.Compile(s.pattern)
		if err != nil {
			return nil, fmt.Errorf("vocab: compile %q: %w", s.pattern, err)
		}
		out = append(out, Substitution{Pattern: re, Replacement: s.replacement})
	}
	return out, nil
}

func compileFormats(formats []rawFormat) ([]DeliveryFormat, error) {
	out := make([]DeliveryFormat, 0, len(formats))
	for _, f := range formats {
		re, err := regexp.Compile(f.pattern)
		if err != nil {
			return nil, fmt.Errorf("vocab: compile %q: %w", f.pattern, err)
		}
		out = append(out, DeliveryFormat{Pattern: re, Form: f.form})
	}
	return out, nil
}
