package extract

import (
	"regexp"
	"slices"
	"strings"

	"github.com/MrWong99/rxtract/internal/vocab"
)

const (
	maxComplaints = 5
	maxDiagnoses  = 5
	maxAdvice     = 12
)

// patientNamePatterns are tried in order; the first match with a plausible
// name wins. Casing is taken from the original text so acronym names
// survive.
var patientNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)patient\s+(?:named\s+|is\s+|name\s+)?([a-zA-Z]+(?:\s+[a-zA-Z]+)?)`),
	regexp.MustCompile(`(?i)with\s+patient\s+([a-zA-Z]+(?:\s+[a-zA-Z]+)?)`),
	regexp.MustCompile(`(?i)consultation\s+with\s+(?:patient\s+)?([a-zA-Z]+)`),
	regexp.MustCompile(`(?i)(?:hi|hello|greetings)\s+([a-zA-Z]+(?:\s+[a-zA-Z]+)?)`),
	regexp.MustCompile(`(?i)(?:patient\s+)?name\s+(?:is\s+)?([a-zA-Z]+(?:\s+[a-zA-Z]+)?)`),
}

// invalidNames are captures that name-shaped patterns tend to pick up but
// are never actual patient names.
var invalidNames = map[string]struct{}{
	"today": {}, "tomorrow": {}, "yesterday": {}, "now": {}, "then": {},
	"the": {}, "a": {}, "is": {}, "has": {}, "been": {}, "going": {},
	"get": {}, "have": {},
}

const doseUnits = `mg|ml|mcg|gm|g|gram|iu|tablet|capsule|drop|unit`

// medicinePatterns each capture (name, dose number, unit, frequency count,
// duration days). Each pattern contributes at most one medicine; duplicates
// found by later patterns are skipped.
var medicinePatterns = []*regexp.Regexp{
	// "take erythromycin 500 mg 3 times a day for 5 days"
	regexp.MustCompile(`(?:take|prescribe|give)\s+([a-z\s]+?)\s+(\d+)\s*(` + doseUnits + `)s?\s+(\d+)\s*times?\s+a\s+day\s+for\s+(\d+)\s*days?`),
	// "medicine, erythromycin, 500 mg once a day 3 times for 5 days"
	regexp.MustCompile(`medicine[,.]?\s+([a-z]+)\s*[,.]?\s*(\d+)\s*(` + doseUnits + `)s?\s+(?:once\s+)?a\s+day\s+(\d+)\s*times?\s+(?:for\s+)?(\d+)\s*days?`),
	// "medicine erythromycin 500 mg daily 3 times for 5 days"
	regexp.MustCompile(`medicine[,.]?\s+([a-z]+)\s*[,.]?\s*(\d+)\s*(` + doseUnits + `)s?\s+daily\s+(\d+)\s*times?\s+for\s+(\d+)\s*days?`),
	// "erythromycin 500 mg, 3 times a day for 5 days"
	regexp.MustCompile(`([a-z]+)\s+(\d+)\s*(` + doseUnits + `)s?\s*[,.]?\s+(\d+)\s*times?\s+a\s+day\s+for\s+(\d+)\s*days?`),
	// "medicine erythromycin 500mg 3 times daily 5 days"
	regexp.MustCompile(`medicine\s+([a-z]+)\s+(\d+)(` + doseUnits + `)\s+(\d+)\s*times?\s+(?:a\s+)?day\s+(?:for\s+)?(\d+)\s*days?`),
}

// DrugNamer canonicalizes a raw drug-name mention. Implemented by the drug
// normalizer; injected so the rules path dedupes on canonical names.
type DrugNamer interface {
	NormalizeName(raw string) string
}

// RulesExtractor is the deterministic extraction path. It needs no network
// and no model: patient names, medicines, complaints, diagnoses, and advice
// come from fixed regex patterns and the vocabulary's keyword tables.
//
// It is the safety net of the cascade and must never fail; every method
// degrades to empty output rather than an error.
type RulesExtractor struct {
	vocab *vocab.Vocabulary
	namer DrugNamer
}

// NewRules builds a [RulesExtractor] over the given vocabulary and name
// canonicalizer.
func NewRules(v *vocab.Vocabulary, namer DrugNamer) *RulesExtractor {
	return &RulesExtractor{vocab: v, namer: namer}
}

// Extract runs all rule-based extractors over the transcript. It is a pure
// function of its input and never fails.
func (r *RulesExtractor) Extract(transcript string) *Record {
	return &Record{
		PatientName: r.extractPatientName(transcript),
		Complaints:  r.extractComplaints(transcript),
		Diagnosis:   r.extractDiagnosis(transcript),
		Medicines:   r.extractMedicines(transcript),
		Tests:       nil,
		Advice:      r.extractAdvice(transcript),
	}
}

func (r *RulesExtractor) extractPatientName(text string) string {
	for _, re := range patientNamePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len(name) <= 1 {
			continue
		}
		if _, bad := invalidNames[strings.ToLower(name)]; bad {
			continue
		}
		// All-caps names are treated as acronyms and kept as-is.
		if name == strings.ToUpper(name) {
			return name
		}
		return titleCase(name)
	}
	return ""
}

func (r *RulesExtractor) extractMedicines(text string) []Medicine {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})
	var medicines []Medicine

	for _, re := range medicinePatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			raw := strings.TrimSpace(m[1])
			name := r.namer.NormalizeName(pickDrugWord(raw))
			if len(name) < 2 {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			medicines = append(medicines, Medicine{
				Name:      name,
				Dose:      m[2] + " " + m[3],
				Frequency: m[4] + " times a day",
				Duration:  m[5] + " days",
			})
			break
		}
	}
	return medicines
}

// pickDrugWord reduces a multi-word capture to the drug mention: the whole
// phrase when it is substantial, otherwise the longest word.
func pickDrugWord(raw string) string {
	if len(raw) > 3 {
		return raw
	}
	longest := raw
	for _, w := range strings.Fields(raw) {
		if len(w) > len(longest) {
			longest = w
		}
	}
	return longest
}

func (r *RulesExtractor) extractComplaints(text string) []string {
	return keywordScan(strings.ToLower(text), r.vocab.ComplaintKeywords(), maxComplaints)
}

func (r *RulesExtractor) extractDiagnosis(text string) []string {
	// Transcription artifacts like "pharangitis" must be repaired before
	// keyword matching can see them.
	corrected := r.vocab.CorrectMedicalTerms(strings.ToLower(text))
	return keywordScan(corrected, r.vocab.DiagnosisKeywords(), maxDiagnoses)
}

func (r *RulesExtractor) extractAdvice(text string) []string {
	lower := strings.ToLower(text)
	var advice []string
	for _, rule := range r.vocab.AdviceRules() {
		if len(advice) >= maxAdvice {
			break
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				advice = append(advice, rule.Advice)
				break
			}
		}
	}
	return advice
}

// keywordScan collects labels whose keyword occurs in text, ordered by
// priority with table order breaking ties, capped at limit.
func keywordScan(text string, table []vocab.Keyword, limit int) []string {
	type hit struct {
		label    string
		priority int
	}
	var hits []hit
	seen := make(map[string]struct{})

	for _, kw := range table {
		if !strings.Contains(text, kw.Keyword) {
			continue
		}
		if _, dup := seen[kw.Label]; dup {
			continue
		}
		seen[kw.Label] = struct{}{}
		hits = append(hits, hit{label: kw.Label, priority: kw.Priority})
	}

	slices.SortStableFunc(hits, func(a, b hit) int {
		return a.priority - b.priority
	})

	labels := make([]string, 0, len(hits))
	for _, h := range hits {
		if len(labels) >= limit {
			break
		}
		labels = append(labels, h.label)
	}
	return labels
}

func titleCase(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
