package normalize

import "regexp"

// unitRewrite maps a delivery-format token found in a dose string to the
// proper unit for it ("40 pills" is really "40 mg").
type unitRewrite struct {
	token *regexp.Regexp
	unit  string
}

var (
	doseNumberRE = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// hasUnitRE recognizes doses that already carry a real unit and must be
	// left alone even when a delivery token is also present.
	hasUnitRE = regexp.MustCompile(`(?i)\b(?:mg|ml|mcg|gm|gram|iu|unit|drops?)\b`)

	unitRewrites = []unitRewrite{
		{regexp.MustCompile(`(?i)\bpills?\b`), "mg"},
		{regexp.MustCompile(`(?i)\btablets?\b`), "mg"},
		{regexp.MustCompile(`(?i)\bcapsules?\b`), "mg"},
		{regexp.MustCompile(`(?i)\bdrops?\b`), "drops"},
		{regexp.MustCompile(`(?i)\bpacks?\b`), "unit"},
		{regexp.MustCompile(`(?i)\bvials?\b`), "unit"},
		{regexp.MustCompile(`(?i)\bpowders?\b`), "mg"},
		{regexp.MustCompile(`(?i)\bsprays?\b`), "spray"},
		{regexp.MustCompile(`(?i)\blozenges?\b`), "unit"},
		{regexp.MustCompile(`(?i)\bsyrups?\b`), "ml"},
		{regexp.MustCompile(`(?i)\bml\b`), "ml"},
		{regexp.MustCompile(`(?i)\b(?:cc|cubic\s+cm)\b`), "ml"},
	}
)

// NormalizeDose rewrites delivery-format doses into unit doses: "40 pills"
// becomes "40 mg", "2 packs" becomes "2 unit". A dose that already carries a
// real unit, has no numeric part, or matches no known delivery token is
// returned unchanged.
func (n *Normalizer) NormalizeDose(dose string) string {
	num := doseNumberRE.FindString(dose)
	if num == "" {
		return dose
	}

	for _, rw := range unitRewrites {
		if !rw.token.MatchString(dose) {
			continue
		}
		if hasUnitRE.MatchString(dose) {
			return dose
		}
		return num + " " + rw.unit
	}
	return dose
}
