package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

type sub struct {
	re   *regexp.Regexp
	repl string
}

func mustSubs(pairs [][2]string) []sub {
	out := make([]sub, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, sub{re: regexp.MustCompile(p[0]), repl: p[1]})
	}
	return out
}

// asrCorrections repair phoneme-level speech-to-text confusions at the
// transcript level, before extraction runs. Ordered: multi-word fixes come
// before the single words they contain.
var asrCorrections = mustSubs([][2]string{
	// Infection-related
	{`\bback\s+inflection\b`, "bacterial infection"},
	{`\bbacterial\s+infraction\b`, "bacterial infection"},
	{`\binflection\b`, "infection"},
	{`\binfractions\b`, "infections"},
	{`\binfraction\b`, "infection"},

	// Pharyngitis variants
	{`\bfrangitis\b`, "pharyngitis"},
	{`\bfrench\s+(?:dices|dice)\b`, "pharyngitis"},
	{`\bfirennets\b`, "pharyngitis"},
	{`\bpharangitis\b`, "pharyngitis"},
	{`\bparagenesis\b`, "pharyngitis"},
	{`\bparakinesis\b`, "pharyngitis"},
	{`\bpyrogynous\b`, "pharyngitis"},

	// Drug-name distortions
	{`\blevosidazine\b`, "levocetirizine"},
	{`\blevocitirizine\b`, "levocetirizine"},
	{`\blevocitrazine\b`, "levocetirizine"},
	{`\blevofitrizin\b`, "levocetirizine"},
	{`\bbenzimidine\b`, "benzydamine"},
	{`\bbenzodiazine\b`, "benzydamine"},
	{`\btrepsils\b`, "strepsils"},
	{`\berytho\s+mice\s+in\b`, "erythromycin"},
	{`\berythomycin\b`, "erythromycin"},
	{`\berytromycin\b`, "erythromycin"},
	{`\bretromyzen\b`, "erythromycin"},
	{`\bermycin\b`, "erythromycin"},
	{`\bamoxycillin\b`, "amoxicillin"},
	{`\bamoxylin\b`, "amoxicillin"},
	{`\bamoxilin\b`, "amoxicillin"},
	{`\bparacetamole\b`, "paracetamol"},
	{`\baccetaminophen\b`, "paracetamol"},
	{`\basprine\b`, "aspirin"},
	{`\basprin\b`, "aspirin"},
	{`\brnitidine\b`, "ranitidine"},
	{`\bmetaphormion\b`, "metformin"},
	{`\bmetphormion\b`, "metformin"},
	{`\bomerazole\b`, "omeprazole"},
	{`\bciproflo\b`, "ciprofloxacin"},

	// Antibiotic-related
	{`\banti\s+(?:biotic\s+)?risk\b`, "antibiotics"},
	{`\bantibiotic\s+risk\b`, "antibiotics"},
	{`\bantibiotic\b`, "antibiotics"},

	// Throat and bacterial
	{`\bthroat\s+infraction\b`, "throat infection"},
	{`\bbacterial\s+fracture\b`, "bacterial infection"},
	{`\binfect\b`, "infection"},

	// Tamil/Thanglish phonetic confusions
	{`\bkayaichel\b`, "fever"},
	{`\bkayachel\b`, "fever"},
	{`\bkaiachel\b`, "fever"},
})

// dosageSpacing puts a space between amount and unit ("500mg" to "500 mg")
// and canonicalizes unit spellings.
var dosageSpacing = mustSubs([][2]string{
	{`(\d+(?:\.\d+)?)\s*mg\b`, "$1 mg"},
	{`(\d+(?:\.\d+)?)\s*ml\b`, "$1 ml"},
	{`(\d+(?:\.\d+)?)\s*mcg\b`, "$1 mcg"},
	{`(\d+(?:\.\d+)?)\s*gm\b`, "$1 gm"},
	{`(\d+(?:\.\d+)?)\s*gram\b`, "$1 gm"},
	{`(\d+)\s*iu\b`, "$1 iu"},
	{`(\d+)\s*unit\b`, "$1 unit"},
	{`(\d+)\s*tablet\b`, "$1 tablet"},
	{`(\d+)\s*capsule\b`, "$1 capsule"},
	{`(\d+)\s*drop\b`, "$1 drop"},
	{`(\d+)\s*tsp\b`, "$1 teaspoon"},
	{`(\d+)\s*tbsp\b`, "$1 tablespoon"},
})

// frequencyRules rewrite spoken frequency phrases into the canonical forms
// the extractors expect. Every rule's output is a fixed point of the whole
// table, so running the normalizer twice changes nothing.
var frequencyRules = mustSubs([][2]string{
	{`\bone\s+time\s+a\s+day\b`, "once a day"},
	{`\bonce\s+daily\b`, "once a day"},
	{`\btwice\s+daily\b`, "twice a day"},
	{`\bthrice\s+daily\b`, "3 times a day"},
	{`\btwo\s+times?\s+a\s+day\b`, "twice a day"},
	{`\bthree\s+times?\s+(?:a\s+)?day\b`, "3 times a day"},
	{`\bfour\s+times?\s+(?:a\s+)?day\b`, "4 times a day"},
	{`\bthrice\b`, "3 times a day"},
	{`\bevery\s+day\b`, "once a day"},
	{`\bevery\s+morning(?:\s+and\s+night)?\b`, "once a day"},
	{`(\d+)\s+times?\s+daily\b`, "$1 times a day"},
	{`\bonce(\s+a\s+day)?\b`, "once a day"},
	{`\btwice(\s+a\s+day)?\b`, "twice a day"},
	{`\bdaily\b`, "once a day"},
})

// durationRules standardize duration phrases to singular-free plurals.
var durationRules = mustSubs([][2]string{
	{`(\d+)\s+days?\b`, "$1 days"},
	{`(\d+)\s+weeks?\b`, "$1 weeks"},
	{`(\d+)\s+months?\b`, "$1 months"},
})

// CleanTranscript normalizes a raw transcript before extraction: ASR
// distortions are repaired, dosage units spaced, frequency and duration
// phrases standardized, and consecutive duplicate words collapsed. The text
// is lower-cased with only the first letter restored to upper case.
//
// The second return value reports whether the text changed beyond casing.
func (n *Normalizer) CleanTranscript(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return text, false
	}

	result := strings.ToLower(text)
	for _, table := range [][]sub{asrCorrections, dosageSpacing, frequencyRules, durationRules} {
		for _, s := range table {
			result = s.re.ReplaceAllString(result, s.repl)
		}
	}
	result = collapseRepeats(result)
	result = capitalize(result)

	modified := !strings.EqualFold(result, text)
	if modified {
		n.logger.Debug("transcript cleaned", "before_len", len(text), "after_len", len(result))
	}
	return result, modified
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
