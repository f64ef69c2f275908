package vocab

import (
	"sort"
	"strings"
	"testing"
)

var testVocab = MustNew()

func TestContains(t *testing.T) {
	t.Parallel()

	if !testVocab.Contains("amoxicillin") {
		t.Error("amoxicillin should be a known drug")
	}
	if !testVocab.Contains("  Potassium Citrate  ") {
		t.Error("Contains should trim and lower-case")
	}
	if testVocab.Contains("notadrug") {
		t.Error("notadrug should be unknown")
	}
}

func TestDrugsSorted(t *testing.T) {
	t.Parallel()

	if !sort.StringsAreSorted(testVocab.Drugs()) {
		t.Error("Drugs() must be sorted for stable fuzzy lookup")
	}
}

func TestWithExtraDrugs(t *testing.T) {
	t.Parallel()

	v := MustNew(WithExtraDrugs("Dolo 650", "amoxicillin"))
	if !v.Contains("dolo 650") {
		t.Error("extra drug not registered")
	}
	if len(v.Drugs()) != len(testVocab.Drugs())+1 {
		t.Errorf("duplicate extra drug changed list length: %d vs %d+1",
			len(v.Drugs()), len(testVocab.Drugs()))
	}
}

func TestDangerousPair(t *testing.T) {
	t.Parallel()

	reason, ok := testVocab.DangerousPair("aspirin", "ibuprofen")
	if !ok || !strings.Contains(reason, "NSAIDs") {
		t.Errorf("DangerousPair(aspirin, ibuprofen) = (%q, %v)", reason, ok)
	}

	// Lookup is unordered.
	reversed, ok := testVocab.DangerousPair("ibuprofen", "aspirin")
	if !ok || reversed != reason {
		t.Errorf("reversed lookup = (%q, %v), want same reason", reversed, ok)
	}

	if _, ok := testVocab.DangerousPair("aspirin", "paracetamol"); ok {
		t.Error("aspirin + paracetamol should not be flagged")
	}
}

func TestValidDose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dose string
		want bool
	}{
		{"500 mg", true},
		{"5ml", true},
		{"2 puffs", true},
		{"1 tablet", true},
		{"10 drops", true},
		{"as needed", false},
		{"a few", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := testVocab.ValidDose(tt.dose); got != tt.want {
			t.Errorf("ValidDose(%q) = %v, want %v", tt.dose, got, tt.want)
		}
	}
}

func TestStripDelivery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, wantName, wantForm string
	}{
		{"erythromycin oral paste", "erythromycin", "paste"},
		{"cetirizine tablets", "cetirizine", "tablet"},
		{"benzydamine oral solution", "benzydamine", "solution"},
		{"paracetamol", "paracetamol", ""},
	}
	for _, tt := range tests {
		name, form := testVocab.StripDelivery(tt.in)
		if name != tt.wantName || form != tt.wantForm {
			t.Errorf("StripDelivery(%q) = (%q, %q), want (%q, %q)",
				tt.in, name, form, tt.wantName, tt.wantForm)
		}
	}
}

func TestCorrectPhonetic(t *testing.T) {
	t.Parallel()

	if got := testVocab.CorrectPhonetic("lopassium"); got != "potassium citrate" {
		t.Errorf("CorrectPhonetic = %q, want %q", got, "potassium citrate")
	}
	// Anchored entries only fire on the whole token.
	if got := testVocab.CorrectPhonetic("cipro"); got != "ciprofloxacin" {
		t.Errorf("CorrectPhonetic = %q, want %q", got, "ciprofloxacin")
	}
	if got := testVocab.CorrectPhonetic("take cipro now"); got != "take cipro now" {
		t.Errorf("CorrectPhonetic = %q, anchored entry must not fire mid-sentence", got)
	}
}

func TestCorrectBrand(t *testing.T) {
	t.Parallel()

	if got := testVocab.CorrectBrand("augmentin"); got != "amoxicillin-clavulanic acid" {
		t.Errorf("CorrectBrand = %q, want %q", got, "amoxicillin-clavulanic acid")
	}
}

func TestCorrectMedicalTerms(t *testing.T) {
	t.Parallel()

	if got := testVocab.CorrectMedicalTerms("severe throat infraction"); got != "severe throat infection" {
		t.Errorf("CorrectMedicalTerms = %q, want %q", got, "severe throat infection")
	}
	if got := testVocab.CorrectMedicalTerms("pharangitis suspected"); got != "pharyngitis suspected" {
		t.Errorf("CorrectMedicalTerms = %q, want %q", got, "pharyngitis suspected")
	}
}

func TestNearest(t *testing.T) {
	t.Parallel()

	match, ok := testVocab.Nearest("amoxicilin", 0.75)
	if !ok || match != "amoxicillin" {
		t.Errorf("Nearest(amoxicilin) = (%q, %v), want amoxicillin", match, ok)
	}
	if _, ok := testVocab.Nearest("qqqqq", 0.45); ok {
		t.Error("Nearest should find nothing for a dissimilar string")
	}
}

func TestKeywordTables(t *testing.T) {
	t.Parallel()

	if len(testVocab.ComplaintKeywords()) == 0 {
		t.Error("complaint keyword table is empty")
	}
	if len(testVocab.DiagnosisKeywords()) == 0 {
		t.Error("diagnosis keyword table is empty")
	}
	if len(testVocab.AdviceRules()) == 0 {
		t.Error("advice rule table is empty")
	}
}
