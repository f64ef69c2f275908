package extract

import (
	"slices"
	"testing"

	"github.com/MrWong99/rxtract/internal/normalize"
	"github.com/MrWong99/rxtract/internal/vocab"
)

var testVocab = vocab.MustNew()

func newTestRules() *RulesExtractor {
	return NewRules(testVocab, normalize.New(testVocab))
}

func TestRulesExtract_FullConsultation(t *testing.T) {
	t.Parallel()

	transcript := "Consultation with patient Rohit. The patient has fever and throat pain " +
		"since two days. Please take erythromycin 500 mg 3 times a day for 5 days. " +
		"Drink plenty of warm water and do salt water gargle. This looks like a throat infection."

	rec := newTestRules().Extract(transcript)

	if rec.PatientName != "Rohit" {
		t.Errorf("patient = %q, want Rohit", rec.PatientName)
	}

	if len(rec.Medicines) != 1 {
		t.Fatalf("medicines = %d, want 1: %+v", len(rec.Medicines), rec.Medicines)
	}
	med := rec.Medicines[0]
	if med.Name != "erythromycin" || med.Dose != "500 mg" ||
		med.Frequency != "3 times a day" || med.Duration != "5 days" {
		t.Errorf("medicine = %+v", med)
	}

	if len(rec.Complaints) == 0 || rec.Complaints[0] != "throat pain" {
		t.Errorf("complaints = %v, want throat pain first", rec.Complaints)
	}
	if !slices.Contains(rec.Complaints, "fever") {
		t.Errorf("complaints = %v, want fever included", rec.Complaints)
	}

	if len(rec.Diagnosis) == 0 || rec.Diagnosis[0] != "bacterial throat infection" {
		t.Errorf("diagnosis = %v, want bacterial throat infection first", rec.Diagnosis)
	}

	if !slices.Contains(rec.Advice, "Drink plenty of warm fluids") ||
		!slices.Contains(rec.Advice, "Do warm salt water gargles 3-4 times a day") {
		t.Errorf("advice = %v", rec.Advice)
	}
}

func TestRulesExtract_FreeFormMedicine(t *testing.T) {
	t.Parallel()

	rec := newTestRules().Extract("erythromycin 500 mg, 3 times a day for 5 days")
	if len(rec.Medicines) != 1 {
		t.Fatalf("medicines = %d, want 1", len(rec.Medicines))
	}
	if rec.Medicines[0].Name != "erythromycin" || rec.Medicines[0].Dose != "500 mg" {
		t.Errorf("medicine = %+v", rec.Medicines[0])
	}
}

func TestRulesExtract_MedicinesCanonicalized(t *testing.T) {
	t.Parallel()

	rec := newTestRules().Extract(
		"take amoxicillin 500 mg 2 times a day for 5 days and also " +
			"take augmentin 625 mg 2 times a day for 7 days")

	names := make([]string, 0, len(rec.Medicines))
	for _, m := range rec.Medicines {
		names = append(names, m.Name)
	}
	if !slices.Contains(names, "amoxicillin") {
		t.Errorf("medicines = %v, want amoxicillin", names)
	}
	if !slices.Contains(names, "amoxicillin-clavulanic acid") {
		t.Errorf("medicines = %v, want brand resolved to generic", names)
	}
}

func TestRulesExtract_InvalidNameCaptureSkipped(t *testing.T) {
	t.Parallel()

	rec := newTestRules().Extract("The patient is going. Recovery will take time.")
	if rec.PatientName != "" {
		t.Errorf("patient = %q, want empty for a non-name capture", rec.PatientName)
	}
}

func TestRulesExtract_AcronymNameKept(t *testing.T) {
	t.Parallel()

	rec := newTestRules().Extract("Consultation with patient AJ. Follow up next week.")
	if rec.PatientName != "AJ" {
		t.Errorf("patient = %q, want AJ kept as-is", rec.PatientName)
	}
}

func TestRulesExtract_ArtifactDiagnosisRepaired(t *testing.T) {
	t.Parallel()

	rec := newTestRules().Extract("it sounds like a throat infraction to me")
	if !slices.Contains(rec.Diagnosis, "bacterial throat infection") {
		t.Errorf("diagnosis = %v, want artifact repaired before matching", rec.Diagnosis)
	}
}

func TestRulesExtract_NoSignal(t *testing.T) {
	t.Parallel()

	rec := newTestRules().Extract("it was raining heavily all week across town")
	if rec.PatientName != "" || len(rec.Medicines) != 0 ||
		len(rec.Complaints) != 0 || len(rec.Diagnosis) != 0 || len(rec.Advice) != 0 {
		t.Errorf("expected empty record, got %+v", rec)
	}
}
