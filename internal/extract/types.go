package extract

import (
	"bytes"
	"encoding/json"
)

// Medicine is a single prescribed item as extracted from a consultation.
// All fields are free-text as spoken; canonicalization happens in the
// normalization layer afterwards.
type Medicine struct {
	Name        string `json:"name"`
	Dose        string `json:"dose"`
	Frequency   string `json:"frequency"`
	Duration    string `json:"duration"`
	Instruction string `json:"instruction"`

	// Route and SideEffects are rarely dictated; they pass through when the
	// model volunteers them and stay off the wire otherwise.
	Route       string   `json:"route,omitempty"`
	SideEffects []string `json:"side_effects,omitempty"`
}

// Record is the structured prescription data extracted from one consultation
// transcript. Field names match the wire contract produced by the language
// model, so a Record unmarshals directly from model output.
type Record struct {
	PatientName string     `json:"patient_name"`
	Age         Age        `json:"age,omitempty"`
	Complaints  []string   `json:"complaints"`
	Diagnosis   []string   `json:"diagnosis"`
	Medicines   []Medicine `json:"medicines"`
	Tests       []string   `json:"tests"`
	Advice      []string   `json:"advice"`
}

// Age is the patient age as reported by the model. Models emit it as a JSON
// string, a bare number, or null depending on the provider, so it accepts all
// three and always marshals back as a string.
type Age string

func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Age(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Age(n.String())
	return nil
}

// Method identifies which extraction path produced a [Result].
type Method string

const (
	// MethodPrimary means the language-model path produced the record.
	MethodPrimary Method = "primary"

	// MethodRules means the deterministic regex path produced the record,
	// either by route choice or as a fallback after a primary failure.
	MethodRules Method = "rules"

	// MethodEnsemble means both paths ran and were merged field by field.
	MethodEnsemble Method = "ensemble"

	// MethodCorrupted means extraction was skipped for unusable input.
	MethodCorrupted Method = "corrupted"
)

// Result is the outcome of one cascade run.
type Result struct {
	// Record holds the extracted data. Empty for the corrupted method.
	Record Record

	// Method is the extraction path that produced Record.
	Method Method

	// Strategy reports which JSON recovery strategy parsed the model output.
	// Empty unless the primary path contributed to Record.
	Strategy Strategy

	// FellBack is true when the primary path failed and the rules path
	// served the record instead.
	FellBack bool

	// FallbackKind labels the failure that caused FellBack, "transport" or
	// "parse". Empty when FellBack is false.
	FallbackKind string

	// Advisory carries a user-facing note, set only on the corrupted path.
	Advisory string
}
