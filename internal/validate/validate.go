// Package validate checks extracted prescription records for completeness
// and safety before they are returned or persisted. Findings are advisory:
// missing fields, unclear doses, duplicates, and dangerous drug pairs become
// warnings on the record rather than rejections, because a partial
// prescription is still more useful to a clinician than none.
package validate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrWong99/rxtract/internal/extract"
	"github.com/MrWong99/rxtract/internal/vocab"
)

// Report is the outcome of validating one record.
type Report struct {
	// Valid is true when no hard errors were found. Warnings alone never
	// invalidate a record.
	Valid bool

	// Errors are structural problems that make the record unusable.
	Errors []string

	// Warnings are advisory findings attached to the record.
	Warnings []string
}

// Validator checks records against the vocabulary's dose patterns and
// dangerous-combination table.
type Validator struct {
	vocab  *vocab.Vocabulary
	logger *slog.Logger
}

// Option configures a [Validator].
type Option func(*Validator)

// WithLogger overrides the logger used for validation summaries.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// New builds a [Validator] over the given vocabulary.
func New(voc *vocab.Vocabulary, opts ...Option) *Validator {
	v := &Validator{vocab: voc, logger: slog.Default()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate checks the record and returns a [Report]. It never mutates the
// record.
func (v *Validator) Validate(rec *extract.Record) Report {
	var warnings []string

	if rec.PatientName == "" {
		warnings = append(warnings, "patient name not captured")
	}
	if len(rec.Diagnosis) == 0 {
		warnings = append(warnings, "no diagnosis found")
	}
	if len(rec.Medicines) == 0 {
		warnings = append(warnings, "no medicines prescribed (follow-up or advice-only consultation)")
	}

	seen := make(map[string]struct{}, len(rec.Medicines))
	var order []string
	for i, med := range rec.Medicines {
		warnings = append(warnings, v.checkDose(i, med.Dose)...)

		name := strings.ToLower(strings.TrimSpace(med.Name))
		if _, dup := seen[name]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate drug %q", med.Name))
			continue
		}
		for _, other := range order {
			if reason, ok := v.vocab.DangerousPair(name, other); ok {
				warnings = append(warnings, fmt.Sprintf("%s + %s: %s", other, name, reason))
			}
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}

	report := Report{Valid: true, Warnings: warnings}
	v.logger.Debug("validation finished",
		"valid", report.Valid,
		"warnings", len(report.Warnings))
	return report
}

// checkDose flags a missing or unparseable dose. A dose that matches no
// recognized unit pattern is unclear, not invalid; the prescriber may have
// dictated an unusual form.
func (v *Validator) checkDose(i int, dose string) []string {
	d := strings.TrimSpace(dose)
	if d == "" || strings.EqualFold(d, "none") {
		return []string{fmt.Sprintf("medicine %d: dose not specified", i+1)}
	}
	if len(d) > 1 && !v.vocab.ValidDose(d) {
		return []string{fmt.Sprintf("medicine %d: dose format unclear %q", i+1, d)}
	}
	return nil
}
