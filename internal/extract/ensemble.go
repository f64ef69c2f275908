package extract

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxMergedItems caps each unioned list in a merged record.
const maxMergedItems = 10

// EnsembleExtractor runs the primary and rules paths concurrently and merges
// their records with a fixed per-field precedence:
//
//   - medicines: primary wins when it found any, rules otherwise
//   - patient name: rules wins, primary fills the gap
//   - complaints, diagnosis, tests: union of both, case-insensitively
//     deduplicated, first occurrence kept
//   - advice: rules wins (curated phrasing), primary fills the gap
//
// A primary-path failure degrades the ensemble to the rules record alone; it
// never fails the whole run.
type EnsembleExtractor struct {
	primary *PrimaryExtractor
	rules   *RulesExtractor
	logger  *slog.Logger
}

// NewEnsemble builds an [EnsembleExtractor] over both paths.
func NewEnsemble(primary *PrimaryExtractor, rules *RulesExtractor, logger *slog.Logger) *EnsembleExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnsembleExtractor{primary: primary, rules: rules, logger: logger}
}

// Extract runs both paths and returns the merged record plus the JSON
// recovery strategy of the primary path ("" when primary failed).
func (e *EnsembleExtractor) Extract(ctx context.Context, transcript string) (*Record, Strategy) {
	var (
		primaryRec *Record
		strategy   Strategy
		rulesRec   *Record
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, s, err := e.primary.Extract(ctx, transcript)
		if err != nil {
			e.logger.Warn("ensemble primary path failed, merging rules only", "error", err)
			return nil
		}
		primaryRec, strategy = rec, s
		return nil
	})
	g.Go(func() error {
		rulesRec = e.rules.Extract(transcript)
		return nil
	})
	_ = g.Wait()

	return mergeRecords(primaryRec, rulesRec), strategy
}

// mergeRecords applies the ensemble field precedence. Either input may be
// nil.
func mergeRecords(primary, rules *Record) *Record {
	if primary == nil {
		primary = &Record{}
	}
	if rules == nil {
		rules = &Record{}
	}

	merged := &Record{
		Medicines:   primary.Medicines,
		PatientName: rules.PatientName,
		Age:         primary.Age,
		Advice:      rules.Advice,
		Complaints:  dedupeUnion(primary.Complaints, rules.Complaints),
		Diagnosis:   dedupeUnion(primary.Diagnosis, rules.Diagnosis),
		Tests:       dedupeUnion(primary.Tests, rules.Tests),
	}
	if len(merged.Medicines) == 0 {
		merged.Medicines = rules.Medicines
	}
	if merged.PatientName == "" {
		merged.PatientName = primary.PatientName
	}
	if len(merged.Advice) == 0 {
		merged.Advice = primary.Advice
	}
	return merged
}

// dedupeUnion concatenates the lists, drops case-insensitive duplicates
// keeping the first occurrence, and caps the result.
func dedupeUnion(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, item := range list {
			key := strings.ToLower(item)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
			if len(out) >= maxMergedItems {
				return out
			}
		}
	}
	return out
}
