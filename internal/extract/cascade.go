// Package extract turns consultation transcripts into structured
// prescription records. It holds the two extraction paths (a language-model
// primary and a deterministic rules fallback), the ensemble merge of both,
// and the [Cascade] that executes whichever path the routing layer selected.
//
// The cascade never returns an error: any primary-path failure degrades to
// the rules path, and unusable input short-circuits to an empty record with
// a user-facing advisory.
package extract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MrWong99/rxtract/internal/routing"
)

// CorruptedAdvisory is attached to results for input too short to contain a
// consultation.
const CorruptedAdvisory = "Please provide a clear audio recording"

// Cascade executes the extraction path chosen by the route selector.
type Cascade struct {
	primary  *PrimaryExtractor
	rules    *RulesExtractor
	ensemble *EnsembleExtractor
	logger   *slog.Logger
}

// NewCascade wires both extraction paths into a route executor.
func NewCascade(primary *PrimaryExtractor, rules *RulesExtractor, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{
		primary:  primary,
		rules:    rules,
		ensemble: NewEnsemble(primary, rules, logger),
		logger:   logger,
	}
}

// Run extracts a record from the transcript along the given route. It never
// returns an error; the rules path serves as the terminal fallback for every
// primary failure, and an unknown route is treated as fallback_only.
func (c *Cascade) Run(ctx context.Context, transcript string, route routing.Route) *Result {
	switch route {
	case routing.RouteCorrupted:
		return &Result{Method: MethodCorrupted, Advisory: CorruptedAdvisory}

	case routing.RoutePrimaryOnly:
		rec, strategy, err := c.primary.Extract(ctx, transcript)
		if err != nil {
			c.logger.Warn("primary extraction failed, falling back to rules", "error", err)
			return &Result{
				Record:       *c.rules.Extract(transcript),
				Method:       MethodRules,
				FellBack:     true,
				FallbackKind: failureKind(err),
			}
		}
		return &Result{Record: *rec, Method: MethodPrimary, Strategy: strategy}

	case routing.RouteEnsemble:
		rec, strategy := c.ensemble.Extract(ctx, transcript)
		return &Result{Record: *rec, Method: MethodEnsemble, Strategy: strategy}

	default:
		if route != routing.RouteFallbackOnly {
			c.logger.Warn("unknown route, using rules extraction", "route", string(route))
		}
		return &Result{Record: *c.rules.Extract(transcript), Method: MethodRules}
	}
}

// failureKind labels a primary-path error for fallback accounting.
func failureKind(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	return "unknown"
}
