package routing

// Route identifies the extraction strategy chosen for a transcript. A route
// is selected once per extraction call and never revisited within it.
type Route string

const (
	// RouteCorrupted means transcription produced almost nothing; extraction
	// is skipped entirely and an empty result with an advisory is returned.
	RouteCorrupted Route = "corrupted"

	// RoutePrimaryOnly trusts the external language-model path directly.
	RoutePrimaryOnly Route = "primary_only"

	// RouteEnsemble runs both paths and merges by per-field precedence.
	RouteEnsemble Route = "ensemble"

	// RouteFallbackOnly uses deterministic regex extraction only.
	RouteFallbackOnly Route = "fallback_only"
)

// IsValid reports whether r is a recognized route.
func (r Route) IsValid() bool {
	switch r {
	case RouteCorrupted, RoutePrimaryOnly, RouteEnsemble, RouteFallbackOnly:
		return true
	}
	return false
}

// Decision carries the chosen route plus the inputs that produced it, for
// audit logging and persistence alongside the extracted record.
type Decision struct {
	Route        Route
	QualityScore float64
	Language     string
	WordCount    int
	Confidence   float64
	CharCount    int
}

// Thresholds are the decision-table boundaries of the [Selector]. The zero
// value is not meaningful; use [DefaultThresholds].
type Thresholds struct {
	// CorruptedMaxWords: strictly below this word count the input is treated
	// as corrupted and extraction is skipped.
	CorruptedMaxWords int

	// PrimaryMinWords and PrimaryMinConfidence gate the primary-only route.
	PrimaryMinWords      int
	PrimaryMinConfidence float64

	// EnsembleMinWords and EnsembleMinConfidence gate the ensemble route.
	EnsembleMinWords      int
	EnsembleMinConfidence float64
}

// DefaultThresholds returns the production decision-table boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CorruptedMaxWords:     5,
		PrimaryMinWords:       100,
		PrimaryMinConfidence:  0.6,
		EnsembleMinWords:      50,
		EnsembleMinConfidence: 0.4,
	}
}

// Selector maps [Metrics] onto a [Route] using a fixed decision table,
// evaluated top to bottom with first match winning:
//
//  1. word count below the corrupted cutoff -> [RouteCorrupted]
//  2. long and confident input             -> [RoutePrimaryOnly]
//  3. the ambiguous middle band            -> [RouteEnsemble]
//  4. everything else                      -> [RouteFallbackOnly]
//
// The table favors the higher-cost primary path whenever the input is long
// and clean enough to justify it, and never rejects input for low keyword
// density alone: the primary extractor's language understanding is trusted
// over a keyword heuristic.
type Selector struct {
	thresholds Thresholds
}

// NewSelector returns a [Selector] with the given thresholds.
func NewSelector(t Thresholds) *Selector {
	return &Selector{thresholds: t}
}

// Select applies the decision table to m and returns the route with its
// audit metadata. It is a pure function of its inputs.
func (s *Selector) Select(m Metrics) Decision {
	d := Decision{
		QualityScore: m.OverallQuality,
		Language:     m.Language,
		WordCount:    m.WordCount,
		Confidence:   m.ExternalConfidence,
		CharCount:    m.CharCount,
	}

	t := s.thresholds
	switch {
	case m.WordCount < t.CorruptedMaxWords:
		d.Route = RouteCorrupted
	case m.WordCount >= t.PrimaryMinWords && m.ExternalConfidence >= t.PrimaryMinConfidence:
		d.Route = RoutePrimaryOnly
	case m.WordCount >= t.EnsembleMinWords && m.ExternalConfidence >= t.EnsembleMinConfidence:
		d.Route = RouteEnsemble
	default:
		d.Route = RouteFallbackOnly
	}

	return d
}
