package extract

import "fmt"

// ErrorKind classifies a primary-path extraction failure so the cascade can
// distinguish backend trouble from unparseable model output.
type ErrorKind int

const (
	// KindTransport means the model request itself failed (network error,
	// auth failure, context cancellation).
	KindTransport ErrorKind = iota + 1

	// KindParse means the model responded but no recovery strategy could
	// turn the output into valid JSON.
	KindParse
)

// String returns the kind's wire label.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is a classified primary-extraction failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
