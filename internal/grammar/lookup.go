package grammar

import "errors"

var (
	// ErrEmptyStream is returned when there is nothing to extract from.
	ErrEmptyStream = errors.New("empty token stream")
	// ErrEndAnchorNotFound is returned when no marker delimiting the item list exists.
	ErrEndAnchorNotFound = errors.New("item list end anchor not found")
	// ErrUnknownVendor is returned when the retailer cannot be identified.
	ErrUnknownVendor = errors.New("unknown vendor")

	ErrAnchorNotFound  = errors.New("anchor not found")
	ErrPatternMismatch = errors.New("pattern mismatch")
)

// Outcome tags the result of a single field lookup
type Outcome int

const (
	Found Outcome = iota
	AnchorNotFound
	PatternMismatch
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case AnchorNotFound:
		return "anchor not found"
	default:
		return "pattern mismatch"
	}
}

// Lookup is the explicit result of reading one field from the stream
type Lookup[T any] struct {
	Value   T
	Outcome Outcome
}

func found[T any](v T) Lookup[T] {
	return Lookup[T]{Value: v, Outcome: Found}
}

func missing[T any](o Outcome) Lookup[T] {
	return Lookup[T]{Outcome: o}
}

// Get returns the value and whether it was found
func (l Lookup[T]) Get() (T, bool) {
	return l.Value, l.Outcome == Found
}

// Or returns the value, or def when the field was not found
func (l Lookup[T]) Or(def T) T {
	if l.Outcome == Found {
		return l.Value
	}
	return def
}

// Err maps the outcome onto ErrAnchorNotFound / ErrPatternMismatch
func (l Lookup[T]) Err() error {
	switch l.Outcome {
	case Found:
		return nil
	case AnchorNotFound:
		return ErrAnchorNotFound
	default:
		return ErrPatternMismatch
	}
}

// mapLookup converts a found value with f; a failed conversion is a mismatch
func mapLookup[T, U any](l Lookup[T], f func(T) (U, bool)) Lookup[U] {
	if l.Outcome != Found {
		return missing[U](l.Outcome)
	}
	u, ok := f(l.Value)
	if !ok {
		return missing[U](PatternMismatch)
	}
	return found(u)
}
