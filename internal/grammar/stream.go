// Package grammar turns the ordered text fragments recognized on a UK grocery
// receipt into a structured models.Receipt.
//
// Everything in this package is a pure function of its input stream: there is
// no package-level mutable state, so one Extractor may serve many goroutines.
package grammar

import (
	"strings"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// Stream is an immutable, order-preserving sequence of recognized tokens.
// The order is the OCR reading order and is the only positional signal.
type Stream struct {
	tokens []string
}

// NewStream copies texts into a new stream
func NewStream(texts ...string) Stream {
	tokens := make([]string, len(texts))
	copy(tokens, texts)
	return Stream{tokens: tokens}
}

// FromFragments builds a stream from OCR results, keeping only the text
func FromFragments(frags []models.Fragment) Stream {
	tokens := make([]string, len(frags))
	for i, f := range frags {
		tokens[i] = f.Text
	}
	return Stream{tokens: tokens}
}

// Len returns the number of tokens
func (s Stream) Len() int {
	return len(s.tokens)
}

// Empty reports whether the stream holds no non-blank token
func (s Stream) Empty() bool {
	for _, t := range s.tokens {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}

// At returns the token at i; an out-of-range index is a miss, not a fault
func (s Stream) At(i int) (string, bool) {
	if i < 0 || i >= len(s.tokens) {
		return "", false
	}
	return s.tokens[i], true
}

// Tokens returns a copy of the underlying tokens
func (s Stream) Tokens() []string {
	out := make([]string, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Slice returns tokens[from:to] with both bounds clamped to the stream
func (s Stream) Slice(from, to int) Stream {
	if from < 0 {
		from = 0
	}
	if to > len(s.tokens) {
		to = len(s.tokens)
	}
	if from >= to {
		return Stream{}
	}
	return Stream{tokens: s.tokens[from:to:to]}
}

// Without returns a copy of the stream with every token matching p removed
func (s Stream) Without(p Predicate) Stream {
	out := make([]string, 0, len(s.tokens))
	for _, t := range s.tokens {
		if !p(t) {
			out = append(out, t)
		}
	}
	return Stream{tokens: out}
}
