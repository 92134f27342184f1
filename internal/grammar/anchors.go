package grammar

import (
	"regexp"
	"strings"
)

// Predicate decides whether a token is an anchor
type Predicate func(token string) bool

// Equals matches a token equal to s after trimming blanks
func Equals(s string) Predicate {
	return func(t string) bool { return strings.TrimSpace(t) == s }
}

// EqualFold matches a token equal to s ignoring case
func EqualFold(s string) Predicate {
	return func(t string) bool { return strings.EqualFold(strings.TrimSpace(t), s) }
}

// Contains matches a token holding s
func Contains(s string) Predicate {
	return func(t string) bool { return strings.Contains(t, s) }
}

// ContainsFold matches a token holding s ignoring case
func ContainsFold(s string) Predicate {
	s = strings.ToLower(s)
	return func(t string) bool { return strings.Contains(strings.ToLower(t), s) }
}

// HasPrefix matches a token starting with s
func HasPrefix(s string) Predicate {
	return func(t string) bool { return strings.HasPrefix(strings.TrimSpace(t), s) }
}

// Matches matches a token the regexp accepts
func Matches(re *regexp.Regexp) Predicate {
	return func(t string) bool { return re.MatchString(strings.TrimSpace(t)) }
}

// AnyOf matches when at least one of ps does
func AnyOf(ps ...Predicate) Predicate {
	return func(t string) bool {
		for _, p := range ps {
			if p(t) {
				return true
			}
		}
		return false
	}
}

// Not inverts p
func Not(p Predicate) Predicate {
	return func(t string) bool { return !p(t) }
}

// FindFirst returns the index of the first token matching p
func (s Stream) FindFirst(p Predicate) (int, bool) {
	return s.FindFrom(0, p)
}

// FindFrom returns the index of the first token at or after start matching p
func (s Stream) FindFrom(start int, p Predicate) (int, bool) {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(s.tokens); i++ {
		if p(s.tokens[i]) {
			return i, true
		}
	}
	return -1, false
}

// FindLast returns the index of the last token matching p
func (s Stream) FindLast(p Predicate) (int, bool) {
	for i := len(s.tokens) - 1; i >= 0; i-- {
		if p(s.tokens[i]) {
			return i, true
		}
	}
	return -1, false
}

// FindAll returns the indices of every token matching p, in stream order
func (s Stream) FindAll(p Predicate) []int {
	var idx []int
	for i, t := range s.tokens {
		if p(t) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Any reports whether some token matches p
func (s Stream) Any(p Predicate) bool {
	_, ok := s.FindFirst(p)
	return ok
}

// Between returns the tokens strictly between the first start match and the
// first end match after it. Either anchor missing yields an empty stream.
func (s Stream) Between(start, end Predicate) Stream {
	i, ok := s.FindFirst(start)
	if !ok {
		return Stream{}
	}
	j, ok := s.FindFrom(i+1, end)
	if !ok {
		return Stream{}
	}
	return s.Slice(i+1, j)
}
