package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Parser validates and normalizes the token read for a field
type Parser func(token string) (string, bool)

// Field describes where a value sits relative to its anchor.
// Offsets holds the primary offset and at most one fallback; MustFields
// rejects longer lists.
type Field struct {
	Key     string
	Anchor  Predicate
	Offsets []int
	Parse   Parser
}

// Next reads the token after the anchor
var Next = []int{1}

// NextOrPrevious reads the token after the anchor, else the one before it
var NextOrPrevious = []int{1, -1}

// MustFields returns fs, panicking when a field lists more than one
// fallback offset. Field tables are static, so this runs at package init.
func MustFields(fs ...Field) []Field {
	for _, f := range fs {
		if len(f.Offsets) > 2 {
			panic(fmt.Sprintf("grammar: field %q has %d offsets, want at most 2", f.Key, len(f.Offsets)))
		}
	}
	return fs
}

// ReadField locates the anchor and reads the value at the field's offsets
func ReadField(s Stream, f Field) Lookup[string] {
	idx, ok := s.FindFirst(f.Anchor)
	if !ok {
		return missing[string](AnchorNotFound)
	}
	return readAt(s, idx, f)
}

// ReadFirst tries each field in order and returns the first value found.
// When none yields a value the last outcome is reported.
func ReadFirst(s Stream, fs ...Field) Lookup[string] {
	res := missing[string](AnchorNotFound)
	for _, f := range fs {
		if res = ReadField(s, f); res.Outcome == Found {
			return res
		}
	}
	return res
}

func readAt(s Stream, idx int, f Field) Lookup[string] {
	offsets := f.Offsets
	if len(offsets) == 0 {
		offsets = Next
	}
	parse := f.Parse
	if parse == nil {
		parse = Text
	}
	for _, off := range offsets {
		tok, ok := s.At(idx + off)
		if !ok {
			continue
		}
		if v, ok := parse(tok); ok {
			return found(v)
		}
	}
	return missing[string](PatternMismatch)
}

// ReadFields reads every field and keys the results by Field.Key
func ReadFields(s Stream, fields []Field) map[string]Lookup[string] {
	out := make(map[string]Lookup[string], len(fields))
	for _, f := range fields {
		out[f.Key] = ReadField(s, f)
	}
	return out
}

// AnyAnchored reports whether at least one lookup located its anchor
func AnyAnchored(results map[string]Lookup[string]) bool {
	for _, r := range results {
		if r.Outcome != AnchorNotFound {
			return true
		}
	}
	return false
}

// Text accepts any non-blank token
func Text(tok string) (string, bool) {
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// Integer accepts a bare run of digits
func Integer(tok string) (string, bool) {
	tok = strings.TrimSpace(tok)
	return tok, IsInteger(tok)
}

// Price accepts a price token and returns its absolute value
func Price(tok string) (string, bool) {
	amt, ok := ParsePrice(tok)
	if !ok {
		return "", false
	}
	return amt.Value.StringFixed(2), true
}

// StripLabel reads the anchor token itself with label removed, e.g. "[ICC]"
func StripLabel(label string) Parser {
	return func(tok string) (string, bool) {
		return Text(strings.ReplaceAll(tok, label, ""))
	}
}

func lookupInt(l Lookup[string]) Lookup[int] {
	return mapLookup(l, func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	})
}

func lookupDecimal(l Lookup[string]) Lookup[decimal.Decimal] {
	return mapLookup(l, func(s string) (decimal.Decimal, bool) {
		d, err := decimal.NewFromString(s)
		return d, err == nil
	})
}
