package grammar

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// DefaultThreshold is the similarity at which an OCR-corrupted label still counts
const DefaultThreshold = 0.9

// Substitutions cost as much as a delete plus an insert, which turns the
// distance into the indel ratio used for receipt labels.
var ratioParams = levenshtein.NewParams().SubCost(2)

// Similarity returns a case-insensitive edit-distance ratio in [0,1]
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(strings.ToLower(a), strings.ToLower(b), ratioParams)
}

// Label is a printed label OCR is known to corrupt
type Label struct {
	Target    string
	Threshold float64
	// Reject lists substrings that disqualify a candidate even when it is
	// similar enough, e.g. "balance" for "points earned".
	Reject []string
}

// NewLabel returns a label at DefaultThreshold
func NewLabel(target string, reject ...string) Label {
	return Label{Target: target, Threshold: DefaultThreshold, Reject: reject}
}

// Match reports whether candidate reads as the label
func (l Label) Match(candidate string) bool {
	threshold := l.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if Similarity(l.Target, strings.TrimSpace(candidate)) < threshold {
		return false
	}
	lower := strings.ToLower(candidate)
	for _, r := range l.Reject {
		if strings.Contains(lower, strings.ToLower(r)) {
			return false
		}
	}
	return true
}

// Predicate adapts the label for the anchor locator
func (l Label) Predicate() Predicate {
	return l.Match
}

// LabelSet classifies a candidate against labels sharing long substrings.
// The most specific (longest) target is always tried first.
type LabelSet struct {
	labels []Label
}

// NewLabelSet orders labels longest target first
func NewLabelSet(labels ...Label) LabelSet {
	sorted := make([]Label, len(labels))
	copy(sorted, labels)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Target) > len(sorted[j].Target)
	})
	return LabelSet{labels: sorted}
}

// Classify returns the target of the first label matching candidate
func (ls LabelSet) Classify(candidate string) (string, bool) {
	for _, l := range ls.labels {
		if l.Match(candidate) {
			return l.Target, true
		}
	}
	return "", false
}

// Is returns a predicate accepting tokens that classify as target
func (ls LabelSet) Is(target string) Predicate {
	return func(t string) bool {
		got, ok := ls.Classify(t)
		return ok && got == target
	}
}
