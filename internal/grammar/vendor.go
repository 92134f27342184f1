package grammar

import (
	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// vendorGrammar is the descriptor one shared pipeline consumes per retailer
type vendorGrammar struct {
	vendor     models.Vendor
	marketName string
	vatNumber  string

	// endAnchors delimit the item list, primary marker first. The rest are
	// structural fallbacks used when OCR dropped the primary marker.
	endAnchors []Predicate
	// landmarks identify the vendor layout when every end anchor is gone;
	// the item list then runs to the end of the stream.
	landmarks Predicate
	// selectItems cuts the item list out of s given the end anchor index.
	selectItems func(s Stream, end int) Stream

	items    ItemRules
	dateTime DateTimeRules
	total    Field
	card     Predicate
	// address lists where the store address may sit, tried in order.
	address  []Field

	// finish fills the vendor-specific parts of the receipt.
	finish func(s Stream, r *models.Receipt)
}

// itemSlice returns the item list, or false when no end anchor exists
func (g vendorGrammar) itemSlice(s Stream) (Stream, bool) {
	end, ok := firstOf(s, g.endAnchors...)
	if !ok {
		if g.landmarks == nil || !s.Any(g.landmarks) {
			return Stream{}, false
		}
		end = s.Len()
	}
	return g.selectItems(s, end), true
}

// firstOf returns the index of the first predicate (in priority order) present in s
func firstOf(s Stream, ps ...Predicate) (int, bool) {
	for _, p := range ps {
		if i, ok := s.FindFirst(p); ok {
			return i, true
		}
	}
	return -1, false
}

// lastBefore returns the last index below end matching p
func lastBefore(s Stream, end int, p Predicate) (int, bool) {
	found := -1
	for _, i := range s.FindAll(p) {
		if i >= end {
			break
		}
		found = i
	}
	return found, found >= 0
}
