package grammar

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// PriceShape is how a vendor prints an item's amount
type PriceShape int

const (
	// GluedPrice is an amount fused to its VAT code: "1.65A".
	GluedPrice PriceShape = iota
	// SplitPrice is an amount followed by a standalone VAT code token: "1.65", "A".
	SplitPrice
	// PlainPrice is a bare amount: "1.65".
	PlainPrice
)

// NamePosition is where the item name sits relative to its price
type NamePosition int

const (
	NameBefore NamePosition = iota
	NameAfter
)

// ItemRules parameterizes the shared segmentation walk for one vendor
type ItemRules struct {
	// Shapes are tried in order; the first that matches wins.
	Shapes   []PriceShape
	TaxCodes []string
	Names    NamePosition

	// SignedDiscounts treats a leading minus on the amount as a reduction.
	SignedDiscounts bool
	// IsDiscount marks a group whose name denotes a reduction.
	IsDiscount Predicate
	// IsBundle marks a group belonging to a multi-item offer.
	IsBundle Predicate
	// BundleIsDiscount makes every bundle group a reduction of the previous item.
	BundleIsDiscount bool
	// Exclude drops groups whose name is a label such as "Subtotal:".
	Exclude Predicate
}

// SpanKind tells what a segmentation step did with the tokens it consumed
type SpanKind int

const (
	SpanItem SpanKind = iota
	SpanReduction
	SpanExcluded
	SpanOrphan
	SpanSkip
)

var spanKindNames = [...]string{"item", "reduction", "excluded", "orphan", "skip"}

func (k SpanKind) String() string {
	if k < 0 || int(k) >= len(spanKindNames) {
		return "unknown"
	}
	return spanKindNames[k]
}

// Span is the half-open token range one segmentation step consumed
type Span struct {
	Start int
	End   int
	Kind  SpanKind
}

// Segmentation is the output of Segment
type Segmentation struct {
	Items []models.Item
	// Spans partition the segmented stream in order.
	Spans []Span
}

type group struct {
	name    string
	amount  Amount
	taxCode string
	end     int
	named   bool
}

// Segment walks s with a cursor and groups tokens into priced items
func Segment(s Stream, r ItemRules) Segmentation {
	seg := Segmentation{Items: []models.Item{}}
	for i := 0; i < s.Len(); {
		g, ok := r.groupAt(s, i)
		if !ok {
			seg.Spans = append(seg.Spans, Span{Start: i, End: i + 1, Kind: SpanSkip})
			i++
			continue
		}
		seg.Spans = append(seg.Spans, Span{Start: i, End: g.end, Kind: seg.apply(r, g)})
		i = g.end
	}
	return seg
}

func (seg *Segmentation) apply(r ItemRules, g group) SpanKind {
	if !g.named {
		return SpanOrphan
	}
	if r.Exclude != nil && r.Exclude(g.name) {
		return SpanExcluded
	}
	bundle := r.IsBundle != nil && r.IsBundle(g.name)
	reduction := (r.SignedDiscounts && g.amount.Negative) ||
		(r.IsDiscount != nil && r.IsDiscount(g.name)) ||
		(bundle && r.BundleIsDiscount)

	if reduction && len(seg.Items) > 0 {
		last := &seg.Items[len(seg.Items)-1]
		last.Discount = last.Discount.Add(g.amount.Value)
		if bundle {
			last.IsMealDeal = true
		}
		return SpanReduction
	}
	seg.Items = append(seg.Items, models.Item{
		Name:       g.name,
		Price:      g.amount.Value,
		TaxCode:    g.taxCode,
		Discount:   decimal.Zero,
		IsDiscount: reduction,
		IsMealDeal: bundle,
	})
	return SpanItem
}

// groupAt tests the price shapes at position i in priority order
func (r ItemRules) groupAt(s Stream, i int) (group, bool) {
	if r.Names == NameBefore {
		name, ok := s.At(i)
		if !ok || strings.TrimSpace(name) == "" || isPriceToken(name) {
			return group{}, false
		}
		g, ok := r.priceAt(s, i+1)
		if !ok {
			return group{}, false
		}
		g.name, g.named = strings.TrimSpace(name), true
		return g, true
	}

	g, ok := r.priceAt(s, i)
	if !ok {
		return group{}, false
	}
	if name, ok := s.At(g.end); ok && strings.TrimSpace(name) != "" && !isPriceToken(name) {
		g.name, g.named = strings.TrimSpace(name), true
		g.end++
	}
	return g, true
}

// priceAt matches the amount tokens starting at i; end is just past them
func (r ItemRules) priceAt(s Stream, i int) (group, bool) {
	tok, ok := s.At(i)
	if !ok {
		return group{}, false
	}
	for _, shape := range r.Shapes {
		switch shape {
		case GluedPrice:
			if amt, code, ok := ParseGluedPrice(tok); ok {
				return group{amount: amt, taxCode: code, end: i + 1}, true
			}
		case SplitPrice:
			amt, ok := ParsePrice(tok)
			if !ok {
				continue
			}
			if code, ok := s.At(i + 1); ok && r.isTaxCode(code) {
				return group{amount: amt, taxCode: strings.TrimSpace(code), end: i + 2}, true
			}
		case PlainPrice:
			if amt, ok := ParsePrice(tok); ok {
				return group{amount: amt, end: i + 1}, true
			}
		}
	}
	return group{}, false
}

func (r ItemRules) isTaxCode(tok string) bool {
	tok = strings.TrimSpace(tok)
	for _, c := range r.TaxCodes {
		if tok == c {
			return true
		}
	}
	return false
}

func isPriceToken(tok string) bool {
	if _, ok := ParsePrice(tok); ok {
		return true
	}
	_, _, ok := ParseGluedPrice(tok)
	return ok
}
