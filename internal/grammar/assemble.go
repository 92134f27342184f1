package grammar

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// Options tune the extractor
type Options struct {
	// FuzzyThreshold is the similarity at which a corrupted label still matches.
	FuzzyThreshold float64
}

// Extractor turns token streams into receipts. It is safe for concurrent use.
type Extractor struct {
	grammars map[models.Vendor]vendorGrammar
}

// NewExtractor builds the vendor grammars for opts
func NewExtractor(opts Options) *Extractor {
	if opts.FuzzyThreshold <= 0 || opts.FuzzyThreshold > 1 {
		opts.FuzzyThreshold = DefaultThreshold
	}
	return &Extractor{
		grammars: map[models.Vendor]vendorGrammar{
			models.VendorLidl:      lidlGrammar(opts),
			models.VendorSainsbury: sainsburyGrammar(opts),
			models.VendorTesco:     tescoGrammar(opts),
		},
	}
}

var defaultExtractor = NewExtractor(Options{})

// Extract runs the default extractor
func Extract(v models.Vendor, s Stream) (*models.Receipt, error) {
	return defaultExtractor.Extract(v, s)
}

// Extract assembles the receipt for vendor v from s. Missing optional
// sections leave their sentinel values; only an empty stream or a stream
// with no item-list end anchor fails.
func (e *Extractor) Extract(v models.Vendor, s Stream) (*models.Receipt, error) {
	g, ok := e.grammars[v]
	if !ok {
		return nil, fmt.Errorf("%q: %w", v, ErrUnknownVendor)
	}
	if s.Empty() {
		return nil, fmt.Errorf("%s: %w", v, ErrEmptyStream)
	}
	itemStream, ok := g.itemSlice(s)
	if !ok {
		return nil, fmt.Errorf("%s: %w", v, ErrEndAnchorNotFound)
	}

	r := &models.Receipt{
		Vendor:        v,
		MarketName:    g.marketName,
		MarketAddress: ReadFirst(s, g.address...).Or(""),
		VATNumber:     g.vatNumber,
		TotalPrice:    lookupDecimal(ReadField(s, g.total)).Or(decimal.Zero),
		PaymentType:   models.PaymentCash,
		Items:         Segment(itemStream, g.items).Items,
	}
	if s.Any(g.card) {
		r.PaymentType = models.PaymentCard
	}
	r.ShoppingDate, r.ShoppingTime = ExtractDateTime(s, g.dateTime)

	if g.finish != nil {
		g.finish(s, r)
	}
	return r, nil
}

// ExtractAuto detects the vendor and extracts
func (e *Extractor) ExtractAuto(s Stream) (*models.Receipt, error) {
	if s.Empty() {
		return nil, ErrEmptyStream
	}
	v, ok := DetectVendor(s)
	if !ok {
		return nil, ErrUnknownVendor
	}
	return e.Extract(v, s)
}

// ItemSpans exposes the segmentation trace for vendor v, used for debugging
// OCR output that produced unexpected items.
func (e *Extractor) ItemSpans(v models.Vendor, s Stream) (Stream, []Span, error) {
	g, ok := e.grammars[v]
	if !ok {
		return Stream{}, nil, fmt.Errorf("%q: %w", v, ErrUnknownVendor)
	}
	itemStream, ok := g.itemSlice(s)
	if !ok {
		return Stream{}, nil, fmt.Errorf("%s: %w", v, ErrEndAnchorNotFound)
	}
	return itemStream, Segment(itemStream, g.items).Spans, nil
}
