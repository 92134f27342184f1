package services

import (
	"github.com/foxxcyber/receipt-grammar/internal/grammar"
	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// ExtractionService turns extraction requests into receipts
type ExtractionService struct {
	extractor *grammar.Extractor
}

// NewExtractionService creates the service with the given label threshold
func NewExtractionService(fuzzyThreshold float64) *ExtractionService {
	return &ExtractionService{
		extractor: grammar.NewExtractor(grammar.Options{FuzzyThreshold: fuzzyThreshold}),
	}
}

// Extract runs the vendor grammar named in req, detecting it when empty
func (s *ExtractionService) Extract(req *models.ExtractRequest) (*models.Receipt, error) {
	return s.ExtractTokens(req.Vendor, req.Texts())
}

// ExtractTokens runs the vendor grammar over tokens, detecting the vendor when empty
func (s *ExtractionService) ExtractTokens(vendor models.Vendor, tokens []string) (*models.Receipt, error) {
	stream := grammar.NewStream(tokens...)
	if vendor == "" {
		return s.extractor.ExtractAuto(stream)
	}
	return s.extractor.Extract(vendor, stream)
}

// SpanTrace is one step of item segmentation with the tokens it consumed
type SpanTrace struct {
	Kind   string   `json:"kind"`
	Tokens []string `json:"tokens"`
}

// Trace shows how the item section of req was segmented, for debugging OCR
// output that produced unexpected items
func (s *ExtractionService) Trace(req *models.ExtractRequest) (models.Vendor, []SpanTrace, error) {
	stream := grammar.FromFragments(req.Fragments)
	if len(req.Fragments) == 0 {
		stream = grammar.NewStream(req.Tokens...)
	}

	vendor := req.Vendor
	if vendor == "" {
		detected, ok := grammar.DetectVendor(stream)
		if !ok {
			return "", nil, grammar.ErrUnknownVendor
		}
		vendor = detected
	}

	items, spans, err := s.extractor.ItemSpans(vendor, stream)
	if err != nil {
		return vendor, nil, err
	}

	traces := make([]SpanTrace, len(spans))
	for i, sp := range spans {
		traces[i] = SpanTrace{Kind: sp.Kind.String(), Tokens: items.Slice(sp.Start, sp.End).Tokens()}
	}
	return vendor, traces, nil
}
