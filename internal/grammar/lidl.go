package grammar

import (
	"regexp"
	"strings"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

func lidlGrammar(Options) vendorGrammar {
	return vendorGrammar{
		vendor:     models.VendorLidl,
		marketName: "Lidl",
		vatNumber:  "GB 341 8559 95",
		endAnchors: []Predicate{
			Equals("TOTAL"),
			Equals("CARD"),
			Equals("CASH"),
			ContainsFold("change"),
		},
		landmarks: AnyOf(EqualFold("Lidl"), ContainsFold("lidl plus"), Equals("GBP")),
		selectItems: func(s Stream, end int) Stream {
			start := 0
			if i, ok := s.FindFirst(EqualFold("GBP")); ok && i < end {
				start = i + 1
			}
			return s.Slice(start, end)
		},
		items: ItemRules{
			Shapes:          []PriceShape{GluedPrice, SplitPrice},
			TaxCodes:        []string{"A", "B"},
			Names:           NameAfter,
			SignedDiscounts: true,
		},
		dateTime: DateTimeRules{
			Dates:     []*regexp.Regexp{DateSlashShort, DateSlash},
			Times:     []*regexp.Regexp{TimeHHMMSS, TimeHHMM},
			Normalize: stripLidlLabels,
		},
		total:   Field{Key: "total", Anchor: Equals("TOTAL"), Parse: Price},
		card:    Equals("CARD"),
		// The address follows the logo; when OCR drops the logo it is
		// still the token before the currency header.
		address: []Field{
			{Key: "address", Anchor: EqualFold("Lidl")},
			{Key: "address", Anchor: EqualFold("GBP"), Offsets: []int{-1}},
		},
	}
}

// stripLidlLabels turns "Date: 16/11/24" into "16/11/24"
func stripLidlLabels(tok string) string {
	for _, label := range []string{"Date:", "Time:"} {
		if strings.HasPrefix(tok, label) {
			return strings.TrimSpace(strings.TrimPrefix(tok, label))
		}
	}
	return tok
}
