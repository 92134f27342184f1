package grammar

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

var tescoStore = regexp.MustCompile(`Store\s*(\d+)`)

const (
	clubcardEarned  = "Clubcard points earned:"
	clubcardBalance = "Clubcard points balance:"
)

var tescoCard = AnyOf(EqualFold("Card"), ContainsFold("visa"), ContainsFold("mastercard"))

func tescoGrammar(opts Options) vendorGrammar {
	return vendorGrammar{
		vendor:     models.VendorTesco,
		marketName: "Tesco",
		vatNumber:  "220 4302 31",
		endAnchors: []Predicate{
			Contains("Subtotal"),
			Contains("TOTAL"),
			EqualFold("Card"),
			EqualFold("Cash"),
			ContainsFold("change due"),
		},
		landmarks: AnyOf(Equals("TESCO"), ContainsFold("clubcard"), Contains("REPRINTED RECEIPT")),
		selectItems: tescoItems,
		items: ItemRules{
			Shapes:           []PriceShape{PlainPrice},
			Names:            NameBefore,
			IsDiscount:       Contains("Cc"),
			IsBundle:         EqualFold("Meal Deal"),
			BundleIsDiscount: true,
			Exclude: AnyOf(
				Contains("Subtotal:"),
				Contains("TOTAL:"),
				Contains("Savings:"),
				Contains("Promotions:"),
				Contains("Card"),
			),
		},
		dateTime: DateTimeRules{
			Combined:   []*regexp.Regexp{SlashDateThenTime},
			Dates:      []*regexp.Regexp{DateSlash},
			Times:      []*regexp.Regexp{TimeHHMM, TimeHHMMSS},
			FromBottom: true,
		},
		total:   Field{Key: "total", Anchor: AnyOf(Equals("TOTAL"), Equals("TOTAL:")), Parse: Price},
		address: []Field{{Key: "address", Anchor: Equals("TESCO")}},
		card:    tescoCard,
		finish:  tescoFinisher(opts),
	}
}

// tescoItems prefers the block between two "REPRINTED RECEIPT" markers.
// Otherwise the list runs from after the last VAT line to the subtotal.
// Bare integers are quantity and barcode noise.
func tescoItems(s Stream, end int) Stream {
	if marks := s.FindAll(Contains("REPRINTED RECEIPT")); len(marks) >= 2 {
		return s.Slice(marks[0]+1, marks[1]).Without(IsInteger)
	}
	start := 0
	if i, ok := lastBefore(s, end, Contains("VAT")); ok {
		start = i + 1
	}
	return s.Slice(start, end).Without(IsInteger)
}

func tescoFinisher(opts Options) func(Stream, *models.Receipt) {
	clubcard := NewLabelSet(
		Label{Target: clubcardEarned, Threshold: opts.FuzzyThreshold, Reject: []string{"balance"}},
		Label{Target: clubcardBalance, Threshold: opts.FuzzyThreshold},
	)
	fields := MustFields(
		Field{Key: "earned", Anchor: clubcard.Is(clubcardEarned), Offsets: NextOrPrevious, Parse: Integer},
		Field{Key: "balance", Anchor: clubcard.Is(clubcardBalance), Offsets: NextOrPrevious, Parse: Integer},
	)

	return func(s Stream, r *models.Receipt) {
		d := &models.TescoDetails{
			Subtotal: lookupDecimal(ReadField(s, Field{Anchor: Contains("Subtotal:"), Parse: Price})).Or(decimal.Zero),
			Savings:  lookupDecimal(ReadField(s, Field{Anchor: Contains("Savings:"), Parse: Price})).Or(decimal.Zero),
		}
		if i, ok := s.FindFirst(Matches(tescoStore)); ok {
			tok, _ := s.At(i)
			d.StoreID = tescoStore.FindStringSubmatch(tok)[1]
			r.ShopID = "Store " + d.StoreID
		}
		r.Tesco = d

		points := ReadFields(s, fields)
		if AnyAnchored(points) {
			r.Loyalty = &models.LoyaltyAccount{
				PointsEarned: lookupInt(points["earned"]).Or(0),
				NewBalance:   lookupInt(points["balance"]).Or(0),
			}
		}
	}
}
