package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// Store numbers print as "S2345", sometimes with a leading '#'.
var sainsburyShopID = regexp.MustCompile(`^#?S\d{4}$`)

var sainsburyCard = AnyOf(ContainsFold("visa debit"), ContainsFold("mastercard"))

var nectarFields = MustFields(
	Field{Key: "points_earned_on", Anchor: Equals("POINTS EARNED ON"), Parse: Price},
	Field{Key: "card_number", Anchor: Contains("[C]"), Offsets: []int{0}, Parse: StripLabel("[C]")},
	Field{Key: "previous_balance", Anchor: Contains("PREVIOUS POINTS BALANCE"), Parse: Integer},
	Field{Key: "points_earned", Anchor: Equals("POINTS EARNED"), Parse: Integer},
	Field{Key: "new_balance", Anchor: Contains("NEW POINTS BALANCE"), Parse: Integer},
	Field{Key: "points_value", Anchor: Contains("YOUR POINTS ARE WORTH"), Parse: Price},
)

var emvFields = MustFields(
	Field{Key: "icc", Anchor: Contains("[ICC]"), Offsets: []int{0}, Parse: StripLabel("[ICC]")},
	Field{Key: "aid", Anchor: HasPrefix("AID:")},
	Field{Key: "pan_sequence", Anchor: Contains("PAN SEQUENCE")},
	Field{Key: "merchant", Anchor: HasPrefix("MERCHANT:")},
	Field{Key: "auth_code", Anchor: HasPrefix("AUTH CODE:")},
	Field{Key: "terminal_id", Anchor: HasPrefix("TID:")},
)

func sainsburyGrammar(Options) vendorGrammar {
	return vendorGrammar{
		vendor:     models.VendorSainsbury,
		marketName: "Sainsbury's",
		vatNumber:  "660 4548 36",
		endAnchors: []Predicate{
			Contains("BALANCE DUE"),
			Equals("TOTAL"),
			sainsburyCard,
			Equals("CHANGE"),
			Equals("CASH"),
		},
		landmarks: AnyOf(ContainsFold("sainsbury"), ContainsFold("nectar"), Contains("Vat Number"), Equals("Good food for all of us")),
		selectItems: sainsburyItems,
		items: ItemRules{
			Shapes:          []PriceShape{PlainPrice},
			Names:           NameBefore,
			SignedDiscounts: true,
			IsBundle:        ContainsFold("meal deal"),
		},
		dateTime: DateTimeRules{
			Combined: []*regexp.Regexp{TimeThenCompactDate},
			Dates:    []*regexp.Regexp{DateCompact, DateSlash},
			Times:    []*regexp.Regexp{TimeHHMMSS},
		},
		total:   Field{Key: "total", Anchor: Contains("BALANCE DUE"), Parse: Price},
		address: []Field{{Key: "address", Anchor: Equals("Good food for all of us")}},
		card:    sainsburyCard,
		finish:  finishSainsbury,
	}
}

// sainsburyItems starts after the VAT number line. Without it the list
// starts at the name printed before the first price.
func sainsburyItems(s Stream, end int) Stream {
	if i, ok := s.FindFirst(Contains("Vat Number")); ok && i < end {
		return s.Slice(i+1, end)
	}
	if p, ok := s.FindFirst(isPriceToken); ok && p < end {
		return s.Slice(p-1, end)
	}
	return s.Slice(end, end)
}

func finishSainsbury(s Stream, r *models.Receipt) {
	d := &models.SainsburyDetails{
		Change:            lookupDecimal(ReadField(s, Field{Anchor: Equals("CHANGE"), Parse: Price})).Or(decimal.Zero),
		PromotionsSavings: lookupDecimal(ReadField(s, Field{Anchor: Contains("PROMOTIONS"), Parse: Price})).Or(decimal.Zero),
		TotalItems:        printedItemCount(s),
		MealDealItems:     []models.Item{},
	}

	regular := make([]models.Item, 0, len(r.Items))
	for _, it := range r.Items {
		if it.IsMealDeal {
			d.MealDealItems = append(d.MealDealItems, it)
			continue
		}
		regular = append(regular, it)
	}
	r.Items = regular
	r.Sainsbury = d

	if i, ok := s.FindFirst(Matches(sainsburyShopID)); ok {
		tok, _ := s.At(i)
		r.ShopID = strings.TrimPrefix(strings.TrimSpace(tok), "#")
	}

	nectar := ReadFields(s, nectarFields)
	if AnyAnchored(nectar) {
		r.Loyalty = &models.LoyaltyAccount{
			CardNumber:      nectar["card_number"].Or(""),
			PointsEarnedOn:  lookupDecimal(nectar["points_earned_on"]).Or(decimal.Zero),
			PreviousBalance: lookupInt(nectar["previous_balance"]).Or(0),
			PointsEarned:    lookupInt(nectar["points_earned"]).Or(0),
			NewBalance:      lookupInt(nectar["new_balance"]).Or(0),
			PointsValue:     lookupDecimal(nectar["points_value"]).Or(decimal.Zero),
		}
	}

	if r.PaymentType != models.PaymentCard {
		return
	}
	if emv := ReadFields(s, emvFields); AnyAnchored(emv) {
		r.CardDetails = &models.CardPaymentDetails{
			ICC:         emv["icc"].Or(""),
			AID:         emv["aid"].Or(""),
			PANSequence: emv["pan_sequence"].Or(""),
			Merchant:    emv["merchant"].Or(""),
			AuthCode:    emv["auth_code"].Or(""),
			TerminalID:  emv["terminal_id"].Or(""),
		}
	}
}

// printedItemCount reads N from the "N BALANCE DUE" token
func printedItemCount(s Stream) int {
	i, ok := s.FindFirst(Contains("BALANCE DUE"))
	if !ok {
		return 0
	}
	tok, _ := s.At(i)
	fields := strings.Fields(tok)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
