package grammar

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

func lidlReceipt() Stream {
	return NewStream(
		"Lidl", "LON-Stratford", "GBP",
		"1.65A", "Bananas",
		"1.99", "A", "Milk",
		"TOTAL", "3.64",
		"CARD", "3.64",
		"Date: 16/11/24", "Time: 12:01",
	)
}

func sainsburyReceipt() Stream {
	return NewStream(
		"Sainsbury's", "Good food for all of us", "Stratford", "S2345",
		"Vat Number", "660 4548 36",
		"Milk", "1.45",
		"Saving", "-0.30",
		"MEAL DEAL WRAP", "3.50",
		"3 BALANCE DUE", "£4.65",
		"Visa DEBIT", "£4.65",
		"CHANGE", "£0.00",
		"PROMOTIONS", "-£0.30",
		"[C] 1234",
		"POINTS EARNED", "4",
		"NEW POINTS BALANCE", "104",
		"AID:", "A0000000031010",
		"TID:", "1234567",
		"18:04:49 16NOV2024",
	)
}

func tescoReceipt() Stream {
	return NewStream(
		"TESCO", "Stratford Extra", "VAT Number: GB220430231",
		"Chicken Wrap", "3.00",
		"Crisps", "1.25",
		"Meal Deal", "1.00",
		"2",
		"Subtotal:", "3.25",
		"TOTAL", "3.25",
		"Card", "3.25",
		"Clubcard points earned:", "12",
		"Clubcard points balance:", "340",
		"Store 2345",
		"12/03/2024 17:45",
	)
}

func TestExtractLidl(t *testing.T) {
	t.Parallel()

	r, err := Extract(models.VendorLidl, lidlReceipt())
	require.NoError(t, err)

	assert.Equal(t, models.VendorLidl, r.Vendor)
	assert.Equal(t, "Lidl", r.MarketName)
	assert.Equal(t, "LON-Stratford", r.MarketAddress)
	assert.Equal(t, "GB 341 8559 95", r.VATNumber)
	assert.Equal(t, "3.64", r.TotalPrice.StringFixed(2))
	assert.Equal(t, models.PaymentCard, r.PaymentType)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "Bananas", r.Items[0].Name)
	assert.Equal(t, "Milk", r.Items[1].Name)
	require.NotNil(t, r.ShoppingDate)
	assert.True(t, r.ShoppingDate.Equal(time.Date(2024, time.November, 16, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, r.ShoppingTime)
	assert.Equal(t, "12:01", *r.ShoppingTime)
	assert.Nil(t, r.Loyalty)
	assert.Nil(t, r.CardDetails)
	assert.Nil(t, r.Sainsbury)
	assert.Nil(t, r.Tesco)
}

func TestExtractLidlAddressWithoutLogo(t *testing.T) {
	t.Parallel()

	s := NewStream("LON-Stratford", "GBP", "1.65A", "Bananas", "TOTAL", "1.65")
	r, err := Extract(models.VendorLidl, s)
	require.NoError(t, err)
	assert.Equal(t, "LON-Stratford", r.MarketAddress)
	require.Len(t, r.Items, 1)

	r, err = Extract(models.VendorLidl, NewStream("1.65A", "Bananas", "TOTAL", "1.65"))
	require.NoError(t, err)
	assert.Equal(t, "", r.MarketAddress)
}

func TestExtractSainsbury(t *testing.T) {
	t.Parallel()

	r, err := Extract(models.VendorSainsbury, sainsburyReceipt())
	require.NoError(t, err)

	assert.Equal(t, "Sainsbury's", r.MarketName)
	assert.Equal(t, "Stratford", r.MarketAddress)
	assert.Equal(t, "S2345", r.ShopID)
	assert.Equal(t, "4.65", r.TotalPrice.StringFixed(2))
	assert.Equal(t, models.PaymentCard, r.PaymentType)

	require.Len(t, r.Items, 1)
	assert.Equal(t, "Milk", r.Items[0].Name)
	assert.Equal(t, "0.30", r.Items[0].Discount.StringFixed(2))

	require.NotNil(t, r.Sainsbury)
	require.Len(t, r.Sainsbury.MealDealItems, 1)
	assert.Equal(t, "MEAL DEAL WRAP", r.Sainsbury.MealDealItems[0].Name)
	assert.Equal(t, 3, r.Sainsbury.TotalItems)
	assert.Equal(t, 2, r.ItemCount())
	assert.True(t, r.Sainsbury.Change.IsZero())
	assert.Equal(t, "0.30", r.Sainsbury.PromotionsSavings.StringFixed(2))

	require.NotNil(t, r.Loyalty)
	assert.Equal(t, "1234", r.Loyalty.CardNumber)
	assert.Equal(t, 4, r.Loyalty.PointsEarned)
	assert.Equal(t, 104, r.Loyalty.NewBalance)
	assert.Equal(t, 0, r.Loyalty.PreviousBalance)

	require.NotNil(t, r.CardDetails)
	assert.Equal(t, "A0000000031010", r.CardDetails.AID)
	assert.Equal(t, "1234567", r.CardDetails.TerminalID)
	assert.Equal(t, "", r.CardDetails.ICC)

	require.NotNil(t, r.ShoppingDate)
	assert.True(t, r.ShoppingDate.Equal(time.Date(2024, time.November, 16, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, r.ShoppingTime)
	assert.Equal(t, "18:04:49", *r.ShoppingTime)
}

func TestExtractSainsburyCardWithoutSlip(t *testing.T) {
	t.Parallel()

	s := NewStream("Sainsbury's", "Milk", "1.45", "1 BALANCE DUE", "£1.45", "Visa DEBIT", "£1.45")
	r, err := Extract(models.VendorSainsbury, s)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCard, r.PaymentType)
	assert.Nil(t, r.CardDetails)
	assert.Nil(t, r.Loyalty)
}

func TestExtractSainsburyUnreadableNectar(t *testing.T) {
	t.Parallel()

	s := NewStream(
		"Sainsbury's", "Milk", "1.45", "1 BALANCE DUE", "£1.45",
		"POINTS EARNED", "four",
		"NEW POINTS BALANCE", "l04",
	)
	r, err := Extract(models.VendorSainsbury, s)
	require.NoError(t, err)

	// anchors present, values unreadable: block kept with defaults
	require.NotNil(t, r.Loyalty)
	assert.Equal(t, 0, r.Loyalty.PointsEarned)
	assert.Equal(t, 0, r.Loyalty.NewBalance)
	assert.Equal(t, "", r.Loyalty.CardNumber)
}

func TestExtractTesco(t *testing.T) {
	t.Parallel()

	r, err := Extract(models.VendorTesco, tescoReceipt())
	require.NoError(t, err)

	assert.Equal(t, "Stratford Extra", r.MarketAddress)
	assert.Equal(t, "3.25", r.TotalPrice.StringFixed(2))
	assert.Equal(t, models.PaymentCard, r.PaymentType)
	assert.Equal(t, "Store 2345", r.ShopID)

	require.Len(t, r.Items, 2)
	assert.Equal(t, "Chicken Wrap", r.Items[0].Name)
	assert.Equal(t, "Crisps", r.Items[1].Name)
	assert.True(t, r.Items[1].IsMealDeal)
	assert.Equal(t, "1.00", r.Items[1].Discount.StringFixed(2))

	require.NotNil(t, r.Tesco)
	assert.Equal(t, "3.25", r.Tesco.Subtotal.StringFixed(2))
	assert.True(t, r.Tesco.Savings.IsZero())
	assert.Equal(t, "2345", r.Tesco.StoreID)

	require.NotNil(t, r.Loyalty)
	assert.Equal(t, 12, r.Loyalty.PointsEarned)
	assert.Equal(t, 340, r.Loyalty.NewBalance)

	require.NotNil(t, r.ShoppingDate)
	assert.True(t, r.ShoppingDate.Equal(time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "17:45", *r.ShoppingTime)
}

func TestExtractTescoReprinted(t *testing.T) {
	t.Parallel()

	s := NewStream(
		"TESCO", "VAT", "Header", "1.00",
		"REPRINTED RECEIPT", "Milk", "1.10", "REPRINTED RECEIPT",
		"Subtotal:", "1.10",
	)
	r, err := Extract(models.VendorTesco, s)
	require.NoError(t, err)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "Milk", r.Items[0].Name)
}

func TestExtractTotal(t *testing.T) {
	t.Parallel()

	for _, v := range []models.Vendor{models.VendorLidl, models.VendorTesco} {
		r, err := Extract(v, NewStream(string(v), "TOTAL", "12.50"))
		require.NoError(t, err, v)
		assert.Equal(t, "12.50", r.TotalPrice.StringFixed(2), v)
		assert.Empty(t, r.Items)
		assert.NotNil(t, r.Items)
	}
}

func TestExtractWithoutTotalAnchor(t *testing.T) {
	t.Parallel()

	r, err := Extract(models.VendorLidl, NewStream("Lidl", "GBP", "1.99A", "Milk", "CARD"))
	require.NoError(t, err)
	assert.True(t, r.TotalPrice.IsZero())
	assert.Len(t, r.Items, 1)
	assert.Equal(t, models.PaymentCard, r.PaymentType)

	r, err = Extract(models.VendorSainsbury, NewStream("Sainsbury's", "Milk", "1.45"))
	require.NoError(t, err)
	assert.True(t, r.TotalPrice.IsZero())
	require.Len(t, r.Items, 1)
	assert.Equal(t, models.PaymentCash, r.PaymentType)
	assert.Nil(t, r.Loyalty)
	assert.Nil(t, r.CardDetails)
}

func TestExtractFuzzyClubcardLabel(t *testing.T) {
	t.Parallel()

	s := NewStream("TESCO", "Milk", "1.99", "Subtotal:", "1.99", "Clubcad points earned", "25")
	r, err := Extract(models.VendorTesco, s)
	require.NoError(t, err)
	require.NotNil(t, r.Loyalty)
	assert.Equal(t, 25, r.Loyalty.PointsEarned)
	assert.Equal(t, models.PaymentCash, r.PaymentType)

	strict := NewExtractor(Options{FuzzyThreshold: 0.99})
	r, err = strict.Extract(models.VendorTesco, s)
	require.NoError(t, err)
	assert.Nil(t, r.Loyalty)
}

func TestExtractFailures(t *testing.T) {
	t.Parallel()

	_, err := Extract(models.VendorLidl, NewStream("", "  "))
	assert.ErrorIs(t, err, ErrEmptyStream)

	_, err = Extract(models.VendorLidl, NewStream("Milk", "1.99A"))
	assert.ErrorIs(t, err, ErrEndAnchorNotFound)
	assert.Contains(t, err.Error(), "lidl")

	_, err = Extract(models.Vendor("aldi"), lidlReceipt())
	assert.ErrorIs(t, err, ErrUnknownVendor)

	_, err = NewExtractor(Options{}).ExtractAuto(NewStream("hello", "1.99"))
	assert.ErrorIs(t, err, ErrUnknownVendor)
}

func TestExtractAuto(t *testing.T) {
	t.Parallel()

	e := NewExtractor(Options{})
	for want, s := range map[models.Vendor]Stream{
		models.VendorLidl:      lidlReceipt(),
		models.VendorSainsbury: sainsburyReceipt(),
		models.VendorTesco:     tescoReceipt(),
	} {
		r, err := e.ExtractAuto(s)
		require.NoError(t, err)
		assert.Equal(t, want, r.Vendor)
	}
}

func TestExtractDeterministicAndConcurrent(t *testing.T) {
	t.Parallel()

	e := NewExtractor(Options{})
	want, err := e.Extract(models.VendorSainsbury, sainsburyReceipt())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*models.Receipt, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = e.Extract(models.VendorSainsbury, sainsburyReceipt())
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestItemSpans(t *testing.T) {
	t.Parallel()

	items, spans, err := NewExtractor(Options{}).ItemSpans(models.VendorLidl, lidlReceipt())
	require.NoError(t, err)
	assert.Equal(t, 5, items.Len())
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Start: 2, End: 5, Kind: SpanItem}, spans[1])
}

func TestDetectVendor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    Stream
		want models.Vendor
		ok   bool
	}{
		{"tesco header", NewStream("TESCO", "Milk"), models.VendorTesco, true},
		{"misread tesco", NewStream("TESC0"), models.VendorTesco, true},
		{"clubcard", NewStream("x", "Clubcard points earned:"), models.VendorTesco, true},
		{"sainsbury", NewStream("SAINSBURY'S"), models.VendorSainsbury, true},
		{"nectar", NewStream("Nectar card"), models.VendorSainsbury, true},
		{"lidl plus", NewStream("Lidl Plus"), models.VendorLidl, true},
		{"earliest token wins", NewStream("Lidl", "Tesco voucher"), models.VendorLidl, true},
		{"unknown", NewStream("ALDI", "Milk"), "", false},
		{"empty", NewStream(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectVendor(tt.s)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
