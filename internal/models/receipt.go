package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vendor identifies the retailer whose receipt layout produced a token stream
type Vendor string

const (
	VendorLidl      Vendor = "lidl"
	VendorSainsbury Vendor = "sainsbury"
	VendorTesco     Vendor = "tesco"
)

// Vendors lists every supported retailer in a stable order
var Vendors = []Vendor{VendorLidl, VendorSainsbury, VendorTesco}

// Valid reports whether v is one of the supported retailers
func (v Vendor) Valid() bool {
	for _, known := range Vendors {
		if v == known {
			return true
		}
	}
	return false
}

// PaymentType is how the transaction was settled
type PaymentType string

const (
	PaymentCard PaymentType = "CARD"
	PaymentCash PaymentType = "CASH"
)

// Item is one priced line of a receipt
type Item struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	TaxCode    string          `json:"tax_code,omitempty"`
	Discount   decimal.Decimal `json:"discount"`
	IsDiscount bool            `json:"is_discount"`
	IsMealDeal bool            `json:"is_meal_deal"`
}

// LoyaltyAccount holds store rewards-card details (Nectar, Clubcard)
type LoyaltyAccount struct {
	CardNumber      string          `json:"card_number"`
	PointsEarnedOn  decimal.Decimal `json:"points_earned_on"`
	PreviousBalance int             `json:"previous_balance"`
	PointsEarned    int             `json:"points_earned"`
	NewBalance      int             `json:"new_balance"`
	PointsValue     decimal.Decimal `json:"points_value"`
}

// CardPaymentDetails holds the EMV slip printed for a card payment
type CardPaymentDetails struct {
	ICC         string `json:"icc"`
	AID         string `json:"aid"`
	PANSequence string `json:"pan_sequence"`
	Merchant    string `json:"merchant"`
	AuthCode    string `json:"auth_code"`
	TerminalID  string `json:"terminal_id"`
}

// SainsburyDetails are the fields only Sainsbury's receipts print
type SainsburyDetails struct {
	Change            decimal.Decimal `json:"change"`
	PromotionsSavings decimal.Decimal `json:"promotions_savings"`
	MealDealItems     []Item          `json:"meal_deal_items"`
	// TotalItems is the count printed beside BALANCE DUE, not len(Items).
	TotalItems int `json:"total_items"`
}

// TescoDetails are the fields only Tesco receipts print
type TescoDetails struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Savings  decimal.Decimal `json:"savings"`
	StoreID  string          `json:"store_id"`
}

// Receipt is the structured record extracted from one receipt's token stream.
// Optional fields hold "", zero or nil when the receipt did not print them.
type Receipt struct {
	Vendor        Vendor              `json:"vendor"`
	MarketName    string              `json:"market_name"`
	MarketAddress string              `json:"market_address"`
	VATNumber     string              `json:"vat_number"`
	ShopID        string              `json:"shop_id"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	PaymentType   PaymentType         `json:"payment_type"`
	ShoppingDate  *time.Time          `json:"shopping_date"`
	ShoppingTime  *string             `json:"shopping_time"`
	Items         []Item              `json:"items"`
	Loyalty       *LoyaltyAccount     `json:"loyalty"`
	CardDetails   *CardPaymentDetails `json:"card_details"`
	Sainsbury     *SainsburyDetails   `json:"sainsbury,omitempty"`
	Tesco         *TescoDetails       `json:"tesco,omitempty"`
}

// ItemCount returns the number of segmented lines, meal-deal lines included
func (r *Receipt) ItemCount() int {
	n := len(r.Items)
	if r.Sainsbury != nil {
		n += len(r.Sainsbury.MealDealItems)
	}
	return n
}

// StoredReceipt is a persisted extraction owned by a user
type StoredReceipt struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	S3Bucket    *string   `json:"s3_bucket,omitempty"`
	S3Key       *string   `json:"s3_key,omitempty"`
	Tokens      []string  `json:"tokens"`
	Receipt     Receipt   `json:"receipt"`
	ImageURL    *string   `json:"image_url,omitempty"`
	ExtractedAt time.Time `json:"extracted_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReceiptSummary is the list view of a stored receipt
type ReceiptSummary struct {
	ID           int             `json:"id"`
	Vendor       Vendor          `json:"vendor"`
	MarketName   string          `json:"market_name"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	PaymentType  PaymentType     `json:"payment_type"`
	ShoppingDate *time.Time      `json:"shopping_date,omitempty"`
	ItemCount    int             `json:"item_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CreateReceiptRequest is used when persisting a new extraction
type CreateReceiptRequest struct {
	UserID   int
	S3Bucket *string
	S3Key    *string
	Tokens   []string
	Receipt  *Receipt
	TTL      time.Duration
}

// ReceiptListParams contains parameters for listing receipts
type ReceiptListParams struct {
	Limit  int
	Offset int
	Vendor *Vendor
	UserID int
}

// ItemPricePoint is one past observation of an item's price
type ItemPricePoint struct {
	ReceiptID    int             `json:"receipt_id"`
	Vendor       Vendor          `json:"vendor"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
	ShoppingDate *time.Time      `json:"shopping_date,omitempty"`
	Similarity   float64         `json:"similarity"`
}
