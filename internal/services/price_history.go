package services

import (
	"context"
	"sort"
	"strings"

	"github.com/foxxcyber/receipt-grammar/internal/grammar"
	"github.com/foxxcyber/receipt-grammar/internal/models"
)

// ItemHistoryStore finds previously extracted items by trigram similarity
type ItemHistoryStore interface {
	FindSimilarItems(ctx context.Context, userID int, name string, limit int) ([]models.ItemPricePoint, error)
}

// PriceHistory matches an item name against past receipts
type PriceHistory struct {
	store ItemHistoryStore
	// MinSimilarity drops weak candidates after re-ranking.
	MinSimilarity float64
}

// NewPriceHistory creates a new price history lookup
func NewPriceHistory(store ItemHistoryStore) *PriceHistory {
	return &PriceHistory{store: store, MinSimilarity: 0.5}
}

// Find returns past price points for name, best match first
func (p *PriceHistory) Find(ctx context.Context, userID int, name string, limit int) ([]models.ItemPricePoint, error) {
	normalized := NormalizeItemName(name)
	if normalized == "" {
		return []models.ItemPricePoint{}, nil
	}

	// Trigram recall is broad; re-rank with the edit ratio the extractor uses
	candidates, err := p.store.FindSimilarItems(ctx, userID, normalized, limit*4)
	if err != nil {
		return nil, err
	}

	out := make([]models.ItemPricePoint, 0, len(candidates))
	for _, c := range candidates {
		c.Similarity = grammar.Similarity(normalized, NormalizeItemName(c.Name))
		if c.Similarity >= p.MinSimilarity {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Abbreviations UK till receipts print to fit a narrow roll
var itemAbbreviations = map[string]string{
	"org":   "organic",
	"s/s":   "semi skimmed",
	"ss":    "semi skimmed",
	"skmd":  "skimmed",
	"whl":   "whole",
	"chkn":  "chicken",
	"brst":  "breast",
	"fllts": "fillets",
	"ff":    "free from",
	"veg":   "vegetable",
	"frzn":  "frozen",
	"frsh":  "fresh",
	"mlk":   "milk",
	"chse":  "cheese",
	"brd":   "bread",
	"wht":   "white",
	"brn":   "brown",
	"ttd":   "taste the difference",
	"sbury": "sainsbury's",
	"tsc":   "tesco",
	"pk":    "pack",
	"btl":   "bottle",
}

// NormalizeItemName lower-cases a printed item name and expands common
// abbreviations word by word
func NormalizeItemName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		if full, ok := itemAbbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// ConfidenceLevel returns a human-readable similarity level
func ConfidenceLevel(similarity float64) string {
	switch {
	case similarity >= 0.9:
		return "high"
	case similarity >= 0.7:
		return "medium"
	case similarity >= 0.5:
		return "low"
	default:
		return "none"
	}
}
