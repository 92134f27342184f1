package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

type fakeHistoryStore struct {
	points   []models.ItemPricePoint
	err      error
	gotName  string
	gotLimit int
}

func (f *fakeHistoryStore) FindSimilarItems(_ context.Context, _ int, name string, limit int) ([]models.ItemPricePoint, error) {
	f.gotName, f.gotLimit = name, limit
	return f.points, f.err
}

func TestNormalizeItemName(t *testing.T) {
	assert.Equal(t, "semi skimmed milk", NormalizeItemName("S/S  MLK"))
	assert.Equal(t, "taste the difference white bread", NormalizeItemName("TTD Wht Brd"))
	assert.Equal(t, "", NormalizeItemName("   "))
}

func TestPriceHistoryFind(t *testing.T) {
	store := &fakeHistoryStore{points: []models.ItemPricePoint{
		{ReceiptID: 1, Name: "Bananas", Price: decimal.RequireFromString("0.99")},
		{ReceiptID: 2, Name: "SS MLK", Price: decimal.RequireFromString("1.45")},
		{ReceiptID: 3, Name: "Semi Skimmed Milk 2L", Price: decimal.RequireFromString("1.65")},
	}}
	h := NewPriceHistory(store)

	got, err := h.Find(context.Background(), 1, "Semi Skimmed Milk", 5)
	require.NoError(t, err)
	assert.Equal(t, "semi skimmed milk", store.gotName)
	assert.Equal(t, 20, store.gotLimit)

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ReceiptID)
	assert.Equal(t, 1.0, got[0].Similarity)
	assert.Equal(t, 3, got[1].ReceiptID)
	assert.Equal(t, "high", ConfidenceLevel(got[1].Similarity))
}

func TestPriceHistoryLimitAndErrors(t *testing.T) {
	store := &fakeHistoryStore{points: []models.ItemPricePoint{
		{ReceiptID: 1, Name: "milk"},
		{ReceiptID: 2, Name: "milk"},
	}}
	got, err := NewPriceHistory(store).Find(context.Background(), 1, "Milk", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = NewPriceHistory(store).Find(context.Background(), 1, " ", 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	store.err = errors.New("boom")
	_, err = NewPriceHistory(store).Find(context.Background(), 1, "Milk", 1)
	assert.Error(t, err)
}

func TestConfidenceLevel(t *testing.T) {
	assert.Equal(t, "high", ConfidenceLevel(0.95))
	assert.Equal(t, "medium", ConfidenceLevel(0.75))
	assert.Equal(t, "low", ConfidenceLevel(0.5))
	assert.Equal(t, "none", ConfidenceLevel(0.1))
}
