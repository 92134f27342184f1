package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/receipt-grammar/internal/middleware"
	"github.com/foxxcyber/receipt-grammar/internal/models"
	"github.com/foxxcyber/receipt-grammar/internal/services"
)

// ItemHandler serves price history for previously extracted items
type ItemHandler struct {
	history *services.PriceHistory
}

// NewItemHandler creates a new item handler
func NewItemHandler(history *services.PriceHistory) *ItemHandler {
	return &ItemHandler{history: history}
}

// HistoryEntry is a past price point with a readable match level
type HistoryEntry struct {
	models.ItemPricePoint
	Confidence string `json:"confidence"`
}

// GetItemHistory returns the caller's past purchases matching ?name=
func (h *ItemHandler) GetItemHistory(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	name := strings.TrimSpace(c.Query("name"))
	if len(name) < 2 {
		return Error(c, fiber.StatusBadRequest, "name must be at least 2 characters")
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	points, err := h.history.Find(c.Context(), userID, name, limit)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to search item history")
	}

	entries := make([]HistoryEntry, len(points))
	for i, p := range points {
		entries[i] = HistoryEntry{ItemPricePoint: p, Confidence: services.ConfidenceLevel(p.Similarity)}
	}
	return Success(c, entries)
}
