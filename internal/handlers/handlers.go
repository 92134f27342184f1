package handlers

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/receipt-grammar/internal/config"
	"github.com/foxxcyber/receipt-grammar/internal/grammar"
	"github.com/foxxcyber/receipt-grammar/internal/models"
	"github.com/foxxcyber/receipt-grammar/internal/services"
)

// UserStore is the user persistence the auth endpoints need
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string, displayName *string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserLastLogin(ctx context.Context, id int) error
}

// ReceiptStore is the receipt persistence the receipt endpoints need
type ReceiptStore interface {
	services.ItemHistoryStore
	CreateReceipt(ctx context.Context, req *models.CreateReceiptRequest) (*models.StoredReceipt, error)
	GetReceiptByID(ctx context.Context, id, userID int) (*models.StoredReceipt, error)
	ListReceipts(ctx context.Context, params *models.ReceiptListParams) ([]*models.ReceiptSummary, int, error)
	ListReceiptsForExport(ctx context.Context, userID int) ([]*models.StoredReceipt, error)
	DeleteReceipt(ctx context.Context, id, userID int) (*string, error)
}

// ImageStore keeps uploaded receipt photos
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*services.UploadResult, error)
	GetPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Recognizer turns a receipt photo into OCR fragments in reading order
type Recognizer interface {
	Recognize(imageBytes []byte) ([]models.Fragment, error)
}

// Handler serves the account endpoints
type Handler struct {
	users    UserStore
	receipts ReceiptStore
	cfg      *config.Config
}

// New creates a new Handler instance
func New(users UserStore, receipts ReceiptStore, cfg *config.Config) *Handler {
	return &Handler{
		users:    users,
		receipts: receipts,
		cfg:      cfg,
	}
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return Error(c, code, message)
}

// APIResponse is a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata
type Meta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMeta returns a successful response with pagination
func SuccessWithMeta(c *fiber.Ctx, data interface{}, total, limit, offset int) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// extractionError maps extraction failures onto the response envelope
func extractionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidPayload), errors.Is(err, services.ErrUnsupportedImage):
		return Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, grammar.ErrUnknownVendor),
		errors.Is(err, grammar.ErrEmptyStream),
		errors.Is(err, grammar.ErrEndAnchorNotFound):
		return Error(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return Error(c, fiber.StatusInternalServerError, "extraction failed")
	}
}
