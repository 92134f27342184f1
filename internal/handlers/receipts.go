package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/receipt-grammar/internal/config"
	"github.com/foxxcyber/receipt-grammar/internal/database"
	"github.com/foxxcyber/receipt-grammar/internal/middleware"
	"github.com/foxxcyber/receipt-grammar/internal/models"
	"github.com/foxxcyber/receipt-grammar/internal/services"
)

const imageURLExpiry = time.Hour

// ReceiptHandler handles receipt-related endpoints
type ReceiptHandler struct {
	receipts   ReceiptStore
	cfg        *config.Config
	storage    ImageStore
	ocr        Recognizer
	extraction *services.ExtractionService
	validator  *services.PayloadValidator
}

// NewReceiptHandler creates a new receipt handler. storage and ocr may be nil
// when S3 or Tesseract are not configured; the upload endpoint then reports 503.
func NewReceiptHandler(
	receipts ReceiptStore,
	cfg *config.Config,
	storage ImageStore,
	ocr Recognizer,
	extraction *services.ExtractionService,
	validator *services.PayloadValidator,
) *ReceiptHandler {
	return &ReceiptHandler{
		receipts:   receipts,
		cfg:        cfg,
		storage:    storage,
		ocr:        ocr,
		extraction: extraction,
		validator:  validator,
	}
}

// Extract runs the grammar over a posted token stream without storing anything
func (h *ReceiptHandler) Extract(c *fiber.Ctx) error {
	req, err := h.validator.DecodeExtractRequest(c.Body())
	if err != nil {
		return extractionError(c, err)
	}

	receipt, err := h.extraction.Extract(req)
	if err != nil {
		return extractionError(c, err)
	}

	return Success(c, receipt)
}

// CreateReceipt extracts a posted token stream and stores the result
func (h *ReceiptHandler) CreateReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	req, err := h.validator.DecodeExtractRequest(c.Body())
	if err != nil {
		return extractionError(c, err)
	}

	receipt, err := h.extraction.Extract(req)
	if err != nil {
		return extractionError(c, err)
	}

	stored, err := h.receipts.CreateReceipt(c.Context(), &models.CreateReceiptRequest{
		UserID:  userID,
		Tokens:  req.Texts(),
		Receipt: receipt,
		TTL:     h.cfg.ReceiptRetention,
	})
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to save receipt")
	}

	c.Status(fiber.StatusCreated)
	return Success(c, stored)
}

// UploadReceipt handles receipt image upload, OCR and extraction
func (h *ReceiptHandler) UploadReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if h.ocr == nil {
		return Error(c, fiber.StatusServiceUnavailable, "OCR is not available")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "image file is required")
	}

	contentType := file.Header.Get("Content-Type")
	if !services.IsSupportedImageType(contentType) {
		return Error(c, fiber.StatusBadRequest, "invalid image type. Supported: JPEG, PNG, GIF, TIFF, BMP")
	}

	if file.Size > int64(h.cfg.MaxUploadBytes()) {
		return Error(c, fiber.StatusBadRequest, fmt.Sprintf("file too large. Maximum size is %dMB", h.cfg.MaxUploadMB))
	}

	vendor := models.Vendor(strings.ToLower(c.FormValue("vendor")))
	if vendor != "" && !vendor.Valid() {
		return Error(c, fiber.StatusBadRequest, "unknown vendor")
	}

	src, err := file.Open()
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}
	defer src.Close()

	imageBytes, err := io.ReadAll(src)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}

	fragments, err := h.ocr.Recognize(imageBytes)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImage) {
			return extractionError(c, err)
		}
		log.Printf("Warning: OCR failed for user %d: %v", userID, err)
		return Error(c, fiber.StatusInternalServerError, "OCR processing failed")
	}

	extractReq := &models.ExtractRequest{Vendor: vendor, Fragments: fragments}
	receipt, err := h.extraction.Extract(extractReq)
	if err != nil {
		return extractionError(c, err)
	}

	createReq := &models.CreateReceiptRequest{
		UserID:  userID,
		Tokens:  extractReq.Texts(),
		Receipt: receipt,
		TTL:     h.cfg.ReceiptRetention,
	}

	var s3Key string
	if h.storage != nil {
		s3Key = services.ReceiptImageKey(userID, file.Filename)
		uploaded, err := h.storage.Upload(c.Context(), s3Key, bytes.NewReader(imageBytes), int64(len(imageBytes)), contentType)
		if err != nil {
			return Error(c, fiber.StatusInternalServerError, "failed to upload image")
		}
		createReq.S3Bucket = &uploaded.Bucket
		createReq.S3Key = &s3Key
	}

	stored, err := h.receipts.CreateReceipt(c.Context(), createReq)
	if err != nil {
		if s3Key != "" {
			if deleteErr := h.storage.Delete(c.Context(), s3Key); deleteErr != nil {
				log.Printf("Warning: Failed to clean up S3 object %s after receipt creation failure: %v", s3Key, deleteErr)
			}
		}
		return Error(c, fiber.StatusInternalServerError, "failed to save receipt")
	}

	h.attachImageURL(c, stored)

	c.Status(fiber.StatusCreated)
	return Success(c, stored)
}

// ListReceipts returns the caller's receipts, newest first
func (h *ReceiptHandler) ListReceipts(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	params := &models.ReceiptListParams{UserID: userID, Limit: limit, Offset: offset}
	if v := c.Query("vendor"); v != "" {
		vendor := models.Vendor(strings.ToLower(v))
		if !vendor.Valid() {
			return Error(c, fiber.StatusBadRequest, "unknown vendor")
		}
		params.Vendor = &vendor
	}

	summaries, total, err := h.receipts.ListReceipts(c.Context(), params)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list receipts")
	}

	return SuccessWithMeta(c, summaries, total, limit, offset)
}

// GetReceipt returns one stored receipt
func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	stored, err := h.ownedReceipt(c)
	if stored == nil {
		return err
	}

	h.attachImageURL(c, stored)
	return Success(c, stored)
}

// GetReceiptImage redirects to a short-lived URL for the receipt photo
func (h *ReceiptHandler) GetReceiptImage(c *fiber.Ctx) error {
	stored, err := h.ownedReceipt(c)
	if stored == nil {
		return err
	}

	if stored.S3Key == nil || h.storage == nil {
		return Error(c, fiber.StatusNotFound, "receipt has no image")
	}

	url, err := h.storage.GetPresignedURL(c.Context(), *stored.S3Key, imageURLExpiry)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to get image URL")
	}
	return c.Redirect(url, fiber.StatusFound)
}

// DeleteReceipt removes a stored receipt and its photo
func (h *ReceiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return Error(c, fiber.StatusBadRequest, "invalid receipt ID")
	}

	s3Key, err := h.receipts.DeleteReceipt(c.Context(), id, userID)
	if err != nil {
		if errors.Is(err, database.ErrReceiptNotFound) {
			return Error(c, fiber.StatusNotFound, "receipt not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete receipt")
	}

	if s3Key != nil && *s3Key != "" && h.storage != nil {
		if err := h.storage.Delete(c.Context(), *s3Key); err != nil {
			log.Printf("Warning: Failed to delete S3 object %s: %v", *s3Key, err)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExportReceipts returns the caller's receipts as an XLSX workbook
func (h *ReceiptHandler) ExportReceipts(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	receipts, err := h.receipts.ListReceiptsForExport(c.Context(), userID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to load receipts")
	}

	workbook, err := services.ExportReceiptsXLSX(receipts)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to build export")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="receipts-%s.xlsx"`, time.Now().Format("2006-01-02")))
	return c.Send(workbook)
}

// ownedReceipt loads the :id receipt for the caller. On failure it returns nil
// and the result of writing the error response.
func (h *ReceiptHandler) ownedReceipt(c *fiber.Ctx) (*models.StoredReceipt, error) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return nil, Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, Error(c, fiber.StatusBadRequest, "invalid receipt ID")
	}

	stored, err := h.receipts.GetReceiptByID(c.Context(), id, userID)
	if err != nil {
		if errors.Is(err, database.ErrReceiptNotFound) {
			return nil, Error(c, fiber.StatusNotFound, "receipt not found")
		}
		return nil, Error(c, fiber.StatusInternalServerError, "failed to get receipt")
	}
	return stored, nil
}

func (h *ReceiptHandler) attachImageURL(c *fiber.Ctx, stored *models.StoredReceipt) {
	if stored.S3Key == nil || h.storage == nil {
		return
	}
	url, err := h.storage.GetPresignedURL(c.Context(), *stored.S3Key, imageURLExpiry)
	if err != nil {
		log.Printf("Warning: Failed to presign image for receipt %d: %v", stored.ID, err)
		return
	}
	stored.ImageURL = &url
}
