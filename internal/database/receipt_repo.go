package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

var ErrReceiptNotFound = errors.New("receipt not found")

const storedReceiptColumns = `
	id, user_id, s3_bucket, s3_key, tokens, document, expires_at, created_at, updated_at`

// CreateReceipt stores an extracted receipt and its item lines in one transaction
func (db *DB) CreateReceipt(ctx context.Context, req *models.CreateReceiptRequest) (*models.StoredReceipt, error) {
	document, err := json.Marshal(req.Receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}

	tokens := req.Tokens
	if tokens == nil {
		tokens = []string{}
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	stored, err := scanStoredReceipt(tx.QueryRow(ctx, `
		INSERT INTO receipts (user_id, vendor, market_name, total_price, payment_type, shopping_date,
		                      s3_bucket, s3_key, tokens, document, expires_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11)
		RETURNING`+storedReceiptColumns,
		req.UserID, req.Receipt.Vendor, req.Receipt.MarketName, req.Receipt.TotalPrice.String(),
		req.Receipt.PaymentType, req.Receipt.ShoppingDate, req.S3Bucket, req.S3Key, tokens, document,
		time.Now().Add(req.TTL),
	))
	if err != nil {
		return nil, err
	}

	lines := req.Receipt.Items
	if req.Receipt.Sainsbury != nil {
		lines = append(append([]models.Item{}, lines...), req.Receipt.Sainsbury.MealDealItems...)
	}
	for i, item := range lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO receipt_items (receipt_id, line_number, name, price, discount, tax_code, is_discount, is_meal_deal)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8)
		`, stored.ID, i+1, item.Name, item.Price.String(), item.Discount.String(),
			item.TaxCode, item.IsDiscount, item.IsMealDeal)
		if err != nil {
			return nil, fmt.Errorf("failed to insert item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}

// GetReceiptByID retrieves one of a user's receipts
func (db *DB) GetReceiptByID(ctx context.Context, id, userID int) (*models.StoredReceipt, error) {
	stored, err := scanStoredReceipt(db.Pool.QueryRow(ctx, `
		SELECT`+storedReceiptColumns+`
		FROM receipts
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return stored, nil
}

// ListReceipts returns a page of receipt summaries and the total count
func (db *DB) ListReceipts(ctx context.Context, params *models.ReceiptListParams) ([]*models.ReceiptSummary, int, error) {
	args := []interface{}{params.UserID}
	where := []string{"r.user_id = $1"}

	if params.Vendor != nil && *params.Vendor != "" {
		args = append(args, *params.Vendor)
		where = append(where, fmt.Sprintf("r.vendor = $%d", len(args)))
	}
	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM receipts r "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT r.id, r.vendor, r.market_name, r.total_price::text, r.payment_type, r.shopping_date,
		       (SELECT COUNT(*) FROM receipt_items ri WHERE ri.receipt_id = r.id), r.created_at
		FROM receipts r
		%s
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries := []*models.ReceiptSummary{}
	for rows.Next() {
		s := &models.ReceiptSummary{}
		var totalText string
		if err := rows.Scan(&s.ID, &s.Vendor, &s.MarketName, &totalText, &s.PaymentType,
			&s.ShoppingDate, &s.ItemCount, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		if s.TotalPrice, err = decimal.NewFromString(totalText); err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, s)
	}
	return summaries, total, rows.Err()
}

// ListReceiptsForExport returns every unexpired receipt a user owns, oldest first
func (db *DB) ListReceiptsForExport(ctx context.Context, userID int) ([]*models.StoredReceipt, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT`+storedReceiptColumns+`
		FROM receipts
		WHERE user_id = $1 AND expires_at >= NOW()
		ORDER BY shopping_date ASC NULLS LAST, id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []*models.StoredReceipt{}
	for rows.Next() {
		stored, err := scanStoredReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, stored)
	}
	return receipts, rows.Err()
}

// DeleteReceipt removes one of a user's receipts and returns its image key, if any
func (db *DB) DeleteReceipt(ctx context.Context, id, userID int) (*string, error) {
	var s3Key *string
	err := db.Pool.QueryRow(ctx, `
		DELETE FROM receipts WHERE id = $1 AND user_id = $2 RETURNING s3_key
	`, id, userID).Scan(&s3Key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return s3Key, nil
}

// CleanupExpiredReceipts deletes receipts past their expiration date and returns S3 keys to delete
func (db *DB) CleanupExpiredReceipts(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		DELETE FROM receipts WHERE expires_at < NOW() RETURNING s3_key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key *string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		if key != nil && *key != "" {
			keys = append(keys, *key)
		}
	}
	return keys, rows.Err()
}

// FindSimilarItems finds a user's past item lines similar to name using trigram similarity
func (db *DB) FindSimilarItems(ctx context.Context, userID int, name string, limit int) ([]models.ItemPricePoint, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT r.id, r.vendor, ri.name, ri.price::text, ri.discount::text, r.shopping_date,
		       similarity(LOWER(ri.name), LOWER($2)) AS confidence
		FROM receipt_items ri
		JOIN receipts r ON r.id = ri.receipt_id
		WHERE r.user_id = $1
		  AND ri.is_discount = false
		  AND similarity(LOWER(ri.name), LOWER($2)) > 0.2
		ORDER BY confidence DESC, r.shopping_date DESC NULLS LAST
		LIMIT $3
	`, userID, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []models.ItemPricePoint{}
	for rows.Next() {
		var p models.ItemPricePoint
		var price, discount string
		var confidence float32
		if err := rows.Scan(&p.ReceiptID, &p.Vendor, &p.Name, &price, &discount,
			&p.ShoppingDate, &confidence); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if p.Discount, err = decimal.NewFromString(discount); err != nil {
			return nil, err
		}
		p.Similarity = float64(confidence)
		points = append(points, p)
	}
	return points, rows.Err()
}

func scanStoredReceipt(row pgx.Row) (*models.StoredReceipt, error) {
	stored := &models.StoredReceipt{}
	var document []byte
	err := row.Scan(
		&stored.ID, &stored.UserID, &stored.S3Bucket, &stored.S3Key, &stored.Tokens,
		&document, &stored.ExpiresAt, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(document, &stored.Receipt); err != nil {
		return nil, fmt.Errorf("failed to decode receipt %d: %w", stored.ID, err)
	}
	if stored.Receipt.Items == nil {
		stored.Receipt.Items = []models.Item{}
	}
	stored.ExtractedAt = stored.CreatedAt
	return stored, nil
}
