package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/foxxcyber/receipt-grammar/internal/models"
)

const (
	receiptsSheet = "Receipts"
	itemsSheet    = "Items"
)

var receiptHeaders = []string{"Receipt ID", "Vendor", "Store", "Address", "Shop ID", "Date", "Time", "Payment", "Items", "Total"}
var itemHeaders = []string{"Receipt ID", "Vendor", "Date", "Item", "Tax Code", "Price", "Discount", "Meal Deal"}

// ExportReceiptsXLSX writes stored receipts and their items to a workbook
func ExportReceiptsXLSX(receipts []*models.StoredReceipt) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	writeRow(f, receiptsSheet, 1, toAny(receiptHeaders))
	writeRow(f, itemsSheet, 1, toAny(itemHeaders))

	itemRow := 2
	for i, sr := range receipts {
		r := sr.Receipt
		date, clock := "", ""
		if r.ShoppingDate != nil {
			date = r.ShoppingDate.Format("2006-01-02")
		}
		if r.ShoppingTime != nil {
			clock = *r.ShoppingTime
		}

		writeRow(f, receiptsSheet, i+2, []any{
			sr.ID, string(r.Vendor), r.MarketName, r.MarketAddress, r.ShopID,
			date, clock, string(r.PaymentType), r.ItemCount(), r.TotalPrice.InexactFloat64(),
		})

		items := r.Items
		if r.Sainsbury != nil {
			items = append(append([]models.Item{}, items...), r.Sainsbury.MealDealItems...)
		}
		for _, it := range items {
			writeRow(f, itemsSheet, itemRow, []any{
				sr.ID, string(r.Vendor), date, it.Name, it.TaxCode,
				it.Price.InexactFloat64(), it.Discount.InexactFloat64(), it.IsMealDeal,
			})
			itemRow++
		}
	}

	_ = f.SetColWidth(receiptsSheet, "C", "D", 28)
	_ = f.SetColWidth(itemsSheet, "D", "D", 36)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
