package services

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"storefront-service/internal/models"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	productsSheet = "Products"
	ordersSheet   = "Orders"
)

// ProductColumns is the header row shared by the product export and import
var ProductColumns = []string{
	"slug", "name_en", "name_ar", "category", "sku", "price", "original_price",
	"stock_quantity", "status", "is_new", "is_on_sale", "is_featured",
}

var orderColumns = []string{
	"order_number", "created_at", "status", "status_ar", "email", "customer",
	"country", "items", "subtotal", "discount", "shipping", "tax", "total",
	"currency", "payment_method", "payment_status",
}

// ProductsWorkbook renders products as an XLSX workbook. categories maps a
// category id to its slug.
func ProductsWorkbook(products []models.Product, categories map[string]string) ([]byte, error) {
	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		category := ""
		if p.CategoryID != nil {
			category = categories[p.CategoryID.String()]
		}
		sku := ""
		if p.SKU != nil {
			sku = *p.SKU
		}
		original := ""
		if p.OriginalPrice != nil {
			original = p.OriginalPrice.StringFixed(2)
		}
		rows = append(rows, []interface{}{
			p.Slug, p.NameEn, p.NameAr, category, sku, p.Price.StringFixed(2), original,
			p.StockQuantity, string(p.Status), p.IsNew, p.IsOnSale, p.IsFeatured,
		})
	}
	return writeWorkbook(productsSheet, ProductColumns, rows)
}

// OrdersWorkbook renders orders as an XLSX workbook
func OrdersWorkbook(orders []models.Order) ([]byte, error) {
	rows := make([][]interface{}, 0, len(orders))
	for _, o := range orders {
		items := 0
		for _, item := range o.Items {
			items += item.Quantity
		}
		badge := models.BadgeFor(o.Status)
		rows = append(rows, []interface{}{
			o.OrderNumber, o.CreatedAt.UTC().Format("2006-01-02 15:04"), badge.LabelEn, badge.LabelAr,
			o.Email, o.ShippingAddress.FullName, o.ShippingAddress.Country, items,
			o.Subtotal.StringFixed(2), o.DiscountAmount.StringFixed(2), o.ShippingCost.StringFixed(2),
			o.TaxAmount.StringFixed(2), o.Total.StringFixed(2), o.Currency,
			string(o.PaymentMethod), string(o.PaymentStatus),
		})
	}
	return writeWorkbook(ordersSheet, orderColumns, rows)
}

func writeWorkbook(sheet string, columns []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
		f.SetCellStyle(sheet, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, 18)
	}

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ProductImportRow is one parsed data row of a product import sheet
type ProductImportRow struct {
	Row      int
	Category string
	Request  models.ProductRequest
}

// ImportRowError reports why a sheet row was rejected
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// ParseProductSheet reads the Products sheet (or the first sheet). Rows that
// fail to parse are reported and skipped.
func ParseProductSheet(r io.Reader) ([]ProductImportRow, []ImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in Excel file")
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, productsSheet) {
			sheet = name
			break
		}
	}

	excelRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := make(map[string]int, len(excelRows[0]))
	for i, h := range excelRows[0] {
		headers[strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), " *")] = i
	}
	for _, required := range []string{"name_en", "price"} {
		if _, ok := headers[required]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var parsed []ProductImportRow
	var rowErrors []ImportRowError
	for i, cells := range excelRows[1:] {
		rowNum := i + 2
		get := func(column string) string {
			idx, ok := headers[column]
			if !ok || idx >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx])
		}
		if strings.Join(cells, "") == "" {
			continue
		}

		row, rowErr := parseProductRow(rowNum, get)
		if rowErr != nil {
			rowErrors = append(rowErrors, *rowErr)
			continue
		}
		parsed = append(parsed, row)
	}
	return parsed, rowErrors, nil
}

func parseProductRow(rowNum int, get func(string) string) (ProductImportRow, *ImportRowError) {
	fail := func(column, message string) (ProductImportRow, *ImportRowError) {
		return ProductImportRow{}, &ImportRowError{Row: rowNum, Column: column, Message: message}
	}

	req := models.ProductRequest{
		NameEn: get("name_en"),
		NameAr: get("name_ar"),
		Slug:   get("slug"),
		Status: models.ProductStatus(strings.ToUpper(get("status"))),
	}
	if req.NameEn == "" {
		return fail("name_en", "is required")
	}

	price, err := decimal.NewFromString(get("price"))
	if err != nil || price.IsNegative() {
		return fail("price", "must be a non-negative number")
	}
	req.Price = price

	if v := get("original_price"); v != "" {
		original, err := decimal.NewFromString(v)
		if err != nil || original.IsNegative() {
			return fail("original_price", "must be a non-negative number")
		}
		req.OriginalPrice = &original
	}
	if v := get("stock_quantity"); v != "" {
		qty, err := strconv.Atoi(v)
		if err != nil || qty < 0 {
			return fail("stock_quantity", "must be a non-negative integer")
		}
		req.StockQuantity = qty
	}
	if v := get("sku"); v != "" {
		req.SKU = &v
	}

	flags := []struct {
		column string
		dst    *bool
	}{
		{"is_new", &req.IsNew},
		{"is_on_sale", &req.IsOnSale},
		{"is_featured", &req.IsFeatured},
	}
	for _, flag := range flags {
		v := get(flag.column)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return fail(flag.column, "must be true or false")
		}
		*flag.dst = b
	}

	return ProductImportRow{Row: rowNum, Category: get("category"), Request: req}, nil
}
