package internal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheets carrying product data; everything else in the workbook is ignored.
var productSheets = []string{"Wholesale", "Retail"}

// Sizes and cuts recognized inside a PRODUCT cell.
var (
	sizeList = []string{"Large Bulk", "Small Bulk", "Hanging Pouch", "Stand Up Pouch", "Small Jar", "Large Jar"}
	cutList  = []string{"Fine Cut", "Hand Cut"}
)

// Columns every product sheet must carry, matched by name not position.
var requiredColumns = []string{"SKU", "UPC", "PRODUCT", "WEIGHT", "QUANTITY", "RETAIL_PRICE", "UNIT_PRICE"}

// ProductRow is one normalized spreadsheet line: a product variant with
// its pricing and the Shopify handle it maps to.
type ProductRow struct {
	SKU          string
	UPC          string
	Product      string
	ProductTitle string
	VariantSize  string
	Weight       string
	Quantity     int
	RetailPrice  string
	UnitPrice    string
	Handle       string
}

// ProductParser reads the master price list workbook into normalized rows.
type ProductParser struct {
	verbose bool
}

// NewProductParser creates a parser.
func NewProductParser(verbose bool) *ProductParser {
	return &ProductParser{verbose: verbose}
}

// normalizeHeader matches column names case-insensitively, with spaces
// treated as underscores ("Retail Price" == "RETAIL_PRICE").
func normalizeHeader(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// calcAvgQuantity parses a quantity cell like "12pc" or "10-12pc" into an
// integer, averaging ranges (rounded up).
func calcAvgQuantity(cell string) (int, error) {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, "pc", ""))
	if strings.Contains(cell, "-") {
		parts := strings.Split(cell, "-")
		sum := 0
		for _, part := range parts {
			value, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return 0, fmt.Errorf("parsing quantity range %q: %w", cell, err)
			}
			sum += value
		}
		return int(math.Ceil(float64(sum) / float64(len(parts)))), nil
	}
	value, err := strconv.Atoi(cell)
	if err != nil {
		return 0, fmt.Errorf("parsing quantity %q: %w", cell, err)
	}
	return value, nil
}

// splitProductName extracts the base product name before " - " or "_".
func splitProductName(product string) string {
	for _, sep := range []string{" - ", "_"} {
		if idx := strings.Index(product, sep); idx >= 0 {
			product = product[:idx]
		}
	}
	return strings.TrimSpace(product)
}

func firstContained(haystack string, candidates []string) string {
	for _, candidate := range candidates {
		if strings.Contains(haystack, candidate) {
			return candidate
		}
	}
	return ""
}

// ProductHandle builds the Shopify handle for a base product name.
func ProductHandle(productName string) string {
	return fmt.Sprintf("dehydrated_%s_cocktail_garnish", Sanitize(productName))
}

// ParseWorkbook reads the Wholesale and Retail sheets of an xlsx file into
// product rows. A sheet missing a required column is a *SchemaError, fatal
// for the run.
func (p *ProductParser) ParseWorkbook(path string) ([]ProductRow, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer workbook.Close()

	sheets := make(map[string]bool)
	for _, name := range workbook.GetSheetList() {
		sheets[name] = true
	}

	var parsed []ProductRow
	for _, sheet := range productSheets {
		if !sheets[sheet] {
			continue
		}
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}
		sheetRows, err := p.parseSheet(sheet, rows)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, sheetRows...)
	}

	if p.verbose {
		fmt.Printf("Parsed %d rows from %s\n", len(parsed), path)
	}
	return parsed, nil
}

func (p *ProductParser) parseSheet(sheet string, rows [][]string) ([]ProductRow, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	// Header row maps column names to indices.
	columns := make(map[string]int)
	for i, name := range rows[0] {
		columns[normalizeHeader(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, &SchemaError{Sheet: sheet, Column: required}
		}
	}

	cell := func(row []string, column string) string {
		idx := columns[column]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var parsed []ProductRow
	for _, row := range rows[1:] {
		product := cell(row, "PRODUCT")
		if product == "" {
			continue
		}

		quantity, err := calcAvgQuantity(cell(row, "QUANTITY"))
		if err != nil {
			fmt.Printf("Warning: skipping %q: %v\n", product, err)
			continue
		}

		productName := splitProductName(product)
		cut := firstContained(product, cutList)
		size := firstContained(product, sizeList)

		parsed = append(parsed, ProductRow{
			SKU:          cell(row, "SKU"),
			UPC:          cell(row, "UPC"),
			Product:      productName,
			ProductTitle: fmt.Sprintf("%s - %s", productName, cut),
			VariantSize:  size,
			Weight:       cell(row, "WEIGHT"),
			Quantity:     quantity,
			RetailPrice:  cell(row, "RETAIL_PRICE"),
			UnitPrice:    cell(row, "UNIT_PRICE"),
			Handle:       ProductHandle(productName),
		})
	}
	return parsed, nil
}
