package internal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheet)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("setting row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "prices.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
	return path
}

var priceHeader = []any{"SKU", "UPC", "PRODUCT", "WEIGHT", "QUANTITY", "RETAIL_PRICE", "UNIT_PRICE"}

func TestParseWorkbook(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, "Wholesale", [][]any{
		priceHeader,
		{"SKU-1", "012345", "Lemon - Fine Cut - Small Jar", "40g", "10-12pc", "24.00", "2.00"},
		{"SKU-2", "012346", "Roses - Hand Cut - Large Bulk", "100g", "30pc", "60.00", "2.00"},
	})

	rows, err := NewProductParser(false).ParseWorkbook(path)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	lemon := rows[0]
	if lemon.Product != "Lemon" {
		t.Errorf("Product = %q, want Lemon", lemon.Product)
	}
	if lemon.ProductTitle != "Lemon - Fine Cut" {
		t.Errorf("ProductTitle = %q", lemon.ProductTitle)
	}
	if lemon.VariantSize != "Small Jar" {
		t.Errorf("VariantSize = %q", lemon.VariantSize)
	}
	if lemon.Quantity != 11 { // ceil((10+12)/2)
		t.Errorf("Quantity = %d, want 11", lemon.Quantity)
	}
	if lemon.Handle != "dehydrated_lemon_cocktail_garnish" {
		t.Errorf("Handle = %q", lemon.Handle)
	}

	roses := rows[1]
	if roses.ProductTitle != "Roses - Hand Cut" || roses.VariantSize != "Large Bulk" || roses.Quantity != 30 {
		t.Errorf("unexpected row: %+v", roses)
	}
}

func TestParseWorkbookMissingColumnIsSchemaError(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, "Retail", [][]any{
		{"SKU", "UPC", "PRODUCT", "WEIGHT", "RETAIL_PRICE", "UNIT_PRICE"}, // no QUANTITY
		{"SKU-1", "012345", "Lime - Fine Cut - Pouch", "40g", "24.00", "2.00"},
	})

	_, err := NewProductParser(false).ParseWorkbook(path)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("ParseWorkbook = %v, want *SchemaError", err)
	}
	if schemaErr.Sheet != "Retail" || schemaErr.Column != "QUANTITY" {
		t.Errorf("SchemaError = %+v", schemaErr)
	}
}

func TestParseWorkbookSkipsBadQuantityRows(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, "Wholesale", [][]any{
		priceHeader,
		{"SKU-1", "012345", "Lemon - Fine Cut - Small Jar", "40g", "call us", "24.00", "2.00"},
		{"SKU-2", "012346", "Lime - Fine Cut - Small Jar", "40g", "12pc", "24.00", "2.00"},
	})

	rows, err := NewProductParser(false).ParseWorkbook(path)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(rows) != 1 || rows[0].Product != "Lime" {
		t.Errorf("rows = %+v, want only Lime", rows)
	}
}

func TestParseWorkbookIgnoresUnknownSheets(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, "Notes", [][]any{
		{"just", "some", "notes"},
	})

	rows, err := NewProductParser(false).ParseWorkbook(path)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %+v, want none", rows)
	}
}

func TestCalcAvgQuantity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"12pc", 12},
		{"10-12pc", 11},
		{"9-10pc", 10}, // rounds up
		{" 25pc ", 25},
	}
	for _, tc := range cases {
		got, err := calcAvgQuantity(tc.in)
		if err != nil {
			t.Errorf("calcAvgQuantity(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("calcAvgQuantity(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	if _, err := calcAvgQuantity("varies"); err == nil {
		t.Error("calcAvgQuantity(varies) should fail")
	}
}

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	if got := normalizeHeader(" Retail Price "); got != "RETAIL_PRICE" {
		t.Errorf("normalizeHeader = %q", got)
	}
}
