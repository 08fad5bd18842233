package internal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

const templateCSV = `Handle,Title,Option1 Name,Option1 Value,Variant SKU,Variant Grams,Variant Weight Unit,Variant Price,Variant Requires Shipping,Variant Inventory Policy,Variant Taxable,Vendor
old-handle,Old Title,Size,Old,OLD-SKU,0,kg,0.00,FALSE,continue,FALSE,DEHY
`

func TestWriteProductCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.csv")
	if err := os.WriteFile(templatePath, []byte(templateCSV), 0644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.csv")

	rows := []ProductRow{{
		SKU:          "SKU-1",
		Product:      "Lemon",
		ProductTitle: "Lemon - Fine Cut",
		VariantSize:  "Small Jar",
		Weight:       "40g",
		Quantity:     12,
		RetailPrice:  "24.00",
		Handle:       "dehydrated_lemon_cocktail_garnish",
	}}

	if err := WriteProductCSV(rows, templatePath, outPath); err != nil {
		t.Fatalf("WriteProductCSV: %v", err)
	}

	file, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading output csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want header + 1 row", len(records))
	}

	header, row := records[0], records[1]
	byName := make(map[string]string, len(header))
	for i, name := range header {
		byName[name] = row[i]
	}

	// Template column order is preserved
	if header[0] != "Handle" || header[len(header)-1] != "Vendor" {
		t.Errorf("header order changed: %v", header)
	}

	want := map[string]string{
		"Handle":                    "dehydrated_lemon_cocktail_garnish",
		"Title":                     "Lemon - Fine Cut",
		"Option1 Name":              "Size",
		"Option1 Value":             "Small Jar",
		"Variant SKU":               "SKU-1",
		"Variant Grams":             "40",
		"Variant Weight Unit":       "g",
		"Variant Price":             "24.00",
		"Variant Requires Shipping": "TRUE",
		"Variant Inventory Policy":  "deny",
		"Variant Taxable":           "TRUE",
		"Vendor":                    "DEHY", // template default survives
	}
	for column, value := range want {
		if byName[column] != value {
			t.Errorf("%s = %q, want %q", column, byName[column], value)
		}
	}
}

func TestLoadCSVTemplateIgnoresUnknownColumns(t *testing.T) {
	t.Parallel()

	templatePath := filepath.Join(t.TempDir(), "template.csv")
	if err := os.WriteFile(templatePath, []byte("Handle,Title\n,,\n"), 0644); err != nil {
		t.Fatal(err)
	}

	template, err := loadCSVTemplate(templatePath)
	if err != nil {
		t.Fatalf("loadCSVTemplate: %v", err)
	}

	row := template.row()
	template.set(row, "Nonexistent Column", "value")
	for _, cell := range row {
		if cell == "value" {
			t.Error("unknown column should be ignored")
		}
	}
}
