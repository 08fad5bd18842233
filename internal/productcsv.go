package internal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// csvTemplate is a Shopify product export used as the output schema: its
// header fixes the column set and order, its first data row supplies the
// default value for every column we don't explicitly map.
type csvTemplate struct {
	header   []string
	defaults []string
	index    map[string]int
}

// loadCSVTemplate reads a template CSV's header and first data row.
func loadCSVTemplate(path string) (*csvTemplate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening template %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading template header: %w", err)
	}

	defaults := make([]string, len(header))
	if row, err := reader.Read(); err == nil {
		copy(defaults, row)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	return &csvTemplate{header: header, defaults: defaults, index: index}, nil
}

// row clones the defaults so each output row starts from the template.
func (t *csvTemplate) row() []string {
	row := make([]string, len(t.defaults))
	copy(row, t.defaults)
	return row
}

// set writes a value into a named column; columns the template does not
// carry are silently ignored, so the template's schema always wins.
func (t *csvTemplate) set(row []string, column, value string) {
	if idx, ok := t.index[column]; ok {
		row[idx] = value
	}
}

// WriteProductCSV renders parsed product rows into a Shopify-importable
// CSV following the template's column order. Template columns we don't map
// keep their template default; source data with no template column is
// dropped.
func WriteProductCSV(rows []ProductRow, templatePath, outPath string) error {
	template, err := loadCSVTemplate(templatePath)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", outPath, err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write(template.header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range rows {
		row := template.row()
		template.set(row, "Handle", r.Handle)
		template.set(row, "Title", r.ProductTitle)
		template.set(row, "Option1 Name", "Size")
		template.set(row, "Option1 Value", r.VariantSize)
		template.set(row, "Variant Price", r.RetailPrice)
		template.set(row, "Variant SKU", r.SKU)
		template.set(row, "Variant Weight Unit", "g")
		template.set(row, "Variant Grams", strings.TrimSpace(strings.ReplaceAll(r.Weight, "g", "")))
		template.set(row, "Variant Requires Shipping", "TRUE")
		template.set(row, "Variant Inventory Policy", "deny")
		template.set(row, "Variant Taxable", "TRUE")
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.Handle, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

