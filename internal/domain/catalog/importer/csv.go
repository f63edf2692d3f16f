// Package importer reconciles externally supplied product rows against the
// catalog by SKU: CSV parsing, per-row validation, and bounded bulk upsert.
package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
)

// Row is one raw CSV record keyed by the canonical header names. All values
// stay strings until validation; parsing failures become row errors, never
// parse aborts.
type Row struct {
	SKU               string
	Name              string
	Brand             string
	Category          string
	Unit              string
	UnitSize          string
	RetailPrice       string
	CostPrice         string
	MinStockThreshold string
	TaxRate           string
	ExpiresInDays     string
}

// headerAliases maps accepted column names to canonical fields. The legacy
// export spells the threshold column min_stock_thresh.
var headerAliases = map[string]string{
	"sku":                 "sku",
	"name":                "name",
	"brand":               "brand",
	"category":            "category",
	"unit":                "unit",
	"unit_size":           "unit_size",
	"retail_price":        "retail_price",
	"cost_price":          "cost_price",
	"min_stock_threshold": "min_stock_threshold",
	"min_stock_thresh":    "min_stock_threshold",
	"tax_rate":            "tax_rate",
	"expires_in_days":     "expires_in_days",
}

// ParseCSV reads a comma-separated file with a header row into Rows.
// A UTF-8 BOM is stripped, unknown columns are ignored, and short records are
// tolerated. Only a malformed file (no header, unreadable input) is an error.
func ParseCSV(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)

	// Strip UTF-8 BOM (0xEF 0xBB 0xBF)
	head, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, apperror.NewValidation("unreadable csv input").WithCause(err)
	}
	if len(head) == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperror.NewValidation("csv file is empty")
	}
	if err != nil {
		return nil, apperror.NewValidation("invalid csv header").WithCause(err)
	}

	columns := make(map[int]string, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := headerAliases[key]; ok {
			columns[i] = canonical
		}
	}
	if len(columns) == 0 {
		return nil, apperror.NewValidation("csv header has no recognized columns")
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperror.NewValidation(fmt.Sprintf("invalid csv record %d", len(rows)+1)).WithCause(err)
		}

		var row Row
		for i, value := range record {
			field, ok := columns[i]
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch field {
			case "sku":
				row.SKU = value
			case "name":
				row.Name = value
			case "brand":
				row.Brand = value
			case "category":
				row.Category = value
			case "unit":
				row.Unit = value
			case "unit_size":
				row.UnitSize = value
			case "retail_price":
				row.RetailPrice = value
			case "cost_price":
				row.CostPrice = value
			case "min_stock_threshold":
				row.MinStockThreshold = value
			case "tax_rate":
				row.TaxRate = value
			case "expires_in_days":
				row.ExpiresInDays = value
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
