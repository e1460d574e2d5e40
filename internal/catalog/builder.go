package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yutaka-m/invoicer/internal/models"
)

// DefectReason classifies why a row was excluded from the catalog.
type DefectReason int

const (
	TooFewFields DefectReason = iota
	MissingName
	MissingPrice
	BadPrice
)

// String returns the metrics/report label for the reason.
func (r DefectReason) String() string {
	switch r {
	case TooFewFields:
		return "too_few_fields"
	case MissingName:
		return "missing_name"
	case MissingPrice:
		return "missing_price"
	case BadPrice:
		return "bad_price"
	default:
		return "unknown"
	}
}

// Defect records one excluded row. Defects are diagnostics, not errors:
// the builder never fails, a defective row just shortens the catalog.
type Defect struct {
	RowIndex int
	Reason   DefectReason
}

// Build validates rows into products. Rows are processed independently
// and in order; invalid rows are dropped silently and never abort the
// batch. The result may be empty, which callers surface as a distinct
// "no products" state rather than an error.
func Build(rows []Row) []models.Product {
	products, _ := BuildReport(rows)
	return products
}

// BuildReport is Build plus the per-row exclusion report consumed by the
// lint tool and the skip metrics.
func BuildReport(rows []Row) ([]models.Product, []Defect) {
	var products []models.Product
	var defects []Defect

	for _, row := range rows {
		product, reason, ok := buildProduct(row)
		if !ok {
			defects = append(defects, Defect{RowIndex: row.Index, Reason: reason})
			continue
		}
		products = append(products, product)
	}

	return products, defects
}

func buildProduct(row Row) (models.Product, DefectReason, bool) {
	if len(row.Fields) < 2 {
		return models.Product{}, TooFewFields, false
	}

	name := strings.TrimSpace(row.Fields[0])
	if name == "" {
		return models.Product{}, MissingName, false
	}

	priceStr := strings.TrimSpace(row.Fields[1])
	if priceStr == "" {
		return models.Product{}, MissingPrice, false
	}

	description := ""
	if len(row.Fields) > 2 {
		description = strings.TrimSpace(row.Fields[2])
	}
	if description == "" {
		description = name
	}

	price, err := parsePrice(priceStr)
	if err != nil {
		return models.Product{}, BadPrice, false
	}

	return models.Product{
		ID:          fmt.Sprintf("prod-sheet-%d", row.Index),
		Name:        name,
		Description: description,
		Price:       price,
	}, 0, true
}

// parsePrice coerces a messy price cell ("¥1,200", "1200円", "1,200.50")
// into a decimal by stripping everything that is not a digit or a dot
// before parsing. Stripping also removes any minus sign, so prices are
// never negative.
func parsePrice(s string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= '0' && ch <= '9') || ch == '.' {
			b.WriteRune(ch)
		}
	}
	return decimal.NewFromString(b.String())
}
