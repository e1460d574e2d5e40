package catalog

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func row(index int, fields ...string) Row {
	return Row{Index: index, Fields: fields}
}

func TestBuildValidRows(t *testing.T) {
	products := Build([]Row{
		row(1, "Widget", "1200", "A fine widget"),
		row(2, "Gadget", "500"),
	})

	require.Len(t, products, 2)

	assert.Equal(t, "prod-sheet-1", products[0].ID)
	assert.Equal(t, "Widget", products[0].Name)
	assert.Equal(t, "A fine widget", products[0].Description)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(1200)))

	// Missing description falls back to the name.
	assert.Equal(t, "Gadget", products[1].Description)
}

func TestBuildSkipPolicy(t *testing.T) {
	tests := []struct {
		name   string
		row    Row
		reason DefectReason
	}{
		{"single field", row(1, "Widget"), TooFewFields},
		{"no fields", row(1), TooFewFields},
		{"blank name", row(1, "   ", "1200"), MissingName},
		{"blank price", row(1, "Widget", "  "), MissingPrice},
		{"unparsable price", row(1, "Widget", "N/A"), BadPrice},
		{"price with two dots", row(1, "Widget", "1.2.3"), BadPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, defects := BuildReport([]Row{tt.row})
			assert.Empty(t, products)
			require.Len(t, defects, 1)
			assert.Equal(t, tt.reason, defects[0].Reason)
		})
	}
}

func TestBuildPriceCoercion(t *testing.T) {
	tests := []struct {
		priceStr string
		want     string
	}{
		{"¥1,200", "1200"},
		{"1200円", "1200"},
		{"1,200.50", "1200.5"},
		{"1200", "1200"},
		{"  980 ", "980"},
	}

	for _, tt := range tests {
		t.Run(tt.priceStr, func(t *testing.T) {
			products := Build([]Row{row(1, "Widget", tt.priceStr)})
			require.Len(t, products, 1)

			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)
			assert.True(t, products[0].Price.Equal(want),
				"price %q coerced to %s, want %s", tt.priceStr, products[0].Price, want)
		})
	}
}

func TestBuildKeepsPositionalIDs(t *testing.T) {
	// Ten rows, two defective: an 8-entry catalog whose IDs keep the
	// original row numbering, gaps included.
	var rows []Row
	for i := 1; i <= 10; i++ {
		rows = append(rows, row(i, fmt.Sprintf("Product %d", i), "100"))
	}
	rows[2] = row(3, "No price row")
	rows[6] = row(7, "", "500")

	products, defects := BuildReport(rows)

	require.Len(t, products, 8)
	require.Len(t, defects, 2)

	var ids []string
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{
		"prod-sheet-1", "prod-sheet-2", "prod-sheet-4", "prod-sheet-5",
		"prod-sheet-6", "prod-sheet-8", "prod-sheet-9", "prod-sheet-10",
	}, ids)
}

func TestBuildIdempotent(t *testing.T) {
	rows := []Row{
		row(1, "Widget", "¥1,200", "A fine widget"),
		row(2, "bad row"),
		row(3, "Gadget", "500"),
	}

	first := Build(rows)
	second := Build(rows)

	if diff := cmp.Diff(first, second, decimalComparer); diff != "" {
		t.Errorf("Build is not idempotent (-first +second):\n%s", diff)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	products, defects := BuildReport(nil)
	assert.Empty(t, products)
	assert.Empty(t, defects)
}
