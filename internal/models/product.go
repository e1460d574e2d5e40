package models

import "github.com/shopspring/decimal"

// Product is one purchasable entry of the validated catalog.
// Instances only exist after passing catalog validation: Name is
// non-empty, Description falls back to Name, Price is a non-negative
// decimal.
type Product struct {
	// ID is stable across reprocessing of the same sheet. It is derived
	// from the row's 1-based position within the sheet's data rows
	// ("prod-sheet-3"), so skipped rows leave gaps in the numbering.
	ID string `json:"id"`

	// Name is the trimmed value of column A.
	Name string `json:"name"`

	// Description is the trimmed value of column C, or Name when the
	// column is absent or blank.
	Description string `json:"description"`

	// Price is the coerced value of column B with currency symbols and
	// grouping separators stripped.
	Price decimal.Decimal `json:"price"`
}
