package models

import "github.com/shopspring/decimal"

// LineItem is one cart entry. It is owned solely by the cart: the
// description and unit price are copied from the product at add-time and
// never re-read from the catalog afterwards.
type LineItem struct {
	// ID references the Product the line was created from.
	ID string `json:"id"`

	Description string `json:"description"`

	// Quantity is always >= 1; invalid updates are normalized, never stored.
	Quantity int `json:"quantity"`

	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Customer holds the free-text billing fields entered in the form.
// There are no cross-field invariants; the values are render data only.
type Customer struct {
	Name         string `json:"name"`
	OrderNumber  string `json:"orderNumber"`
	Email        string `json:"email"`
	AttendeeName string `json:"attendeeName"`
}

// Invoice is a read-only projection combining the customer, the cart and
// static metadata. It is rebuilt whenever customer or cart change.
type Invoice struct {
	InvoiceNumber string     `json:"invoiceNumber"`
	IssueDate     string     `json:"issueDate"`
	DueDate       string     `json:"dueDate"`
	Customer      Customer   `json:"customer"`
	Items         []LineItem `json:"items"`
	Notes         string     `json:"notes"`
	TaxRate       float64    `json:"taxRate"`
}

// Totals are the derived amounts for the current cart. They are
// recomputed from scratch on every read; nothing caches them.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
