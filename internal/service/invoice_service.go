// Package service wires the catalog pipeline, the cart calculator and
// the exporter into the single session the browser talks to.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yutaka-m/invoicer/internal/calculator"
	"github.com/yutaka-m/invoicer/internal/catalog"
	"github.com/yutaka-m/invoicer/internal/config"
	"github.com/yutaka-m/invoicer/internal/metrics"
	"github.com/yutaka-m/invoicer/internal/models"
	"github.com/yutaka-m/invoicer/internal/render"
	"github.com/yutaka-m/invoicer/internal/source"
)

// ErrNoProducts marks a refresh that reached the sheet but yielded zero
// valid rows. It is a user-visible state distinct from a transport
// failure (source.ErrUnavailable).
var ErrNoProducts = errors.New("no usable products in sheet")

// DefaultInvoiceNumber is the number stamped on the session's invoice.
const DefaultInvoiceNumber = "INV-001"

// paymentTermDays is how far past the issue date the due date lies.
const paymentTermDays = 30

// InvoiceService owns the session state: the installed catalog, the cart
// and the customer details. The original design ran on a single event
// loop; Go's HTTP server is concurrent, so a mutex serializes mutations
// instead.
type InvoiceService struct {
	company  config.CompanyConfig
	fetcher  source.Fetcher
	exporter *render.Exporter

	// now is swappable for tests.
	now func() time.Time

	// refreshSeq hands out a generation per refresh; a completion older
	// than the installed generation is discarded, so a stale in-flight
	// fetch can never overwrite a newer catalog.
	refreshSeq atomic.Uint64

	mu         sync.Mutex
	catalog    []models.Product
	catalogGen uint64
	cart       []models.LineItem
	customer   models.Customer
}

func New(cfg config.Config, fetcher source.Fetcher, exporter *render.Exporter) *InvoiceService {
	return &InvoiceService{
		company:  cfg.Company,
		fetcher:  fetcher,
		exporter: exporter,
		now:      time.Now,
	}
}

// RefreshCatalog fetches the sheet and installs the rebuilt catalog,
// replacing the previous one wholesale. Row-level defects only shorten
// the result; the two error cases are a transport failure (catalog
// untouched) and a usable fetch with zero valid rows (empty catalog
// installed, ErrNoProducts returned).
func (s *InvoiceService) RefreshCatalog(ctx context.Context) error {
	gen := s.refreshSeq.Add(1)

	rows, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("transport_error").Inc()
		return fmt.Errorf("fetch sheet: %w", err)
	}

	products, defects := catalog.BuildReport(rows)
	for _, d := range defects {
		metrics.RowsSkipped.WithLabelValues(d.Reason.String()).Inc()
	}

	s.mu.Lock()
	if gen < s.catalogGen {
		s.mu.Unlock()
		metrics.CatalogRefreshes.WithLabelValues("stale").Inc()
		slog.Warn("discarding stale catalog refresh", "generation", gen, "installed", s.catalogGen)
		return nil
	}
	s.catalog = products
	s.catalogGen = gen
	s.mu.Unlock()

	metrics.CatalogSize.Set(float64(len(products)))
	slog.Info("catalog installed",
		"generation", gen,
		"products", len(products),
		"rows_skipped", len(defects),
	)

	if len(products) == 0 {
		metrics.CatalogRefreshes.WithLabelValues("empty").Inc()
		return ErrNoProducts
	}
	metrics.CatalogRefreshes.WithLabelValues("ok").Inc()
	return nil
}

// Catalog returns a copy of the installed catalog.
func (s *InvoiceService) Catalog() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// AddToCart adds a product by ID and returns the updated cart. Unknown
// IDs (including any ID while the catalog is empty or unloaded) are
// silent no-ops.
func (s *InvoiceService) AddToCart(productID string) []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = calculator.AddToCart(s.cart, s.catalog, productID)
	return s.cartLocked()
}

// UpdateQuantity sets a line's quantity, normalizing values below 1 to 1.
func (s *InvoiceService) UpdateQuantity(id string, quantity int) []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = calculator.UpdateQuantity(s.cart, id, quantity)
	return s.cartLocked()
}

// RemoveFromCart deletes a line; unknown IDs are silent no-ops.
func (s *InvoiceService) RemoveFromCart(id string) []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = calculator.RemoveFromCart(s.cart, id)
	return s.cartLocked()
}

// Cart returns a copy of the current cart.
func (s *InvoiceService) Cart() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked()
}

func (s *InvoiceService) cartLocked() []models.LineItem {
	out := make([]models.LineItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// SetCustomer replaces the customer details.
func (s *InvoiceService) SetCustomer(c models.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer = c
}

// Customer returns the current customer details.
func (s *InvoiceService) Customer() models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// Invoice derives the invoice projection from the current state. It is
// rebuilt on every call; nothing caches it.
func (s *InvoiceService) Invoice() models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoiceLocked()
}

func (s *InvoiceService) invoiceLocked() models.Invoice {
	issue := s.now()
	return models.Invoice{
		InvoiceNumber: DefaultInvoiceNumber,
		IssueDate:     issue.Format("2006-01-02"),
		DueDate:       issue.AddDate(0, 0, paymentTermDays).Format("2006-01-02"),
		Customer:      s.customer,
		Items:         s.cartLocked(),
		Notes:         s.company.Notes,
		TaxRate:       s.company.TaxRate,
	}
}

// Totals recomputes subtotal, tax and total for the current cart.
func (s *InvoiceService) Totals() models.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calculator.Totals(s.cart, s.company.TaxRate)
}

// Export renders the invoice as it stands right now and rasterizes it to
// PDF. The snapshot is taken before the (slow) export starts, so
// concurrent edits do not affect the document. Returns
// render.ErrExportInProgress while an earlier export is still running.
func (s *InvoiceService) Export(ctx context.Context) ([]byte, string, error) {
	s.mu.Lock()
	input := render.NewInput(s.company, s.invoiceLocked())
	s.mu.Unlock()

	return s.exporter.Export(ctx, input)
}
