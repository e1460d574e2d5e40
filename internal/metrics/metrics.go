// Package metrics registers the application's Prometheus collectors.
// Row-level defects never surface to the UI; the skip counters here are
// the only aggregate trace they leave.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogRefreshes counts refresh attempts by outcome:
	// ok, empty, transport_error, stale.
	CatalogRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicer_catalog_refreshes_total",
		Help: "Catalog refresh attempts by outcome.",
	}, []string{"outcome"})

	// RowsSkipped counts catalog rows excluded during a build, by reason.
	RowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicer_catalog_rows_skipped_total",
		Help: "Sheet rows excluded from the catalog by defect reason.",
	}, []string{"reason"})

	// CatalogSize reports the product count of the installed catalog.
	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "invoicer_catalog_products",
		Help: "Number of products in the currently installed catalog.",
	})

	// Exports counts invoice export attempts by outcome:
	// ok, failed, busy.
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicer_exports_total",
		Help: "Invoice export attempts by outcome.",
	}, []string{"outcome"})
)
