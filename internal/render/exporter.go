package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yutaka-m/invoicer/internal/metrics"
)

// ErrExportInProgress is returned when an export is requested while a
// previous one is still running. Exports are serialized against
// themselves; callers surface this as a "please wait" condition.
var ErrExportInProgress = errors.New("an export is already in progress")

// Exporter renders an invoice snapshot and hands it to the rasterizer.
// At most one export runs at a time; a failed run clears the in-progress
// flag so the user can retry immediately.
type Exporter struct {
	renderer   Renderer
	rasterizer Rasterizer
	timeout    time.Duration

	busy atomic.Bool
}

func NewExporter(renderer Renderer, rasterizer Rasterizer, timeout time.Duration) *Exporter {
	return &Exporter{
		renderer:   renderer,
		rasterizer: rasterizer,
		timeout:    timeout,
	}
}

// Export produces the PDF for the given snapshot and the download file
// name. The snapshot was taken at trigger time, so concurrent edits to
// cart or customer never bleed into a running export.
func (e *Exporter) Export(ctx context.Context, input Input) ([]byte, string, error) {
	if !e.busy.CompareAndSwap(false, true) {
		metrics.Exports.WithLabelValues("busy").Inc()
		return nil, "", ErrExportInProgress
	}
	defer e.busy.Store(false)

	exportID := uuid.NewString()
	start := time.Now()
	slog.Info("export started",
		"export_id", exportID,
		"invoice_number", input.Invoice.InvoiceNumber,
		"items", len(input.Invoice.Items),
	)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	html, err := e.renderer.RenderHTML(input)
	if err != nil {
		metrics.Exports.WithLabelValues("failed").Inc()
		slog.Error("export render failed", "export_id", exportID, "error", err)
		return nil, "", fmt.Errorf("render invoice: %w", err)
	}

	pdf, err := e.rasterizer.Rasterize(ctx, html)
	if err != nil {
		metrics.Exports.WithLabelValues("failed").Inc()
		slog.Error("export rasterization failed", "export_id", exportID, "error", err)
		return nil, "", fmt.Errorf("rasterize invoice: %w", err)
	}

	metrics.Exports.WithLabelValues("ok").Inc()
	slog.Info("export finished",
		"export_id", exportID,
		"bytes", len(pdf),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pdf, Filename(input.Invoice.InvoiceNumber), nil
}

// Filename is the download name of an exported invoice.
func Filename(invoiceNumber string) string {
	return fmt.Sprintf("請求書-%s.pdf", invoiceNumber)
}
