package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yutaka-m/invoicer/internal/catalog"
	"github.com/yutaka-m/invoicer/internal/config"
	"github.com/yutaka-m/invoicer/internal/models"
	"github.com/yutaka-m/invoicer/internal/render"
	"github.com/yutaka-m/invoicer/internal/service"
	"github.com/yutaka-m/invoicer/internal/source"
	"github.com/yutaka-m/invoicer/internal/web"
)

type stubFetcher struct {
	rows []catalog.Row
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context) ([]catalog.Row, error) {
	return f.rows, f.err
}

type stubRasterizer struct {
	pdf     []byte
	err     error
	started sync.Once
	enter   chan struct{}
	release chan struct{}
}

func (r *stubRasterizer) Rasterize(ctx context.Context, html string) ([]byte, error) {
	if r.enter != nil {
		r.started.Do(func() { close(r.enter) })
	}
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.pdf, r.err
}

func testRows() []catalog.Row {
	return []catalog.Row{
		{Index: 1, Fields: []string{"Widget", "1000", "A fine widget"}},
		{Index: 2, Fields: []string{"Gadget", "500"}},
	}
}

func newTestServer(t *testing.T, fetcher source.Fetcher, rasterizer render.Rasterizer) *httptest.Server {
	t.Helper()

	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	cfg := config.Config{Company: config.CompanyConfig{Name: "テスト株式会社", TaxRate: 10}}
	svc := service.New(cfg, fetcher, render.NewExporter(renderer, rasterizer, time.Minute))
	_ = svc.RefreshCatalog(context.Background())

	srv := httptest.NewServer(web.NewServer(config.ServerConfig{Addr: ":0"}, svc).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestCatalogEndpoints(t *testing.T) {
	t.Run("catalog lists products", func(t *testing.T) {
		srv := newTestServer(t, &stubFetcher{rows: testRows()}, &stubRasterizer{})

		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/catalog", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got struct {
			State    string           `json:"state"`
			Products []models.Product `json:"products"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "ok", got.State)
		require.Len(t, got.Products, 2)
		assert.Equal(t, "prod-sheet-1", got.Products[0].ID)
	})

	t.Run("empty catalog reports no_products state", func(t *testing.T) {
		srv := newTestServer(t, &stubFetcher{}, &stubRasterizer{})

		_, body := doJSON(t, http.MethodGet, srv.URL+"/api/catalog", nil)
		var got struct {
			State string `json:"state"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "no_products", got.State)
	})

	t.Run("refresh against unreachable source is a transport error", func(t *testing.T) {
		srv := newTestServer(t, &stubFetcher{err: fmt.Errorf("%w: connection refused", source.ErrUnavailable)}, &stubRasterizer{})

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/catalog/refresh", nil)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var got struct {
			State string `json:"state"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "transport_error", got.State)
	})
}

func TestCartEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{rows: testRows()}, &stubRasterizer{})

	var cart struct {
		Items []models.LineItem `json:"items"`
	}

	// Add the same product twice: one line, quantity 2.
	doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", map[string]string{"productId": "prod-sheet-1"})
	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", map[string]string{"productId": "prod-sheet-1"})
	require.NoError(t, json.Unmarshal(body, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// Unknown product: silent no-op.
	_, body = doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", map[string]string{"productId": "bogus"})
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Len(t, cart.Items, 1)

	// Non-positive quantity normalizes to 1.
	_, body = doJSON(t, http.MethodPut, srv.URL+"/api/cart/items/prod-sheet-1", map[string]int{"quantity": -2})
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Equal(t, 1, cart.Items[0].Quantity)

	// Non-numeric quantity also normalizes to 1.
	_, body = doJSON(t, http.MethodPut, srv.URL+"/api/cart/items/prod-sheet-1", map[string]string{"quantity": "lots"})
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Equal(t, 1, cart.Items[0].Quantity)

	// Removal, then removing again stays a no-op.
	_, body = doJSON(t, http.MethodDelete, srv.URL+"/api/cart/items/prod-sheet-1", nil)
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Empty(t, cart.Items)

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/cart/items/prod-sheet-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInvoiceEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{rows: testRows()}, &stubRasterizer{})

	customer := models.Customer{Name: "山田太郎", Email: "taro@example.com"}
	doJSON(t, http.MethodPut, srv.URL+"/api/customer", customer)
	doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", map[string]string{"productId": "prod-sheet-1"})
	doJSON(t, http.MethodPut, srv.URL+"/api/cart/items/prod-sheet-1", map[string]int{"quantity": 2})
	doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", map[string]string{"productId": "prod-sheet-2"})

	_, body := doJSON(t, http.MethodGet, srv.URL+"/api/invoice", nil)

	var got struct {
		Invoice models.Invoice `json:"invoice"`
		Totals  struct {
			Subtotal string `json:"subtotal"`
			Tax      string `json:"tax"`
			Total    string `json:"total"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(body, &got))

	assert.Equal(t, customer, got.Invoice.Customer)
	assert.Len(t, got.Invoice.Items, 2)
	assert.Equal(t, "2500", got.Totals.Subtotal)
	assert.Equal(t, "250", got.Totals.Tax)
	assert.Equal(t, "2750", got.Totals.Total)
}

func TestExportEndpoint(t *testing.T) {
	t.Run("successful export returns a pdf attachment", func(t *testing.T) {
		srv := newTestServer(t, &stubFetcher{rows: testRows()}, &stubRasterizer{pdf: []byte("%PDF-fake")})

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/export", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
		assert.Equal(t, []byte("%PDF-fake"), body)
	})

	t.Run("failed rasterization reports export_failed and allows retry", func(t *testing.T) {
		raster := &stubRasterizer{err: fmt.Errorf("converter crashed")}
		srv := newTestServer(t, &stubFetcher{rows: testRows()}, raster)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/export", nil)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var got struct {
			State string `json:"state"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "export_failed", got.State)

		// One-shot failure: the next attempt must not be blocked.
		raster.err = nil
		raster.pdf = []byte("%PDF-fake")
		resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/export", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("concurrent export is rejected with 409", func(t *testing.T) {
		raster := &stubRasterizer{
			pdf:     []byte("%PDF-fake"),
			enter:   make(chan struct{}),
			release: make(chan struct{}),
		}
		srv := newTestServer(t, &stubFetcher{rows: testRows()}, raster)

		first := make(chan int, 1)
		go func() {
			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/export", nil)
			first <- resp.StatusCode
		}()

		// Wait until the first export holds the slot, then collide.
		<-raster.enter
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/export", nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		close(raster.release)
		assert.Equal(t, http.StatusOK, <-first)
	})
}

func TestHealthAndIndex(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{rows: testRows()}, &stubRasterizer{})

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "セルフ請求書発行システム")
}
