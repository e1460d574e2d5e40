package source_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yutaka-m/invoicer/internal/config"
	"github.com/yutaka-m/invoicer/internal/source"
)

const sheetText = "name,price,description\nWidget,1200,A fine widget\nGadget,500\n"

func TestHTTPFetcher(t *testing.T) {
	t.Run("successful fetch returns data rows", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(sheetText))
		}))
		defer srv.Close()

		f := &source.HTTPFetcher{URL: srv.URL, Client: srv.Client()}
		rows, err := f.Fetch(t.Context())
		require.NoError(t, err)

		require.Len(t, rows, 2)
		assert.Equal(t, []string{"Widget", "1200", "A fine widget"}, rows[0].Fields)
		assert.Equal(t, 1, rows[0].Index)
	})

	t.Run("non-success status is a transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		f := &source.HTTPFetcher{URL: srv.URL, Client: srv.Client()}
		_, err := f.Fetch(t.Context())
		require.Error(t, err)
		assert.True(t, errors.Is(err, source.ErrUnavailable))
	})

	t.Run("unreachable host is a transport failure", func(t *testing.T) {
		f := &source.HTTPFetcher{
			URL:    "http://127.0.0.1:1/sheet.csv",
			Client: &http.Client{},
		}
		_, err := f.Fetch(t.Context())
		require.Error(t, err)
		assert.True(t, errors.Is(err, source.ErrUnavailable))
	})
}

func TestFileFetcherCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte(sheetText), 0o644))

	f := &source.FileFetcher{Path: path}
	rows, err := f.Fetch(t.Context())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Gadget", "500"}, rows[1].Fields)
}

func TestFileFetcherMissingFile(t *testing.T) {
	f := &source.FileFetcher{Path: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := f.Fetch(t.Context())
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrUnavailable))
}

func TestFileFetcherXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.xlsx")

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	cells := [][]any{
		{"name", "price", "description"},
		{"Widget", "¥1,200", "A fine widget"},
		{}, // blank row keeps its position
		{"Gadget", 500},
	}
	for i, rowCells := range cells {
		for j, v := range rowCells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, book.SetCellValue(sheet, cell, v))
		}
	}
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	f := &source.FileFetcher{Path: path}
	rows, err := f.Fetch(t.Context())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "Widget", rows[0].Fields[0])
	assert.Equal(t, 3, rows[1].Index)
	assert.Equal(t, "Gadget", rows[1].Fields[0])
}

func TestNewPicksFetcherFromConfig(t *testing.T) {
	f := source.New(config.SourceConfig{FilePath: "sheet.csv"})
	_, ok := f.(*source.FileFetcher)
	assert.True(t, ok, "expected FileFetcher for file_path config")

	f = source.New(config.SourceConfig{SheetURL: "http://example.com/sheet.csv"})
	_, ok = f.(*source.HTTPFetcher)
	assert.True(t, ok, "expected HTTPFetcher for sheet_url config")
}
