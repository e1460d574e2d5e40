package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yutaka-m/invoicer/internal/catalog"
)

// FileFetcher reads a local sheet export. CSV files go through the same
// row parser as the HTTP path; .xlsx workbooks are read with excelize,
// first sheet only, since a published workbook download carries the
// product list on its first sheet.
type FileFetcher struct {
	Path string
}

func (f *FileFetcher) Fetch(ctx context.Context) ([]catalog.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(f.Path), ".xlsx") {
		return f.fetchXLSX()
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return catalog.ParseRows(string(data)), nil
}

func (f *FileFetcher) fetchXLSX() ([]catalog.Row, error) {
	book, err := excelize.OpenFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnavailable)
	}

	cells, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrUnavailable, sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	// Cells arrive pre-split, so only the header strip and the blank-row
	// skip of the CSV path apply here.
	var rows []catalog.Row
	for i, fields := range cells[1:] {
		if rowBlank(fields) {
			continue
		}
		rows = append(rows, catalog.Row{Index: i + 1, Fields: fields})
	}
	return rows, nil
}

func rowBlank(fields []string) bool {
	for _, cell := range fields {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
