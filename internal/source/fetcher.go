// Package source fetches raw spreadsheet data and hands it to the
// catalog parser. Transport problems (unreachable URL, non-success
// status, unreadable file) are the only errors it produces; row-level
// defects are the catalog builder's business and never surface here.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yutaka-m/invoicer/internal/catalog"
	"github.com/yutaka-m/invoicer/internal/config"
)

// ErrUnavailable marks a transport-level failure: the sheet could not be
// reached or did not answer with a success status. It is a user-visible
// state distinct from an empty catalog.
var ErrUnavailable = errors.New("catalog source unavailable")

// Fetcher retrieves the sheet and returns its parsed data rows, header
// already stripped.
type Fetcher interface {
	Fetch(ctx context.Context) ([]catalog.Row, error)
}

// New builds the Fetcher matching the source configuration.
func New(cfg config.SourceConfig) Fetcher {
	if cfg.FilePath != "" {
		return &FileFetcher{Path: cfg.FilePath}
	}
	return &HTTPFetcher{
		URL:    cfg.SheetURL,
		Client: &http.Client{Timeout: cfg.FetchTimeout.Std()},
	}
}

// HTTPFetcher downloads a sheet published as CSV over HTTP.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]catalog.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	return catalog.ParseRows(string(body)), nil
}
