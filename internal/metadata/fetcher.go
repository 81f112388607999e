package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nestquest/internal/domain"
)

// Default fetcher settings.
const (
	DefaultFetchTimeout = 10 * time.Second
	maxDocumentSize     = 1 << 20
)

// Fetcher retrieves an off-chain metadata document.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*domain.OffchainMetadata, error)
}

// HTTPFetcher implements Fetcher with a plain GET.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher. A non-positive timeout uses DefaultFetchTimeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

var _ Fetcher = (*HTTPFetcher)(nil)

// Fetch GETs uri and decodes the JSON body.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) (*domain.OffchainMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, domain.Wrap(domain.KindFetchError, err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.Wrap(domain.KindFetchError, err, "http request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Wrap(domain.KindFetchError, fmt.Errorf("unexpected status %d", resp.StatusCode), uri)
	}

	var doc domain.OffchainMetadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentSize)).Decode(&doc); err != nil {
		return nil, domain.Wrap(domain.KindFetchError, err, "decode document")
	}
	return &doc, nil
}
