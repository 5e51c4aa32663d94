// Package avatar fetches profile pictures from remote URLs.
package avatar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starford/mannaz/internal/apperr"
)

const pngType = "image/png"

// Fetcher retrieves avatar bytes over HTTP. One attempt, no retry.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose requests give up after timeout.
// A non-positive timeout leaves the request unbounded.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch issues a single GET and returns the response body when the
// server declares it a PNG. A missing or non-PNG Content-Type header
// fails the fetch; the body is not sniffed.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bad url %q: %v", apperr.ErrFetch, url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %q: %v", apperr.ErrFetch, url, err)
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return nil, fmt.Errorf("%w: avatar has no content type", apperr.ErrFetch)
	}
	if ct != pngType {
		return nil, fmt.Errorf("%w: avatar is %s, not a PNG", apperr.ErrFetch, ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read avatar body: %v", apperr.ErrFetch, err)
	}
	return data, nil
}
