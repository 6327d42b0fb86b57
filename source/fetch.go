package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultFeedURL is the open-data XML release of the state/UT table.
	DefaultFeedURL = "https://api.data.gov.in/resource/sexual-assault-victims-by-age-state-ut?format=xml&limit=100"

	defaultTimeout = 30 * time.Second
	userAgent      = "assaultstats/1.0 (+https://github.com/zalepa/assaultstats)"
)

// NewClient returns an HTTP client with the given timeout, or a 30s timeout
// when timeout is zero.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Get issues a GET for url and returns the body of a 200 response. The caller
// closes it.
func Get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	if client == nil {
		client = NewClient(0)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unavailable(url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, unavailable(url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, unavailable(url, fmt.Errorf("status %d", resp.StatusCode))
	}
	return resp.Body, nil
}

// Fetch downloads url to dest and returns the number of bytes written. The
// file is written under a temporary name and renamed into place, so dest is
// never left half-written.
func Fetch(ctx context.Context, client *http.Client, url, dest string) (int64, error) {
	body, err := Get(ctx, client, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, unavailable(url, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}
