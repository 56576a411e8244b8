package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	UserAgent = "subsidy-scrape/1.0 (github.com/pfrederiksen/subsidy-scrape)"
	Timeout   = 30 * time.Second
)

// maxBodyBytes caps a single page download. Larger pages are rejected rather
// than truncated.
var maxBodyBytes int64 = 32 << 20

var (
	// ErrNetwork marks transport failures and non-2xx responses.
	ErrNetwork = errors.New("network error")

	// ErrMarkerTimeout means a rendered page never showed its marker.
	ErrMarkerTimeout = errors.New("marker not found before timeout")

	// ErrSession marks failures of the shared browser session. The session
	// state is unknown afterwards, so these end the run.
	ErrSession = errors.New("browser session error")
)

// Fetcher returns the HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNetwork
}

// HTTPFetcher fetches pages with a plain HTTP GET.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher. A zero timeout uses Timeout and an empty
// userAgent uses UserAgent.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = Timeout
	}
	if userAgent == "" {
		userAgent = UserAgent
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Fetch performs the GET and returns the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: fetching page: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %w", ErrNetwork, err)
	}
	if int64(len(body)) > maxBodyBytes {
		return "", fmt.Errorf("%w: page too large: %s exceeds %d bytes", ErrNetwork, url, maxBodyBytes)
	}
	return string(body), nil
}
