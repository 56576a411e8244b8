package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name        string
		htmlContent string
		statusCode  int
		wantError   bool
	}{
		{
			name:        "successful fetch",
			htmlContent: `<html><body><span class="stateface-AL">Alabama</span></body></html>`,
			statusCode:  http.StatusOK,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "subsidy-scrape") {
					t.Errorf("User-Agent = %q, should contain 'subsidy-scrape'", userAgent)
				}
				if got := r.URL.Query().Get("fips"); got != "01000" {
					t.Errorf("fips = %q, want 01000", got)
				}

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.htmlContent))
			}))
			defer server.Close()

			f := NewHTTPFetcher(0, "")
			body, err := f.Fetch(context.Background(), server.URL+"/progdetail.php?fips=01000&progcode=livestock")

			if tt.wantError {
				if !errors.Is(err, ErrNetwork) {
					t.Errorf("Fetch() error = %v, want ErrNetwork", err)
				}
				var statusErr *StatusError
				if !errors.As(err, &statusErr) || statusErr.Code != tt.statusCode {
					t.Errorf("Fetch() error = %v, want StatusError %d", err, tt.statusCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if body != tt.htmlContent {
				t.Errorf("Fetch() body = %q, want %q", body, tt.htmlContent)
			}
		})
	}
}

func TestHTTPFetcher_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewHTTPFetcher(0, "").Fetch(context.Background(), url)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Fetch() error = %v, want ErrNetwork", err)
	}
}

func TestHTTPFetcher_PageTooLarge(t *testing.T) {
	prev := maxBodyBytes
	maxBodyBytes = 64
	defer func() { maxBodyBytes = prev }()

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"at limit", 64, false},
		{"over limit", 65, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(strings.Repeat("x", tt.size)))
			}))
			defer server.Close()

			body, err := NewHTTPFetcher(0, "").Fetch(context.Background(), server.URL)
			if tt.wantErr {
				if !errors.Is(err, ErrNetwork) || !strings.Contains(err.Error(), "page too large") {
					t.Errorf("Fetch() error = %v, want page too large ErrNetwork", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}
			if len(body) != tt.size {
				t.Errorf("len(body) = %d, want %d", len(body), tt.size)
			}
		})
	}
}

func TestNewHTTPFetcher(t *testing.T) {
	f := NewHTTPFetcher(0, "")

	if f.client == nil {
		t.Fatal("fetcher client is nil")
	}
	if f.client.Timeout != Timeout {
		t.Errorf("client timeout = %v, want %v", f.client.Timeout, Timeout)
	}
	if f.userAgent != UserAgent {
		t.Errorf("userAgent = %q, want %q", f.userAgent, UserAgent)
	}
}
