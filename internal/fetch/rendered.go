package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultPollInterval = time.Second
	DefaultMaxPolls     = 60
	DefaultPollTimeout  = 90 * time.Second
)

// Driver is the part of a browser session the fetcher needs.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Source(ctx context.Context) (string, error)
}

// PollConfig bounds the wait for a rendered marker.
type PollConfig struct {
	Interval time.Duration
	MaxPolls int
	Timeout  time.Duration
}

func (c PollConfig) withDefaults() PollConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = DefaultMaxPolls
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultPollTimeout
	}
	return c
}

// BrowserFetcher loads pages through a Driver and waits for Marker.
type BrowserFetcher struct {
	driver Driver
	marker string
	poll   PollConfig

	// OnWait is called before each sleep between polls.
	OnWait func(url string, attempt int)
}

// NewBrowserFetcher creates a fetcher that waits until marker is present in
// the page source.
func NewBrowserFetcher(driver Driver, marker string, poll PollConfig) *BrowserFetcher {
	return &BrowserFetcher{
		driver: driver,
		marker: marker,
		poll:   poll.withDefaults(),
	}
}

var errMarkerAbsent = errors.New("marker absent")

// Fetch navigates to url and returns the rendered source once it contains the
// marker. Poll.Timeout covers the page load as well as the polling. Driver
// failures are wrapped in ErrSession; running out of polls or time returns
// ErrMarkerTimeout.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	pollCtx, cancel := context.WithTimeout(ctx, f.poll.Timeout)
	defer cancel()

	if err := f.driver.Navigate(pollCtx, url); err != nil {
		switch {
		case ctx.Err() != nil:
			return "", ctx.Err()
		case pollCtx.Err() != nil:
			return "", fmt.Errorf("%w: page load on %s exceeded %v", ErrMarkerTimeout, url, f.poll.Timeout)
		}
		return "", fmt.Errorf("%w: navigating to %s: %w", ErrSession, url, err)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.poll.Interval), uint64(f.poll.MaxPolls-1)),
		pollCtx,
	)

	var html string
	attempt := 0
	op := func() error {
		attempt++
		src, err := f.driver.Source(pollCtx)
		if err != nil {
			if pollCtx.Err() != nil {
				return pollCtx.Err()
			}
			return backoff.Permanent(fmt.Errorf("%w: reading page source: %w", ErrSession, err))
		}
		if !strings.Contains(src, f.marker) {
			return errMarkerAbsent
		}
		html = src
		return nil
	}
	notify := func(error, time.Duration) {
		if f.OnWait != nil {
			f.OnWait(url, attempt)
		}
	}

	err := backoff.RetryNotify(op, b, notify)
	switch {
	case err == nil:
		return html, nil
	case errors.Is(err, ErrSession):
		return "", err
	case ctx.Err() != nil:
		return "", ctx.Err()
	default:
		return "", fmt.Errorf("%w: %q on %s after %d polls", ErrMarkerTimeout, f.marker, url, attempt)
	}
}
