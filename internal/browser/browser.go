// Package browser holds the remote browser session used for pages that only
// show their data after client-side rendering.
//
// A Session is opened once per run against a DevTools endpoint and released
// with Close when the run ends. It is not safe for concurrent use: every
// navigation replaces the page the previous caller was looking at.
package browser

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/chromedp/chromedp"
)

// DefaultPort is where the automation endpoint is expected locally.
const DefaultPort = 9515

// DefaultEndpoint is the DevTools endpoint used when none is configured.
var DefaultEndpoint = "http://" + net.JoinHostPort("localhost", strconv.Itoa(DefaultPort))

// Session is a single browser tab reached through a remote allocator.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Open connects to the browser at endpoint and creates one tab.
func Open(ctx context.Context, endpoint string) (*Session, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, endpoint)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run attaches to the browser; fail here rather than on the
	// first region.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("connecting to browser at %s: %w", endpoint, err)
	}

	return &Session{
		ctx: tabCtx,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}, nil
}

// Navigate loads url in the session's tab.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// Source returns the current document's outer HTML.
func (s *Session) Source(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// run executes actions on the session tab, also stopping when ctx is done.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Close releases the tab and the allocator connection.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
