package prospect

import (
	"context"
	"time"
)

// Fetcher retrieves raw HTML over plain HTTP.
type Fetcher interface {
	// Fetch returns the markup of the URL. Any failure (timeout,
	// connection error, non-success status, non-HTML content type) is
	// reported as an error; callers treat it as "no content".
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases the session held by the fetcher.
	Close() error
}

// Renderer retrieves markup after executing the page's scripts in a
// headless browser. It is only used as a fallback for pages whose plain
// HTTP response is missing or thin.
type Renderer interface {
	// Render loads the URL, waits for network activity to settle and
	// returns the resulting markup. The timeout bounds the whole render.
	Render(ctx context.Context, url string, timeout time.Duration) (html string, err error)
}

var _ Renderer = NopRenderer{}

// NopRenderer is used when no headless browser is available.
type NopRenderer struct{}

// Render always reports the renderer as unavailable.
func (NopRenderer) Render(_ context.Context, url string, _ time.Duration) (string, error) {
	return "", Errorf(EUNAVAILABLE, "no renderer available for %s", url)
}

// RobotsPolicy decides whether a URL may be crawled.
type RobotsPolicy interface {
	Allowed(ctx context.Context, url string) bool
}

// AllowAll is a RobotsPolicy that permits every URL.
type AllowAll struct{}

// Allowed always returns true.
func (AllowAll) Allowed(context.Context, string) bool { return true }

// Limiter paces requests to a site.
type Limiter interface {
	// Wait blocks until the next request may be made, or ctx is done.
	Wait(ctx context.Context) error
}

// ProgressFunc receives human-readable progress messages. It is called
// synchronously and never affects the result of the operation reporting.
type ProgressFunc func(msg string)

// SiteCrawler builds the corpus of a company website. Network failures
// never surface as errors; an unreachable site yields a corpus without
// pages.
type SiteCrawler interface {
	Crawl(ctx context.Context, seedURL string, allowRender bool, progress ProgressFunc) *Corpus
}
