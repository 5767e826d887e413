package mock

import (
	"context"
	"time"

	"github.com/fwojciec/prospect"
)

var _ prospect.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of prospect.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ prospect.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of prospect.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string, timeout time.Duration) (string, error)
}

func (r *Renderer) Render(ctx context.Context, url string, timeout time.Duration) (string, error) {
	return r.RenderFn(ctx, url, timeout)
}

var _ prospect.Limiter = (*Limiter)(nil)

// Limiter is a mock implementation of prospect.Limiter.
type Limiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitFn(ctx)
}

var _ prospect.RobotsPolicy = (*RobotsPolicy)(nil)

// RobotsPolicy is a mock implementation of prospect.RobotsPolicy.
type RobotsPolicy struct {
	AllowedFn func(ctx context.Context, url string) bool
}

func (r *RobotsPolicy) Allowed(ctx context.Context, url string) bool {
	return r.AllowedFn(ctx, url)
}

var _ prospect.SiteCrawler = (*SiteCrawler)(nil)

// SiteCrawler is a mock implementation of prospect.SiteCrawler.
type SiteCrawler struct {
	CrawlFn func(ctx context.Context, seedURL string, allowRender bool, progress prospect.ProgressFunc) *prospect.Corpus
}

func (c *SiteCrawler) Crawl(ctx context.Context, seedURL string, allowRender bool, progress prospect.ProgressFunc) *prospect.Corpus {
	return c.CrawlFn(ctx, seedURL, allowRender, progress)
}
