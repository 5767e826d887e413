// Package chromedp renders pages in headless Chrome via the DevTools
// protocol. It is an alternative to the rod renderer for hosts where the
// go-rod launcher cannot manage Chrome.
package chromedp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/fwojciec/prospect"
)

// DefaultIdleTimeout bounds the wait for the network to go quiet once the
// body is ready. Pages that poll forever are captured when it expires.
const DefaultIdleTimeout = 5 * time.Second

// lifecycleNetworkIdle is the lifecycle event Chrome fires after 500ms
// without network connections.
const lifecycleNetworkIdle = "networkIdle"

// Ensure Renderer implements prospect.Renderer at compile time.
var _ prospect.Renderer = (*Renderer)(nil)

// Renderer renders pages in a shared headless browser. The browser starts
// on the first Render call; each render runs in its own tab.
type Renderer struct {
	userAgent   string
	idleTimeout time.Duration
	execPath    string

	once          sync.Once
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	startErr      error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithUserAgent overrides the browser user agent.
func WithUserAgent(ua string) Option {
	return func(r *Renderer) {
		r.userAgent = ua
	}
}

// WithIdleTimeout sets the longest wait for network idleness.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.idleTimeout = d
	}
}

// WithExecPath uses the Chrome binary at path.
func WithExecPath(path string) Option {
	return func(r *Renderer) {
		r.execPath = path
	}
}

// NewRenderer creates a Renderer. Close must be called to stop the browser.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		userAgent:   prospect.DefaultUserAgent,
		idleTimeout: DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render loads url in a new tab and returns the document markup once the
// body is ready and the network has gone idle.
func (r *Renderer) Render(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.once.Do(r.start)
	if r.startErr != nil {
		return "", prospect.Errorf(prospect.EUNAVAILABLE, "headless browser unavailable: %v", r.startErr)
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, timeout)
	defer cancelTask()

	// The tab context descends from the browser, not from ctx.
	stop := context.AfterFunc(ctx, cancelTask)
	defer stop()

	idle := make(chan cdp.LoaderID, 16)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == lifecycleNetworkIdle {
			select {
			case idle <- e.LoaderID:
			default:
			}
		}
	})

	var html string
	var loaderID cdp.LoaderID
	err := chromedp.Run(taskCtx,
		page.SetLifecycleEventsEnabled(true),
		emulation.SetUserAgentOverride(r.userAgent),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, id, errText, _, err := page.Navigate(url).Do(ctx)
			if err != nil {
				return err
			}
			if errText != "" {
				return fmt.Errorf("navigate %s: %s", url, errText)
			}
			loaderID = id
			return nil
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitNetworkIdle(ctx, idle, loaderID, r.idleTimeout)
		}),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return html, nil
}

// waitNetworkIdle blocks until the networkIdle event of loaderID arrives
// or limit passes. Only ctx expiring is an error.
func waitNetworkIdle(ctx context.Context, idle <-chan cdp.LoaderID, loaderID cdp.LoaderID, limit time.Duration) error {
	timer := time.NewTimer(limit)
	defer timer.Stop()
	for {
		select {
		case id := <-idle:
			if id == loaderID {
				return nil
			}
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the browser if one was started.
func (r *Renderer) Close() error {
	if r.cancelBrowser != nil {
		r.cancelBrowser()
	}
	if r.cancelAlloc != nil {
		r.cancelAlloc()
	}
	return nil
}

func (r *Renderer) start() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.userAgent),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		r.startErr = err
		return
	}

	r.browserCtx = browserCtx
	r.cancelBrowser = cancelBrowser
	r.cancelAlloc = cancelAlloc
}
