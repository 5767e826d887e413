package rod

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/prospect"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultIdleWindow is how long the network must stay quiet before a page
// counts as rendered.
const DefaultIdleWindow = 500 * time.Millisecond

// Ensure Renderer implements prospect.Renderer at compile time.
var _ prospect.Renderer = (*Renderer)(nil)

// Renderer renders pages in headless Chrome. The browser is launched on
// the first Render call, so constructing a Renderer never fails; when
// Chrome cannot be launched every Render reports EUNAVAILABLE.
type Renderer struct {
	opts       []ManagerOption
	idleWindow time.Duration

	once      sync.Once
	manager   *BrowserManager
	launchErr error
	closed    atomic.Bool
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithIdleWindow sets the quiet period that ends a render.
func WithIdleWindow(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.idleWindow = d
	}
}

// WithManagerOptions passes options to the underlying BrowserManager.
func WithManagerOptions(opts ...ManagerOption) RendererOption {
	return func(r *Renderer) {
		r.opts = append(r.opts, opts...)
	}
}

// NewRenderer creates a Renderer. Close must be called to stop the browser.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{idleWindow: DefaultIdleWindow}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render loads url, waits until network requests have been idle for the
// idle window and returns the page markup. timeout bounds the whole render.
func (r *Renderer) Render(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.closed.Load() {
		return "", prospect.Errorf(prospect.EUNAVAILABLE, "headless browser closed")
	}

	r.once.Do(func() {
		r.manager, r.launchErr = NewBrowserManager(r.opts...)
	})
	if r.launchErr != nil {
		return "", prospect.Errorf(prospect.EUNAVAILABLE, "headless browser unavailable: %v", r.launchErr)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	browser := r.manager.Browser()
	if browser == nil {
		return "", prospect.Errorf(prospect.EUNAVAILABLE, "headless browser closed")
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()
	defer r.manager.IncrementRenderCount()

	page = page.Context(ctx)

	wait := page.WaitRequestIdle(r.idleWindow, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return "", err
	}
	wait()

	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	return page.HTML()
}

// Close stops the browser if one was launched. Later renders report
// EUNAVAILABLE.
func (r *Renderer) Close() error {
	r.closed.Store(true)
	// Waits for an in-flight launch and prevents a new one.
	r.once.Do(func() {})
	if r.manager == nil {
		return nil
	}
	return r.manager.Close()
}
