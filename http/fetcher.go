// Package http provides a net/http implementation of prospect.Fetcher
// and a robots.txt policy for polite crawling.
package http

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/fwojciec/prospect"
	"golang.org/x/net/publicsuffix"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 15 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

// Ensure Fetcher implements prospect.Fetcher at compile time.
var _ prospect.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML over plain HTTP with a browser-like header set.
// Each Fetcher holds its own session (cookie jar), so concurrent crawls
// of different sites should use separate Fetchers.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	headers map[string]string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (15s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.headers["User-Agent"] = ua
	}
}

// WithHeaders sets additional request headers, replacing defaults
// with the same name.
func WithHeaders(h map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range h {
			f.headers[k] = v
		}
	}
}

// WithClient replaces the underlying HTTP client. The client's timeout
// is left as configured by the caller.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		headers: map[string]string{
			"User-Agent":      prospect.DefaultUserAgent,
			"Accept":          prospect.DefaultAccept,
			"Accept-Language": prospect.DefaultAcceptLanguage,
		},
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		// cookiejar.New never returns an error.
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		f.client = &http.Client{
			Timeout: f.timeout,
			Jar:     jar,
		}
	}

	return f
}

// NewFetcherFromConfig creates a Fetcher using the timeout and headers of cfg.
func NewFetcherFromConfig(cfg prospect.Config, opts ...Option) *Fetcher {
	base := []Option{
		WithTimeout(cfg.FetchTimeout),
		WithHeaders(map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          cfg.Accept,
			"Accept-Language": cfg.AcceptLanguage,
		}),
	}
	return NewFetcher(append(base, opts...)...)
}

// Fetch retrieves the HTML content from the given URL. Every failure is
// reported with code ENOCONTENT.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", prospect.Errorf(prospect.ENOCONTENT, "invalid url %s: %v", url, err)
	}
	for k, v := range f.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", prospect.Errorf(prospect.ENOCONTENT, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", prospect.Errorf(prospect.ENOCONTENT, "HTTP %d for %s", resp.StatusCode, url)
	}

	if !isHTML(resp.Header.Get("Content-Type")) {
		return "", prospect.Errorf(prospect.ENOCONTENT, "non-HTML content at %s: %s", url, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", prospect.Errorf(prospect.ENOCONTENT, "read %s: %v", url, err)
	}

	return string(body), nil
}

// Close releases idle connections held by the session.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
