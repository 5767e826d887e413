package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/prospect"
	"github.com/temoto/robotstxt"
)

// Ensure RobotsPolicy implements prospect.RobotsPolicy at compile time.
var _ prospect.RobotsPolicy = (*RobotsPolicy)(nil)

// RobotsPolicy enforces robots.txt directives per host. Files are
// fetched once per host and cached for the life of the policy.
// A robots.txt that cannot be fetched or parsed allows everything, and
// that outcome is cached for the host too.
type RobotsPolicy struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsPolicy creates a RobotsPolicy that evaluates rules for userAgent.
func NewRobotsPolicy(userAgent string, logger *slog.Logger) *RobotsPolicy {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RobotsPolicy{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		logger:    logger,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be crawled.
func (r *RobotsPolicy) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return r.load(ctx, parsed).TestAgent(path, r.userAgent)
}

// load returns the cached rules for the host of parsed, fetching them on
// first use. Fetch failures are cached as allow-all unless ctx ended.
func (r *RobotsPolicy) load(ctx context.Context, parsed *url.URL) *robotstxt.RobotsData {
	hostKey := strings.ToLower(parsed.Scheme + "://" + parsed.Host)

	r.mu.Lock()
	data, ok := r.cache[hostKey]
	r.mu.Unlock()
	if ok {
		return data
	}

	data, err := r.fetch(ctx, parsed)
	if err != nil {
		r.logger.Warn("robots fetch failed; allowing access", "host", parsed.Host, "error", err)
		data = allowAll()
		if ctx.Err() != nil {
			return data
		}
	}

	r.mu.Lock()
	r.cache[hostKey] = data
	r.mu.Unlock()
	return data
}

func (r *RobotsPolicy) fetch(ctx context.Context, parsed *url.URL) (*robotstxt.RobotsData, error) {
	robotsURL := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: "/robots.txt"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read robots body: %w", err)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots: %w", err)
	}
	return data, nil
}

func allowAll() *robotstxt.RobotsData {
	data, _ := robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	return data
}
