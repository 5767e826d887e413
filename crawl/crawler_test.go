package crawl_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/crawl"
	"github.com/fwojciec/prospect/goquery"
	"github.com/fwojciec/prospect/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acmeHome = `<!DOCTYPE html>
<html>
<head>
	<title>Acme Corp — Building the Future</title>
	<meta property="og:site_name" content="Acme Corp">
</head>
<body>
<nav><a href="/about">About</a></nav>
<main>
	<h1>Acme Corp builds reusable rockets</h1>
	<p>We design and manufacture launch vehicles for commercial customers around the world.</p>
	<p>Reach our team at <a href="mailto:sales@acme.com">sales@acme.com</a>.</p>
</main>
</body>
</html>`

const acmeAbout = `<html>
<head><title>About Acme</title></head>
<body>
<p>Founded in 2010, Acme has launched more than one hundred missions.</p>
<p>Press enquiries: press@acme.com</p>
</body>
</html>`

// pages maps URLs to markup. Missing URLs fail like a connection error.
func siteFetcher(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			html, ok := pages[url]
			if !ok {
				return "", prospect.Errorf(prospect.ENOCONTENT, "connection refused: %s", url)
			}
			return html, nil
		},
		CloseFn: func() error { return nil },
	}
}

func testConfig() prospect.Config {
	cfg := prospect.DefaultConfig()
	cfg.RateLimitDelay = 0
	return cfg
}

func newCrawler(fetcher prospect.Fetcher, renderer prospect.Renderer) *crawl.Crawler {
	cfg := testConfig()
	return &crawl.Crawler{
		Fetcher:    fetcher,
		Renderer:   renderer,
		Normalizer: goquery.NewNormalizer(cfg),
		Metadata:   goquery.NewMetadataExtractor(),
		Links:      goquery.NewLinkDiscoverer(cfg),
		Limiter:    crawl.NewLimiter(cfg.RateLimitDelay),
		Config:     cfg,
	}
}

func failingRenderer(t *testing.T) *mock.Renderer {
	t.Helper()
	return &mock.Renderer{
		RenderFn: func(context.Context, string, time.Duration) (string, error) {
			t.Fatal("renderer should not be called")
			return "", nil
		},
	}
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("builds corpus from homepage and discovered pages", func(t *testing.T) {
		t.Parallel()

		fetcher := siteFetcher(map[string]string{
			"https://acme.com":       acmeHome,
			"https://acme.com/about": acmeAbout,
		})
		c := newCrawler(fetcher, failingRenderer(t))

		corpus := c.Crawl(context.Background(), "acme.com/", false, nil)

		assert.Equal(t, "https://acme.com", corpus.BaseURL)
		assert.Equal(t, "Acme Corp", corpus.CompanyName)
		require.Len(t, corpus.Pages, 2)

		home := corpus.Pages[0]
		assert.Equal(t, prospect.PageTypeHomepage, home.Type)
		assert.Equal(t, "https://acme.com", home.URL)
		assert.Equal(t, "Acme Corp — Building the Future", home.Title)
		assert.Contains(t, home.Content, "We design and manufacture launch vehicles")

		about := corpus.Pages[1]
		assert.Equal(t, prospect.PageTypeAbout, about.Type)
		assert.Equal(t, "https://acme.com/about", about.URL)
		assert.Equal(t, "About Acme", about.Title)

		assert.Equal(t, []string{"sales@acme.com", "press@acme.com"}, corpus.Emails)
		assert.Equal(t, prospect.BuildSummary(corpus.Pages), corpus.Summary)
		assert.True(t, strings.HasPrefix(corpus.Summary, "=== HOMEPAGE: Acme Corp — Building the Future ===\n"))
		assert.Contains(t, corpus.Summary, "\n\n=== ABOUT: About Acme ===\n")
	})

	t.Run("keeps homepage when secondary page fetch fails", func(t *testing.T) {
		t.Parallel()

		fetcher := siteFetcher(map[string]string{
			"https://acme.com": acmeHome,
		})
		c := newCrawler(fetcher, failingRenderer(t))

		corpus := c.Crawl(context.Background(), "https://acme.com", false, nil)

		assert.Equal(t, "Acme Corp", corpus.CompanyName)
		require.Len(t, corpus.Pages, 1)
		assert.Equal(t, prospect.PageTypeHomepage, corpus.Pages[0].Type)
		assert.Contains(t, corpus.Emails, "sales@acme.com")
	})

	t.Run("returns empty corpus when homepage fails and render is disabled", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", prospect.Errorf(prospect.ENOCONTENT, "timeout")
			},
		}
		c := newCrawler(fetcher, failingRenderer(t))

		corpus := c.Crawl(context.Background(), "https://acme.com", false, nil)

		assert.Equal(t, "https://acme.com", corpus.BaseURL)
		assert.Empty(t, corpus.Pages)
		assert.Empty(t, corpus.CompanyName)
		assert.Empty(t, corpus.Summary)
		assert.Empty(t, corpus.Emails)
		assert.True(t, corpus.Empty())
	})

	t.Run("returns empty corpus when homepage and render both fail", func(t *testing.T) {
		t.Parallel()

		fetcher := siteFetcher(nil)
		renderer := &mock.Renderer{
			RenderFn: func(context.Context, string, time.Duration) (string, error) {
				return "", prospect.Errorf(prospect.EUNAVAILABLE, "no browser")
			},
		}
		c := newCrawler(fetcher, renderer)

		corpus := c.Crawl(context.Background(), "https://acme.com", true, nil)

		assert.True(t, corpus.Empty())
		assert.Empty(t, corpus.Summary)
	})

	t.Run("treats nop renderer like a failed render", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(siteFetcher(nil), prospect.NopRenderer{})

		corpus := c.Crawl(context.Background(), "https://acme.com", true, nil)

		assert.True(t, corpus.Empty())
	})

	t.Run("renders homepage when plain fetch fails", func(t *testing.T) {
		t.Parallel()

		var renderedURL string
		var renderTimeout time.Duration
		renderer := &mock.Renderer{
			RenderFn: func(_ context.Context, url string, timeout time.Duration) (string, error) {
				renderedURL, renderTimeout = url, timeout
				return acmeHome, nil
			},
		}
		c := newCrawler(siteFetcher(nil), renderer)

		corpus := c.Crawl(context.Background(), "https://acme.com", true, nil)

		assert.Equal(t, "https://acme.com", renderedURL)
		assert.Equal(t, 20*time.Second, renderTimeout)
		require.Len(t, corpus.Pages, 1)
		assert.Equal(t, "Acme Corp", corpus.CompanyName)
	})

	t.Run("uses rendered homepage when plain content is thin", func(t *testing.T) {
		t.Parallel()

		thin := `<html><head><title>Loading</title></head><body><div id="root">Please enable JavaScript</div></body></html>`
		rendered := `<html><head><title>Rendered Co | Home</title></head><body><main>` +
			strings.Repeat("<p>Rendered Co delivers analytics platforms for retail chains.</p>", 30) +
			`<a href="/services">Our services</a></main></body></html>`

		fetcher := siteFetcher(map[string]string{
			"https://rendered.co":          thin,
			"https://rendered.co/services": `<p>We offer forecasting, pricing and inventory analytics.</p>`,
		})
		renderer := &mock.Renderer{
			RenderFn: func(context.Context, string, time.Duration) (string, error) {
				return rendered, nil
			},
		}
		c := newCrawler(fetcher, renderer)

		corpus := c.Crawl(context.Background(), "https://rendered.co", true, nil)

		require.Len(t, corpus.Pages, 2)
		home := corpus.Pages[0]
		assert.Contains(t, home.Content, "Rendered Co delivers analytics platforms")
		assert.NotContains(t, home.Content, "Please enable JavaScript")
		assert.Equal(t, "Rendered Co | Home", home.Title)
		assert.Equal(t, "Rendered Co", corpus.CompanyName)
		assert.Equal(t, prospect.PageTypeServices, corpus.Pages[1].Type)
	})

	t.Run("keeps plain homepage when render is not longer", func(t *testing.T) {
		t.Parallel()

		thin := `<html><head><title>Tiny</title></head><body><p>Short but real text</p></body></html>`
		renderer := &mock.Renderer{
			RenderFn: func(context.Context, string, time.Duration) (string, error) {
				return `<html><body><p>Less</p></body></html>`, nil
			},
		}
		c := newCrawler(siteFetcher(map[string]string{"https://tiny.io": thin}), renderer)

		corpus := c.Crawl(context.Background(), "https://tiny.io", true, nil)

		require.Len(t, corpus.Pages, 1)
		assert.Contains(t, corpus.Pages[0].Content, "Short but real text")
		assert.Equal(t, "Tiny", corpus.CompanyName)
	})

	t.Run("does not render thin homepage when render is disabled", func(t *testing.T) {
		t.Parallel()

		thin := `<html><body><p>Short but real text</p></body></html>`
		c := newCrawler(siteFetcher(map[string]string{"https://tiny.io": thin}), failingRenderer(t))

		corpus := c.Crawl(context.Background(), "https://tiny.io", false, nil)

		require.Len(t, corpus.Pages, 1)
		assert.Equal(t, "Short but real text", corpus.Pages[0].Content)
		assert.Equal(t, "Tiny", corpus.CompanyName)
	})

	t.Run("skips thin secondary pages", func(t *testing.T) {
		t.Parallel()

		home := `<html><head><title>Acme</title></head><body>
<p>Acme makes industrial widgets for factories across Europe and Asia since 1990.</p>
<a href="/blog">Blog</a><a href="/contact">Contact</a></body></html>`

		fetcher := siteFetcher(map[string]string{
			"https://acme.com":         home,
			"https://acme.com/blog":    `<p>Coming soon</p>`,
			"https://acme.com/contact": `<p>Call us on weekdays between nine and five o'clock.</p>`,
		})
		c := newCrawler(fetcher, nil)

		var messages []string
		corpus := c.Crawl(context.Background(), "https://acme.com", false, func(msg string) {
			messages = append(messages, msg)
		})

		require.Len(t, corpus.Pages, 2)
		assert.Equal(t, prospect.PageTypeContact, corpus.Pages[1].Type)
		assert.Contains(t, messages, "Skipping thin page: https://acme.com/blog")
	})

	t.Run("never exceeds the page cap", func(t *testing.T) {
		t.Parallel()

		var b strings.Builder
		b.WriteString(`<html><head><title>Blogger</title></head><body><p>Welcome to a site with many interesting articles to read.</p>`)
		pages := map[string]string{}
		for i := range 20 {
			url := fmt.Sprintf("https://blogger.io/blog/post-%d", i)
			fmt.Fprintf(&b, `<a href="%s">Post %d</a>`, url, i)
			pages[url] = fmt.Sprintf("<p>This is the full text of blog post number %d.</p>", i)
		}
		b.WriteString(`</body></html>`)
		pages["https://blogger.io"] = b.String()

		c := newCrawler(siteFetcher(pages), nil)

		corpus := c.Crawl(context.Background(), "https://blogger.io", false, nil)

		require.Len(t, corpus.Pages, testConfig().MaxPages)
		seen := map[string]bool{}
		for _, p := range corpus.Pages {
			assert.False(t, seen[p.URL], "duplicate page %s", p.URL)
			seen[p.URL] = true
		}
	})

	t.Run("skips pages disallowed by robots policy", func(t *testing.T) {
		t.Parallel()

		fetcher := siteFetcher(map[string]string{
			"https://acme.com":       acmeHome,
			"https://acme.com/about": acmeAbout,
		})
		c := newCrawler(fetcher, nil)
		c.Robots = &mock.RobotsPolicy{
			AllowedFn: func(_ context.Context, url string) bool {
				return url != "https://acme.com/about"
			},
		}

		corpus := c.Crawl(context.Background(), "https://acme.com", false, nil)

		assert.Len(t, corpus.Pages, 1)
	})

	t.Run("waits on the limiter before each secondary fetch only", func(t *testing.T) {
		t.Parallel()

		var events []string
		site := siteFetcher(map[string]string{
			"https://acme.com":       acmeHome,
			"https://acme.com/about": acmeAbout,
		})
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				events = append(events, "fetch "+url)
				return site.Fetch(ctx, url)
			},
			CloseFn: site.Close,
		}
		c := newCrawler(fetcher, nil)
		c.Limiter = &mock.Limiter{
			WaitFn: func(context.Context) error {
				events = append(events, "wait")
				return nil
			},
		}

		c.Crawl(context.Background(), "https://acme.com", false, nil)

		assert.Equal(t, []string{"fetch https://acme.com", "wait", "fetch https://acme.com/about"}, events)
	})

	t.Run("stops at cancelled context with pages gathered so far", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		fetcher := siteFetcher(map[string]string{
			"https://acme.com":       acmeHome,
			"https://acme.com/about": acmeAbout,
		})
		c := newCrawler(fetcher, nil)
		c.Limiter = &mock.Limiter{
			WaitFn: func(ctx context.Context) error {
				return ctx.Err()
			},
		}
		c.Links = &mock.LinkDiscoverer{
			DiscoverLinksFn: func(string, string) ([]prospect.DiscoveredLink, error) {
				cancel()
				return []prospect.DiscoveredLink{{URL: "https://acme.com/about", Type: prospect.PageTypeAbout}}, nil
			},
		}

		corpus := c.Crawl(ctx, "https://acme.com", false, nil)

		require.Len(t, corpus.Pages, 1)
		assert.Equal(t, prospect.PageTypeHomepage, corpus.Pages[0].Type)
	})

	t.Run("continues when link discovery fails", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(siteFetcher(map[string]string{"https://acme.com": acmeHome}), nil)
		c.Links = &mock.LinkDiscoverer{
			DiscoverLinksFn: func(string, string) ([]prospect.DiscoveredLink, error) {
				return nil, prospect.Errorf(prospect.EINVALID, "bad base")
			},
		}

		corpus := c.Crawl(context.Background(), "https://acme.com", false, nil)

		assert.Len(t, corpus.Pages, 1)
	})

	t.Run("is idempotent for identical responses", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://acme.com":       acmeHome,
			"https://acme.com/about": acmeAbout,
		}

		first := newCrawler(siteFetcher(pages), nil).Crawl(context.Background(), "https://acme.com", false, nil)
		second := newCrawler(siteFetcher(pages), nil).Crawl(context.Background(), "https://acme.com", false, nil)

		assert.Equal(t, first, second)
	})
}

func TestCrawler_Progress(t *testing.T) {
	t.Parallel()

	t.Run("reports each milestone in order", func(t *testing.T) {
		t.Parallel()

		fetcher := siteFetcher(map[string]string{
			"https://acme.com":       acmeHome,
			"https://acme.com/about": acmeAbout,
		})
		c := newCrawler(fetcher, nil)

		var messages []string
		corpus := c.Crawl(context.Background(), "https://acme.com", false, func(msg string) {
			messages = append(messages, msg)
		})

		require.Len(t, corpus.Pages, 2)
		homeChars := len([]rune(corpus.Pages[0].Content))
		aboutChars := len([]rune(corpus.Pages[1].Content))
		assert.Equal(t, []string{
			"Starting scrape of https://acme.com",
			"Fetching homepage...",
			fmt.Sprintf("Homepage scraped: %d chars", homeChars),
			"Discovered 1 internal pages to scrape",
			"Fetching about page: https://acme.com/about",
			fmt.Sprintf("Scraped about: %d chars", aboutChars),
			"Found 2 contact email(s): sales@acme.com, press@acme.com",
			fmt.Sprintf("Scraping complete: 2 pages, %d total chars", len([]rune(corpus.Summary))),
		}, messages)
	})

	t.Run("reports fallback and failure", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(siteFetcher(nil), prospect.NopRenderer{})

		var messages []string
		c.Crawl(context.Background(), "https://acme.com", true, func(msg string) {
			messages = append(messages, msg)
		})

		assert.Equal(t, []string{
			"Starting scrape of https://acme.com",
			"Fetching homepage...",
			"Trying headless render fallback for homepage...",
			"Failed to fetch homepage. Returning empty result.",
		}, messages)
	})

	t.Run("reports missing emails", func(t *testing.T) {
		t.Parallel()

		home := `<html><head><title>Quiet</title></head><body><p>We prefer not to publish any contact details at all.</p></body></html>`
		c := newCrawler(siteFetcher(map[string]string{"https://quiet.io": home}), nil)

		var messages []string
		c.Crawl(context.Background(), "https://quiet.io", false, func(msg string) {
			messages = append(messages, msg)
		})

		assert.Contains(t, messages, "No contact emails found on this website")
	})

	t.Run("progress does not change the result", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://acme.com":       acmeHome,
			"https://acme.com/about": acmeAbout,
		}

		var calls int
		withProgress := newCrawler(siteFetcher(pages), nil).Crawl(context.Background(), "https://acme.com", false, func(string) {
			calls++
		})
		without := newCrawler(siteFetcher(pages), nil).Crawl(context.Background(), "https://acme.com", false, nil)

		assert.Equal(t, without, withProgress)
		assert.Positive(t, calls)
	})
}
