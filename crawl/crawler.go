// Package crawl builds a site corpus from a company website.
// It coordinates fetching, the headless render fallback, normalization,
// metadata extraction and link discovery for one site at a time.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/prospect"
)

// Ensure Crawler implements prospect.SiteCrawler at compile time.
var _ prospect.SiteCrawler = (*Crawler)(nil)

// Crawler visits a homepage and a bounded set of classified internal pages.
// Pages are fetched one at a time. A Crawler owns its Fetcher session, so
// concurrent crawls must use separate Crawlers.
type Crawler struct {
	Fetcher    prospect.Fetcher
	Renderer   prospect.Renderer
	Normalizer prospect.Normalizer
	Metadata   prospect.MetadataExtractor
	Links      prospect.LinkDiscoverer
	Limiter    prospect.Limiter
	Robots     prospect.RobotsPolicy
	Config     prospect.Config
	Logger     *slog.Logger
}

// Crawl builds the corpus for seedURL. Network failures never surface as
// errors: an unreachable homepage yields a corpus with no pages, and a
// failing or thin secondary page is skipped. A cancelled context stops
// the crawl early with the pages gathered so far.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, allowRender bool, progress prospect.ProgressFunc) *prospect.Corpus {
	baseURL := prospect.NormalizeURL(seedURL)
	log := c.reporter(progress)

	log("Starting scrape of %s", baseURL)

	log("Fetching homepage...")
	if ctx.Err() != nil {
		log("Failed to fetch homepage. Returning empty result.")
		return prospect.NewCorpus(baseURL, "", nil, nil)
	}
	html := c.fetch(ctx, baseURL)
	if html == "" && allowRender {
		log("Trying headless render fallback for homepage...")
		html = c.render(ctx, baseURL)
	}
	if html == "" {
		log("Failed to fetch homepage. Returning empty result.")
		return prospect.NewCorpus(baseURL, "", nil, nil)
	}

	home := c.normalize(html)
	if textLen(home) < c.Config.ThinContentThreshold && allowRender {
		log("Homepage content is thin, trying headless render fallback...")
		if rendered := c.render(ctx, baseURL); rendered != "" {
			if page := c.normalize(rendered); textLen(page) > textLen(home) {
				html, home = rendered, page
			}
		}
	}
	if home == nil {
		log("Failed to fetch homepage. Returning empty result.")
		return prospect.NewCorpus(baseURL, "", nil, nil)
	}

	companyName := c.Metadata.CompanyName(html, baseURL)
	emails := prospect.NewOrderedSet(c.Metadata.Emails(html)...)
	pages := []*prospect.Page{{
		URL:     baseURL,
		Title:   home.Title,
		Content: home.Text,
		Type:    prospect.PageTypeHomepage,
	}}
	log("Homepage scraped: %d chars", textLen(home))

	links, err := c.Links.DiscoverLinks(html, baseURL)
	if err != nil {
		c.logger().Warn("link discovery failed", "url", baseURL, "error", err)
		links = nil
	}
	if limit := c.Config.MaxDiscoveredLinks(); len(links) > limit {
		links = links[:limit]
	}
	log("Discovered %d internal pages to scrape", len(links))

	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		if c.Robots != nil && !c.Robots.Allowed(ctx, link.URL) {
			log("Skipping disallowed page: %s", link.URL)
			continue
		}
		if err := c.wait(ctx); err != nil {
			break
		}

		log("Fetching %s page: %s", link.Type, link.URL)
		pageHTML := c.fetch(ctx, link.URL)
		if pageHTML == "" {
			continue
		}

		page := c.normalize(pageHTML)
		if page == nil || textLen(page) < c.Config.MinPageLength {
			log("Skipping thin page: %s", link.URL)
			continue
		}

		pages = append(pages, &prospect.Page{
			URL:     link.URL,
			Title:   page.Title,
			Content: page.Text,
			Type:    link.Type,
		})
		emails.Add(c.Metadata.Emails(pageHTML)...)
		log("Scraped %s: %d chars", link.Type, textLen(page))
	}

	corpus := prospect.NewCorpus(baseURL, companyName, pages, emails.Values())

	if len(corpus.Emails) > 0 {
		log("Found %d contact email(s): %s", len(corpus.Emails), strings.Join(corpus.Emails, ", "))
	} else {
		log("No contact emails found on this website")
	}
	log("Scraping complete: %d pages, %d total chars", len(corpus.Pages), utf8.RuneCountInString(corpus.Summary))

	return corpus
}

// fetch returns the markup of url, or "" when the fetch failed.
func (c *Crawler) fetch(ctx context.Context, url string) string {
	html, err := c.Fetcher.Fetch(ctx, url)
	if err != nil {
		c.logger().Warn("fetch failed", "url", url, "error", err)
		return ""
	}
	return html
}

// render returns the rendered markup of url, or "" when rendering failed
// or no renderer is available.
func (c *Crawler) render(ctx context.Context, url string) string {
	if c.Renderer == nil {
		return ""
	}
	html, err := c.Renderer.Render(ctx, url, c.Config.RenderTimeout)
	if err != nil {
		c.logger().Warn("render fallback failed", "url", url, "error", err)
		return ""
	}
	return html
}

func (c *Crawler) normalize(html string) *prospect.NormalizedPage {
	page, err := c.Normalizer.Normalize(html)
	if err != nil {
		c.logger().Warn("normalize failed", "error", err)
		return nil
	}
	return page
}

func (c *Crawler) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return ctx.Err()
	}
	return c.Limiter.Wait(ctx)
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// reporter returns a printf-style function that logs each milestone and
// forwards it to progress.
func (c *Crawler) reporter(progress prospect.ProgressFunc) func(format string, args ...any) {
	logger := c.logger()
	return func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		logger.Info(msg)
		if progress != nil {
			progress(msg)
		}
	}
}

func textLen(p *prospect.NormalizedPage) int {
	if p == nil {
		return 0
	}
	return utf8.RuneCountInString(p.Text)
}
