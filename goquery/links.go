package goquery

import (
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/prospect"
	"golang.org/x/net/publicsuffix"
)

// Ensure LinkDiscoverer implements prospect.LinkDiscoverer at compile time.
var _ prospect.LinkDiscoverer = (*LinkDiscoverer)(nil)

// LinkDiscoverer finds same-site links whose path or anchor text names a
// known page type.
type LinkDiscoverer struct {
	keywords []prospect.KeywordRule
	limit    int
}

// NewLinkDiscoverer creates a LinkDiscoverer using the keyword table and
// page cap of cfg.
func NewLinkDiscoverer(cfg prospect.Config) *LinkDiscoverer {
	return &LinkDiscoverer{
		keywords: cfg.Keywords,
		limit:    cfg.MaxDiscoveredLinks(),
	}
}

// DiscoverLinks returns classified links in document order, deduplicated
// by scheme, host and path, excluding the base URL itself.
func (d *LinkDiscoverer) DiscoverLinks(rawHTML, baseURL string) ([]prospect.DiscoveredLink, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, prospect.Errorf(prospect.EINVALID, "invalid base URL: %s", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, prospect.Errorf(prospect.EINVALID, "failed to parse HTML: %v", err)
	}

	baseDomain := registrableDomain(base.Hostname())
	baseClean := cleanURL(base)

	seen := prospect.NewOrderedSet[string]()
	var links []prospect.DiscoveredLink

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(links) >= d.limit {
			return false
		}

		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isNonHTTPLink(href) {
			return true
		}

		resolved := resolveURL(base, href)
		if resolved == nil {
			return true
		}
		if registrableDomain(resolved.Hostname()) != baseDomain {
			return true
		}

		pageType, ok := d.classify(resolved, sel.Text())
		if !ok {
			return true
		}

		clean := cleanURL(resolved)
		if clean == baseClean || !seen.Add(clean) {
			return true
		}
		links = append(links, prospect.DiscoveredLink{URL: clean, Type: pageType})
		return true
	})

	return links, nil
}

// classify returns the type of the first keyword found in the link's
// path or anchor text.
func (d *LinkDiscoverer) classify(u *url.URL, text string) (prospect.PageType, bool) {
	path := strings.TrimRight(strings.ToLower(u.Path), "/")
	text = strings.ToLower(strings.TrimSpace(text))
	for _, rule := range d.keywords {
		if strings.Contains(path, rule.Keyword) || strings.Contains(text, rule.Keyword) {
			return rule.Type, true
		}
	}
	return "", false
}

// resolveURL resolves href against base. Returns nil for unparseable
// hrefs and for schemes other than http and https.
func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}
	if resolved.Host == "" {
		return nil
	}
	return resolved
}

// cleanURL returns scheme://host/path with query, fragment and trailing
// slashes removed.
func cleanURL(u *url.URL) string {
	clean := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.EscapedPath()
	return strings.TrimRight(clean, "/")
}

// registrableDomain returns the eTLD+1 of host so that www.acme.io and
// acme.io compare equal. IP addresses and single-label hosts are
// returned unchanged.
func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// isNonHTTPLink checks if a href is a fragment or a non-HTTP link that
// should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:")
}
