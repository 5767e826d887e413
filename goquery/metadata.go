package goquery

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/prospect"
)

// Ensure MetadataExtractor implements prospect.MetadataExtractor at compile time.
var _ prospect.MetadataExtractor = (*MetadataExtractor)(nil)

// titleSeparators split "Company | Tagline" style titles, checked in order.
var titleSeparators = []string{" | ", " - ", " — ", " – ", " :: "}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// MetadataExtractor derives the company name and contact emails from markup.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// CompanyName returns the site name from og:site_name (or application-name),
// else the leading segment of the title, else the whole title, else the
// capitalized first label of the domain.
func (m *MetadataExtractor) CompanyName(rawHTML, baseURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err == nil {
		if name := metaContent(doc, `meta[property="og:site_name"]`); name != "" {
			return name
		}
		if name := metaContent(doc, `meta[name="application-name"]`); name != "" {
			return name
		}
		if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
			return nameFromTitle(title)
		}
	}
	return nameFromDomain(baseURL)
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func nameFromTitle(title string) string {
	for _, sep := range titleSeparators {
		if before, _, ok := strings.Cut(title, sep); ok {
			if name := strings.TrimSpace(before); name != "" {
				return name
			}
		}
	}
	return title
}

func nameFromDomain(baseURL string) string {
	u, err := url.Parse(prospect.NormalizeURL(baseURL))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	label, _, _ := strings.Cut(host, ".")
	return capitalize(label)
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Emails returns contact addresses from mailto: links first, then from
// a pattern scan over the raw markup.
func (m *MetadataExtractor) Emails(rawHTML string) []string {
	var candidates []string

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if addr := mailtoAddress(href); addr != "" {
				candidates = append(candidates, addr)
			}
		})
	}

	candidates = append(candidates, emailPattern.FindAllString(rawHTML, -1)...)

	return prospect.CleanEmails(candidates...)
}

// mailtoAddress returns the address of a mailto: href, without query.
func mailtoAddress(href string) string {
	href = strings.TrimSpace(href)
	if len(href) < 7 || !strings.EqualFold(href[:7], "mailto:") {
		return ""
	}
	addr, _, _ := strings.Cut(href[7:], "?")
	if unescaped, err := url.PathUnescape(addr); err == nil {
		addr = unescaped
	}
	addr = strings.ToLower(strings.TrimSpace(addr))
	if !strings.Contains(addr, "@") {
		return ""
	}
	return addr
}
