package prospect

import (
	"strings"
	"unicode/utf8"
)

// PageType classifies a crawled page by its role on the site.
type PageType string

// Page types assigned by the crawler and the link discoverer.
const (
	PageTypeHomepage PageType = "homepage"
	PageTypeAbout    PageType = "about"
	PageTypeServices PageType = "services"
	PageTypeBlog     PageType = "blog"
	PageTypeContact  PageType = "contact"
	PageTypeUnknown  PageType = "unknown"
)

// Page represents a single crawled page reduced to readable text.
type Page struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Content string   `json:"content"` // Normalized text
	Type    PageType `json:"page_type"`
}

// Corpus is the bounded text corpus built from one company website.
// The homepage, when present, is always the first page.
type Corpus struct {
	BaseURL     string   `json:"base_url"`
	CompanyName string   `json:"company_name"`
	Pages       []*Page  `json:"pages"`
	Summary     string   `json:"raw_text_summary"`
	Emails      []string `json:"contact_emails"`
}

// NewCorpus builds a Corpus whose Summary is derived from pages.
// Nil slices are replaced with empty ones so the corpus always
// serializes with list fields.
func NewCorpus(baseURL, companyName string, pages []*Page, emails []string) *Corpus {
	if pages == nil {
		pages = []*Page{}
	}
	if emails == nil {
		emails = []string{}
	}
	return &Corpus{
		BaseURL:     baseURL,
		CompanyName: companyName,
		Pages:       pages,
		Summary:     BuildSummary(pages),
		Emails:      emails,
	}
}

// Empty reports whether the crawl produced no pages at all.
func (c *Corpus) Empty() bool {
	return c == nil || len(c.Pages) == 0
}

// TotalChars returns the summed content length of all pages.
func (c *Corpus) TotalChars() int {
	if c == nil {
		return 0
	}
	var n int
	for _, p := range c.Pages {
		n += utf8.RuneCountInString(p.Content)
	}
	return n
}

// BuildSummary concatenates pages into one labelled text block per page:
//
//	=== ABOUT: About Us ===
//	<content>
//
// Blocks are separated by a blank line.
func BuildSummary(pages []*Page) string {
	blocks := make([]string, 0, len(pages))
	for _, p := range pages {
		header := "=== " + strings.ToUpper(string(p.Type)) + ": " + p.Title + " ==="
		blocks = append(blocks, header+"\n"+p.Content)
	}
	return strings.Join(blocks, "\n\n")
}
