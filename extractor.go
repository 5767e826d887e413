package prospect

// NormalizedPage is the readable form of a page's markup.
type NormalizedPage struct {
	// Title comes from <title>, falling back to the first <h1>.
	Title string

	// Text is the visible text, one non-trivial line per text block,
	// truncated to the configured maximum length.
	Text string
}

// Normalizer reduces raw HTML to a title and bounded, de-noised text.
type Normalizer interface {
	// Normalize never fails on malformed markup; parsers recover and
	// return whatever text they find.
	Normalize(html string) (*NormalizedPage, error)
}

// MetadataExtractor pulls company-level metadata out of page markup.
type MetadataExtractor interface {
	// CompanyName derives the company name from the homepage markup,
	// falling back to the domain of baseURL.
	CompanyName(html, baseURL string) string

	// Emails returns contact addresses found in the markup, lower-cased,
	// deduplicated in discovery order and with junk addresses removed.
	Emails(html string) []string
}

// DiscoveredLink is an internal link classified by page type.
type DiscoveredLink struct {
	URL  string
	Type PageType
}

// LinkDiscoverer finds classified, same-site links worth crawling.
type LinkDiscoverer interface {
	DiscoverLinks(html, baseURL string) ([]DiscoveredLink, error)
}
