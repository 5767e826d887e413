package mock

import "github.com/fwojciec/prospect"

var _ prospect.Normalizer = (*Normalizer)(nil)

// Normalizer is a mock implementation of prospect.Normalizer.
type Normalizer struct {
	NormalizeFn func(html string) (*prospect.NormalizedPage, error)
}

func (n *Normalizer) Normalize(html string) (*prospect.NormalizedPage, error) {
	return n.NormalizeFn(html)
}

var _ prospect.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor is a mock implementation of prospect.MetadataExtractor.
type MetadataExtractor struct {
	CompanyNameFn func(html, baseURL string) string
	EmailsFn      func(html string) []string
}

func (m *MetadataExtractor) CompanyName(html, baseURL string) string {
	return m.CompanyNameFn(html, baseURL)
}

func (m *MetadataExtractor) Emails(html string) []string {
	return m.EmailsFn(html)
}

var _ prospect.LinkDiscoverer = (*LinkDiscoverer)(nil)

// LinkDiscoverer is a mock implementation of prospect.LinkDiscoverer.
type LinkDiscoverer struct {
	DiscoverLinksFn func(html, baseURL string) ([]prospect.DiscoveredLink, error)
}

func (d *LinkDiscoverer) DiscoverLinks(html, baseURL string) ([]prospect.DiscoveredLink, error) {
	return d.DiscoverLinksFn(html, baseURL)
}
