// Package goquery implements markup processing on top of goquery:
// text normalization, metadata extraction and link discovery.
package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/prospect"
	"golang.org/x/net/html"
)

// Ensure Normalizer implements prospect.Normalizer at compile time.
var _ prospect.Normalizer = (*Normalizer)(nil)

// Normalizer reduces markup to a title and bounded readable text.
type Normalizer struct {
	strip         string
	minLineLength int
	maxLength     int
	marker        string
}

// NewNormalizer creates a Normalizer using the strip list and length
// limits of cfg.
func NewNormalizer(cfg prospect.Config) *Normalizer {
	return &Normalizer{
		strip:         strings.Join(cfg.StripSelectors, ", "),
		minLineLength: cfg.MinLineLength,
		maxLength:     cfg.MaxContentLength,
		marker:        cfg.TruncationMarker,
	}
}

// Normalize extracts the title and visible text of rawHTML.
func (n *Normalizer) Normalize(rawHTML string) (*prospect.NormalizedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, prospect.Errorf(prospect.EINVALID, "failed to parse HTML: %v", err)
	}

	// Title is read before stripping; the first <h1> often sits in <header>.
	title := extractTitle(doc)

	if n.strip != "" {
		doc.Find(n.strip).Remove()
	}

	var lines []string
	for _, node := range doc.Nodes {
		collectLines(node, n.minLineLength, &lines)
	}

	return &prospect.NormalizedPage{
		Title: title,
		Text:  truncate(strings.Join(lines, "\n"), n.maxLength, n.marker),
	}, nil
}

// extractTitle returns <title>, else the first <h1>, else "".
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// collectLines walks text nodes in document order, splitting each on line
// breaks and keeping trimmed lines of at least minLen runes.
func collectLines(node *html.Node, minLen int, lines *[]string) {
	if node.Type == html.TextNode {
		for _, line := range strings.FieldsFunc(node.Data, isLineBreak) {
			line = strings.TrimSpace(line)
			if line == "" || utf8.RuneCountInString(line) < minLen {
				continue
			}
			*lines = append(*lines, line)
		}
		return
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		collectLines(c, minLen, lines)
	}
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// truncate cuts s to maxLen runes and appends marker when s was longer.
func truncate(s string, maxLen int, marker string) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + marker
}
