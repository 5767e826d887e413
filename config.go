package prospect

import "time"

// Default header values sent with every plain HTTP request.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.5"
)

// KeywordRule maps a keyword found in a link path or anchor text to the
// page type assigned to that link.
type KeywordRule struct {
	Keyword string
	Type    PageType
}

// DefaultKeywords returns the classification table. Order matters: the
// first rule whose keyword appears in a link wins.
func DefaultKeywords() []KeywordRule {
	return []KeywordRule{
		{"about", PageTypeAbout},
		{"services", PageTypeServices},
		{"solutions", PageTypeServices},
		{"products", PageTypeServices},
		{"offerings", PageTypeServices},
		{"what-we-do", PageTypeServices},
		{"blog", PageTypeBlog},
		{"news", PageTypeBlog},
		{"insights", PageTypeBlog},
		{"contact", PageTypeContact},
		{"team", PageTypeAbout},
		{"careers", PageTypeAbout},
		{"case-studies", PageTypeServices},
		{"portfolio", PageTypeServices},
		{"pricing", PageTypeServices},
		{"faq", PageTypeServices},
	}
}

// DefaultStripSelectors returns the elements removed before text extraction.
func DefaultStripSelectors() []string {
	return []string{
		"script", "style", "nav", "footer", "header",
		"noscript", "iframe", "svg", "form", "button",
	}
}

// Config holds the crawl parameters. It is treated as an immutable value:
// components copy it at construction and never modify it.
type Config struct {
	FetchTimeout   time.Duration
	RenderTimeout  time.Duration
	RateLimitDelay time.Duration

	// MaxPages bounds the corpus, homepage included.
	MaxPages int

	// MaxContentLength is the rune limit of a page's text before the
	// truncation marker is appended.
	MaxContentLength int
	TruncationMarker string

	// MinLineLength drops extracted lines shorter than this many runes.
	MinLineLength int

	// ThinContentThreshold is the homepage text length below which the
	// render fallback is attempted.
	ThinContentThreshold int

	// MinPageLength is the text length below which a secondary page is
	// skipped.
	MinPageLength int

	Keywords       []KeywordRule
	StripSelectors []string

	UserAgent      string
	Accept         string
	AcceptLanguage string

	// RespectRobots enables robots.txt checks for secondary pages.
	RespectRobots bool
}

// DefaultConfig returns the standard crawl configuration.
func DefaultConfig() Config {
	return Config{
		FetchTimeout:         15 * time.Second,
		RenderTimeout:        20 * time.Second,
		RateLimitDelay:       1 * time.Second,
		MaxPages:             8,
		MaxContentLength:     5000,
		TruncationMarker:     "\n... [content truncated]",
		MinLineLength:        3,
		ThinContentThreshold: 100,
		MinPageLength:        30,
		Keywords:             DefaultKeywords(),
		StripSelectors:       DefaultStripSelectors(),
		UserAgent:            DefaultUserAgent,
		Accept:               DefaultAccept,
		AcceptLanguage:       DefaultAcceptLanguage,
	}
}

// Validate returns an EINVALID error when a limit cannot be honoured.
func (c Config) Validate() error {
	switch {
	case c.FetchTimeout <= 0:
		return Errorf(EINVALID, "fetch timeout must be positive")
	case c.RenderTimeout <= 0:
		return Errorf(EINVALID, "render timeout must be positive")
	case c.RateLimitDelay < 0:
		return Errorf(EINVALID, "rate limit delay must not be negative")
	case c.MaxPages < 1:
		return Errorf(EINVALID, "max pages must be at least 1")
	case c.MaxContentLength < 1:
		return Errorf(EINVALID, "max content length must be positive")
	case c.MinLineLength < 0 || c.ThinContentThreshold < 0 || c.MinPageLength < 0:
		return Errorf(EINVALID, "length thresholds must not be negative")
	}
	return nil
}

// MaxDiscoveredLinks is the number of secondary pages the crawl may visit.
func (c Config) MaxDiscoveredLinks() int {
	if c.MaxPages < 1 {
		return 0
	}
	return c.MaxPages - 1
}
