package prospect

import "strings"

// NormalizeURL turns a user-supplied seed into a crawlable base URL.
// A missing scheme becomes https:// and a single trailing slash is dropped.
func NormalizeURL(seed string) string {
	u := strings.TrimSpace(seed)
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + u
	}
	return strings.TrimSuffix(u, "/")
}
