package prospect

import "strings"

var junkEmailPrefixes = []string{
	"noreply@",
	"no-reply@",
	"donotreply@",
	"mailer-daemon@",
	"postmaster@",
	"webmaster@",
	"hostmaster@",
}

var junkEmailDomains = []string{
	"example.com",
	"example.org",
	"example.net",
	"test.com",
	"sentry.io",
	"wixpress.com",
}

// Asset names such as logo@2x.png match the address pattern.
var junkEmailSuffixes = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js",
}

// IsJunkEmail reports whether addr is an automated, placeholder or
// asset-name address that should never be offered as a contact.
// Subdomains of junk domains (o123.ingest.sentry.io) are junk too.
func IsJunkEmail(addr string) bool {
	addr = strings.ToLower(strings.TrimSpace(addr))
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" || domain == "" {
		return true
	}
	for _, p := range junkEmailPrefixes {
		if strings.HasPrefix(addr, p) {
			return true
		}
	}
	for _, d := range junkEmailDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	for _, ext := range junkEmailSuffixes {
		if strings.HasSuffix(addr, ext) || strings.HasSuffix(local, ext) {
			return true
		}
	}
	return false
}

// CleanEmails lower-cases candidates, drops junk and duplicates, and keeps
// the first-seen order.
func CleanEmails(candidates ...string) []string {
	set := NewOrderedSet[string]()
	for _, c := range candidates {
		addr := strings.ToLower(strings.TrimSpace(c))
		if addr == "" || IsJunkEmail(addr) {
			continue
		}
		set.Add(addr)
	}
	return set.Values()
}
