package petition

import (
	"net/url"
	"strings"
)

// IsPetitionURL reports whether raw points at a Change.org petition,
// including chng.it short links.
func IsPetitionURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return strings.Contains(host, "change.org") || strings.Contains(host, "chng.it")
}

// IsShortLink reports whether raw is a chng.it short link, which needs an
// extra wait for the redirect to resolve before the page renders.
func IsShortLink(raw string) bool {
	return strings.Contains(raw, "chng.it")
}
