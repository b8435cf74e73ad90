package util

import (
	"net/url"
	"strings"
)

// ResolveURL makes href absolute against base. Already-absolute links pass
// through untouched; unparseable input falls back to the raw href.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return href
	}
	return b.ResolveReference(u).String()
}
