// Package onedrive rewrites and resolves OneDrive share links into URLs that
// return the file bytes directly.
package onedrive

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxRedirectHops caps every short-link redirect chase.
const MaxRedirectHops = 10

func hostIs(host, domain string) bool {
	host = strings.ToLower(host)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// IsShortHost reports 1drv.ms and its subdomains.
func IsShortHost(host string) bool { return hostIs(host, "1drv.ms") }

// IsLiveHost reports onedrive.live.com and its subdomains.
func IsLiveHost(host string) bool { return hostIs(host, "onedrive.live.com") }

// IsSharePointHost reports *.sharepoint.com.
func IsSharePointHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), ".sharepoint.com")
}

// IsAPIHost reports api.onedrive.com, whose URLs are already direct.
func IsAPIHost(host string) bool { return strings.EqualFold(host, "api.onedrive.com") }

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\d+\-.]*://`)

// HasScheme reports whether raw starts with "scheme://".
func HasScheme(raw string) bool { return schemeRe.MatchString(raw) }

// parseLoose parses raw as a URL, assuming https for scheme-less values such
// as "1drv.ms/i/s!abc".
func parseLoose(raw string) (*url.URL, bool) {
	candidate := raw
	if !HasScheme(candidate) {
		candidate = "https://" + strings.TrimPrefix(candidate, "//")
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}
