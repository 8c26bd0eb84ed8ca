package domain

import (
	"net/url"
	"strings"
)

// MaxSources is the number of URL slots a single run accepts.
const MaxSources = 3

// ValidSourceURL reports whether s is an absolute http or https URL.
func ValidSourceURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// SourceDomain returns the hostname of a source without a leading "www.".
// Unparseable input yields "source".
func SourceDomain(s string) string {
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return "source"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
