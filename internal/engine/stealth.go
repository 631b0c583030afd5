package engine

import (
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth helpers for engine consumers.

func RandomUserAgent() string         { return stealth.RandomUserAgent() }
func IsRetryableStatus(code int) bool { return stealth.IsRetryableStatus(code) }

// PageHeaders returns Chrome browser headers for HTML page requests, keys lower-cased.
func PageHeaders() map[string]string {
	src := stealth.ChromeHeaders()
	h := make(map[string]string, len(src)+2)
	for k, v := range src {
		h[strings.ToLower(k)] = v
	}
	h["accept-language"] = "en-US,en;q=0.9"
	h["accept-encoding"] = "gzip, br"
	if h["accept"] == "" {
		h["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	if h["user-agent"] == "" {
		h["user-agent"] = RandomUserAgent()
	}
	return h
}
