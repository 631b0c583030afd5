package transcript

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// queryIDRE matches a v= parameter holding exactly 11 id characters.
	queryIDRE = regexp.MustCompile(`(?:^|[?&#/])v=([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`)
	// pathIDRE matches a whole 11-character path segment (youtu.be/ID, /embed/ID, /shorts/ID).
	pathIDRE = regexp.MustCompile(`/([0-9A-Za-z_-]{11})(?:[/?#&]|$)`)
	// schemeHostRE covers "scheme://host" so host names never count as path segments.
	schemeHostRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://[^/?#]*`)
)

// ResolveVideoID extracts the video id from a URL. A v= parameter wins over path
// segments; whether the video exists is only discovered when fetching.
func ResolveVideoID(rawURL string) (VideoID, error) {
	s := strings.TrimSpace(rawURL)
	if m := queryIDRE.FindStringSubmatch(s); m != nil {
		return VideoID(m[1]), nil
	}
	if m := pathIDRE.FindStringSubmatch(schemeHostRE.ReplaceAllString(s, "")); m != nil {
		return VideoID(m[1]), nil
	}
	return "", fmt.Errorf("%w: no video id in %q", ErrInvalidURL, rawURL)
}
