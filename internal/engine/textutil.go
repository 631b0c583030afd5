package engine

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// UserAgentBot identifies plain API requests.
const UserAgentBot = "GoTranscript/1.0"

var (
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
	numericEntityRe = regexp.MustCompile(`&#(?:[0-9]+|[xX][0-9a-fA-F]+);`)
	spaceRunRe      = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// namedEntities decodes the XML entity set; anything else is left as-is.
var namedEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// DecodeCaptionEntities decodes caption text entities.
// Caption payloads are escaped twice (&amp;#39;), so &amp; is unwrapped first.
// Numeric entities are dropped unless resolveNumeric is set.
func DecodeCaptionEntities(s string, resolveNumeric bool) string {
	s = strings.ReplaceAll(s, "&amp;", "&")
	if resolveNumeric {
		return html.UnescapeString(s)
	}
	s = numericEntityRe.ReplaceAllString(s, "")
	return namedEntities.Replace(s)
}

// CollapseSpaces folds runs of horizontal whitespace into one space and trims.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
