package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// playerResponseMarker marks the start of the player response JSON in watch page HTML.
const playerResponseMarker = "ytInitialPlayerResponse = "

const (
	segmentRendererMarker = `"transcriptSegmentRenderer":`
	transcriptSelector    = "#transcript, .transcript, [data-transcript]"
	pageOrigin            = "https://www.youtube.com"
)

var captionURLRE = regexp.MustCompile(`"baseUrl"\s*:\s*"([^"]*timedtext[^"]*)"`)

// jsonURLUnescaper undoes the escaping the platform applies to URLs inside page JSON.
var jsonURLUnescaper = strings.NewReplacer(
	`\u0026`, "&",
	`\u003d`, "=",
	`\/`, "/",
	"&amp;", "&",
)

var errNoMatch = errors.New("no match")

// languageUnavailableError means the page lists caption tracks, none in the wanted language.
type languageUnavailableError struct {
	lang      string
	available []string
}

func (e *languageUnavailableError) Error() string {
	if len(e.available) == 0 {
		return fmt.Sprintf("no caption track in language %q", e.lang)
	}
	return fmt.Sprintf("no caption track in language %q (available: %s)", e.lang, strings.Join(e.available, ", "))
}

func (e *languageUnavailableError) Is(target error) bool { return target == ErrNoCaptionsAvailable }

// Extractor locates caption data in a watch page. The player response is always
// tried first; the URL scan and the inline transcript are secondary strategies that
// can be switched off.
type Extractor struct {
	RawURLScan bool
	InlineText bool
}

// NewExtractor returns an Extractor with the strategies enabled in cfg.
func NewExtractor(cfg engine.Config) *Extractor {
	return &Extractor{RawURLScan: cfg.ExtractRawURLScan, InlineText: cfg.ExtractInlineText}
}

type extractStrategy struct {
	name string
	run  func(page, lang string) (CaptionTrack, error)
	hit  func()
}

func (x *Extractor) strategies() []extractStrategy {
	list := []extractStrategy{{"player_json", fromPlayerResponse, engine.IncrExtractPlayerJSON}}
	if x.RawURLScan {
		list = append(list, extractStrategy{"url_scan", fromCaptionURL, engine.IncrExtractURLScan})
	}
	if x.InlineText {
		list = append(list, extractStrategy{"inline", fromInlineTranscript, engine.IncrExtractInline})
	}
	return list
}

// Extract returns the first caption track found by the enabled strategies, in order.
// A language hint the page cannot satisfy stops the search with ErrNoCaptionsAvailable.
func (x *Extractor) Extract(page, lang string) (CaptionTrack, error) {
	tried := make([]string, 0, 3)
	for _, s := range x.strategies() {
		track, err := s.run(page, lang)
		if err == nil {
			s.hit()
			slog.Debug("transcript: caption data located", slog.String("strategy", s.name))
			return track, nil
		}
		var langErr *languageUnavailableError
		if errors.As(err, &langErr) {
			return CaptionTrack{}, err
		}
		tried = append(tried, s.name+": "+err.Error())
	}
	return CaptionTrack{}, fmt.Errorf("%w (%s)", ErrNoCaptionData, strings.Join(tried, "; "))
}

func fromPlayerResponse(page, lang string) (CaptionTrack, error) {
	idx := strings.Index(page, playerResponseMarker)
	if idx < 0 {
		return CaptionTrack{}, fmt.Errorf("%w: player response marker", errNoMatch)
	}
	raw := extractJSON(page[idx+len(playerResponseMarker):])
	if raw == "" {
		return CaptionTrack{}, errors.New("unterminated player response")
	}
	var resp playerResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return CaptionTrack{}, fmt.Errorf("decode player response: %w", err)
	}
	tracks := resp.tracks()
	if len(tracks) == 0 {
		return CaptionTrack{}, errors.New("no caption tracks in player response")
	}
	t, err := pickTrack(tracks, lang)
	if err != nil {
		if lang != "" && hasUsableTrack(tracks) {
			return CaptionTrack{}, &languageUnavailableError{lang: lang, available: trackLanguages(tracks)}
		}
		return CaptionTrack{}, err
	}
	track := t.toTrack()
	track.URL = absoluteURL(track.URL)
	return track, nil
}

func hasUsableTrack(tracks []captionTrack) bool {
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			return true
		}
	}
	return false
}

func trackLanguages(tracks []captionTrack) []string {
	seen := make(map[string]bool, len(tracks))
	langs := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.LanguageCode != "" && !seen[t.LanguageCode] {
			seen[t.LanguageCode] = true
			langs = append(langs, t.LanguageCode)
		}
	}
	return langs
}

// fromCaptionURL scans the raw HTML for a timedtext baseUrl literal.
func fromCaptionURL(page, lang string) (CaptionTrack, error) {
	matches := captionURLRE.FindAllStringSubmatch(page, -1)
	if len(matches) == 0 {
		return CaptionTrack{}, fmt.Errorf("%w: timedtext url", errNoMatch)
	}
	var first *CaptionTrack
	var langs []string
	for _, m := range matches {
		u := jsonURLUnescaper.Replace(m[1])
		if needsPoToken(u) {
			continue
		}
		track := CaptionTrack{URL: absoluteURL(u)}
		if pu, err := url.Parse(track.URL); err == nil {
			track.Language = pu.Query().Get("lang")
			track.Kind = pu.Query().Get("kind")
		}
		if lang == "" || langMatches(track.Language, lang) {
			return track, nil
		}
		if track.Language != "" {
			langs = append(langs, track.Language)
		}
		if first == nil {
			first = &track
		}
	}
	switch {
	case first == nil:
		return CaptionTrack{}, noCaptions("all caption urls require a PoToken")
	case len(langs) > 0:
		return CaptionTrack{}, &languageUnavailableError{lang: lang, available: langs}
	}
	// Language unknown from the URL alone.
	return *first, nil
}

// fromInlineTranscript looks for transcript text embedded in the page, first as
// transcript segment renderers in page JSON, then as a transcript DOM container.
func fromInlineTranscript(page, lang string) (CaptionTrack, error) {
	lines := segmentLines(page)
	if len(lines) == 0 {
		lines = containerLines(page)
	}
	if len(lines) == 0 {
		return CaptionTrack{}, fmt.Errorf("%w: inline transcript", errNoMatch)
	}
	return CaptionTrack{Inline: strings.Join(lines, "\n"), Language: lang}, nil
}

type transcriptSegment struct {
	Snippet struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"snippet"`
}

func segmentLines(page string) []string {
	var lines []string
	rest := page
	for {
		i := strings.Index(rest, segmentRendererMarker)
		if i < 0 {
			return lines
		}
		rest = rest[i+len(segmentRendererMarker):]
		raw := extractJSON(rest)
		if raw == "" {
			continue
		}
		var seg transcriptSegment
		if err := json.Unmarshal([]byte(raw), &seg); err != nil {
			continue
		}
		var sb strings.Builder
		for _, r := range seg.Snippet.Runs {
			sb.WriteString(r.Text)
		}
		if line := strings.Join(strings.Fields(sb.String()), " "); line != "" {
			lines = append(lines, line)
		}
	}
}

func containerLines(page string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}
	sel := doc.Find(transcriptSelector).First()
	if sel.Length() == 0 {
		return nil
	}
	if v, ok := sel.Attr("data-transcript"); ok && strings.TrimSpace(v) != "" {
		return nonEmptyLines(v)
	}
	inner, err := sel.Html()
	if err != nil {
		return nil
	}
	md, err := htmltomarkdown.ConvertString(inner)
	if err != nil {
		slog.Debug("transcript: container conversion failed", slog.Any("error", err))
		return nonEmptyLines(engine.CleanHTML(inner))
	}
	return nonEmptyLines(md)
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func absoluteURL(u string) string {
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return pageOrigin + u
	}
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

// extractJSON returns the JSON object at the start of s (after leading whitespace)
// by tracking brace depth outside of string literals.
func extractJSON(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" || s[0] != '{' {
		return ""
	}
	depth := 0
	inStr, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
