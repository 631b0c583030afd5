package transcript

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// inlineLineSeconds is the synthetic spacing between inline transcript lines.
const inlineLineSeconds = 3

var (
	textElemRE  = regexp.MustCompile(`(?s)<text\b([^>]*?)(?:/>|>(.*?)</text>)`)
	startAttrRE = regexp.MustCompile(`\bstart="([^"]*)"`)
	// srv3 format: <p t="ms" d="ms">...</p>
	paraElemRE = regexp.MustCompile(`(?s)<p\b([^>]*?)(?:/>|>(.*?)</p>)`)
	tAttrRE    = regexp.MustCompile(`\bt="([^"]*)"`)
)

// Parser turns caption payloads into timed entries.
type Parser struct {
	// ResolveNumericEntities decodes &#NN; instead of dropping it.
	ResolveNumericEntities bool
}

// Parse parses payload with the default Parser.
func Parse(payload string, kind PayloadKind) ([]Entry, error) {
	return Parser{}.Parse(payload, kind)
}

// Parse returns the entries of payload in document order. Entries with an unusable
// start time are dropped; zero remaining entries is ErrNoTranscriptEntries.
func (p Parser) Parse(payload string, kind PayloadKind) ([]Entry, error) {
	var entries []Entry
	switch kind {
	case PayloadXML:
		entries = p.collect(payload, textElemRE, startAttrRE, 1)
		if len(entries) == 0 {
			entries = p.collect(payload, paraElemRE, tAttrRE, 1000)
		}
	case PayloadInline:
		entries = parseInline(payload)
	default:
		return nil, fmt.Errorf("unsupported payload kind %s", kind)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w in %s payload", ErrNoTranscriptEntries, kind)
	}
	return entries, nil
}

func (p Parser) collect(payload string, elemRE, startRE *regexp.Regexp, unitsPerSecond float64) []Entry {
	var out []Entry
	for _, m := range elemRE.FindAllStringSubmatch(payload, -1) {
		sm := startRE.FindStringSubmatch(m[1])
		if sm == nil {
			continue
		}
		start, ok := parseStart(sm[1])
		if !ok {
			continue
		}
		text := p.cleanText(m[2])
		if text == "" {
			continue
		}
		out = append(out, Entry{Start: start / unitsPerSecond, Text: text})
	}
	return out
}

func parseStart(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v >= math.MaxInt32 {
		return 0, false
	}
	return v, true
}

// cleanText decodes entities, then strips markup, so escaped formatting tags
// (&lt;font&gt;) go too. Whitespace is folded to single spaces.
func (p Parser) cleanText(raw string) string {
	text := engine.CleanHTML(engine.DecodeCaptionEntities(raw, p.ResolveNumericEntities))
	return strings.Join(strings.Fields(text), " ")
}

func parseInline(payload string) []Entry {
	var out []Entry
	for _, line := range strings.Split(payload, "\n") {
		line = engine.CollapseSpaces(line)
		if line == "" {
			continue
		}
		out = append(out, Entry{Start: float64(len(out) * inlineLineSeconds), Text: line})
	}
	return out
}
