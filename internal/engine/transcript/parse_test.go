package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseXMLExample(t *testing.T) {
	entries, err := Parse(`<text start="65.2">A &amp; B</text>`, PayloadXML)
	require.NoError(t, err)
	require.Equal(t, []Entry{{Start: 65.2, Text: "A & B"}}, entries)
	assert.Equal(t, "[01:05] A & B", Format(entries))
}

func TestParseXML(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []Entry
	}{
		{
			name: "timedtext document",
			payload: `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
				`<text start="0" dur="1.5">Hello</text>` +
				`<text start="61.4" dur="2">world</text></transcript>`,
			want: []Entry{{0, "Hello"}, {61.4, "world"}},
		},
		{
			name:    "named entities",
			payload: `<text start="1">5 &gt; 3 &quot;quoted&quot; &apos;x&apos;</text>`,
			want:    []Entry{{1, `5 > 3 "quoted" 'x'`}},
		},
		{
			name:    "escaped formatting tags stripped",
			payload: `<text start="1">&lt;font color=&quot;#E5E5E5&quot;&gt;hello&lt;/font&gt; world</text>`,
			want:    []Entry{{1, "hello world"}},
		},
		{
			name:    "double escaped formatting tags stripped",
			payload: `<text start="1">&amp;lt;i&amp;gt;music&amp;lt;/i&amp;gt;</text>`,
			want:    []Entry{{1, "music"}},
		},
		{
			name:    "double escaped numeric entity dropped",
			payload: `<text start="1">It&amp;#39;s here</text>`,
			want:    []Entry{{1, "Its here"}},
		},
		{
			name:    "literal tags stripped",
			payload: `<text start="2"><font color="#fff">red</font> text</text>`,
			want:    []Entry{{2, "red text"}},
		},
		{
			name:    "bad starts dropped",
			payload: `<text start="abc">x</text><text start="-1">y</text><text start="NaN">z</text><text dur="1">w</text><text start="1e300">huge</text><text start="3">kept</text>`,
			want:    []Entry{{3, "kept"}},
		},
		{
			name:    "empty text skipped",
			payload: `<text start="1" dur="1"/><text start="2">   </text><text start="3">ok</text>`,
			want:    []Entry{{3, "ok"}},
		},
		{
			name:    "multi-line caption folded",
			payload: "<text start=\"4\">first\nsecond</text>",
			want:    []Entry{{4, "first second"}},
		},
		{
			name:    "duplicate starts preserved",
			payload: `<text start="5">a</text><text start="5">b</text>`,
			want:    []Entry{{5, "a"}, {5, "b"}},
		},
		{
			name:    "srv3 milliseconds",
			payload: `<timedtext format="3"><body><p t="1500" d="900">one</p><p t="62000" d="1000"><s>two</s><s> parts</s></p></body></timedtext>`,
			want:    []Entry{{1.5, "one"}, {62, "two parts"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.payload, PayloadXML)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResolveNumericEntities(t *testing.T) {
	p := Parser{ResolveNumericEntities: true}
	got, err := p.Parse(`<text start="1">It&amp;#39;s &#x263A;</text>`, PayloadXML)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{1, "It's ☺"}}, got)
}

func TestParseNoEntries(t *testing.T) {
	for name, payload := range map[string]string{
		"empty":        "",
		"no elements":  `<transcript></transcript>`,
		"only invalid": `<text start="x">a</text>`,
		"html page":    `<html><body>Sorry</body></html>`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(payload, PayloadXML)
			assert.ErrorIs(t, err, ErrNoTranscriptEntries)
		})
	}

	_, err := Parse("\n  \n", PayloadInline)
	assert.ErrorIs(t, err, ErrNoTranscriptEntries)
}

func TestParseInline(t *testing.T) {
	got, err := Parse("first \t line\n\n  second  \nthird", PayloadInline)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{0, "first line"}, {3, "second"}, {6, "third"}}, got)
}

func TestParseUnsupportedKind(t *testing.T) {
	_, err := Parse("<html></html>", PayloadPage)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTranscriptEntries)
}
