package transcript

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    string
	}{
		{"empty", nil, ""},
		{"single", []Entry{{Start: 65.2, Text: "A & B"}}, "[01:05] A & B"},
		{"two lines", []Entry{{Start: 0, Text: "Hello"}, {Start: 61.4, Text: "world"}}, "[00:00] Hello\n[01:01] world"},
		{"trims text", []Entry{{Start: 9.99, Text: "  padded \n"}}, "[00:09] padded"},
		{"over 99 minutes", []Entry{{Start: 6000, Text: "late"}}, "[100:00] late"},
		{"duplicate starts kept", []Entry{{Start: 5, Text: "a"}, {Start: 5, Text: "b"}}, "[00:05] a\n[00:05] b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.entries))
		})
	}
}

func TestFormatNoTrailingNewline(t *testing.T) {
	out := Format([]Entry{{Start: 1, Text: "a"}, {Start: 2, Text: "b"}})
	assert.False(t, strings.HasSuffix(out, "\n"))
	assert.Len(t, strings.Split(out, "\n"), 2)
}

func TestFormatTimestampRoundTrip(t *testing.T) {
	for s := 0; s < 6000; s++ {
		line := FormatEntry(Entry{Start: float64(s), Text: "x"})
		var m, sec int
		_, err := fmt.Sscanf(line, "[%d:%d] x", &m, &sec)
		require.NoError(t, err, line)
		if m != s/60 || sec != s%60 {
			t.Fatalf("start %d rendered as %q", s, line)
		}
		require.Equal(t, byte('['), line[0])
		require.Equal(t, "] x", line[6:])
	}
}
