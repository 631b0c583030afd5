package transcript

import (
	"fmt"
	"math"
	"strings"
)

// Format renders entries as "[MM:SS] text" lines joined by newlines, without a
// trailing newline. An empty slice yields "".
func Format(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, FormatEntry(e))
	}
	return strings.Join(lines, "\n")
}

// FormatEntry renders a single entry. Minutes are not capped at 99.
func FormatEntry(e Entry) string {
	total := int64(math.Floor(math.Max(e.Start, 0)))
	return fmt.Sprintf("[%02d:%02d] %s", total/60, total%60, strings.TrimSpace(e.Text))
}
