package inference

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

type scoredResult struct {
	Label  string   `json:"label"`
	Answer string   `json:"answer"`
	Score  *float64 `json:"score"`
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseSentiment(raw string) (label string, score float64, err error) {
	var r scoredResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &r); err != nil {
		// Bare label without JSON.
		word := strings.ToUpper(strings.Trim(strings.TrimSpace(raw), `."'`))
		if word == "POSITIVE" || word == "NEGATIVE" {
			return word, 1, nil
		}
		return "", 0, fmt.Errorf("parse sentiment output %q: %w", engine.TruncateRunes(raw, 200, "…"), err)
	}
	label = strings.ToUpper(strings.TrimSpace(r.Label))
	if label == "" {
		return "", 0, fmt.Errorf("sentiment output has no label: %q", engine.TruncateRunes(raw, 200, "…"))
	}
	return label, clampScore(r.Score), nil
}

func parseAnswer(raw string) (answer string, score float64) {
	var r scoredResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &r); err == nil {
		return strings.TrimSpace(r.Answer), clampScore(r.Score)
	}
	if a := extractJSONAnswer(raw); a != "" {
		return a, 0
	}
	return strings.TrimSpace(stripFences(raw)), 0
}

func clampScore(p *float64) float64 {
	if p == nil {
		return 0
	}
	switch v := *p; {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// extractJSONAnswer extracts the "answer" field from malformed JSON
// where the value may contain unescaped newlines or special characters.
func extractJSONAnswer(raw string) string {
	idx := strings.Index(raw, `"answer"`)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(raw[idx+len(`"answer"`):])
	if len(rest) == 0 || rest[0] != ':' {
		return ""
	}
	rest = strings.TrimSpace(rest[1:])
	if len(rest) == 0 || rest[0] != '"' {
		return ""
	}
	rest = rest[1:]

	var sb strings.Builder
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == '\\' && i+1 < len(rest) {
			switch rest[i+1] {
			case '"':
				sb.WriteByte('"')
			case 'n':
				sb.WriteByte('\n')
			default:
				sb.WriteByte(rest[i+1])
			}
			i++
			continue
		}
		if c == '"' {
			break
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
