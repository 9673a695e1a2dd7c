package judge

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

// ExtractJSON pulls a JSON object out of a judge's free-text response and
// unmarshals it into v. Models wrap JSON in markdown fences or surround it
// with prose; this tries the fenced block, then the outermost braces, then
// the whole text. An error means the response is unparseable — callers
// represent that as an explicitly absent result, never a zero-filled one.
func ExtractJSON(response string, v any) error {
	text := strings.TrimSpace(response)
	if text == "" {
		return fmt.Errorf("empty judge response")
	}

	if m := codeBlockRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), v); err == nil {
			return nil
		}
	}

	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("parse judge response: %w", err)
	}
	return nil
}

// ResolveMajority reports whether yes votes form a strict majority of total
// votes cast. Ties resolve to not found.
func ResolveMajority(yes, total int) bool {
	return yes*2 > total
}
