// Package anonymize hides which model wrote which review before judges
// score them. Each PR gets its own random label permutation so a model
// cannot learn its label from PR position, while every judge of the same
// PR sees the same mapping so scores stay comparable.
package anonymize

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
)

// Mapping is a per-PR bijection between model IDs and display labels.
type Mapping struct {
	Forward map[string]string `json:"mapping"` // model ID -> "Reviewer A"
	Reverse map[string]string `json:"reverse"` // "Reviewer A" -> model ID
}

// NewMapping assigns each model ID a distinct label "Reviewer A", "Reviewer
// B", ... via a uniformly random permutation.
func NewMapping(modelIDs []string) Mapping {
	shuffled := make([]string, len(modelIDs))
	copy(shuffled, modelIDs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	forward := make(map[string]string, len(shuffled))
	reverse := make(map[string]string, len(shuffled))
	for i, id := range shuffled {
		label := fmt.Sprintf("Reviewer %c", 'A'+i)
		forward[id] = label
		reverse[label] = id
	}
	return Mapping{Forward: forward, Reverse: reverse}
}

// Labels returns the assigned labels in alphabetical order.
func (m Mapping) Labels() []string {
	labels := make([]string, 0, len(m.Reverse))
	for label := range m.Reverse {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

const neutralPhrase = "another reviewer"

var (
	bracketTagRe  = regexp.MustCompile(`\[[^\[\]]{1,40}\]:?\s*`)
	responseHdrRe = regexp.MustCompile(`(?im)^(#+\s*)?response to\s+\S.*$`)
)

// StripModelNames removes self-identifying text from a review before a
// judge sees it: bracketed identity tags, "Response to <name>" headers, and
// any standalone occurrence of a known model or provider name. Names are
// replaced longest-first so "claude-opus" never degrades to "claude-opus"
// minus a partial match.
func StripModelNames(text string, names []string) string {
	sorted := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		if n != "" && !seen[strings.ToLower(n)] {
			seen[strings.ToLower(n)] = true
			sorted = append(sorted, n)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	out := bracketTagRe.ReplaceAllStringFunc(text, func(tag string) string {
		inner := strings.ToLower(strings.Trim(tag, "[]: \t"))
		for _, n := range sorted {
			if strings.Contains(inner, strings.ToLower(n)) {
				return ""
			}
		}
		return tag
	})
	out = responseHdrRe.ReplaceAllString(out, "Response to "+neutralPhrase)

	for _, n := range sorted {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(n) + `\b`)
		out = re.ReplaceAllString(out, neutralPhrase)
	}
	return out
}

// Apply renders the anonymized review block presented to judges: each
// review under its label heading, ordered by label.
func (m Mapping) Apply(reviews map[string]string) string {
	type entry struct{ label, text string }
	var entries []entry
	for modelID, label := range m.Forward {
		text, ok := reviews[modelID]
		if !ok {
			text = "(no review found)"
		}
		entries = append(entries, entry{label, text})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].label < entries[j].label })

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("### %s\n\n%s", e.label, e.text)
	}
	return strings.Join(parts, "\n\n---\n\n")
}
