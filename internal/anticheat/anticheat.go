// Package anticheat scans review text for signs that the reviewer saw
// post-merge information it should not have had access to. Matches are
// heuristic: they are recorded as audit signals alongside the artifact,
// never used to silently discard data.
package anticheat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reviewarena/arena/internal/models"
)

var (
	revertRefRe   = regexp.MustCompile(`revert(?:ed|s)?\s+(?:in|by|via)\s+#\d+`)
	fixRefRe      = regexp.MustCompile(`fix(?:ed|es)?\s+(?:in|by|via)\s+#\d+`)
	followupRefRe = regexp.MustCompile(`follow[- ]?up\s+(?:pr|pull request|commit)\s+#\d+`)
	masterRefRe   = regexp.MustCompile(`(?:current|merged|latest)\s+(?:master|main)\s+(?:branch|version|code)`)
	postMergeRe   = regexp.MustCompile(`(?:was later|subsequently|has since been|was eventually)\s+\w+`)
)

// Detect scans review text and returns every matched signal category.
func Detect(text string) (bool, []models.CheatSignal) {
	lower := strings.ToLower(text)
	var signals []models.CheatSignal

	add := func(category string, matches []string) {
		if len(matches) > 0 {
			signals = append(signals, models.CheatSignal{
				Category: category,
				Detail:   fmt.Sprintf("%v", matches),
			})
		}
	}

	add("revert_reference", revertRefRe.FindAllString(lower, -1))
	add("fix_reference", fixRefRe.FindAllString(lower, -1))
	add("followup_reference", followupRefRe.FindAllString(lower, -1))
	add("master_branch_reference", masterRefRe.FindAllString(lower, -1))
	add("post_merge_knowledge", postMergeRe.FindAllString(lower, -1))

	if strings.Contains(lower, "this pr was reverted") || strings.Contains(lower, "this was reverted") {
		signals = append(signals, models.CheatSignal{Category: "explicit_revert_statement"})
	}

	return len(signals) > 0, signals
}

// minReviewLength is the shortest text accepted as a real review.
const minReviewLength = 100

// errorPhrases are fragments models emit when they lack tool or URL access.
var errorPhrases = []string{
	"unable to access",
	"permission to access",
	"approve one of the pending",
	"need permission",
	"cannot retrieve",
	"i can't access",
}

// Validate distinguishes a reviewable opinion from a refusal or tool
// failure. Only valid reviews are eligible for scoring.
func Validate(text string) (bool, string) {
	if len(text) < minReviewLength {
		return false, "too short"
	}
	lower := strings.ToLower(text)
	for _, phrase := range errorPhrases {
		if strings.Contains(lower, phrase) {
			return false, fmt.Sprintf("error message detected: %q", phrase)
		}
	}
	return true, "ok"
}
