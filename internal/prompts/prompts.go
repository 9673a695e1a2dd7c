// Package prompts holds the embedded prompt templates and their builders.
// Templates use {name} placeholders filled by simple substitution.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed hard_judge.txt
var hardJudgeTemplate string

//go:embed soft_judge.txt
var softJudgeTemplate string

// AntiCheatRules is appended to every raw review prompt. It forbids the
// model from consulting anything beyond the submitted diff.
const AntiCheatRules = `
IMPORTANT RULES — strict compliance required:
- You MUST only analyze the PR diff as submitted. Fetch the diff from the PR URL above.
- Do NOT run git checkout, git log, git blame, or any git commands on any repository.
- Do NOT browse the GitHub repository beyond the PR URL provided.
- Do NOT look at or reference the current main/master branch code.
- Do NOT reference any revert, fix, hotfix, or follow-up PRs.
- Do NOT mention whether this PR was later reverted or fixed.
- Base your review SOLELY on the code changes visible in the PR diff.
`

func fill(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

// HardJudge builds the sole-judge verdict prompt for one known bug.
func HardJudge(bugDescription, reviewContent string) string {
	return fill(hardJudgeTemplate, map[string]string{
		"bug_description": bugDescription,
		"review_content":  reviewContent,
	})
}

// SoftJudge builds the quality-scoring prompt over anonymized reviews.
// scoreTemplate is the per-label JSON shape hint.
func SoftJudge(prTitle, prURL, anonymizedReviews, scoreTemplate string) string {
	return fill(softJudgeTemplate, map[string]string{
		"pr_title":           prTitle,
		"pr_url":             prURL,
		"anonymized_reviews": anonymizedReviews,
		"score_template":     scoreTemplate,
	})
}

// ScoreTemplate renders the JSON shape hint for the given labels and
// dimension IDs: `"Reviewer A": {"accuracy": N, ...}, ...`.
func ScoreTemplate(labels, dimensionIDs []string) string {
	dims := make([]string, len(dimensionIDs))
	for i, d := range dimensionIDs {
		dims[i] = fmt.Sprintf("%q: N", d)
	}
	dimPart := strings.Join(dims, ", ")

	entries := make([]string, len(labels))
	for i, label := range labels {
		entries[i] = fmt.Sprintf("%q: {%s}", label, dimPart)
	}
	return strings.Join(entries, ", ")
}

// RawReview builds the autonomous raw-review prompt for CLI models that can
// fetch the diff themselves.
func RawReview(reviewPrompt, prURL string) string {
	return fmt.Sprintf(`%s

Please review this GitHub PR: %s

Fetch the PR diff and review it thoroughly. Focus on correctness, potential bugs, edge cases, and code quality issues.
%s`, reviewPrompt, prURL, AntiCheatRules)
}

// maxInlineDiff bounds the diff included for API-only models.
const maxInlineDiff = 80000

// maxInlineBody bounds the PR description included for API-only models.
const maxInlineBody = 2000

// RawReviewInline builds the raw-review prompt with the diff included, for
// API-only models that cannot fetch URLs.
func RawReviewInline(reviewPrompt, prURL, title, body, diff string) string {
	if len(body) > maxInlineBody {
		body = body[:maxInlineBody]
	}
	if len(diff) > maxInlineDiff {
		diff = diff[:maxInlineDiff]
	}
	return fmt.Sprintf(`%s

Please review this GitHub PR: %s
Title: %s

Description:
%s

PR Diff:
%s

Review this diff thoroughly. Focus on correctness, potential bugs, edge cases, and code quality issues.
%s`, reviewPrompt, prURL, title, body, diff, AntiCheatRules)
}
