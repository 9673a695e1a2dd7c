// Package review loads persisted review artifacts and flattens their
// transcripts into judge-consumable text.
package review

import (
	"fmt"
	"strings"

	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/store"
)

// Load reads the artifact at path. Returns store.ErrNotFound (wrapped) when
// no checkpoint exists.
func Load(path string) (*models.ReviewArtifact, error) {
	var a models.ReviewArtifact
	if err := store.LoadJSON(path, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ExtractContent flattens a full artifact into one markdown document: every
// reviewer message, the final conclusion, and any parsed issues. Debate
// artifacts are judged with this as a single collaborative unit.
func ExtractContent(a *models.ReviewArtifact) string {
	var parts []string

	for _, msg := range a.Messages {
		id := msg.ReviewerID
		if id == "" {
			id = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("## %s Review\n\n%s", id, msg.Content))
	}

	if a.FinalConclusion != "" {
		parts = append(parts, "## Final Conclusion\n\n"+a.FinalConclusion)
	}

	if len(a.ParsedIssues) > 0 {
		var sb strings.Builder
		sb.WriteString("## Identified Issues\n")
		for _, issue := range a.ParsedIssues {
			severity := issue.Severity
			if severity == "" {
				severity = "unknown"
			}
			fmt.Fprintf(&sb, "\n- [%s] %s: %s", severity, issue.Title, issue.Description)
		}
		parts = append(parts, sb.String())
	}

	return strings.Join(parts, "\n\n")
}

// ReviewsByModel groups a debate transcript's messages and summaries by
// reviewer identity.
func ReviewsByModel(a *models.ReviewArtifact) map[string]string {
	reviews := map[string]string{}

	for _, msg := range a.Messages {
		id := msg.ReviewerID
		if id == "" {
			id = "unknown"
		}
		if existing, ok := reviews[id]; ok {
			reviews[id] = existing + "\n\n---\n\n" + msg.Content
		} else {
			reviews[id] = msg.Content
		}
	}

	for _, s := range a.Summaries {
		if s.Summary == "" {
			continue
		}
		id := s.ReviewerID
		if id == "" {
			id = "unknown"
		}
		if existing, ok := reviews[id]; ok {
			reviews[id] = existing + "\n\n## Summary\n\n" + s.Summary
		} else {
			reviews[id] = s.Summary
		}
	}

	return reviews
}

// FirstRoundReviews returns each reviewer's pre-debate content only. Later
// rounds reference other reviewers by name, which would break anonymization
// during soft judging, so quality scoring uses round one alone. Artifacts
// without round tags fall back to each reviewer's first message.
func FirstRoundReviews(a *models.ReviewArtifact) map[string]string {
	reviews := map[string]string{}

	for _, msg := range a.Messages {
		id := msg.ReviewerID
		if id == "" {
			id = "unknown"
		}
		if msg.Round > 1 {
			continue
		}
		if _, seen := reviews[id]; seen && msg.Round == 0 {
			// untagged transcript: keep only the first message per reviewer
			continue
		}
		if existing, ok := reviews[id]; ok {
			reviews[id] = existing + "\n\n" + msg.Content
		} else {
			reviews[id] = msg.Content
		}
	}

	return reviews
}
