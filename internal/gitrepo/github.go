package gitrepo

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// PRInfo holds the GitHub metadata the pipeline needs for one pull request.
type PRInfo struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	MergeCommit string `json:"mergeCommit"`
}

// GitHubClient wraps the gh CLI for PR metadata and diffs.
type GitHubClient interface {
	PRInfo(prURL string) (*PRInfo, error)
	PRDiff(prURL string) (string, error)
}

// RealGitHubClient implements GitHubClient using the gh CLI.
type RealGitHubClient struct{}

// NewGitHubClient returns a new RealGitHubClient.
func NewGitHubClient() *RealGitHubClient {
	return &RealGitHubClient{}
}

func ghCmd(args ...string) (string, error) {
	out, err := exec.Command("gh", args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("gh %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("gh %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// PRInfo fetches title, body and merge commit for a PR URL.
func (c *RealGitHubClient) PRInfo(prURL string) (*PRInfo, error) {
	out, err := ghCmd("pr", "view", prURL,
		"--json", "number,title,body,mergeCommit",
		"--jq", `{number: .number, title: .title, body: .body, mergeCommit: .mergeCommit.oid}`,
	)
	if err != nil {
		return nil, err
	}

	var info PRInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil, fmt.Errorf("parse pr info: %w", err)
	}
	return &info, nil
}

// PRDiff fetches the unified diff for a PR URL.
func (c *RealGitHubClient) PRDiff(prURL string) (string, error) {
	return ghCmd("pr", "diff", prURL)
}

// PRNumber extracts the trailing PR number from a GitHub PR URL.
func PRNumber(prURL string) string {
	idx := strings.LastIndex(prURL, "/")
	if idx < 0 || idx == len(prURL)-1 {
		return ""
	}
	return prURL[idx+1:]
}
