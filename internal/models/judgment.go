package models

import "strings"

// Judgment is one judge's structured answer for one (mode, PR, bug, subject)
// key. A Judgment with empty Verdict means the judge's response could not be
// parsed; aggregation treats it as absent data, not as a "no" vote.
type Judgment struct {
	Verdict       string     `json:"verdict"`
	Confidence    string     `json:"confidence,omitempty"`
	Reasoning     string     `json:"reasoning,omitempty"`
	Mode          ReviewMode `json:"mode"`
	PRID          string     `json:"pr_id"`
	BugID         string     `json:"bug_id"`
	ReviewedModel string     `json:"reviewed_model"`
	JudgeModel    string     `json:"judge_model"`
}

// Parsed reports whether the judge response yielded a usable verdict.
func (j *Judgment) Parsed() bool { return j.Verdict != "" }

// Found reports whether the verdict says the bug was detected.
func (j *Judgment) Found() bool { return strings.EqualFold(j.Verdict, "YES") }

// Verdict is the aggregate resolution for one (mode, PR, bug, subject) key,
// either a sole judge's call or a majority vote across several judges.
type Verdict struct {
	Mode       ReviewMode `json:"mode"`
	Found      bool       `json:"found"`
	Verdict    string     `json:"verdict"`
	Confidence string     `json:"confidence,omitempty"`
	Reasoning  string     `json:"reasoning,omitempty"`
	YesVotes   int        `json:"yes_votes,omitempty"`
	TotalVotes int        `json:"total_votes,omitempty"`
}

// ScoreCard is one judge's quality scores for a PR's anonymized reviews:
// label -> dimension ID -> score.
type ScoreCard struct {
	Scores     map[string]map[string]float64 `json:"scores"`
	PRID       string                        `json:"pr_id"`
	JudgeModel string                        `json:"judge_model"`
}
