package models

// ReviewMode identifies which evaluation pipeline produced an artifact.
type ReviewMode string

const (
	ModeRaw             ReviewMode = "raw"
	ModeR1              ReviewMode = "r1"
	ModeR1NoContext     ReviewMode = "r1_nocontext"
	ModeDebate          ReviewMode = "debate"
	ModeDebateNoContext ReviewMode = "debate_nocontext"
)

// AllModes lists every review mode in judging order.
var AllModes = []ReviewMode{ModeRaw, ModeR1, ModeR1NoContext, ModeDebate, ModeDebateNoContext}

// IsDebate reports whether the mode produces one collaborative artifact per
// PR rather than one artifact per model.
func (m ReviewMode) IsDebate() bool {
	return m == ModeDebate || m == ModeDebateNoContext
}

// Message is a single reviewer utterance in a transcript.
type Message struct {
	ReviewerID string `json:"reviewerId"`
	Content    string `json:"content"`
	Round      int    `json:"round,omitempty"`
}

// Summary is a reviewer's closing statement after the debate rounds.
type Summary struct {
	ReviewerID string `json:"reviewerId"`
	Summary    string `json:"summary"`
}

// ParsedIssue is a structured issue extracted by the orchestration engine.
type ParsedIssue struct {
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CheatSignal is one anti-cheat pattern match found in review text. Signals
// are recorded for audit, never used to discard data silently.
type CheatSignal struct {
	Category string `json:"category"`
	Detail   string `json:"detail"`
}

// ReviewArtifact is the persisted result of one (PR, model, mode) task, or
// of one PR's whole debate. Written once; overwritten only under force.
type ReviewArtifact struct {
	PRNumber        string        `json:"prNumber,omitempty"`
	Messages        []Message     `json:"messages"`
	Summaries       []Summary     `json:"summaries,omitempty"`
	FinalConclusion string        `json:"finalConclusion,omitempty"`
	ParsedIssues    []ParsedIssue `json:"parsedIssues,omitempty"`
	Mode            ReviewMode    `json:"mode,omitempty"`
	CheatSignals    []CheatSignal `json:"cheating_signals,omitempty"`
}
