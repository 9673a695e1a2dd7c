package models

import "time"

// TaskStatus is the terminal state of one pipeline task.
type TaskStatus string

const (
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
	TaskSkipped TaskStatus = "skipped"
)

// Run is one recorded pipeline invocation in the history ledger.
type Run struct {
	ID          string     `json:"id"`
	Phase       string     `json:"phase"`
	Force       bool       `json:"force"`
	PRFilter    string     `json:"pr_filter,omitempty"`
	ModelFilter string     `json:"model_filter,omitempty"`
	Tasks       int        `json:"tasks"`
	Failed      int        `json:"failed"`
	Skipped     int        `json:"skipped"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// TaskRecord is one task outcome within a run.
type TaskRecord struct {
	ID        string     `json:"id"`
	RunID     string     `json:"run_id"`
	Mode      string     `json:"mode"`
	PRID      string     `json:"pr_id"`
	ModelID   string     `json:"model_id,omitempty"`
	Status    TaskStatus `json:"status"`
	Detail    string     `json:"detail,omitempty"`
	ElapsedMS int64      `json:"elapsed_ms"`
	CreatedAt time.Time  `json:"created_at"`
}
