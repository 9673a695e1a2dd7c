package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reviewarena/arena/internal/models"
)

// ErrNotFound is returned by Load when no artifact exists at the path.
var ErrNotFound = errors.New("artifact not found")

// Exists reports whether a non-empty artifact is present at path. This is
// the checkpoint predicate: a task whose output exists is never re-run
// unless force is set.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// SaveJSON writes v as indented JSON at path, creating parent directories.
// Idempotent; a later save under force simply overwrites.
func SaveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create result directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads the artifact at path into v. Returns ErrNotFound when the
// file is absent or empty.
func LoadJSON(path string, v any) error {
	if !Exists(path) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Paths derives every artifact location from the results root. Derivation is
// a pure function of the key tuple so checkpoints survive process restarts.
type Paths struct {
	Root string
}

// Review returns the artifact path for (mode, pr, model). Debate modes
// produce one collaborative artifact per PR, so the model is ignored.
func (p Paths) Review(mode models.ReviewMode, prID, modelID string) string {
	if mode.IsDebate() {
		return filepath.Join(p.Root, string(mode), prID, "debate.json")
	}
	return filepath.Join(p.Root, string(mode), prID, modelID+".json")
}

// HardJudgment returns the judgment path for (mode, pr, bug, subject, judge).
func (p Paths) HardJudgment(mode models.ReviewMode, prID, bugID, subjectID, judgeID string) string {
	name := fmt.Sprintf("%s_bug_%s_by_%s.json", subjectID, bugID, judgeID)
	return filepath.Join(p.Root, "judge", string(mode), prID, name)
}

// SoftJudgment returns the score-card path for (pr, judge).
func (p Paths) SoftJudgment(prID, judgeID string) string {
	return filepath.Join(p.Root, "judge", "soft", prID, judgeID+".json")
}

// Mapping returns the anonymization mapping path for a PR.
func (p Paths) Mapping(prID string) string {
	return filepath.Join(p.Root, "judge", "soft", prID, "mapping.json")
}

// Verdicts returns the aggregate verdicts file path.
func (p Paths) Verdicts() string {
	return filepath.Join(p.Root, "judge", "verdicts.json")
}

// Reports returns the generated reports directory.
func (p Paths) Reports() string {
	return filepath.Join(p.Root, "reports")
}

// EngineConfigs returns the directory for generated engine config files.
func (p Paths) EngineConfigs() string {
	return filepath.Join(p.Root, "engine_configs")
}

// Snapshots returns the directory holding per-reference subject snapshots.
func (p Paths) Snapshots() string {
	return filepath.Join(p.Root, "snapshots")
}
