package models

// PRCategory classifies a manifest PR by what it is used to measure.
type PRCategory string

const (
	// CategoryHard marks PRs with known injected bugs, used for detection-rate scoring.
	CategoryHard PRCategory = "hard"
	// CategorySoft marks PRs without a ground-truth bug, used only for quality scoring.
	CategorySoft PRCategory = "soft"
)

// KnownBug is a ground-truth defect present in a hard PR.
type KnownBug struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
}

// PR is one evaluation subject from the manifest. Loaded once at startup,
// never mutated.
type PR struct {
	ID         string     `yaml:"id" json:"id"`
	URL        string     `yaml:"url" json:"url"`
	Title      string     `yaml:"title" json:"title"`
	Category   PRCategory `yaml:"category" json:"category"`
	Difficulty string     `yaml:"difficulty" json:"difficulty"`
	KnownBugs  []KnownBug `yaml:"known_bugs" json:"known_bugs,omitempty"`
}

// Manifest is the static list of PRs under evaluation.
type Manifest struct {
	PRs []PR `yaml:"prs"`
}

// HardPRs returns the subset of PRs carrying known bugs.
func (m *Manifest) HardPRs() []PR {
	var out []PR
	for _, p := range m.PRs {
		if p.Category == CategoryHard {
			out = append(out, p)
		}
	}
	return out
}

// PRByID returns the PR with the given ID, or nil.
func (m *Manifest) PRByID(id string) *PR {
	for i := range m.PRs {
		if m.PRs[i].ID == id {
			return &m.PRs[i]
		}
	}
	return nil
}
