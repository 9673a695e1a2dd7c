package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// textSummary renders the human-readable rollup, prints it, and writes
// reports/summary.txt.
func (g *Generator) textSummary(reportsDir string, hard HardSummary, soft SoftSummary, bias BiasSummary) error {
	var sb strings.Builder
	rule := strings.Repeat("=", 70)
	sb.WriteString(rule + "\n")
	sb.WriteString("Review Arena - Evaluation Results Summary\n")
	sb.WriteString(rule + "\n")

	if len(hard) > 0 {
		difficulties := difficultySet(hard)

		sb.WriteString("\n## Hard Score: Bug Detection Rate (Per-Model Modes)\n")
		table := summaryTable(&sb, append([]string{"Mode", "Model"}, append(difficulties, "Total")...))
		for _, mode := range PerModelModes {
			for _, m := range g.Cfg.Models {
				entry, ok := hard[string(mode)+"/"+m.ID]
				if !ok {
					continue
				}
				_ = table.Append(hardTableRow([]string{string(mode), m.ID}, entry, difficulties))
			}
		}
		_ = table.Render()

		sb.WriteString("\n## Hard Score: Bug Detection Rate (Debate Modes)\n")
		table = summaryTable(&sb, append([]string{"Mode"}, append(difficulties, "Total")...))
		for _, mode := range DebateModes {
			entry, ok := hard[string(mode)+"/debate"]
			if !ok {
				continue
			}
			_ = table.Append(hardTableRow([]string{string(mode)}, entry, difficulties))
		}
		_ = table.Render()
	}

	if len(soft) > 0 {
		sb.WriteString("\n## Soft Score: Review Quality Rating (1-10)\n")
		headers := []string{"Model"}
		for _, d := range g.Cfg.Judge.Dimensions {
			headers = append(headers, d.Name)
		}
		headers = append(headers, "Overall")
		table := summaryTable(&sb, headers)

		modelIDs := make([]string, 0, len(soft))
		for id := range soft {
			modelIDs = append(modelIDs, id)
		}
		sort.Strings(modelIDs)
		for _, id := range modelIDs {
			entry := soft[id]
			row := []string{id}
			for _, d := range g.Cfg.Judge.Dimensions {
				if stats, ok := entry.Dimensions[d.ID]; ok {
					row = append(row, fmt.Sprintf("%.1f", stats.Avg))
				} else {
					row = append(row, "-")
				}
			}
			row = append(row, fmt.Sprintf("%.1f", entry.Overall))
			_ = table.Append(row)
		}
		_ = table.Render()
	}

	if len(bias) > 0 {
		sb.WriteString("\n## Judge Bias Analysis (Self Score - Others Score)\n")
		table := summaryTable(&sb, []string{"Model", "Self Avg", "Other Avg", "Bias"})
		for _, m := range g.Cfg.Models {
			entry, ok := bias[m.ID]
			if !ok {
				continue
			}
			sign := ""
			if entry.Bias > 0 {
				sign = "+"
			}
			_ = table.Append([]string{
				m.ID,
				fmt.Sprintf("%.1f", entry.SelfAvg),
				fmt.Sprintf("%.1f", entry.OtherAvg),
				fmt.Sprintf("%s%.1f", sign, entry.Bias),
			})
		}
		_ = table.Render()
	}

	sb.WriteString("\n" + rule + "\n")

	text := sb.String()
	fmt.Fprint(g.UI.Out, text)

	path := reportPath(reportsDir, "summary.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	g.UI.Info("  Summary text: %s", path)
	return nil
}

// hardTableRow formats one summary row: found/total per difficulty plus the
// overall rate.
func hardTableRow(prefix []string, entry *HardEntry, difficulties []string) []string {
	row := prefix
	for _, d := range difficulties {
		if c, ok := entry.ByDifficulty[d]; ok {
			row = append(row, fmt.Sprintf("%d/%d", c.Found, c.Total))
		} else {
			row = append(row, "-")
		}
	}
	row = append(row, fmt.Sprintf("%.0f%%", entry.Overall.Rate*100))
	return row
}

// difficultySet collects the sorted difficulty tags present in the summary.
func difficultySet(hard HardSummary) []string {
	seen := map[string]bool{}
	for _, entry := range hard {
		for d := range entry.ByDifficulty {
			seen[d] = true
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// summaryTable builds a borderless table writing into the summary buffer.
func summaryTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
