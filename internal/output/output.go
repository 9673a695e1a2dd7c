package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// UI provides colored output and progress reporting for pipeline phases.
type UI struct {
	Verbose bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// StatusColor colors a task status string.
func StatusColor(status string) string {
	switch {
	case strings.HasPrefix(status, "done"):
		return green(status)
	case strings.HasPrefix(status, "failed"), strings.HasPrefix(status, "INVALID"):
		return red(status)
	case status == "skipped":
		return yellow(status)
	default:
		return status
	}
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

// Elapsed formats a duration as "4s" or "2m34s".
func Elapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}

// Progress prints one task transition line:
//
//	[Hard] [1/24] pr-33820 × claude ... done (2m34s)
//	[Hard] [skipped] pr-33820 × claude (result exists)
func (u *UI) Progress(phase string, index, total int, prID, modelID, status string, elapsed time.Duration) {
	modelPart := ""
	if modelID != "" {
		modelPart = " × " + modelID
	}
	if status == "skipped" {
		fmt.Fprintf(u.Out, "[%s] [skipped] %s%s (result exists)\n", phase, prID, modelPart)
		return
	}
	elapsedPart := ""
	if elapsed > 0 {
		elapsedPart = " (" + Elapsed(elapsed) + ")"
	}
	fmt.Fprintf(u.Out, "[%s] [%d/%d] %s%s ... %s%s\n",
		phase, index, total, prID, modelPart, StatusColor(status), elapsedPart)
}

// PhaseStart prints a phase banner.
func (u *UI) PhaseStart(phase string, taskCount, concurrency int) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(u.Out, "\n%s\n[%s] starting: %d tasks, concurrency %d\n%s\n",
		rule, phase, taskCount, concurrency, rule)
}

// PhaseEnd prints a phase completion banner.
func (u *UI) PhaseEnd(phase string, total int, elapsed time.Duration) {
	fmt.Fprintf(u.Out, "[%s] all done: %d tasks, elapsed %s\n", phase, total, Elapsed(elapsed))
}

// Table creates a tablewriter configured with the arena's minimal styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
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
