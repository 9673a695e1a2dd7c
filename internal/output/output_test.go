package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testUI() (*UI, *bytes.Buffer) {
	var buf bytes.Buffer
	return &UI{Out: &buf, ErrOut: &buf}, &buf
}

func TestElapsed(t *testing.T) {
	assert.Equal(t, "4s", Elapsed(4*time.Second))
	assert.Equal(t, "59s", Elapsed(59*time.Second))
	assert.Equal(t, "1m00s", Elapsed(time.Minute))
	assert.Equal(t, "2m34s", Elapsed(2*time.Minute+34*time.Second))
	assert.Equal(t, "12m05s", Elapsed(12*time.Minute+5*time.Second))
}

func TestProgress_TaskLine(t *testing.T) {
	ui, buf := testUI()
	ui.Progress("Raw", 3, 24, "pr-33820", "claude", "done", 2*time.Minute+34*time.Second)
	assert.Contains(t, buf.String(), "[Raw] [3/24] pr-33820 × claude ...")
	assert.Contains(t, buf.String(), "(2m34s)")
}

func TestProgress_Skipped(t *testing.T) {
	ui, buf := testUI()
	ui.Progress("Debate", 0, 0, "pr-1", "", "skipped", 0)
	assert.Equal(t, "[Debate] [skipped] pr-1 (result exists)\n", buf.String())
}

func TestProgress_NoModel(t *testing.T) {
	ui, buf := testUI()
	ui.Progress("Debate", 1, 2, "pr-1", "", "failed", time.Second)
	assert.Contains(t, buf.String(), "[Debate] [1/2] pr-1 ...")
	assert.NotContains(t, buf.String(), "×")
}

func TestVerboseLog_Gated(t *testing.T) {
	ui, buf := testUI()
	ui.VerboseLog("hidden %d", 1)
	assert.Empty(t, buf.String())

	ui.Verbose = true
	ui.VerboseLog("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestPhaseBanners(t *testing.T) {
	ui, buf := testUI()
	ui.PhaseStart("Judge-Hard", 12, 4)
	assert.Contains(t, buf.String(), "[Judge-Hard] starting: 12 tasks, concurrency 4")

	ui.PhaseEnd("Judge-Hard", 12, 90*time.Second)
	assert.Contains(t, buf.String(), "[Judge-Hard] all done: 12 tasks, elapsed 1m30s")
}
