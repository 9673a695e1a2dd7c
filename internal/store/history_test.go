package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewarena/arena/internal/models"
)

func testHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "arena.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, h.Migrate(context.Background()))
	return h
}

func TestHistory_RunLifecycle(t *testing.T) {
	h := testHistory(t)
	ctx := context.Background()

	run, err := h.StartRun(ctx, "raw", false, "pr-1", "claude")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	require.NoError(t, h.RecordTask(ctx, &models.TaskRecord{
		RunID: run.ID, Mode: "raw", PRID: "pr-1", ModelID: "claude",
		Status: models.TaskDone, ElapsedMS: 1500,
	}))
	require.NoError(t, h.RecordTask(ctx, &models.TaskRecord{
		RunID: run.ID, Mode: "raw", PRID: "pr-1", ModelID: "codex",
		Status: models.TaskFailed, Detail: "timeout",
	}))

	run.Tasks = 2
	run.Failed = 1
	require.NoError(t, h.FinishRun(ctx, run))

	runs, err := h.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "raw", runs[0].Phase)
	assert.Equal(t, 2, runs[0].Tasks)
	assert.Equal(t, 1, runs[0].Failed)
	assert.NotNil(t, runs[0].FinishedAt)

	tasks, err := h.ListTasks(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, models.TaskDone, tasks[0].Status)
	assert.Equal(t, "timeout", tasks[1].Detail)
}

func TestHistory_ListRunsNewestFirst(t *testing.T) {
	h := testHistory(t)
	ctx := context.Background()

	first, err := h.StartRun(ctx, "raw", false, "", "")
	require.NoError(t, err)
	second, err := h.StartRun(ctx, "debate", true, "", "")
	require.NoError(t, err)

	runs, err := h.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
	assert.True(t, runs[0].Force)
}

func TestHistory_MigrateIdempotent(t *testing.T) {
	h := testHistory(t)
	assert.NoError(t, h.Migrate(context.Background()))
}

func TestNewULID_Distinct(t *testing.T) {
	a := NewULID()
	b := NewULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
