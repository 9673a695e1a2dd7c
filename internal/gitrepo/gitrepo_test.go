package gitrepo

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a git repo in dir with one committed file and
// returns the commit sha.
func initTestRepo(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	cmds := [][]string{
		{"git", "-C", dir, "init"},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
		{"git", "-C", dir, "add", "."},
		{"git", "-C", dir, "commit", "-m", "init"},
	}
	for _, args := range cmds {
		require.NoError(t, exec.Command(args[0], args[1:]...).Run())
	}
	out, err := exec.Command("git", "-C", dir, "rev-parse", "HEAD").Output()
	require.NoError(t, err)
	return strings.TrimSpace(string(out))
}

func TestPRNumber(t *testing.T) {
	assert.Equal(t, "33820", PRNumber("https://github.com/example/repo/pull/33820"))
	assert.Equal(t, "7", PRNumber("https://github.com/o/r/pull/7"))
	assert.Equal(t, "", PRNumber("https://github.com/o/r/pull/"))
	assert.Equal(t, "", PRNumber("no-slashes"))
}

func TestSnapshotDir_ContentAddressed(t *testing.T) {
	a := SnapshotDir("results/snapshots", "abc123")
	b := SnapshotDir("results/snapshots", "abc123")
	c := SnapshotDir("results/snapshots", "def456")

	assert.Equal(t, a, b, "same commit maps to the same snapshot")
	assert.NotEqual(t, a, c)
	assert.Equal(t, filepath.Join("results", "snapshots", "abc123"), a)
}

func TestSnapshot_ExportsTreeAtCommit(t *testing.T) {
	repo := t.TempDir()
	sha := initTestRepo(t, repo)
	root := t.TempDir()
	dest := SnapshotDir(root, sha)

	c := NewClient()
	require.NoError(t, c.Snapshot(repo, sha, dest))

	data, err := os.ReadFile(filepath.Join(dest, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no extraction temp dirs left behind")
	assert.Equal(t, sha, entries[0].Name())
}

func TestSnapshot_ExistingDestIsFinal(t *testing.T) {
	// dest only ever appears via the final rename, so its existence alone
	// marks the snapshot complete; git is never invoked.
	root := t.TempDir()
	dest := SnapshotDir(root, "abc123")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	c := NewClient()
	assert.NoError(t, c.Snapshot(filepath.Join(root, "no-such-repo"), "abc123", dest))
}

func TestSnapshot_InterruptedExtractionIsNotASnapshot(t *testing.T) {
	// A leftover temp dir from a killed extraction must not count as a
	// finished snapshot: dest is absent, so the export runs again.
	repo := t.TempDir()
	sha := initTestRepo(t, repo)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "."+sha+"-1234"), 0o755))
	dest := SnapshotDir(root, sha)

	c := NewClient()
	require.NoError(t, c.Snapshot(repo, sha, dest))
	assert.FileExists(t, filepath.Join(dest, "main.go"))
}

func TestSnapshot_ConcurrentTasksShareOneCopy(t *testing.T) {
	repo := t.TempDir()
	sha := initTestRepo(t, repo)
	root := t.TempDir()
	dest := SnapshotDir(root, sha)
	c := NewClient()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Snapshot(repo, sha, dest)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "task %d", i)
	}
	assert.FileExists(t, filepath.Join(dest, "main.go"))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "rename losers discard their temp copies")
}
