package gitrepo

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Client wraps git operations on the subject repository. All methods take
// explicit paths; nothing reads process-global state.
type Client interface {
	Snapshot(repo, sha, dest string) error
}

// RealClient implements Client using the git CLI.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(repo string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repo}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// fetch pulls a ref from origin so archiving a merge commit works even
// when the commit is not on a local branch.
func (c *RealClient) fetch(repo, ref string) error {
	_, err := gitCmd(repo, "fetch", "origin", ref)
	return err
}

// Snapshot exports a read-only copy of the repository at sha into dest.
// The export is content-addressed by sha: an existing dest is a finished
// snapshot, so every task for the same reference shares one copy and tasks
// for different references never contend. Extraction happens in a private
// temp directory next to dest; the final rename is the completion marker,
// so a half-extracted tree is never observable at dest and an interrupted
// run leaves no snapshot behind. When concurrent tasks race, the rename
// loser discards its copy. This replaces mutating a shared working copy
// from concurrent tasks.
func (c *RealClient) Snapshot(repo, sha, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.MkdirTemp(filepath.Dir(dest), "."+sha+"-")
	if err != nil {
		return fmt.Errorf("create snapshot temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := c.export(repo, sha, tmp); err != nil {
		if ferr := c.fetch(repo, sha); ferr != nil {
			return err
		}
		if err := c.export(repo, sha, tmp); err != nil {
			return err
		}
	}

	if err := os.Rename(tmp, dest); err != nil {
		if _, serr := os.Stat(dest); serr == nil {
			return nil // a concurrent task published the same sha first
		}
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// export writes the tree at sha into dir via git archive piped to tar.
func (c *RealClient) export(repo, sha, dir string) error {
	archive := exec.Command("git", "-C", repo, "archive", "--format=tar", sha)
	extract := exec.Command("tar", "-x", "-C", dir)

	pipe, err := archive.StdoutPipe()
	if err != nil {
		return fmt.Errorf("snapshot pipe: %w", err)
	}
	extract.Stdin = pipe

	if err := extract.Start(); err != nil {
		return fmt.Errorf("start tar: %w", err)
	}
	if err := archive.Run(); err != nil {
		_ = extract.Wait()
		return fmt.Errorf("git archive %s: %w", sha, err)
	}
	if err := extract.Wait(); err != nil {
		return fmt.Errorf("extract snapshot: %w", err)
	}
	return nil
}

// SnapshotDir returns the content-addressed snapshot location for a sha.
func SnapshotDir(root, sha string) string {
	return filepath.Join(root, sha)
}
