// Package gitexec wraps the git command-line client for the crawler's
// acquisition and analysis phases: clone-or-update of working copies and
// scoped checkouts of historical commits.
//
// Every git subprocess runs with credential prompts disabled so a batch
// over thousands of repositories can never hang waiting for input.
package gitexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// noPromptEnv disables interactive credential prompts for git subprocesses.
var noPromptEnv = []string{"GIT_TERMINAL_PROMPT=0", "GIT_ASKPASS=true"}

// ErrEmptyHistory is returned when a repository has no commits reachable
// from HEAD, which signals a corrupt or just-initialized clone.
var ErrEmptyHistory = errors.New("repository has no commit history")

// Git runs git commands against one working copy.
type Git struct {
	dir string
}

// New returns a Git handle for the working copy at dir.
// The directory is not validated here; the first command reports
// a missing or non-git directory.
func New(dir string) *Git {
	return &Git{dir: dir}
}

// Dir returns the working copy path.
func (g *Git) Dir() string { return g.dir }

// run executes git -C <dir> <args...> and returns trimmed stdout.
// Stderr is folded into the returned error.
func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.dir}, args...)...)
	cmd.Env = append(os.Environ(), noPromptEnv...)
	cmd.Stdin = nil

	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}

// Head returns the commit hash of HEAD.
func (g *Git) Head(ctx context.Context) (string, error) {
	return g.run(ctx, "rev-parse", "HEAD")
}

// RevList returns every commit reachable from rev, newest first.
func (g *Git) RevList(ctx context.Context, rev string) ([]string, error) {
	out, err := g.run(ctx, "rev-list", rev)
	if err != nil {
		return nil, err
	}
	var commits []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			commits = append(commits, line)
		}
	}
	if len(commits) == 0 {
		return nil, ErrEmptyHistory
	}
	return commits, nil
}

// Checkout force-checkouts the given commit or branch.
func (g *Git) Checkout(ctx context.Context, rev string) error {
	_, err := g.run(ctx, "checkout", "-f", rev)
	return err
}

// CommitDate returns the committer date of HEAD as an ISO-8601 string.
func (g *Git) CommitDate(ctx context.Context) (string, error) {
	return g.run(ctx, "show", "--pretty=format:%cI", "-s")
}

// IsRepo reports whether dir looks like a git working copy.
func IsRepo(dir string) bool {
	cmd := exec.Command("git", "-C", dir, "rev-parse", "--git-dir")
	cmd.Env = append(os.Environ(), noPromptEnv...)
	return cmd.Run() == nil
}

// Pull fast-forwards the working copy. Divergent histories are refused,
// not merged.
func (g *Git) Pull(ctx context.Context) error {
	_, err := g.run(ctx, "pull", "--ff-only")
	return err
}

// FixDetached re-attaches a working copy left in detached-HEAD state by an
// interrupted prior run. It checks out the first branch that is not the
// detached marker line of `git branch` output. Best effort: a repo with no
// named branches is left as is.
func (g *Git) FixDetached(ctx context.Context) error {
	status, err := g.run(ctx, "status")
	if err != nil {
		return err
	}
	if !strings.Contains(status, "detached") {
		return nil
	}

	branches, err := g.run(ctx, "branch")
	if err != nil {
		return err
	}
	for _, line := range strings.Split(branches, "\n") {
		line = strings.TrimSpace(line)
		// The current (detached) entry looks like "* (HEAD detached at abc123)".
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "(") {
			continue
		}
		return g.Checkout(ctx, line)
	}
	return nil
}

// CloneOrUpdate ensures a reasonably current working copy of remoteURL at
// dir. An existing copy is fast-forwarded; if that fails (diverged history,
// network error) the copy is discarded and cloned fresh. A failed clone
// removes its partial directory before returning the error.
func CloneOrUpdate(ctx context.Context, remoteURL, dir string) error {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		if err := New(dir).Pull(ctx); err == nil {
			return nil
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("discard stale clone %s: %w", dir, err)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create clone dir %s: %w", dir, err)
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", remoteURL, dir)
	cmd.Env = append(os.Environ(), noPromptEnv...)
	cmd.Stdin = nil

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("clone %s: %w: %s", remoteURL, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
