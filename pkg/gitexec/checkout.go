package gitexec

import (
	"context"
	"fmt"
	"math/rand"
)

// WithCommit checks out the given commit, runs body, and restores the
// commit that was checked out on entry. Restoration happens on every exit
// path, including when body returns an error or panics.
func (g *Git) WithCommit(ctx context.Context, commit string, body func() error) error {
	initial, err := g.Head(ctx)
	if err != nil {
		return fmt.Errorf("record initial commit: %w", err)
	}
	if err := g.Checkout(ctx, commit); err != nil {
		return fmt.Errorf("checkout %s: %w", commit, err)
	}
	defer func() {
		// Restore with a fresh context so a cancelled batch still leaves
		// the working copy on its original commit.
		_ = g.Checkout(context.WithoutCancel(ctx), initial)
	}()

	return body()
}

// WithRandomCommit re-attaches a detached HEAD if needed, picks a commit
// uniformly at random among the ancestors of HEAD, and runs body against
// it under the same restoration guarantee as [Git.WithCommit]. The chosen
// commit is passed to body.
func (g *Git) WithRandomCommit(ctx context.Context, body func(commit string) error) error {
	if err := g.FixDetached(ctx); err != nil {
		return fmt.Errorf("fix detached checkout: %w", err)
	}

	commits, err := g.RevList(ctx, "HEAD")
	if err != nil {
		return err
	}
	commit := commits[rand.Intn(len(commits))]

	return g.WithCommit(ctx, commit, func() error {
		return body(commit)
	})
}
