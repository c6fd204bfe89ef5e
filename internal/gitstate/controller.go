// Package gitstate navigates a project's git history safely: it records
// the original branch on construction, checks out annotated commits
// detached, and restores the original state once at teardown.
package gitstate

import (
	"errors"
	"fmt"
	"unicode/utf8"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/mleclerc/gitshot/internal/plan"
)

// ErrDetachedHead is returned when the repository is not on a branch at
// construction time, leaving no branch to restore to.
var ErrDetachedHead = errors.New("repository is not on a branch")

// Controller wraps a git repository. It does not stash or verify a clean
// working tree before checkout; that discipline is the caller's.
type Controller struct {
	repo           *git.Repository
	path           string
	originalBranch string
	originalCommit string
}

// New opens the repository at path and records the original branch and
// commit. Fails fast when the path is not a repository or HEAD is
// detached.
func New(path string) (*Controller, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return nil, fmt.Errorf("%s: %w", path, ErrDetachedHead)
	}
	return &Controller{
		repo:           repo,
		path:           path,
		originalBranch: head.Name().Short(),
		originalCommit: head.Hash().String(),
	}, nil
}

// OriginalBranch returns the branch name recorded at construction.
func (c *Controller) OriginalBranch() string { return c.originalBranch }

// OriginalCommit returns the HEAD hash recorded at construction.
func (c *Controller) OriginalCommit() string { return c.originalCommit }

// ScreenshotCommits scans the commit log reachable from the original HEAD
// and builds the chronological capture plan. Read-only; the working tree
// is untouched.
func (c *Controller) ScreenshotCommits() ([]plan.CommitGroup, error) {
	iter, err := c.repo.Log(&git.LogOptions{From: plumbing.NewHash(c.originalCommit)})
	if err != nil {
		return nil, fmt.Errorf("read commit log: %w", err)
	}
	defer iter.Close()

	var history []plan.Commit
	err = iter.ForEach(func(commit *object.Commit) error {
		history = append(history, plan.Commit{
			Hash:    commit.Hash.String(),
			Message: commit.Message,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk commit log: %w", err)
	}
	return plan.Build(history), nil
}

// Checkout moves the working tree to the given commit, detached.
func (c *Controller) Checkout(commitID string) error {
	wt, err := c.repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	opts := &git.CheckoutOptions{Hash: plumbing.NewHash(commitID)}
	if err := wt.Checkout(opts); err != nil {
		return fmt.Errorf("checkout %s: %w", plan.ShortHash(commitID), err)
	}
	return nil
}

// Restore unconditionally checks the working tree back out to the
// original branch. It is the run's single terminal operation, not a
// per-step rollback.
func (c *Controller) Restore() error {
	wt, err := c.repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	opts := &git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(c.originalBranch),
	}
	if err := wt.Checkout(opts); err != nil {
		return fmt.Errorf("restore %s: %w", c.originalBranch, err)
	}
	return nil
}

// FilesAtCommit returns repository-relative path to decoded text content
// for every blob at the given commit. Binary or undecodable blobs are
// silently skipped.
func (c *Controller) FilesAtCommit(commitID string) (map[string]string, error) {
	commit, err := c.repo.CommitObject(plumbing.NewHash(commitID))
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", plan.ShortHash(commitID), err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("commit tree: %w", err)
	}

	files := map[string]string{}
	err = tree.Files().ForEach(func(f *object.File) error {
		bin, err := f.IsBinary()
		if err != nil || bin {
			return nil
		}
		content, err := f.Contents()
		if err != nil || !utf8.ValidString(content) {
			return nil
		}
		files[f.Name] = content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk tree: %w", err)
	}
	return files, nil
}
