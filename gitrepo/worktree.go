// Package gitrepo worktree operations (stage, commit).
package gitrepo

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// StageAndCommit stages the given paths and creates a single commit with
// the specified message, authored and committed by who. It returns the
// SHA of the new commit. Paths that do not exist are silently ignored
// (matching git add behavior); committing with nothing staged returns
// ErrEmptyCommit.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) StageAndCommit(ctx context.Context, msg string, who Signature, paths ...string) (string, error) {
	if msg == "" {
		return "", WrapError(ErrInvalidRef, "commit message cannot be empty")
	}

	if who.Name == "" || who.Email == "" {
		return "", WrapError(ErrInvalidRef, "committer name and email are required")
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, statErr := r.fs.Stat(path); statErr != nil {
			continue
		}
		if _, err := r.worktree.Add(path); err != nil {
			return "", WrapErrorf(err, "failed to stage path %q", path)
		}
	}

	status, err := r.worktree.Status()
	if err != nil {
		return "", WrapError(err, "failed to get worktree status")
	}

	staged := 0
	for _, fileStatus := range status {
		if fileStatus.Staging != git.Untracked && fileStatus.Staging != git.Unmodified {
			staged++
		}
	}
	if staged == 0 {
		return "", WrapError(ErrEmptyCommit, "nothing to commit")
	}

	commitOpts := &git.CommitOptions{
		Author: &object.Signature{
			Name:  who.Name,
			Email: who.Email,
			When:  who.When,
		},
		Committer: &object.Signature{
			Name:  who.Name,
			Email: who.Email,
			When:  who.When,
		},
	}

	hash, err := r.worktree.Commit(msg, commitOpts)
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", ErrEmptyCommit
		}
		return "", WrapError(err, "failed to create commit")
	}

	return hash.String(), nil
}
