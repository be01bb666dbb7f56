// Package gitrepo history operations: enumerating commits since the
// last release marker.
package gitrepo

import (
	"context"
	"errors"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Commit is an immutable record of one commit in the range under analysis.
type Commit struct {
	// Hash is the full commit hash.
	Hash string

	// Message is the complete commit message including body and footers.
	Message string

	// Author identifies who wrote the change.
	Author Signature

	// Committer identifies who committed the change.
	Committer Signature
}

// CommitsSince returns the commits reachable from the current branch head
// but not from the marker tag, oldest first. An empty marker means the
// entire branch history. When there are no new commits the result is an
// empty slice, not an error.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CommitsSince(ctx context.Context, marker string) ([]Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, WrapError(ErrNotRepository, "failed to resolve HEAD")
	}

	stop := plumbing.ZeroHash
	if marker != "" {
		stop, err = r.resolveToCommit(marker)
		if err != nil {
			return nil, err
		}
	}

	if head.Hash() == stop {
		return []Commit{}, nil
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, WrapError(err, "failed to read history")
	}
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == stop {
			return storer.ErrStop
		}
		commits = append(commits, Commit{
			Hash:    c.Hash.String(),
			Message: c.Message,
			Author: Signature{
				Name:  c.Author.Name,
				Email: c.Author.Email,
				When:  c.Author.When,
			},
			Committer: Signature{
				Name:  c.Committer.Name,
				Email: c.Committer.Email,
				When:  c.Committer.When,
			},
		})
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, WrapError(err, "failed to iterate history")
	}

	// Log walks newest first; the pipeline wants chronological order.
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}

	if commits == nil {
		commits = []Commit{}
	}
	return commits, nil
}

// resolveToCommit resolves a revision to the commit it ultimately points
// at, peeling annotated tag objects.
func (r *Repo) resolveToCommit(rev string) (plumbing.Hash, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, WrapErrorf(ErrResolveFailed, "failed to resolve %q", rev)
	}

	if tagObj, tagErr := r.repo.TagObject(*hash); tagErr == nil {
		return tagObj.Target, nil
	}

	return *hash, nil
}
