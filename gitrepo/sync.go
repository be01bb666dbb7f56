// Package gitrepo synchronization operations (remote lookup, push).
package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// RemoteURL returns the first URL of the configured remote.
// Returns ErrNoRemote when the remote does not exist, which callers treat
// as "publishing unavailable" rather than a failure.
func (r *Repo) RemoteURL(ctx context.Context) (string, error) {
	remote, err := r.repo.Remote(r.options.RemoteName)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", WrapErrorf(ErrNoRemote, "remote %q not found", r.options.RemoteName)
		}
		return "", WrapError(err, "failed to get remote configuration")
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", WrapErrorf(ErrNoRemote, "remote %q has no URL", r.options.RemoteName)
	}
	return urls[0], nil
}

// PushRelease pushes the release branch and the release tag to the
// configured remote in one operation. When a token is configured it is
// used as the push credential. Returns ErrAlreadyUpToDate when the remote
// already has both refs and ErrNotFastForward when the remote diverged.
//
// Context timeout/cancellation is honored during the push operation.
func (r *Repo) PushRelease(ctx context.Context, branch, tag string) error {
	if branch == "" || tag == "" {
		return WrapError(ErrInvalidRef, "branch and tag are required for push")
	}

	pushOpts := &git.PushOptions{
		RemoteName: r.options.RemoteName,
		RefSpecs: []gitconfig.RefSpec{
			gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)),
			gitconfig.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag)),
		},
	}

	if r.options.Token != "" {
		// GitHub accepts any username when a token is supplied as password.
		pushOpts.Auth = &githttp.BasicAuth{Username: "semrel", Password: r.options.Token}
	}

	err := r.repo.PushContext(ctx, pushOpts)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return WrapErrorf(ErrNoRemote, "remote %q not found", r.options.RemoteName)
		}
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return ErrAlreadyUpToDate
		}
		if errors.Is(err, git.ErrNonFastForwardUpdate) {
			return ErrNotFastForward
		}
		return WrapError(err, "failed to push to remote")
	}

	return nil
}
