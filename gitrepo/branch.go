// Package gitrepo branch operations.
package gitrepo

import (
	"context"
)

// CurrentBranch returns the name of the currently checked out branch.
// It returns ErrDetachedHead if HEAD is not on a branch and
// ErrNotRepository if HEAD cannot be resolved at all.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(ErrNotRepository, "failed to get HEAD reference")
	}

	if !head.Name().IsBranch() {
		return "", WrapError(ErrDetachedHead, "HEAD is not on a branch")
	}

	return head.Name().Short(), nil
}

// ConfiguredIdentity returns the user identity from the repository
// configuration, if one is set.
func (r *Repo) ConfiguredIdentity() (Signature, bool) {
	cfg, err := r.repo.Config()
	if err != nil {
		return Signature{}, false
	}

	if cfg.User.Name == "" || cfg.User.Email == "" {
		return Signature{}, false
	}

	return Signature{Name: cfg.User.Name, Email: cfg.User.Email}, true
}

// SetConfiguredIdentity stores a user identity in the repository
// configuration.
func (r *Repo) SetConfiguredIdentity(name, email string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return WrapError(err, "failed to read repository config")
	}

	cfg.User.Name = name
	cfg.User.Email = email

	if err := r.repo.SetConfig(cfg); err != nil {
		return WrapError(err, "failed to write repository config")
	}
	return nil
}
