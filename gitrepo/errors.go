// Package gitrepo provides sentinel errors for repository operations.
// All errors can be checked using errors.Is() for programmatic handling.
package gitrepo

import (
	"errors"
	"fmt"
)

// Common sentinel errors that can be checked with errors.Is().
// These wrap underlying go-git errors while providing a stable API for consumers.

// ErrNotRepository is returned when the working tree is not a usable
// git repository.
var ErrNotRepository = errors.New("not a git repository")

// ErrDetachedHead is returned when HEAD does not point at a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

// ErrNoRemote is returned when the configured remote does not exist.
var ErrNoRemote = errors.New("remote is not configured")

// ErrTagExists is returned when attempting to create a tag that already exists.
var ErrTagExists = errors.New("tag already exists")

// ErrEmptyCommit is returned when a commit is attempted with nothing staged.
var ErrEmptyCommit = errors.New("no changes staged for commit")

// ErrInvalidRef is returned when a reference name or revision specification
// is malformed or invalid according to git's reference naming rules.
var ErrInvalidRef = errors.New("invalid reference")

// ErrResolveFailed is returned when a revision specification cannot be resolved
// to a valid commit hash.
var ErrResolveFailed = errors.New("cannot resolve revision")

// ErrAlreadyUpToDate is returned when a push results in no changes because
// the local and remote states are already synchronized.
var ErrAlreadyUpToDate = errors.New("already up to date")

// ErrNotFastForward is returned when a push cannot be performed as a
// fast-forward update.
var ErrNotFastForward = errors.New("not a fast-forward")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
