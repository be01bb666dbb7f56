package semrel

import (
	"errors"
	"fmt"
)

// ErrRepository is returned when the working tree is not a usable git
// repository or its branch/head cannot be resolved. Fatal before any
// mutation.
var ErrRepository = errors.New("repository is not usable")

// ErrBranchMismatch is returned when the current branch is not the
// configured release branch. Fatal before any mutation.
var ErrBranchMismatch = errors.New("not on the release branch")

// ErrManifest is returned when the version manifest is missing,
// unparsable, or cannot be rewritten. Fatal.
var ErrManifest = errors.New("manifest is not usable")

// ErrGitOperation is returned when creating the bump commit or the
// release tag fails. Fatal; effects of prior steps stand.
var ErrGitOperation = errors.New("git operation failed")

// ErrPublish is returned when a configured remote exists but pushing or
// creating the hosting release fails. The local commit and tag are kept.
var ErrPublish = errors.New("publish failed")

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
