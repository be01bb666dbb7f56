// Package gitrepo tag operations: release marker resolution and release
// tag creation.
package gitrepo

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ReleaseTag is a tag recognized as marking a prior release.
type ReleaseTag struct {
	// Name is the full tag name, including the prefix.
	Name string

	// Version is the semantic version encoded in the tag name.
	Version *semver.Version
}

// LatestRelease returns the highest-versioned tag matching the configured
// tag prefix, or nil when no release tag exists. Tags that do not encode
// a valid version are skipped, never an error: a stray tag must not crash
// marker resolution.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) LatestRelease(ctx context.Context) (*ReleaseTag, error) {
	refs, err := r.repo.Tags()
	if err != nil {
		return nil, WrapError(err, "failed to list tags")
	}

	var latest *ReleaseTag
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !strings.HasPrefix(name, r.options.TagPrefix) {
			return nil
		}

		v, parseErr := semver.StrictNewVersion(strings.TrimPrefix(name, r.options.TagPrefix))
		if parseErr != nil {
			// Not a release marker. Ignore it.
			return nil
		}

		if latest == nil || v.GreaterThan(latest.Version) {
			latest = &ReleaseTag{Name: name, Version: v}
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate tags")
	}

	return latest, nil
}

// CreateReleaseTag creates an annotated tag at HEAD carrying the given
// message, signed by the tagger. Returns ErrTagExists if the tag name is
// already taken.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CreateReleaseTag(ctx context.Context, name, message string, tagger Signature) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}

	head, err := r.repo.Head()
	if err != nil {
		return WrapError(ErrResolveFailed, "failed to resolve HEAD")
	}

	tagRefName := plumbing.NewTagReferenceName(name)
	if _, refErr := r.repo.Reference(tagRefName, true); refErr == nil {
		return WrapErrorf(ErrTagExists, "tag %q already exists", name)
	}

	tagOpts := &git.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  tagger.Name,
			Email: tagger.Email,
			When:  tagger.When,
		},
		Message: message,
	}

	if _, err = r.repo.CreateTag(name, head.Hash(), tagOpts); err != nil {
		return WrapError(err, "failed to create annotated tag")
	}

	return nil
}
