// Package gitrepo is a high-level wrapper around go-git scoped to the
// needs of release automation: opening a checkout, reading history since
// the last release marker, creating the bump commit and release tag, and
// pushing both to a remote. All repository state lives within a billy
// filesystem so the whole package works against in-memory repositories
// in tests.
package gitrepo

import (
	"context"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	// DefaultWorkdir is the default worktree directory name.
	DefaultWorkdir = "."

	// DefaultRemoteName is the default remote used for push operations.
	DefaultRemoteName = "origin"

	// DefaultTagPrefix is the prefix of tags recognized as release markers.
	DefaultTagPrefix = "v"
)

// Options configures repository access.
type Options struct {
	// FS is the REQUIRED filesystem root holding the checkout.
	FS billy.Filesystem

	// Workdir is the path within FS for the worktree root.
	// Defaults to "." (current directory in FS).
	Workdir string

	// RemoteName is the remote used for push operations.
	// Defaults to DefaultRemoteName.
	RemoteName string

	// TagPrefix is the prefix of tags recognized as release markers.
	// Defaults to DefaultTagPrefix.
	TagPrefix string

	// Token is an optional bearer token used to authenticate pushes.
	// If empty, pushes are attempted unauthenticated.
	Token string
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.FS == nil {
		return WrapError(ErrInvalidRef, "FS is required")
	}
	return nil
}

// applyDefaults sets default values for any unset fields in Options.
func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}
	if o.RemoteName == "" {
		o.RemoteName = DefaultRemoteName
	}
	if o.TagPrefix == "" {
		o.TagPrefix = DefaultTagPrefix
	}
}

// Signature identifies the author/committer of commits and tags.
type Signature struct {
	// Name is the author's or committer's name.
	Name string

	// Email is the author's or committer's email address.
	Email string

	// When is the timestamp for the signature.
	When time.Time
}

// Repo represents an opened git checkout and provides the release-scoped
// operations the engine needs.
type Repo struct {
	repo     *git.Repository
	worktree *git.Worktree
	fs       billy.Filesystem
	options  Options
}

// Init creates a new non-bare repository at the specified location.
// It exists for fresh setups and tests; release runs use Open.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	worktreeFS, storage, err := openStorage(opts)
	if err != nil {
		return nil, err
	}

	repo, err := git.Init(storage, worktreeFS)
	if err != nil {
		return nil, WrapError(err, "failed to initialize repository")
	}

	return wrap(repo, worktreeFS, opts)
}

// Open opens an existing git repository. Both the .git directory and the
// worktree must be present at the workdir within the filesystem.
//
// Context timeout/cancellation is honored during repository validation.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	worktreeFS, storage, err := openStorage(opts)
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(storage, worktreeFS)
	if err != nil {
		return nil, WrapError(ErrNotRepository, "failed to open repository")
	}

	return wrap(repo, worktreeFS, opts)
}

// openStorage scopes the filesystem to the workdir and builds the object
// storage rooted at its .git directory.
func openStorage(opts *Options) (billy.Filesystem, *filesystem.Storage, error) {
	scopedFS, err := opts.FS.Chroot(opts.Workdir)
	if err != nil {
		return nil, nil, WrapErrorf(err, "failed to chroot to workdir %q", opts.Workdir)
	}

	dotGitFS, err := scopedFS.Chroot(".git")
	if err != nil {
		return nil, nil, WrapError(err, "failed to access .git directory")
	}

	storage := filesystem.NewStorage(dotGitFS, cache.NewObjectLRUDefault())
	return scopedFS, storage, nil
}

func wrap(repo *git.Repository, worktreeFS billy.Filesystem, opts *Options) (*Repo, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, WrapError(err, "failed to get worktree")
	}

	return &Repo{
		repo:     repo,
		worktree: worktree,
		fs:       worktreeFS,
		options:  *opts,
	}, nil
}

// FS returns the filesystem rooted at the worktree. The manifest updater
// operates through it so file mutations stay within the checkout.
func (r *Repo) FS() billy.Filesystem {
	return r.fs
}
