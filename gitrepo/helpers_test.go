package gitrepo

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// testRepo is a helper struct that contains a test repository and its filesystem
type testRepo struct {
	repo *Repo
	fs   billy.Filesystem
	ctx  context.Context
}

func testSignature() Signature {
	return Signature{Name: "Test", Email: "test@example.com", When: time.Now()}
}

// setupTestRepo creates a new test repository with an in-memory filesystem
func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()

	ctx := context.Background()
	memFS := memfs.New()

	opts := Options{FS: memFS, Workdir: "."}
	repo, err := Init(ctx, &opts)
	require.NoError(t, err, "failed to initialize test repository")
	require.NotNil(t, repo, "repository should not be nil")

	return &testRepo{repo: repo, fs: memFS, ctx: ctx}
}

// commitFile writes a file and commits it, returning the commit hash
func (tr *testRepo) commitFile(t *testing.T, name, content, msg string) string {
	t.Helper()

	err := util.WriteFile(tr.repo.fs, name, []byte(content), 0o666)
	require.NoError(t, err, "failed to write %s", name)

	_, err = tr.repo.worktree.Add(name)
	require.NoError(t, err, "failed to add %s", name)

	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()}
	hash, err := tr.repo.worktree.Commit(msg, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err, "failed to commit %s", name)

	return hash.String()
}

// lightweightTag creates a lightweight tag at HEAD
func (tr *testRepo) lightweightTag(t *testing.T, name string) {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err, "failed to get HEAD")

	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), head.Hash())
	err = tr.repo.repo.Storer.SetReference(ref)
	require.NoError(t, err, "failed to create tag reference")
}

// headHash returns the current HEAD commit hash
func (tr *testRepo) headHash(t *testing.T) string {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err, "failed to get HEAD")
	return head.Hash().String()
}
