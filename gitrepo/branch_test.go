package gitrepo

import (
	"errors"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBranch(t *testing.T) {
	t.Run("returns the checked out branch", func(t *testing.T) {
		tr := setupTestRepo(t)
		tr.commitFile(t, "a.txt", "a", "first commit")

		branch, err := tr.repo.CurrentBranch(tr.ctx)
		require.NoError(t, err)
		assert.Equal(t, "master", branch)
	})

	t.Run("empty repository has no branch", func(t *testing.T) {
		tr := setupTestRepo(t)

		_, err := tr.repo.CurrentBranch(tr.ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotRepository))
	})

	t.Run("detached HEAD is reported", func(t *testing.T) {
		tr := setupTestRepo(t)
		hash := tr.commitFile(t, "a.txt", "a", "first commit")
		tr.commitFile(t, "b.txt", "b", "second commit")

		err := tr.repo.worktree.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(hash)})
		require.NoError(t, err)

		_, err = tr.repo.CurrentBranch(tr.ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDetachedHead))
	})
}

func TestConfiguredIdentity(t *testing.T) {
	t.Run("unset identity reports absence", func(t *testing.T) {
		tr := setupTestRepo(t)

		_, ok := tr.repo.ConfiguredIdentity()
		assert.False(t, ok)
	})

	t.Run("identity from repository config", func(t *testing.T) {
		tr := setupTestRepo(t)

		require.NoError(t, tr.repo.SetConfiguredIdentity("Config User", "config@example.com"))

		sig, ok := tr.repo.ConfiguredIdentity()
		require.True(t, ok)
		assert.Equal(t, "Config User", sig.Name)
		assert.Equal(t, "config@example.com", sig.Email)
	})
}
