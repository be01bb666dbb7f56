package semrel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jodli/semrel/gitrepo"
	"github.com/jodli/semrel/manifest"
	"github.com/jodli/semrel/version"
)

// go-git initializes new repositories on master.
const testBranch = "master"

func testSignature() gitrepo.Signature {
	return gitrepo.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  time.Now(),
	}
}

func writeManifest(t *testing.T, repo *gitrepo.Repo, ver string) {
	t.Helper()
	body := fmt.Sprintf("[package]\nname = \"widget\"\nversion = %q\n", ver)
	require.NoError(t, util.WriteFile(repo.FS(), manifest.DefaultPath, []byte(body), 0o644))
}

// newReleasedRepo builds a repository whose last release is v<ver>:
// a committed manifest plus the matching release tag.
func newReleasedRepo(t *testing.T, ver string) (*gitrepo.Repo, context.Context) {
	t.Helper()
	ctx := context.Background()

	repo, err := gitrepo.Init(ctx, &gitrepo.Options{FS: memfs.New()})
	require.NoError(t, err)

	writeManifest(t, repo, ver)
	_, err = repo.StageAndCommit(ctx, "chore: initial import", testSignature(), manifest.DefaultPath)
	require.NoError(t, err)
	require.NoError(t, repo.CreateReleaseTag(ctx, "v"+ver, "v"+ver, testSignature()))

	return repo, ctx
}

// commitChange creates a commit with the given message by touching a
// scratch file so the worktree is never clean.
func commitChange(t *testing.T, ctx context.Context, repo *gitrepo.Repo, msg string) {
	t.Helper()
	require.NoError(t, util.WriteFile(repo.FS(), "src.txt", []byte(msg+"\n"), 0o644))
	_, err := repo.StageAndCommit(ctx, msg, testSignature(), "src.txt")
	require.NoError(t, err)
}

func testConfig(mode Mode) Config {
	return Config{
		Branch:   testBranch,
		Mode:     mode,
		Identity: testSignature(),
		Logger:   zerolog.Nop(),
	}
}

func manifestVersion(t *testing.T, repo *gitrepo.Repo) string {
	t.Helper()
	raw, err := manifest.ReadVersion(repo.FS(), manifest.DefaultPath)
	require.NoError(t, err)
	return raw
}

func TestRunWritesRelease(t *testing.T) {
	repo, ctx := newReleasedRepo(t, "1.0.0")
	commitChange(t, ctx, repo, "feat: add dry-run preview")

	result, err := New(testConfig(Write), repo, nil).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", result.PreviousVersion)
	assert.Equal(t, "1.1.0", result.NextVersion)
	assert.Equal(t, version.Minor, result.Bump)
	assert.Equal(t, "v1.1.0", result.TagName)
	assert.NotEmpty(t, result.CommitHash)
	assert.False(t, result.Pushed)
	assert.Contains(t, result.Notes, "feat: add dry-run preview")

	assert.Equal(t, "1.1.0", manifestVersion(t, repo))

	latest, err := repo.LatestRelease(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "v1.1.0", latest.Name)

	commits, err := repo.CommitsSince(ctx, "v1.0.0")
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "Bump version to 1.1.0", commits[1].Message)
	assert.Equal(t, result.CommitHash, commits[1].Hash)
}

func TestRunBumpSelection(t *testing.T) {
	tests := []struct {
		name    string
		message string
		next    string
		bump    version.Bump
	}{
		{name: "fix", message: "fix: tolerate malformed tags", next: "1.2.4", bump: version.Patch},
		{name: "feature", message: "feat: preview mode", next: "1.3.0", bump: version.Minor},
		{name: "breaking marker", message: "feat!: drop legacy manifest", next: "2.0.0", bump: version.Major},
		{name: "breaking footer", message: "fix: rework\n\nBREAKING CHANGE: config renamed", next: "2.0.0", bump: version.Major},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ctx := newReleasedRepo(t, "1.2.3")
			commitChange(t, ctx, repo, tt.message)

			result, err := New(testConfig(DryRun), repo, nil).Run(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.bump, result.Bump)
			assert.Equal(t, tt.next, result.NextVersion)
		})
	}
}

func TestRunNothingToDo(t *testing.T) {
	repo, ctx := newReleasedRepo(t, "1.0.0")
	commitChange(t, ctx, repo, "chore: bump deps")

	var buf bytes.Buffer
	cfg := testConfig(Write)
	cfg.Logger = zerolog.New(&buf)

	result, err := New(cfg, repo, nil).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, version.None, result.Bump)
	assert.Equal(t, "1.0.0", result.NextVersion)
	assert.Empty(t, result.TagName)
	assert.Contains(t, buf.String(), "No version bump. Nothing to do.")

	// Nothing was written.
	assert.Equal(t, "1.0.0", manifestVersion(t, repo))
	latest, err := repo.LatestRelease(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "v1.0.0", latest.Name)
}

func TestRunIsIdempotent(t *testing.T) {
	repo, ctx := newReleasedRepo(t, "1.0.0")
	commitChange(t, ctx, repo, "feat: one feature")

	first, err := New(testConfig(Write), repo, nil).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, "1.1.0", first.NextVersion)

	second, err := New(testConfig(Write), repo, nil).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, version.None, second.Bump)
	assert.Equal(t, "1.1.0", second.PreviousVersion)
	assert.Equal(t, "1.1.0", second.NextVersion)

	latest, err := repo.LatestRelease(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", latest.Name)
}

func TestRunDryRunDoesNotMutate(t *testing.T) {
	repo, ctx := newReleasedRepo(t, "1.0.0")
	commitChange(t, ctx, repo, "feat: add preview")

	result, err := New(testConfig(DryRun), repo, nil).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "1.1.0", result.NextVersion)
	assert.Equal(t, "v1.1.0", result.TagName)
	assert.Empty(t, result.CommitHash)

	assert.Equal(t, "1.0.0", manifestVersion(t, repo))
	latest, err := repo.LatestRelease(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", latest.Name)

	commits, err := repo.CommitsSince(ctx, "v1.0.0")
	require.NoError(t, err)
	assert.Len(t, commits, 1)
}

func TestRunBranchGate(t *testing.T) {
	repo, ctx := newReleasedRepo(t, "1.0.0")
	commitChange(t, ctx, repo, "feat: add preview")

	cfg := testConfig(Write)
	cfg.Branch = "main"

	_, err := New(cfg, repo, nil).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBranchMismatch)
	assert.Contains(t, err.Error(), "main")
	assert.Contains(t, err.Error(), "master")

	// The gate fires before anything is touched.
	assert.Equal(t, "1.0.0", manifestVersion(t, repo))
}

func TestRunSkipsNonReleaseTags(t *testing.T) {
	repo, ctx := newReleasedRepo(t, "1.0.0")
	commitChange(t, ctx, repo, "feat: add preview")
	require.NoError(t, repo.CreateReleaseTag(ctx, "vnext", "not a release", testSignature()))

	result, err := New(testConfig(Write), repo, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", result.NextVersion)
}

func TestRunWithoutRemoteStaysLocal(t *testing.T) {
	repo, ctx := newReleasedRepo(t, "1.0.0")
	commitChange(t, ctx, repo, "feat: add preview")

	var buf bytes.Buffer
	cfg := testConfig(Write)
	cfg.Publish = true
	cfg.Logger = zerolog.New(&buf)

	result, err := New(cfg, repo, nil).Run(ctx)
	require.NoError(t, err)

	assert.False(t, result.Pushed)
	assert.False(t, result.ReleaseCreated)
	assert.Contains(t, buf.String(), "release stays local")

	latest, err := repo.LatestRelease(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", latest.Name)
}

func TestRunMissingManifest(t *testing.T) {
	ctx := context.Background()
	repo, err := gitrepo.Init(ctx, &gitrepo.Options{FS: memfs.New()})
	require.NoError(t, err)
	commitChange(t, ctx, repo, "feat: first")

	_, err = New(testConfig(Write), repo, nil).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrManifest)
}

// remoteRepo overlays fake remote behavior on a real in-memory
// repository so the publish step can be exercised without a network.
type remoteRepo struct {
	*gitrepo.Repo
	pushErr      error
	pushedBranch string
	pushedTag    string
}

func (r *remoteRepo) RemoteURL(ctx context.Context) (string, error) {
	return "https://github.com/acme/widget.git", nil
}

func (r *remoteRepo) PushRelease(ctx context.Context, branch, tag string) error {
	r.pushedBranch = branch
	r.pushedTag = tag
	return r.pushErr
}

type recordingPublisher struct {
	tag    string
	branch string
	body   string
	err    error
}

func (p *recordingPublisher) CreateRelease(ctx context.Context, tag, branch, body string) error {
	p.tag = tag
	p.branch = branch
	p.body = body
	return p.err
}

func TestRunPublishes(t *testing.T) {
	base, ctx := newReleasedRepo(t, "1.0.0")
	commitChange(t, ctx, base, "feat: add preview")

	repo := &remoteRepo{Repo: base}
	publisher := &recordingPublisher{}

	cfg := testConfig(Write)
	cfg.Publish = true

	result, err := New(cfg, repo, publisher).Run(ctx)
	require.NoError(t, err)

	assert.True(t, result.Pushed)
	assert.True(t, result.ReleaseCreated)
	assert.Equal(t, testBranch, repo.pushedBranch)
	assert.Equal(t, "v1.1.0", repo.pushedTag)
	assert.Equal(t, "v1.1.0", publisher.tag)
	assert.Equal(t, testBranch, publisher.branch)
	assert.Contains(t, publisher.body, "feat: add preview")
}

func TestRunPublishFailures(t *testing.T) {
	t.Run("push failure is fatal", func(t *testing.T) {
		base, ctx := newReleasedRepo(t, "1.0.0")
		commitChange(t, ctx, base, "feat: add preview")

		repo := &remoteRepo{Repo: base, pushErr: errors.New("connection refused")}
		cfg := testConfig(Write)
		cfg.Publish = true

		_, err := New(cfg, repo, &recordingPublisher{}).Run(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPublish)

		// The local release stands.
		latest, lerr := base.LatestRelease(ctx)
		require.NoError(t, lerr)
		assert.Equal(t, "v1.1.0", latest.Name)
	})

	t.Run("already up to date is tolerated", func(t *testing.T) {
		base, ctx := newReleasedRepo(t, "1.0.0")
		commitChange(t, ctx, base, "feat: add preview")

		repo := &remoteRepo{Repo: base, pushErr: gitrepo.ErrAlreadyUpToDate}
		cfg := testConfig(Write)
		cfg.Publish = true

		result, err := New(cfg, repo, &recordingPublisher{}).Run(ctx)
		require.NoError(t, err)
		assert.True(t, result.Pushed)
	})

	t.Run("hosting failure is fatal", func(t *testing.T) {
		base, ctx := newReleasedRepo(t, "1.0.0")
		commitChange(t, ctx, base, "feat: add preview")

		repo := &remoteRepo{Repo: base}
		publisher := &recordingPublisher{err: errors.New("bad credentials")}
		cfg := testConfig(Write)
		cfg.Publish = true

		_, err := New(cfg, repo, publisher).Run(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPublish)
	})

	t.Run("non-github remote skips hosting step", func(t *testing.T) {
		base, ctx := newReleasedRepo(t, "1.0.0")
		commitChange(t, ctx, base, "feat: add preview")

		repo := &remoteRepo{Repo: base}
		cfg := testConfig(Write)
		cfg.Publish = true

		result, err := New(cfg, repo, nil).Run(ctx)
		require.NoError(t, err)
		assert.True(t, result.Pushed)
		assert.False(t, result.ReleaseCreated)
	})
}

func TestRunFirstRelease(t *testing.T) {
	// No release tag yet: the whole history is analyzed.
	ctx := context.Background()
	repo, err := gitrepo.Init(ctx, &gitrepo.Options{FS: memfs.New()})
	require.NoError(t, err)

	writeManifest(t, repo, "0.1.0")
	_, err = repo.StageAndCommit(ctx, "feat: initial import", testSignature(), manifest.DefaultPath)
	require.NoError(t, err)

	result, err := New(testConfig(Write), repo, nil).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "0.2.0", result.NextVersion)
	assert.Equal(t, "v0.2.0", result.TagName)
	assert.Equal(t, "0.2.0", manifestVersion(t, repo))
}
