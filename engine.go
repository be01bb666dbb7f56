package semrel

import (
	"context"
	"errors"

	"github.com/go-git/go-billy/v5"

	"github.com/jodli/semrel/analyze"
	"github.com/jodli/semrel/gitrepo"
	"github.com/jodli/semrel/manifest"
	"github.com/jodli/semrel/notes"
	"github.com/jodli/semrel/version"
)

// Repository is the slice of git operations the engine needs.
// *gitrepo.Repo satisfies it.
type Repository interface {
	CurrentBranch(ctx context.Context) (string, error)
	LatestRelease(ctx context.Context) (*gitrepo.ReleaseTag, error)
	CommitsSince(ctx context.Context, marker string) ([]gitrepo.Commit, error)
	StageAndCommit(ctx context.Context, message string, who gitrepo.Signature, paths ...string) (string, error)
	CreateReleaseTag(ctx context.Context, name, message string, tagger gitrepo.Signature) error
	RemoteURL(ctx context.Context) (string, error)
	PushRelease(ctx context.Context, branch, tag string) error
	FS() billy.Filesystem
}

// Publisher creates a release record on the hosting service.
type Publisher interface {
	CreateRelease(ctx context.Context, tag, branch, body string) error
}

// Result reports what a run decided and did. It is returned for every
// successful run, including no-op and dry runs.
type Result struct {
	// Mode is the mode the run executed under.
	Mode Mode

	// Branch is the branch the run executed on.
	Branch string

	// PreviousVersion is the manifest version before the run.
	PreviousVersion string

	// NextVersion equals PreviousVersion when Bump is None.
	NextVersion string

	// Bump is the strongest change class found since the last release.
	Bump version.Bump

	// CommitHash is the bump commit, empty unless one was created.
	CommitHash string

	// TagName is the release tag, empty unless a release was decided.
	TagName string

	// Notes is the rendered release notes body.
	Notes string

	// Pushed reports whether branch and tag reached the remote.
	Pushed bool

	// ReleaseCreated reports whether a hosting release was created.
	ReleaseCreated bool
}

// Engine executes the release pipeline against one repository.
type Engine struct {
	cfg        Config
	repo       Repository
	classifier *analyze.Classifier
	publisher  Publisher
}

// New returns an engine for the given repository. The publisher may be
// nil when the project is not hosted on a supported service; the hosting
// release step is then skipped with a diagnostic.
func New(cfg Config, repo Repository, publisher Publisher) *Engine {
	cfg.applyDefaults()
	return &Engine{
		cfg:        cfg,
		repo:       repo,
		classifier: analyze.NewClassifier(),
		publisher:  publisher,
	}
}

// Run executes one release attempt: gate on the branch, analyze the
// commits since the last release, and either stop, report, or perform
// the release depending on the outcome and the configured mode.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	log := e.cfg.Logger

	branch, err := e.repo.CurrentBranch(ctx)
	if err != nil {
		return nil, WrapErrorf(ErrRepository, "resolving current branch: %v", err)
	}
	if branch != e.cfg.Branch {
		return nil, WrapErrorf(ErrBranchMismatch,
			"releases run from branch %q but the current branch is %q", e.cfg.Branch, branch)
	}

	for _, w := range Preflight(ctx, e.cfg, e.repo) {
		log.Warn().Msg(w)
	}

	raw, err := manifest.ReadVersion(e.repo.FS(), e.cfg.ManifestPath)
	if err != nil {
		return nil, WrapErrorf(ErrManifest, "reading %s: %v", e.cfg.ManifestPath, err)
	}
	current, err := version.Parse(raw)
	if err != nil {
		return nil, WrapErrorf(ErrManifest, "version %q in %s", raw, e.cfg.ManifestPath)
	}

	marker := ""
	latest, err := e.repo.LatestRelease(ctx)
	if err != nil {
		return nil, WrapErrorf(ErrRepository, "finding the last release tag: %v", err)
	}
	if latest != nil {
		marker = latest.Name
		log.Info().Str("tag", marker).Msg("last release found")
	} else {
		log.Info().Msg("no release tag found, analyzing the full history")
	}

	commits, err := e.repo.CommitsSince(ctx, marker)
	if err != nil {
		return nil, WrapErrorf(ErrRepository, "collecting commits since %q: %v", marker, err)
	}

	entries := make([]notes.Entry, 0, len(commits))
	strongest := analyze.None
	for _, c := range commits {
		change := e.classifier.Classify(c.Message)
		if change > strongest {
			strongest = change
		}
		entries = append(entries, notes.Entry{
			Hash:    c.Hash,
			Summary: notes.Summary(c.Message),
			Change:  change,
		})
	}
	bump := strongest.Bump()

	result := &Result{
		Mode:            e.cfg.Mode,
		Branch:          branch,
		PreviousVersion: current.String(),
		NextVersion:     current.String(),
		Bump:            bump,
	}

	if bump == version.None {
		log.Info().Msg("No version bump. Nothing to do.")
		return result, nil
	}

	next := version.Next(current, bump)
	tagName := e.cfg.TagPrefix + next.String()
	body := notes.Render(tagName, entries)

	result.NextVersion = next.String()
	result.TagName = tagName
	result.Notes = body

	log.Info().
		Int("commits", len(commits)).
		Stringer("bump", bump).
		Str("next", next.String()).
		Msg("analyzed commits since the last release")

	if e.cfg.Mode == DryRun {
		log.Info().Str("version", next.String()).Msg("new version would be written")
		return result, nil
	}

	if err := manifest.WriteVersion(e.repo.FS(), e.cfg.ManifestPath, current.String(), next.String()); err != nil {
		return nil, WrapErrorf(ErrManifest, "writing %s to %s: %v", next.String(), e.cfg.ManifestPath, err)
	}

	hash, err := e.repo.StageAndCommit(ctx, "Bump version to "+next.String(), e.cfg.Identity, e.cfg.ManifestPath)
	if err != nil {
		return nil, WrapErrorf(ErrGitOperation, "committing the version bump: %v", err)
	}
	result.CommitHash = hash

	if err := e.repo.CreateReleaseTag(ctx, tagName, body, e.cfg.Identity); err != nil {
		return nil, WrapErrorf(ErrGitOperation, "tagging %s: %v", tagName, err)
	}
	log.Info().Str("tag", tagName).Str("commit", hash).Msg("release committed and tagged")

	if !e.cfg.Publish {
		return result, nil
	}
	if err := e.publish(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// publish pushes the branch and tag and creates the hosting release.
// A missing remote ends the step successfully with a diagnostic; any
// failure against a configured remote is fatal.
func (e *Engine) publish(ctx context.Context, result *Result) error {
	log := e.cfg.Logger

	if _, err := e.repo.RemoteURL(ctx); err != nil {
		if errors.Is(err, gitrepo.ErrNoRemote) {
			log.Warn().Msg("no remote is configured; the release stays local")
			return nil
		}
		return WrapErrorf(ErrPublish, "resolving the remote: %v", err)
	}

	err := e.repo.PushRelease(ctx, result.Branch, result.TagName)
	switch {
	case err == nil, errors.Is(err, gitrepo.ErrAlreadyUpToDate):
		result.Pushed = true
	default:
		return WrapErrorf(ErrPublish, "pushing %s and %s: %v", result.Branch, result.TagName, err)
	}
	log.Info().Str("tag", result.TagName).Msg("pushed branch and tag")

	if e.publisher == nil {
		log.Info().Msg("the remote does not point at GitHub; skipping the hosting release")
		return nil
	}
	if err := e.publisher.CreateRelease(ctx, result.TagName, result.Branch, result.Notes); err != nil {
		return WrapErrorf(ErrPublish, "creating the hosting release for %s: %v", result.TagName, err)
	}
	result.ReleaseCreated = true
	log.Info().Str("tag", result.TagName).Msg("hosting release created")

	return nil
}
