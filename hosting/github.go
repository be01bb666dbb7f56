// Package hosting publishes release records to the project's hosting
// service. Only GitHub is supported; whether a repository is hosted
// there is decided from its remote URL.
package hosting

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v66/github"
)

// RepoRef identifies a repository on the hosting service.
type RepoRef struct {
	// Owner is the user or organization owning the repository.
	Owner string

	// Name is the repository name without the .git suffix.
	Name string
}

// String returns the owner/name form of the reference.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoURL extracts the owner and repository name from a GitHub
// remote URL. It understands https, ssh, and scp-like syntax. The second
// return value is false when the URL does not point at GitHub, which
// callers treat as "no hosting release possible", never as a failure.
func ParseRepoURL(remoteURL string) (RepoRef, bool) {
	var path string
	switch {
	case strings.HasPrefix(remoteURL, "https://github.com/"):
		path = strings.TrimPrefix(remoteURL, "https://github.com/")
	case strings.HasPrefix(remoteURL, "http://github.com/"):
		path = strings.TrimPrefix(remoteURL, "http://github.com/")
	case strings.HasPrefix(remoteURL, "ssh://git@github.com/"):
		path = strings.TrimPrefix(remoteURL, "ssh://git@github.com/")
	case strings.HasPrefix(remoteURL, "git@github.com:"):
		path = strings.TrimPrefix(remoteURL, "git@github.com:")
	default:
		return RepoRef{}, false
	}

	path = strings.TrimSuffix(path, ".git")
	path = strings.TrimSuffix(path, "/")

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, false
	}

	return RepoRef{Owner: parts[0], Name: parts[1]}, true
}

// NewClient returns a GitHub API client authenticated with token.
// An empty token yields an unauthenticated client, which is enough for
// dry runs but will be rejected when creating releases.
func NewClient(token string) *github.Client {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client
}

// GitHub creates release records on github.com.
type GitHub struct {
	client *github.Client
	ref    RepoRef
}

// New returns a GitHub publisher for the given repository.
// The client is injected so tests can point it at a fake server.
func New(client *github.Client, ref RepoRef) *GitHub {
	return &GitHub{client: client, ref: ref}
}

// CreateRelease creates a published (non-draft, non-prerelease) release
// for the given tag, targeting branch, with body as the release text.
func (g *GitHub) CreateRelease(ctx context.Context, tag, branch, body string) error {
	release := &github.RepositoryRelease{
		TagName:         github.String(tag),
		Name:            github.String(tag),
		Body:            github.String(body),
		TargetCommitish: github.String(branch),
		Draft:           github.Bool(false),
		Prerelease:      github.Bool(false),
	}

	_, _, err := g.client.Repositories.CreateRelease(ctx, g.ref.Owner, g.ref.Name, release)
	if err != nil {
		return fmt.Errorf("creating release %s on %s: %w", tag, g.ref, err)
	}
	return nil
}
