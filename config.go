package semrel

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jodli/semrel/gitrepo"
	"github.com/jodli/semrel/manifest"
)

// Mode decides whether a run mutates the repository.
type Mode int

const (
	// DryRun analyzes and reports but never writes.
	DryRun Mode = iota

	// Write performs the full release: manifest rewrite, commit, tag,
	// and optionally push and hosting release.
	Write
)

// String returns the human-readable name of the mode.
func (m Mode) String() string {
	switch m {
	case DryRun:
		return "dry-run"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Environment variables consulted at startup.
const (
	EnvCI             = "CI"
	EnvCommitterName  = "GIT_COMMITTER_NAME"
	EnvCommitterEmail = "GIT_COMMITTER_EMAIL"
	EnvToken          = "GH_TOKEN"
)

// EnvSnapshot is the process environment captured once at startup so the
// rest of a run never consults the environment directly.
type EnvSnapshot struct {
	// CI reports whether the run happens inside a CI service.
	CI bool

	// CommitterName and CommitterEmail override the commit identity when
	// both are set.
	CommitterName  string
	CommitterEmail string

	// Token is the hosting service API token, if configured.
	Token string
}

// CaptureEnv reads the variables semrel cares about through lookup.
// Pass os.LookupEnv outside of tests.
func CaptureEnv(lookup func(string) (string, bool)) EnvSnapshot {
	var snap EnvSnapshot
	if v, ok := lookup(EnvCI); ok && v != "" && v != "false" && v != "0" {
		snap.CI = true
	}
	snap.CommitterName, _ = lookup(EnvCommitterName)
	snap.CommitterEmail, _ = lookup(EnvCommitterEmail)
	snap.Token, _ = lookup(EnvToken)
	return snap
}

// WriteRequest is the tri-state write flag: the user may demand a write,
// forbid one, or leave the decision to the environment.
type WriteRequest int

const (
	// WriteDefault defers the decision to the CI environment.
	WriteDefault WriteRequest = iota

	// WriteYes forces Write mode.
	WriteYes

	// WriteNo forces DryRun mode.
	WriteNo
)

// ParseWriteRequest maps a flag value to a WriteRequest. An empty value
// means the flag was not given. "yes", "true", and "1" request a write;
// anything else forbids one.
func ParseWriteRequest(raw string) WriteRequest {
	switch raw {
	case "":
		return WriteDefault
	case "yes", "true", "1":
		return WriteYes
	default:
		return WriteNo
	}
}

// ResolveMode picks the run mode. An explicit request always wins;
// otherwise a CI environment implies Write and everything else DryRun.
func ResolveMode(req WriteRequest, env EnvSnapshot) Mode {
	switch req {
	case WriteYes:
		return Write
	case WriteNo:
		return DryRun
	}
	if env.CI {
		return Write
	}
	return DryRun
}

// Defaults applied by Config.applyDefaults.
const (
	DefaultBranch   = "main"
	DefaultIdentity = "semrel"
	DefaultEmail    = "semrel@localhost"
)

// Config carries everything a run needs. Zero values are filled in with
// defaults; Branch defaults to main and must match the current branch.
type Config struct {
	// Branch is the only branch releases may run from.
	Branch string

	// TagPrefix is prepended to the version when naming release tags.
	TagPrefix string

	// ManifestPath is the path of the version manifest inside the
	// repository.
	ManifestPath string

	// Mode decides between analysis only and a full release.
	Mode Mode

	// Publish enables the push and hosting release steps in Write mode.
	Publish bool

	// Identity is the author and committer of the bump commit and the
	// tagger of the release tag.
	Identity gitrepo.Signature

	// Token authenticates the push and the hosting release.
	Token string

	// Logger receives progress and diagnostics for the run.
	Logger zerolog.Logger
}

func (c *Config) applyDefaults() {
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	if c.TagPrefix == "" {
		c.TagPrefix = gitrepo.DefaultTagPrefix
	}
	if c.ManifestPath == "" {
		c.ManifestPath = manifest.DefaultPath
	}
	if c.Identity.Name == "" {
		c.Identity.Name = DefaultIdentity
	}
	if c.Identity.Email == "" {
		c.Identity.Email = DefaultEmail
	}
	if c.Identity.When.IsZero() {
		c.Identity.When = time.Now()
	}
}

// ConfigFileName is the optional per-repository configuration file.
const ConfigFileName = ".semrel.yaml"

// FileConfig is the subset of run settings settable from .semrel.yaml.
// Remote names the push remote and is consumed when opening the
// repository rather than by the engine.
type FileConfig struct {
	Branch    string `yaml:"branch"`
	TagPrefix string `yaml:"tag_prefix"`
	Manifest  string `yaml:"manifest"`
	Remote    string `yaml:"remote"`
}

// LoadFileConfig reads .semrel.yaml from the root of fsys. A missing
// file yields a zero FileConfig and no error.
func LoadFileConfig(fsys billy.Filesystem) (FileConfig, error) {
	var fc FileConfig
	data, err := util.ReadFile(fsys, ConfigFileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}
	return fc, nil
}

// Apply overlays the file settings onto cfg, leaving unset fields alone.
func (fc FileConfig) Apply(cfg *Config) {
	if fc.Branch != "" {
		cfg.Branch = fc.Branch
	}
	if fc.TagPrefix != "" {
		cfg.TagPrefix = fc.TagPrefix
	}
	if fc.Manifest != "" {
		cfg.ManifestPath = fc.Manifest
	}
}

// ResolveIdentity picks the commit identity for a run: the environment
// override when both variables are set, then the repository's configured
// user, then a fixed fallback.
func ResolveIdentity(env EnvSnapshot, repo *gitrepo.Repo) gitrepo.Signature {
	now := time.Now()
	if env.CommitterName != "" && env.CommitterEmail != "" {
		return gitrepo.Signature{Name: env.CommitterName, Email: env.CommitterEmail, When: now}
	}
	if repo != nil {
		if sig, ok := repo.ConfiguredIdentity(); ok {
			sig.When = now
			return sig
		}
	}
	return gitrepo.Signature{Name: DefaultIdentity, Email: DefaultEmail, When: now}
}
