// Package version computes semantic-version increments for release
// decisions. Parsing and comparison are delegated to the semver library;
// this package owns the bump rules.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Bump is the magnitude of a version increase mandated by the highest
// severity change found since the last release.
type Bump int

const (
	// None means the version stays unchanged and no release is made.
	None Bump = iota

	// Patch increments the patch component.
	Patch

	// Minor increments the minor component and resets patch.
	Minor

	// Major increments the major component and resets minor and patch.
	Major
)

// String returns a human-readable string representation of the Bump.
func (b Bump) String() string {
	switch b {
	case None:
		return "none"
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return "unknown"
	}
}

// Parse parses a version string in strict X.Y.Z form. A leading "v" is
// tolerated since manifests and tags disagree on it. Anything else is an
// error; malformed manifest versions are a hard failure at read time.
func Parse(raw string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Next computes the version that follows current for the given bump.
// The result is always strictly greater than current unless the bump is
// None, in which case current is returned as is. Levels are never
// skipped: a Major bump on 1.2.3 yields exactly 2.0.0.
func Next(current *semver.Version, b Bump) *semver.Version {
	switch b {
	case Major:
		v := current.IncMajor()
		return &v
	case Minor:
		v := current.IncMinor()
		return &v
	case Patch:
		v := current.IncPatch()
		return &v
	default:
		return current
	}
}
