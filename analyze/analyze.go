// Package analyze maps commit messages to semantic change classes.
// Classification is total: a message that does not follow the
// conventional-commit format carries no release signal instead of
// failing, so one unparsable commit can never block a release.
package analyze

import (
	conventionalcommits "github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"

	"github.com/jodli/semrel/version"
)

// Change is the semantic class of a single commit, ordered by severity.
type Change int

const (
	// None carries no release signal.
	None Change = iota

	// Fix is a backwards-compatible bug fix.
	Fix

	// Feature is a backwards-compatible functional addition.
	Feature

	// Breaking is a backwards-incompatible change.
	Breaking
)

// String returns a human-readable string representation of the Change.
func (c Change) String() string {
	switch c {
	case None:
		return "none"
	case Fix:
		return "fix"
	case Feature:
		return "feature"
	case Breaking:
		return "breaking"
	default:
		return "unknown"
	}
}

// Bump returns the version increment mandated by this change class.
func (c Change) Bump() version.Bump {
	switch c {
	case Breaking:
		return version.Major
	case Feature:
		return version.Minor
	case Fix:
		return version.Patch
	default:
		return version.None
	}
}

// Classifier parses conventional-commit messages into change classes.
// The mapping is:
//
//	breaking marker ("!" or a BREAKING CHANGE footer) -> Breaking
//	feat                                              -> Feature
//	fix, revert                                       -> Fix
//	anything else, including unparsable messages      -> None
type Classifier struct {
	machine conventionalcommits.Machine
}

// NewClassifier returns a Classifier using the conventional type set.
func NewClassifier() *Classifier {
	return &Classifier{
		machine: parser.NewMachine(
			conventionalcommits.WithTypes(conventionalcommits.TypesConventional),
			conventionalcommits.WithBestEffort(),
		),
	}
}

// Classify maps one commit message to its change class. It never fails:
// malformed, empty, or unconventional messages classify as None.
func (c *Classifier) Classify(message string) Change {
	if message == "" {
		return None
	}

	res, err := c.machine.Parse([]byte(message))
	if res == nil || err != nil && !res.Ok() {
		return None
	}

	cc, ok := res.(*conventionalcommits.ConventionalCommit)
	if !ok {
		return None
	}

	if cc.IsBreakingChange() {
		return Breaking
	}

	switch cc.Type {
	case "feat":
		return Feature
	case "fix", "revert":
		return Fix
	default:
		return None
	}
}

// Max returns the highest-severity class among the given messages.
// An empty set yields None.
func (c *Classifier) Max(messages []string) Change {
	overall := None
	for _, msg := range messages {
		if ch := c.Classify(msg); ch > overall {
			overall = ch
		}
	}
	return overall
}
