// Package manifest reads and rewrites the project's version declaration.
// Reading parses the whole manifest so a malformed file fails loudly;
// writing rewrites only the version assignment line and preserves every
// other byte of the file, comments and formatting included.
package manifest

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	toml "github.com/pelletier/go-toml/v2"
)

// DefaultPath is the manifest consulted when no path is configured.
const DefaultPath = "version.toml"

// ErrVersionMissing is returned when the manifest exists but carries no
// version field that could be located.
var ErrVersionMissing = errors.New("manifest has no version field")

// document is the subset of the manifest the engine cares about. The
// version may live at the top level or under a [package] table.
type document struct {
	Version string       `toml:"version"`
	Package packageTable `toml:"package"`
}

type packageTable struct {
	Version string `toml:"version"`
}

// ReadVersion returns the version declared in the manifest at path.
// A missing file, unparsable TOML, or absent version field is an error;
// the caller decides how fatal that is.
func ReadVersion(fsys billy.Filesystem, path string) (string, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return "", fmt.Errorf("reading manifest %q: %w", path, err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parsing manifest %q: %w", path, err)
	}

	switch {
	case doc.Package.Version != "":
		return doc.Package.Version, nil
	case doc.Version != "":
		return doc.Version, nil
	default:
		return "", fmt.Errorf("manifest %q: %w", path, ErrVersionMissing)
	}
}

// WriteVersion replaces the assignment of current with next in the
// manifest at path. Only the first matching version assignment line is
// touched; the rest of the file is written back byte-for-byte.
func WriteVersion(fsys billy.Filesystem, path, current, next string) error {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("reading manifest %q: %w", path, err)
	}

	re := regexp.MustCompile(`(?m)^(\s*version\s*=\s*")` + regexp.QuoteMeta(current) + `(")`)
	loc := re.FindSubmatchIndex(data)
	if loc == nil {
		return fmt.Errorf("manifest %q has no assignment of version %q: %w", path, current, ErrVersionMissing)
	}

	var out []byte
	out = append(out, data[:loc[3]]...)
	out = append(out, next...)
	out = append(out, data[loc[4]:]...)

	if err := util.WriteFile(fsys, path, out, 0o644); err != nil {
		return fmt.Errorf("writing manifest %q: %w", path, err)
	}
	return nil
}
