// Package notes renders release notes from the classified commit set.
// The format is fixed: a heading for the release followed by one section
// per change class, newest release first is the caller's concern.
package notes

import (
	"strings"

	"github.com/jodli/semrel/analyze"
)

// Entry is one commit's contribution to the release notes.
type Entry struct {
	// Hash is the full commit hash; only a short form is rendered.
	Hash string

	// Summary is the first line of the commit message.
	Summary string

	// Change is the commit's semantic class.
	Change analyze.Change
}

// shortHashLen is the abbreviated hash length used in rendered notes.
const shortHashLen = 7

// Render produces the markdown body for a release. Commits classified as
// None are left out; sections for empty classes are omitted entirely.
func Render(tag string, entries []Entry) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(tag)
	b.WriteString("\n")

	writeSection(&b, "Breaking changes", entries, analyze.Breaking)
	writeSection(&b, "Features", entries, analyze.Feature)
	writeSection(&b, "Fixes", entries, analyze.Fix)

	return b.String()
}

func writeSection(b *strings.Builder, title string, entries []Entry, class analyze.Change) {
	first := true
	for _, e := range entries {
		if e.Change != class {
			continue
		}
		if first {
			b.WriteString("\n## ")
			b.WriteString(title)
			b.WriteString("\n\n")
			first = false
		}
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(e.Summary))
		if e.Hash != "" {
			b.WriteString(" (")
			b.WriteString(shortHash(e.Hash))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
}

func shortHash(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}
	return hash[:shortHashLen]
}

// Summary extracts the first line of a commit message for use as an
// Entry summary.
func Summary(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	return strings.TrimSpace(message)
}
