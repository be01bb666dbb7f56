// Package semrel automates semantic-version releases from conventional
// commit history.
//
// A run inspects the commits since the last release tag, classifies
// them, computes the next version, and in Write mode rewrites the
// version manifest, commits, tags, and optionally pushes and creates a
// release on the hosting service. In DryRun mode it reports what would
// happen without touching the repository.
//
// Every fatal failure wraps one of the package sentinel errors so
// callers can classify outcomes with errors.Is().
package semrel
