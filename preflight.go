package semrel

import (
	"context"
	"fmt"

	"github.com/jodli/semrel/hosting"
)

// Preflight inspects the run configuration and repository for conditions
// that will degrade the release without preventing it. Every finding is
// a warning only; the run proceeds regardless.
func Preflight(ctx context.Context, cfg Config, repo Repository) []string {
	var warnings []string

	if cfg.Token == "" {
		warnings = append(warnings, fmt.Sprintf("the %s environment variable is not configured", EnvToken))
	}

	url, err := repo.RemoteURL(ctx)
	if err != nil {
		warnings = append(warnings, "no remote is configured; semrel can't push changes or create a release")
		return warnings
	}

	if _, ok := hosting.ParseRepoURL(url); !ok {
		warnings = append(warnings, "the remote does not point at GitHub; the hosting release step will be skipped")
	}

	return warnings
}
