// Command semrel analyzes the commits since the last release, computes
// the next semantic version, and performs the release: manifest bump,
// commit, tag, push, and hosting release. Without -write yes (or a CI
// environment) it only reports what would happen.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"

	"github.com/jodli/semrel"
	"github.com/jodli/semrel/gitrepo"
	"github.com/jodli/semrel/hosting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		writeFlag    string
		releaseFlag  string
		branch       string
		path         string
		manifestPath string
		verbose      bool
	)
	flag.StringVar(&writeFlag, "write", "", "write the release (yes|no); defaults to yes inside CI, no otherwise")
	flag.StringVar(&releaseFlag, "release", "yes", "push and create a hosting release after writing (yes|no)")
	flag.StringVar(&branch, "branch", "", "branch releases run from")
	flag.StringVar(&path, "path", ".", "path of the repository checkout")
	flag.StringVar(&manifestPath, "manifest", "", "path of the version manifest within the checkout")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}

	env := semrel.CaptureEnv(os.LookupEnv)
	mode := semrel.ResolveMode(semrel.ParseWriteRequest(writeFlag), env)

	ctx := context.Background()
	fs := osfs.New(path)

	fileCfg, err := semrel.LoadFileConfig(fs)
	if err != nil {
		return err
	}

	repo, err := gitrepo.Open(ctx, &gitrepo.Options{
		FS:         fs,
		TagPrefix:  fileCfg.TagPrefix,
		RemoteName: fileCfg.Remote,
		Token:      env.Token,
	})
	if err != nil {
		return err
	}

	cfg := semrel.Config{
		Branch:       branch,
		ManifestPath: manifestPath,
		Mode:         mode,
		Publish:      semrel.ParseWriteRequest(releaseFlag) != semrel.WriteNo,
		Identity:     semrel.ResolveIdentity(env, repo),
		Token:        env.Token,
		Logger:       logger,
	}
	fileCfg.Apply(&cfg)
	if branch != "" {
		cfg.Branch = branch
	}

	var publisher semrel.Publisher
	if url, err := repo.RemoteURL(ctx); err == nil {
		if ref, ok := hosting.ParseRepoURL(url); ok {
			publisher = hosting.New(hosting.NewClient(env.Token), ref)
		}
	}

	result, err := semrel.New(cfg, repo, publisher).Run(ctx)
	if err != nil {
		return err
	}

	if result.Mode == semrel.DryRun && result.Notes != "" {
		fmt.Print(result.Notes)
	}
	return nil
}
