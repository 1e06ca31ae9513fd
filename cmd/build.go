package cmd

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/circleous/cistatus/internal/config"
	"github.com/circleous/cistatus/internal/database"
	"github.com/circleous/cistatus/internal/status"
	"github.com/circleous/cistatus/internal/statusbar"
	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/ci/github"
	"github.com/circleous/cistatus/pkg/ci/travis"
	"github.com/circleous/cistatus/pkg/git"
)

// newLookup returns the remote lookup of the configured git backend
func newLookup(c *config.Config) git.Lookup {
	if c.GitBackend == config.GoGitBackend {
		return git.GoGitLookup{}
	}
	return &git.CommandLookup{}
}

// newService returns the client of the configured CI provider
func newService(ctx context.Context, c *config.Config) (ci.Service, error) {
	if c.Provider == ci.GITHUB {
		svc := github.NewGithubClient(ctx)
		if c.GithubToken != "" {
			svc = github.NewGithubClientWithToken(ctx, c.GithubToken)
		}
		return github.WithBaseURL(svc, c.APIURL, c.WebURL)
	}

	return travis.NewTravisClient(&http.Client{}, c.APIURL, c.WebURL), nil
}

func newResolver(ctx context.Context, c *config.Config) (*status.Resolver, error) {
	svc, err := newService(ctx, c)
	if err != nil {
		return nil, err
	}
	return status.New(newLookup(c), svc, c), nil
}

// newBar writes to the status file when one is configured
func newBar(c *config.Config) statusbar.Bar {
	if c.StatusFile != "" {
		return statusbar.NewFileBar(c.StatusFile)
	}
	return statusbar.NewWriterBar(os.Stdout)
}

// openHistory returns nil when history is disabled
func openHistory(c *config.Config) (database.Service, error) {
	if c.HistoryPath == "" {
		return nil, nil
	}

	db, err := database.NewDatabase(c.HistoryPath)
	if err != nil {
		return nil, err
	}

	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// targetDir is the directory of path, or path itself when it is a directory.
// No argument means the working directory.
func targetDir(args []string) (string, error) {
	if len(args) == 0 {
		return os.Getwd()
	}

	p, err := filepath.Abs(args[0])
	if err != nil {
		return "", err
	}

	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return p, nil
	}

	return filepath.Dir(p), nil
}
