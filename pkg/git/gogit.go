package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// GoGitLookup reads remotes straight from the repository config with go-git,
// no git binary needed
type GoGitLookup struct{}

// FetchURL implements Lookup
func (GoGitLookup) FetchURL(ctx context.Context, dir string, remote RemoteName) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return "", fmt.Errorf("%w: %s", ErrNotARepository, dir)
	}
	if err != nil {
		return "", fmt.Errorf("open git repo: %w", err)
	}

	return RemoteFetchURL(repo, remote)
}

// RemoteFetchURL returns the first configured url of remote in repo
func RemoteFetchURL(repo *gogit.Repository, remote RemoteName) (string, error) {
	r, err := repo.Remote(string(remote))
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return "", fmt.Errorf("%w: %s", ErrRemoteNotFound, remote)
	}
	if err != nil {
		return "", fmt.Errorf("read remote %s: %w", remote, err)
	}

	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: %s has no fetch url", ErrRemoteNotFound, remote)
	}

	return urls[0], nil
}
