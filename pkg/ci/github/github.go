package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v39/github"
	"golang.org/x/oauth2"

	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

// DefaultWebURL is the GitHub web root used for build pages
const DefaultWebURL = "https://github.com"

type githubService struct {
	client *github.Client
	webURL string
}

// NewGithubClient create plain new github api client without token
func NewGithubClient(ctx context.Context) ci.Service {
	hc := &http.Client{Transport: newRateLimitTransport(http.DefaultTransport)}
	return newService(github.NewClient(hc))
}

// NewGithubClientWithToken create new github api client with token
func NewGithubClientWithToken(ctx context.Context, token string) ci.Service {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	hc := oauth2.NewClient(ctx, ts)
	hc.Transport = newRateLimitTransport(hc.Transport)
	return newService(github.NewClient(hc))
}

// WithBaseURL points the service at another api root, e.g. GitHub Enterprise
// or a test server
func WithBaseURL(svc ci.Service, apiURL, webURL string) (ci.Service, error) {
	gs, ok := svc.(*githubService)
	if !ok {
		return nil, errors.New("not a github service")
	}

	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("parse api url: %w", err)
		}
		gs.client.BaseURL = u
	}
	if webURL != "" {
		gs.webURL = strings.TrimSuffix(webURL, "/")
	}

	return gs, nil
}

func newService(client *github.Client) *githubService {
	return &githubService{
		client: client,
		webURL: DefaultWebURL,
	}
}

func (gs *githubService) Kind() string { return ci.GITHUB }

// RepoInfo reads the combined commit status of the default branch. That
// takes two requests, one for the repository and one for the status, and
// neither is retried.
func (gs *githubService) RepoInfo(ctx context.Context, slug git.Slug) (*ci.RepoInfo, error) {
	owner, name := slug.Owner(), slug.Name()

	repo, _, err := gs.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classify(slug, err)
	}

	info := &ci.RepoInfo{
		Slug:  slug,
		Known: !repo.GetArchived(),
	}

	branch := repo.GetDefaultBranch()
	if branch == "" {
		return info, nil
	}

	combined, _, err := gs.client.Repositories.GetCombinedStatus(ctx, owner, name, branch, nil)
	if err != nil {
		return nil, classify(slug, err)
	}

	info.Status = combinedState(combined.GetState())
	info.LastBuildNumber = combined.GetSHA()

	return info, nil
}

func (gs *githubService) BuildURL(slug git.Slug) string {
	return gs.webURL + "/" + string(slug) + "/actions"
}

// combinedState maps GitHub's combined status state to a build status
func combinedState(s string) ci.BuildStatus {
	switch s {
	case "success":
		return ci.StatusPassing
	case "failure", "error":
		return ci.StatusFailing
	default:
		return ci.StatusUnknown
	}
}

func classify(slug git.Slug, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ci.ErrRepositoryUnknown, slug)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", ci.ErrMalformedResponse, err)
	}

	return fmt.Errorf("%w: %v", ci.ErrNetworkFailure, err)
}
