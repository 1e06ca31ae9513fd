package travis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

const (
	// DefaultAPIURL is the legacy Travis CI api serving /repos/<slug>.json
	DefaultAPIURL = "https://api.travis-ci.org"
	// DefaultWebURL is where build pages live
	DefaultWebURL = "https://travis-ci.org"

	notFoundFile = "not found"
)

type travisService struct {
	client *http.Client
	apiURL string
	webURL string
}

// repoResponse mirrors the fields we read from /repos/<owner>/<name>.json
type repoResponse struct {
	ID              *int64      `json:"id"`
	Slug            string      `json:"slug"`
	Active          *bool       `json:"active"`
	File            string      `json:"file"` // "not found" for unknown repositories
	LastBuildStatus *int        `json:"last_build_status"`
	LastBuildNumber json.Number `json:"last_build_number"`
	LastBuildID     *int64      `json:"last_build_id"`
}

// NewTravisClient creates a Travis CI client. Empty urls fall back to the
// defaults and a nil client to http.DefaultClient.
func NewTravisClient(client *http.Client, apiURL, webURL string) ci.Service {
	if client == nil {
		client = http.DefaultClient
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if webURL == "" {
		webURL = DefaultWebURL
	}

	return &travisService{
		client: client,
		apiURL: strings.TrimSuffix(apiURL, "/"),
		webURL: strings.TrimSuffix(webURL, "/"),
	}
}

func (ts *travisService) Kind() string { return ci.TRAVIS }

// RepoInfo fetches the repository once, there is no retry
func (ts *travisService) RepoInfo(ctx context.Context, slug git.Slug) (*ci.RepoInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		ts.apiURL+"/repos/"+string(slug)+".json", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ci.ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ts.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ci.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s: %s", ci.ErrRepositoryUnknown, slug, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ci.ErrNetworkFailure, resp.Status)
	}

	var body repoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ci.ErrMalformedResponse, err)
	}

	info := &ci.RepoInfo{
		Slug:            slug,
		Known:           body.File != notFoundFile && (body.ID != nil || body.Slug != ""),
		Status:          ci.StatusFromCode(body.LastBuildStatus),
		LastBuildNumber: body.LastBuildNumber.String(),
	}
	if body.Active != nil && !*body.Active {
		info.Known = false
	}
	if body.LastBuildID != nil {
		info.LastBuildID = *body.LastBuildID
	}

	return info, nil
}

func (ts *travisService) BuildURL(slug git.Slug) string {
	return ts.webURL + "/" + string(slug)
}
