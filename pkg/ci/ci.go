package ci

import (
	"context"
	"errors"

	"github.com/circleous/cistatus/pkg/git"
)

const (
	// TRAVIS provider type
	TRAVIS = "travis"
	// GITHUB provider type
	GITHUB = "github"
)

var (
	// ErrNetworkFailure covers transport errors and non-2xx responses
	ErrNetworkFailure = errors.New("network failure")
	// ErrMalformedResponse is returned when the provider body can't be decoded
	ErrMalformedResponse = errors.New("malformed response")
	// ErrRepositoryUnknown is returned when the provider doesn't track the
	// repository
	ErrRepositoryUnknown = errors.New("repository unknown to provider")
)

// BuildStatus is the outcome of the last build of a repository
type BuildStatus int

const (
	// StatusUnknown means no definitive status is available
	StatusUnknown BuildStatus = iota
	StatusPassing
	StatusFailing
)

func (s BuildStatus) String() string {
	switch s {
	case StatusPassing:
		return "passing"
	case StatusFailing:
		return "failing"
	default:
		return "unknown"
	}
}

// StatusFromCode maps a provider build status code, 0 is passing and any
// other value is failing. A nil code is unknown.
func StatusFromCode(code *int) BuildStatus {
	switch {
	case code == nil:
		return StatusUnknown
	case *code == 0:
		return StatusPassing
	default:
		return StatusFailing
	}
}

// RepoInfo is what the provider knows about a repository
type RepoInfo struct {
	Slug git.Slug
	// Known is false when the provider doesn't track the repository or it
	// was deactivated
	Known           bool
	Status          BuildStatus
	LastBuildNumber string
	LastBuildID     int64
}

// Service is a CI provider client
type Service interface {
	// Kind returns the provider type, one of TRAVIS or GITHUB
	Kind() string
	// RepoInfo makes a single request for the repository state
	RepoInfo(ctx context.Context, slug git.Slug) (*RepoInfo, error)
	// BuildURL is the web page of the repository builds
	BuildURL(slug git.Slug) string
}
