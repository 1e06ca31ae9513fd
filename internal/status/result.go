package status

import (
	"context"
	"errors"

	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

// Kind classifies the outcome of a resolution
type Kind int

const (
	KindOK Kind = iota
	// KindEmpty means the query succeeded but yielded nothing definitive
	KindEmpty
	KindNotARepository
	KindRemoteNotFound
	KindNetworkFailure
	KindMalformedResponse
	KindRepositoryUnknown
	// KindCancelled means the context ended before the resolution finished,
	// nothing is known about the repository
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindEmpty:
		return "empty"
	case KindNotARepository:
		return "not_a_repository"
	case KindRemoteNotFound:
		return "remote_not_found"
	case KindNetworkFailure:
		return "network_failure"
	case KindMalformedResponse:
		return "malformed_response"
	case KindRepositoryUnknown:
		return "repository_unknown"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// kindOf maps package errors to a result kind. Any failure after ctx is done
// is KindCancelled, whatever the error wraps. Unclassified errors, like a
// missing git binary, are reported as KindNotARepository since no slug can
// be derived either way.
func kindOf(ctx context.Context, err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, git.ErrRemoteNotFound):
		return KindRemoteNotFound
	case errors.Is(err, ci.ErrRepositoryUnknown):
		return KindRepositoryUnknown
	case errors.Is(err, ci.ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ci.ErrNetworkFailure):
		return KindNetworkFailure
	default:
		return KindNotARepository
	}
}

// SlugResult is the outcome of a slug resolution
type SlugResult struct {
	Slug   git.Slug
	Remote git.RemoteName
	Kind   Kind
	Err    error
}

// OK reports whether a slug was resolved
func (r SlugResult) OK() bool {
	return r.Kind == KindOK
}

// StatusResult is the outcome of a status query
type StatusResult struct {
	Status ci.BuildStatus
	Kind   Kind
	Err    error
}

// Report is the end-to-end result of checking a directory
type Report struct {
	Dir    string
	Slug   git.Slug
	Status ci.BuildStatus
	// Label is only meaningful when Shown is true
	Label string
	Shown bool
	Kind  Kind
	Err   error
}

// BuildPage is the outcome of ShowBuild
type BuildPage struct {
	Slug   git.Slug
	URL    string
	Opened bool
	Kind   Kind
	Err    error
}
