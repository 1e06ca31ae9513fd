package git

import (
	"errors"
	"strings"
)

// DefaultRemote is the remote consulted when no other remote is configured
const DefaultRemote RemoteName = "origin"

var (
	// ErrNotARepository is returned when the directory is not inside a git
	// working tree
	ErrNotARepository = errors.New("not a git repository")
	// ErrRemoteNotFound is returned when the remote does not exist or has no
	// fetch url
	ErrRemoteNotFound = errors.New("remote not found")
)

// RemoteName is the name of a configured git remote, e.g. "origin"
type RemoteName string

// Slug is the owner/name identifier of a repository on the CI provider
type Slug string

// Owner returns the part of the slug before the last slash
func (s Slug) Owner() string {
	i := strings.LastIndex(string(s), "/")
	if i < 0 {
		return ""
	}
	return string(s[:i])
}

// Name returns the part of the slug after the last slash
func (s Slug) Name() string {
	i := strings.LastIndex(string(s), "/")
	return string(s[i+1:])
}

// Valid reports whether s is a non-empty owner/name pair without a scheme
func (s Slug) Valid() bool {
	if s == "" || strings.Contains(string(s), "://") {
		return false
	}
	for _, part := range strings.Split(string(s), "/") {
		if part == "" {
			return false
		}
	}
	return strings.Contains(string(s), "/")
}

func (s Slug) String() string {
	return string(s)
}
