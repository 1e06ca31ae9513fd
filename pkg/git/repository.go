package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const fetchURLLabel = "Fetch URL"

// Lookup finds the fetch url of a named remote for the repository that
// contains dir
type Lookup interface {
	FetchURL(ctx context.Context, dir string, remote RemoteName) (string, error)
}

// Runner executes name with args inside dir and returns its stdout and stderr
type Runner func(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner is the Runner backed by os/exec
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// CommandLookup asks the git binary with "git remote show <remote>"
type CommandLookup struct {
	// Binary is the git executable, defaults to "git"
	Binary string
	// Run defaults to ExecRunner
	Run Runner
}

// FetchURL implements Lookup
func (l *CommandLookup) FetchURL(ctx context.Context, dir string, remote RemoteName) (string, error) {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotARepository, dir)
	}

	bin := l.Binary
	if bin == "" {
		bin = "git"
	}
	run := l.Run
	if run == nil {
		run = ExecRunner
	}

	stdout, stderr, err := run(ctx, dir, bin, "remote", "show", string(remote))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("git remote show %s: %w", remote, ctxErr)
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", fmt.Errorf("run %s: %w", bin, err)
		}
		if strings.Contains(strings.ToLower(string(stderr)), "not a git repository") {
			return "", fmt.Errorf("%w: %s", ErrNotARepository, dir)
		}
		return "", fmt.Errorf("%w: %s: %s", ErrRemoteNotFound, remote,
			strings.TrimSpace(string(stderr)))
	}

	fetch, ok := ParseFetchURL(string(stdout))
	if !ok {
		return "", fmt.Errorf("%w: %s has no fetch url", ErrRemoteNotFound, remote)
	}

	return fetch, nil
}

// ParseFetchURL extracts the url from the "Fetch URL" line of
// "git remote show" output
func ParseFetchURL(output string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		i := strings.Index(line, fetchURLLabel)
		if i < 0 {
			continue
		}

		_, u, ok := strings.Cut(line[i+len(fetchURLLabel):], ":")
		if !ok {
			continue
		}
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		return u, true
	}
	return "", false
}

// SlugFromURL strips the scheme and host of a fetch url and its trailing
// ".git". Both "scheme://host/owner/name.git" and "user@host:owner/name.git"
// are accepted.
func SlugFromURL(rawURL string) (Slug, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasSuffix(rawURL, ".git") {
		return "", false
	}
	rawURL = strings.TrimSuffix(rawURL, ".git")

	var path string
	if _, rest, ok := strings.Cut(rawURL, "://"); ok {
		_, p, ok := strings.Cut(rest, "/")
		if !ok {
			return "", false
		}
		path = p
	} else if _, p, ok := strings.Cut(rawURL, ":"); ok {
		// scp-like syntax
		path = p
	} else {
		return "", false
	}

	slug := Slug(strings.Trim(path, "/"))
	if !slug.Valid() {
		return "", false
	}

	return slug, true
}
