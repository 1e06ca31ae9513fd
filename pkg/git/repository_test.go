package git_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleous/cistatus/pkg/git"
)

const remoteShowOutput = `* remote origin
  Fetch URL: git@github.com:circleous/cistatus.git
  Push  URL: git@github.com:circleous/cistatus.git
  HEAD branch: main
  Remote branch:
    main tracked
`

func TestSlugFromURL(t *testing.T) {
	cases := []struct {
		url  string
		slug git.Slug
		ok   bool
	}{
		{"https://github.com/circleous/cistatus.git", "circleous/cistatus", true},
		{"http://github.com/circleous/cistatus.git", "circleous/cistatus", true},
		{"ssh://git@github.com:22/circleous/cistatus.git", "circleous/cistatus", true},
		{"git@github.com:circleous/cistatus.git", "circleous/cistatus", true},
		{"git://example.org/group/sub/project.git", "group/sub/project", true},
		{"  https://github.com/owner/git.git\n", "owner/git", true},
		{"https://github.com/circleous/cistatus", "", false},
		{"https://github.com/cistatus.git", "", false},
		{"https://github.com.git", "", false},
		{"/srv/repos/project.git", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		slug, ok := git.SlugFromURL(c.url)
		assert.Equal(t, c.ok, ok, c.url)
		assert.Equal(t, c.slug, slug, c.url)
	}
}

func TestParseFetchURL(t *testing.T) {
	u, ok := git.ParseFetchURL(remoteShowOutput)
	require.True(t, ok)
	assert.Equal(t, "git@github.com:circleous/cistatus.git", u)

	_, ok = git.ParseFetchURL("* remote origin\n  HEAD branch: main\n")
	assert.False(t, ok)

	_, ok = git.ParseFetchURL("  Fetch URL:\n")
	assert.False(t, ok)
}

func TestSlugParts(t *testing.T) {
	s := git.Slug("circleous/cistatus")
	assert.Equal(t, "circleous", s.Owner())
	assert.Equal(t, "cistatus", s.Name())
	assert.True(t, s.Valid())

	assert.False(t, git.Slug("cistatus").Valid())
	assert.False(t, git.Slug("https://github.com/a").Valid())
	assert.False(t, git.Slug("a//b").Valid())
}

func fakeRunner(stdout, stderr string, err error) (git.Runner, *[]string) {
	var got []string
	return func(_ context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
		got = append([]string{dir, name}, args...)
		return []byte(stdout), []byte(stderr), err
	}, &got
}

func TestCommandLookup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	run, got := fakeRunner(remoteShowOutput, "", nil)
	l := &git.CommandLookup{Run: run}

	u, err := l.FetchURL(ctx, dir, "upstream")
	require.NoError(t, err)
	assert.Equal(t, "git@github.com:circleous/cistatus.git", u)
	assert.Equal(t, []string{dir, "git", "remote", "show", "upstream"}, *got)
}

func TestCommandLookupFailures(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	run, _ := fakeRunner("", "fatal: not a git repository (or any of the parent directories): .git\n",
		errors.New("exit status 128"))
	_, err := (&git.CommandLookup{Run: run}).FetchURL(ctx, dir, git.DefaultRemote)
	assert.ErrorIs(t, err, git.ErrNotARepository)

	run, _ = fakeRunner("", "fatal: 'nope' does not appear to be a git repository\n",
		errors.New("exit status 128"))
	_, err = (&git.CommandLookup{Run: run}).FetchURL(ctx, dir, "nope")
	assert.ErrorIs(t, err, git.ErrRemoteNotFound)

	run, _ = fakeRunner("* remote origin\n", "", nil)
	_, err = (&git.CommandLookup{Run: run}).FetchURL(ctx, dir, git.DefaultRemote)
	assert.ErrorIs(t, err, git.ErrRemoteNotFound)

	called := false
	l := &git.CommandLookup{Run: func(context.Context, string, string, ...string) ([]byte, []byte, error) {
		called = true
		return nil, nil, nil
	}}
	_, err = l.FetchURL(ctx, dir+"/missing", git.DefaultRemote)
	assert.ErrorIs(t, err, git.ErrNotARepository)
	assert.False(t, called)
}

func TestCommandLookupMissingBinary(t *testing.T) {
	l := &git.CommandLookup{Binary: "git-binary-that-does-not-exist"}
	_, err := l.FetchURL(context.Background(), t.TempDir(), git.DefaultRemote)
	require.Error(t, err)
	assert.False(t, errors.Is(err, git.ErrNotARepository))
	assert.False(t, errors.Is(err, git.ErrRemoteNotFound))
}

func TestCommandLookupCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, _ := fakeRunner("", "", errors.New("signal: killed"))
	_, err := (&git.CommandLookup{Run: run}).FetchURL(ctx, t.TempDir(), git.DefaultRemote)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, git.ErrRemoteNotFound))
}
