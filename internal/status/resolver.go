package status

import (
	"context"
	"fmt"

	"github.com/circleous/cistatus/internal/config"
	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

// Opener opens a url, usually in a browser
type Opener interface {
	Open(url string) error
}

// Resolver turns a directory into a CI build status. It keeps no mutable
// state, concurrent calls are safe.
type Resolver struct {
	lookup git.Lookup
	svc    ci.Service
	conf   config.Config
}

// New creates a Resolver. conf is copied and must not change afterwards.
func New(lookup git.Lookup, svc ci.Service, conf *config.Config) *Resolver {
	return &Resolver{
		lookup: lookup,
		svc:    svc,
		conf:   *conf,
	}
}

// ResolveRepoSlug derives the slug from the fetch url of remote for the
// repository containing dir
func (r *Resolver) ResolveRepoSlug(ctx context.Context, dir string, remote git.RemoteName) SlugResult {
	res := SlugResult{Remote: remote}

	fetchURL, err := r.lookup.FetchURL(ctx, dir, remote)
	if err != nil {
		res.Kind, res.Err = kindOf(ctx, err), err
		return res
	}

	slug, ok := git.SlugFromURL(fetchURL)
	if !ok {
		res.Kind = KindEmpty
		res.Err = fmt.Errorf("no slug in fetch url %q", fetchURL)
		return res
	}

	res.Slug = slug
	return res
}

// ResolveEffectiveSlug resolves the local slug against defaultRemote and,
// when overrides name another remote for it, resolves against that remote
// instead
func (r *Resolver) ResolveEffectiveSlug(ctx context.Context, dir string, defaultRemote git.RemoteName,
	overrides config.RepoOverrides) SlugResult {
	local := r.ResolveRepoSlug(ctx, dir, defaultRemote)
	if !local.OK() {
		return local
	}

	remote, ok := overrides.Remote(local.Slug)
	if !ok {
		return local
	}

	return r.ResolveRepoSlug(ctx, dir, remote)
}

// ResolveStatus makes a single provider query for slug
func (r *Resolver) ResolveStatus(ctx context.Context, slug git.Slug) StatusResult {
	info, err := r.svc.RepoInfo(ctx, slug)
	if err != nil {
		return StatusResult{Kind: kindOf(ctx, err), Err: err}
	}

	if info.Status == ci.StatusUnknown {
		return StatusResult{Kind: KindEmpty}
	}

	return StatusResult{Status: info.Status}
}

// FormatLabel builds the status bar label, there is none for StatusUnknown
func FormatLabel(status ci.BuildStatus, prefix, passing, failing string) (string, bool) {
	switch status {
	case ci.StatusPassing:
		return prefix + passing, true
	case ci.StatusFailing:
		return prefix + failing, true
	default:
		return "", false
	}
}

// Check resolves the effective slug of dir, its status and label
func (r *Resolver) Check(ctx context.Context, dir string) Report {
	rep := Report{Dir: dir}

	slug := r.ResolveEffectiveSlug(ctx, dir, git.RemoteName(r.conf.DefaultRemote), r.conf.Repos)
	if !slug.OK() {
		rep.Kind, rep.Err = slug.Kind, slug.Err
		return rep
	}
	rep.Slug = slug.Slug

	st := r.ResolveStatus(ctx, slug.Slug)
	rep.Status, rep.Kind, rep.Err = st.Status, st.Kind, st.Err

	rep.Label, rep.Shown = FormatLabel(st.Status, r.conf.StatusPrefix,
		r.conf.StatusPassing, r.conf.StatusFailing)

	return rep
}

// ShowBuild opens the build page of dir's effective slug, but only once the
// provider confirmed it tracks the repository
func (r *Resolver) ShowBuild(ctx context.Context, dir string, opener Opener) BuildPage {
	var page BuildPage

	slug := r.ResolveEffectiveSlug(ctx, dir, git.RemoteName(r.conf.DefaultRemote), r.conf.Repos)
	if !slug.OK() {
		page.Kind, page.Err = slug.Kind, slug.Err
		return page
	}
	page.Slug = slug.Slug
	page.URL = r.svc.BuildURL(slug.Slug)

	info, err := r.svc.RepoInfo(ctx, slug.Slug)
	if err != nil {
		page.Kind, page.Err = kindOf(ctx, err), err
		return page
	}
	if !info.Known {
		page.Kind = KindRepositoryUnknown
		page.Err = fmt.Errorf("%w: %s", ci.ErrRepositoryUnknown, slug.Slug)
		return page
	}

	if err := opener.Open(page.URL); err != nil {
		page.Err = fmt.Errorf("open %s: %w", page.URL, err)
		return page
	}
	page.Opened = true

	return page
}

// Provider returns the kind of the configured CI provider
func (r *Resolver) Provider() string {
	return r.svc.Kind()
}
