package lifecycle_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleous/cistatus/internal/lifecycle"
	"github.com/circleous/cistatus/internal/status"
	"github.com/circleous/cistatus/internal/statusbar"
	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

type fakeChecker struct {
	mu   sync.Mutex
	dirs []string
	rep  status.Report
}

func (f *fakeChecker) Check(_ context.Context, dir string) status.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs = append(f.dirs, dir)
	rep := f.rep
	rep.Dir = dir
	return rep
}

func (f *fakeChecker) checked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dirs...)
}

type fakeRecorder struct {
	mu    sync.Mutex
	slugs []git.Slug
}

func (f *fakeRecorder) Record(_ context.Context, slug git.Slug, _ ci.BuildStatus, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slugs = append(f.slugs, slug)
	return nil
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func TestUpdaterSetsLabel(t *testing.T) {
	dir := t.TempDir()
	checker := &fakeChecker{rep: status.Report{
		Slug: "circleous/cistatus", Status: ci.StatusPassing, Label: "Travis: Passing", Shown: true,
	}}
	rec := &fakeRecorder{}
	var buf bytes.Buffer

	u := lifecycle.NewUpdater(context.Background(), checker, statusbar.NewWriterBar(&buf),
		lifecycle.Options{MaxWorker: 2, Recorder: rec})

	u.FileOpened(touch(t, dir, "main.go"))
	u.Wait()

	assert.Equal(t, []string{dir}, checker.checked())
	assert.Equal(t, "cistatus: Travis: Passing\n", buf.String())
	assert.Equal(t, []git.Slug{"circleous/cistatus"}, rec.slugs)

	stats := u.Stats()
	assert.Equal(t, uint(1), stats.Checks)
	assert.Equal(t, uint(1), stats.Passing)
}

func TestUpdaterClearsWithoutStatus(t *testing.T) {
	checker := &fakeChecker{rep: status.Report{Kind: status.KindNotARepository}}
	rec := &fakeRecorder{}
	var buf bytes.Buffer

	u := lifecycle.NewUpdater(context.Background(), checker, statusbar.NewWriterBar(&buf),
		lifecycle.Options{Recorder: rec})

	u.FileActivated(t.TempDir())
	u.Wait()

	assert.Equal(t, "cistatus: -\n", buf.String())
	assert.Empty(t, rec.slugs)
	assert.Equal(t, uint(1), u.Stats().Cleared)
}

func TestUpdaterSkipsUnsaved(t *testing.T) {
	checker := &fakeChecker{}
	var buf bytes.Buffer

	u := lifecycle.NewUpdater(context.Background(), checker, statusbar.NewWriterBar(&buf),
		lifecycle.Options{})
	u.FileSaved("")
	u.Wait()

	assert.Empty(t, checker.checked())
	assert.Empty(t, buf.String())
}

func TestUpdaterDebounce(t *testing.T) {
	dir := t.TempDir()
	file := touch(t, dir, "main.go")
	other := t.TempDir()
	checker := &fakeChecker{rep: status.Report{Shown: true, Label: "x"}}

	u := lifecycle.NewUpdater(context.Background(), checker, statusbar.NewWriterBar(&bytes.Buffer{}),
		lifecycle.Options{Debounce: 200 * time.Millisecond})

	for i := 0; i < 5; i++ {
		u.FileSaved(file)
	}
	u.FileClosed(filepath.Join(other, "gone.go"))
	u.Wait()

	assert.ElementsMatch(t, []string{dir, other}, checker.checked())
	assert.Equal(t, uint(4), u.Stats().Collapsed)
}

func TestUpdaterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := &fakeChecker{}
	u := lifecycle.NewUpdater(ctx, checker, statusbar.NewWriterBar(&bytes.Buffer{}),
		lifecycle.Options{})
	u.FileOpened(touch(t, t.TempDir(), "main.go"))
	u.Wait()

	assert.Empty(t, checker.checked())
}

func TestUpdaterCancelledWhilePending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	checker := &fakeChecker{rep: status.Report{Kind: status.KindNotARepository}}
	var buf bytes.Buffer
	u := lifecycle.NewUpdater(ctx, checker, statusbar.NewWriterBar(&buf),
		lifecycle.Options{Debounce: 100 * time.Millisecond})

	u.FileActivated(t.TempDir())
	cancel()
	u.Wait()

	assert.Empty(t, checker.checked())
	assert.Empty(t, buf.String())
	assert.Zero(t, u.Stats().Checks)
	assert.Zero(t, u.Stats().Cleared)
}

func TestUpdaterKeepsBarOnCancelledCheck(t *testing.T) {
	checker := &fakeChecker{rep: status.Report{Slug: "circleous/cistatus", Kind: status.KindCancelled}}
	rec := &fakeRecorder{}
	var buf bytes.Buffer
	u := lifecycle.NewUpdater(context.Background(), checker, statusbar.NewWriterBar(&buf),
		lifecycle.Options{Recorder: rec})

	u.FileSaved(touch(t, t.TempDir(), "main.go"))
	u.Wait()

	assert.Len(t, checker.checked(), 1)
	assert.Empty(t, buf.String())
	assert.Empty(t, rec.slugs)
	assert.Zero(t, u.Stats().Checks)
}
