package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/circleous/cistatus/internal/status"
	"github.com/circleous/cistatus/internal/statusbar"
	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

// Checker resolves the status report of a directory
type Checker interface {
	Check(ctx context.Context, dir string) status.Report
}

// Recorder stores the outcome of a check
type Recorder interface {
	Record(ctx context.Context, slug git.Slug, st ci.BuildStatus, checkedAt time.Time) error
}

// Options tune the Updater
type Options struct {
	// MaxWorker bounds concurrent checks, defaults to 1
	MaxWorker int
	// Debounce waits for events on a directory to settle, 0 checks at once
	Debounce time.Duration
	// Recorder is optional
	Recorder Recorder
}

// Updater keeps a status bar key in sync with the CI status of the files
// it is notified about
type Updater struct {
	ctx      context.Context
	checker  Checker
	bar      statusbar.Bar
	recorder Recorder
	debounce time.Duration
	sem      *semaphore.Weighted
	stat     updaterStat

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// NewUpdater creates an Updater. Checks stop being scheduled once ctx is
// done.
func NewUpdater(ctx context.Context, checker Checker, bar statusbar.Bar, opt Options) *Updater {
	if opt.MaxWorker < 1 {
		opt.MaxWorker = 1
	}

	return &Updater{
		ctx:      ctx,
		checker:  checker,
		bar:      bar,
		recorder: opt.Recorder,
		debounce: opt.Debounce,
		sem:      semaphore.NewWeighted(int64(opt.MaxWorker)),
		pending:  make(map[string]*time.Timer),
	}
}

func (u *Updater) FileOpened(path string)    { u.schedule(path) }
func (u *Updater) FileSaved(path string)     { u.schedule(path) }
func (u *Updater) FileActivated(path string) { u.schedule(path) }
func (u *Updater) FileClosed(path string)    { u.schedule(path) }

// Wait blocks until every scheduled check has finished
func (u *Updater) Wait() {
	u.wg.Wait()
}

// Stats returns a snapshot of the counters
func (u *Updater) Stats() Stats {
	return u.stat.snapshot()
}

func (u *Updater) schedule(path string) {
	// unsaved buffers can't be in a repository
	if path == "" {
		log.Debug().Msg("skipping unsaved file")
		return
	}
	if u.ctx.Err() != nil {
		return
	}

	dir := filepath.Dir(path)
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		dir = path
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if t, ok := u.pending[dir]; ok && t.Stop() {
		t.Reset(u.debounce)
		u.stat.increaseCollapsed()
		return
	}

	u.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(u.debounce, func() {
		defer u.wg.Done()

		u.mu.Lock()
		if u.pending[dir] == t {
			delete(u.pending, dir)
		}
		u.mu.Unlock()

		u.run(dir)
	})
	u.pending[dir] = t
}

func (u *Updater) run(dir string) {
	// Acquire succeeds on a done context while slots are free
	if err := u.ctx.Err(); err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("check cancelled")
		return
	}
	if err := u.sem.Acquire(u.ctx, 1); err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("check cancelled")
		return
	}
	defer u.sem.Release(1)
	if err := u.ctx.Err(); err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("check cancelled")
		return
	}

	rep := u.checker.Check(u.ctx, dir)
	if rep.Kind == status.KindCancelled {
		// the bar keeps whatever it showed before
		logReport(rep)
		return
	}
	u.stat.record(rep)

	logReport(rep)

	if err := statusbar.Apply(u.bar, statusbar.Key, rep); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("failed to update status bar")
	}

	if u.recorder != nil && rep.Slug != "" {
		err := u.recorder.Record(u.ctx, rep.Slug, rep.Status, time.Now())
		if err != nil {
			log.Error().Err(err).Str("slug", rep.Slug.String()).
				Msg("failed to record check")
		}
	}
}

func logReport(rep status.Report) {
	ev := log.Debug().Str("dir", rep.Dir).Str("kind", rep.Kind.String())
	if rep.Slug != "" {
		ev = ev.Str("slug", rep.Slug.String())
	}
	if rep.Err != nil {
		ev = ev.Err(rep.Err)
	}
	ev.Str("status", rep.Status.String()).Msg("checked")
}
