package lifecycle

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher turns filesystem events into Notifier calls, standing in for an
// editor
type Watcher struct {
	w *fsnotify.Watcher
	n Notifier
}

// NewWatcher watches every path in paths, directories are not recursed
func NewWatcher(n Notifier, paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := w.Add(p); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
		log.Debug().Str("path", p).Msg("watching")
	}

	return &Watcher{w: w, n: n}, nil
}

// Run dispatches events until ctx is done and closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			dispatch(w.n, ev)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}

func dispatch(n Notifier, ev fsnotify.Event) {
	switch {
	case ev.Op&fsnotify.Create != 0:
		n.FileOpened(ev.Name)
	case ev.Op&fsnotify.Write != 0:
		n.FileSaved(ev.Name)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		n.FileClosed(ev.Name)
	case ev.Op&fsnotify.Chmod != 0:
		n.FileActivated(ev.Name)
	}
}
