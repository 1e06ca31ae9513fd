package statusbar

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/circleous/cistatus/internal/status"
)

// Key anchors the CI label among other status items
const Key = "cistatus"

// Bar is a status bar holding one label per key
type Bar interface {
	Set(key, label string) error
	Erase(key string) error
}

// Apply shows the label of rep, or clears key when there is no definitive
// status
func Apply(bar Bar, key string, rep status.Report) error {
	if !rep.Shown {
		return bar.Erase(key)
	}
	return bar.Set(key, rep.Label)
}

// WriterBar prints every change as a "key: label" line
type WriterBar struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterBar creates a WriterBar writing to w
func NewWriterBar(w io.Writer) *WriterBar {
	return &WriterBar{w: w}
}

func (b *WriterBar) Set(key, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := fmt.Fprintf(b.w, "%s: %s\n", key, label)
	return err
}

func (b *WriterBar) Erase(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := fmt.Fprintf(b.w, "%s: -\n", key)
	return err
}

// FileBar keeps the current label of every key in a file, one per line, so
// tmux or polybar can read it. Keys are written in insertion order.
type FileBar struct {
	mu     sync.Mutex
	path   string
	keys   []string
	labels map[string]string
}

// NewFileBar creates a FileBar writing to path
func NewFileBar(path string) *FileBar {
	return &FileBar{
		path:   path,
		labels: make(map[string]string),
	}
}

func (b *FileBar) Set(key, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.labels[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.labels[key] = label

	return b.flush()
}

func (b *FileBar) Erase(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.labels[key]; ok {
		delete(b.labels, key)
		for i, k := range b.keys {
			if k == key {
				b.keys = append(b.keys[:i], b.keys[i+1:]...)
				break
			}
		}
	}

	return b.flush()
}

// flush rewrites the whole file through a rename so readers never see a
// partial write
func (b *FileBar) flush() error {
	tmp := b.path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	for _, k := range b.keys {
		if _, err := fmt.Fprintln(f, b.labels[k]); err != nil {
			f.Close()
			return err
		}
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, b.path)
}
