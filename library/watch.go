package library

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"goamp/player"
)

// Watcher reports playable files appearing in or vanishing from watched
// folders. Callbacks run on the watcher's goroutine and must not block.
type Watcher struct {
	w        *fsnotify.Watcher
	onAdd    func(path string)
	onRemove func(path string)
}

// NewWatcher creates a Watcher delivering events to the given callbacks.
func NewWatcher(onAdd, onRemove func(string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{w: fw, onAdd: onAdd, onRemove: onRemove}
	go w.run()
	return w, nil
}

// Add starts watching dir.
func (w *Watcher) Add(dir string) error {
	return w.w.Add(dir)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.w.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !player.Supported(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				w.onAdd(ev.Name)
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				w.onRemove(ev.Name)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			slog.Warn("folder watch error", "error", err)
		}
	}
}
