package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads a TOML configuration file, re-publishing the decoded
// Options to onChange whenever the file is written. Grounded on the watch
// event loop of the teacher's asset hot-reload (fsnotify.Events/Errors select
// loop, done channel, sync.Once close).
type Watcher struct {
	path     string
	onChange func(Options)
	fsnotify *fsnotify.Watcher
	done     chan struct{}
	closeOnce sync.Once
}

// Watch starts watching path for writes, invoking onChange with the freshly
// decoded Options each time the file changes. The returned Watcher must be
// closed to stop the background goroutine.
func Watch(path string, onChange func(Options)) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(path); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			opts, err := Load(w.path)
			if err != nil {
				logger.Error("reload failed, keeping previous configuration", "err", err)
				continue
			}
			w.onChange(opts)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			logger.Error("watch error", "err", err)

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

// Close stops the watcher's background goroutine. Safe to call more than once.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
	})
}
