package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reload is sent each time the watched file changes. Err is set when the
// new contents could not be loaded; Config is then the zero value.
type Reload struct {
	Path   string
	Config HellTilesConfig
	Err    error
}

// Watcher reloads one config file whenever it is written. The directory is
// watched rather than the file so that editors replacing the file by rename
// keep being followed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	Reloads  chan Reload
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// Watch starts watching path.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	watcher := &Watcher{
		watcher:  w,
		path:     abs,
		debounce: 100 * time.Millisecond,
		Reloads:  make(chan Reload, 4),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Close stops the watcher and closes Reloads.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Reloads)
	})
	return err
}

// run reloads once the file has been quiet for the debounce period, so a
// truncate followed by a write yields a single reload of the full file.
func (w *Watcher) run() {
	defer close(w.done)
	quiet := time.NewTimer(time.Hour)
	quiet.Stop()
	defer quiet.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			quiet.Reset(w.debounce)
		case <-quiet.C:
			cfg, err := LoadFile(w.path)
			w.send(Reload{Path: w.path, Config: cfg, Err: err})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(Reload{Path: w.path, Err: fmt.Errorf("config: watch: %w", err)})
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) send(r Reload) {
	if r.Err != nil {
		r.Config = HellTilesConfig{}
	}
	select {
	case w.Reloads <- r:
	case <-w.closeCh:
	}
}
