package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Norgate-AV/fader/internal/timing"
)

// Watcher reloads a configuration file whenever it changes on disk. A reload
// that fails to read or decode is reported on Errors and the previous
// configuration stays in effect.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	errChan  chan error

	mu       sync.Mutex
	onChange []func(*Config)
	timer    *time.Timer
	done     chan struct{}
}

// NewWatcher creates a watcher for the file at path
func NewWatcher(path string) *Watcher {
	return &Watcher{
		path:     path,
		debounce: timing.ConfigReloadDebounce,
		errChan:  make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// OnChange registers a callback invoked with every successfully reloaded config
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.onChange = append(w.onChange, cb)
}

// Errors returns a channel for receiving errors that occur during watching
func (w *Watcher) Errors() <-chan error {
	return w.errChan
}

// Start watches the directory containing the file until ctx is cancelled or
// Close is called
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Editors replace files by rename, so watch the directory
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	w.watcher = watcher
	go w.loop(ctx)

	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.stopTimer()
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.report(fmt.Errorf("reload config: %w", err))
		return
	}

	w.mu.Lock()
	callbacks := append([]func(*Config){}, w.onChange...)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errChan <- err:
	default:
	}
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}

	err := w.watcher.Close()
	<-w.done
	w.stopTimer()

	return err
}
