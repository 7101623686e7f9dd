package configbp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/go-srpc/srpc/log"
)

// DefaultFSEventsDelay debounces a burst of filesystem events (common when a
// ConfigMap remount touches several files at once) before reloading.
const DefaultFSEventsDelay = 1 * time.Second

// Watcher holds the most recently loaded Config and keeps it current by
// watching its backing file for changes.
type Watcher struct {
	current atomic.Value

	ctx    context.Context
	cancel context.CancelFunc
}

// Get returns the most recently loaded Config.
func (w *Watcher) Get() Config {
	return w.current.Load().(Config)
}

// Stop stops watching. Get continues to return the last loaded Config.
// Safe to call more than once.
func (w *Watcher) Stop() {
	w.cancel()
}

func load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("configbp: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// NewWatcher loads path once synchronously, then starts a background
// goroutine that reloads it whenever fsnotify reports the file (or its
// parent directory, to catch atomic renames) changing. logger receives
// reload failures; the caller keeps using the last good Config on a failed
// reload.
func NewWatcher(ctx context.Context, path string, logger log.Wrapper) (*Watcher, error) {
	if logger == nil {
		logger = log.NopWrapper
	}

	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("configbp: %w", err)
	}
	for _, p := range []string{filepath.Dir(path), path} {
		if err := fw.Add(p); err != nil {
			fw.Close()
			return nil, fmt.Errorf("configbp: watching %q: %w", p, err)
		}
	}

	w := &Watcher{}
	w.current.Store(cfg)
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.loop(fw, path, logger)
	return w, nil
}

func (w *Watcher) loop(fw *fsnotify.Watcher, path string, logger log.Wrapper) {
	reload := func() {
		cfg, err := load(path)
		if err != nil {
			logger(context.Background(), "configbp: reload failed: "+err.Error())
			return
		}
		w.current.Store(cfg)
	}

	var timer *time.Timer
	for {
		select {
		case <-w.ctx.Done():
			fw.Close()
			if timer != nil {
				timer.Stop()
			}
			return

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger(context.Background(), "configbp: watcher error: "+err.Error())

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			switch ev.Op {
			case fsnotify.Create, fsnotify.Write, fsnotify.Rename, fsnotify.Remove:
				if timer == nil {
					timer = time.AfterFunc(DefaultFSEventsDelay, reload)
				} else {
					timer.Reset(DefaultFSEventsDelay)
				}
			}
		}
	}
}
