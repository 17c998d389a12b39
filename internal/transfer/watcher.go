package transfer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"swift-transfer/internal/logger"
)

const settleWindow = 2 * time.Second

// Watcher sends every new file that appears under a directory as its own
// transfer. A file is picked up once it has stopped changing for the settle
// window, so half-written files are not uploaded.
type Watcher struct {
	Uploader *Uploader
	Dir      string

	// Settle overrides the default settle window, mainly for tests.
	Settle time.Duration

	// OnSent receives the share URL for each transfer the watcher produced.
	OnSent func(name, shareURL string)

	mu      sync.Mutex
	pending map[string]time.Time
}

func (w *Watcher) settle() time.Duration {
	if w.Settle > 0 {
		return w.Settle
	}
	return settleWindow
}

// Run watches until ctx is cancelled. Upload errors are logged and the watch
// continues; only watcher-level failures end the loop.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.Dir)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(abs); err != nil {
		return err
	}
	logger.Infof("watching %s", abs)

	w.pending = make(map[string]time.Time)
	ticker := time.NewTicker(w.settle() / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.touch(ev.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("watch error: %v", err)
		case <-ticker.C:
			for _, path := range w.settled() {
				w.send(ctx, path)
			}
		}
	}
}

func (w *Watcher) touch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

func (w *Watcher) settled() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for path, last := range w.pending {
		if time.Since(last) >= w.settle() {
			delete(w.pending, path)
			out = append(out, path)
		}
	}
	return out
}

func (w *Watcher) send(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	sel, err := SelectFile(path)
	if err != nil {
		logger.Errorf("skip %s: %v", path, err)
		return
	}
	shareURL, err := w.Uploader.Send(ctx, []Selected{sel}, nil)
	if err != nil {
		logger.Errorf("send %s: %v", sel.Name, err)
		return
	}
	logger.Infof("sent %s: %s", sel.Name, shareURL)
	if w.OnSent != nil {
		w.OnSent(sel.Name, shareURL)
	}
}
