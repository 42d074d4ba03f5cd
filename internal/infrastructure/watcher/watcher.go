// Package watcher turns files dropped into a directory into dispatcher jobs.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/scheduler"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ErrAlreadyStarted is returned by a second Start
var ErrAlreadyStarted = errors.New("watcher already started")

// Queue receives debounced jobs. The watcher owns its lifecycle.
type Queue interface {
	Start(ctx context.Context) error
	Submit(job scheduler.Job) error
	Stop(ctx context.Context) error
}

// KeyFunc derives the serialization key of a file, usually its source name.
type KeyFunc func(path string) string

// Config holds watcher settings
type Config struct {
	Dir       string
	Extension string
	Debounce  time.Duration
}

// Watcher watches one directory. Files already present are queued at start;
// created or written files are queued once they have been quiet for Debounce.
type Watcher struct {
	cfg    Config
	queue  Queue
	keyFor KeyFunc
	logger *zap.Logger

	fs      *fsnotify.Watcher
	loopWG  sync.WaitGroup
	running atomic.Bool

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher. A nil keyFor keys jobs by file name.
func New(cfg Config, queue Queue, keyFor KeyFunc, logger *zap.Logger) *Watcher {
	if cfg.Extension == "" {
		cfg.Extension = ".csv"
	}
	if keyFor == nil {
		keyFor = filepath.Base
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		cfg:    cfg,
		queue:  queue,
		keyFor: keyFor,
		logger: logger.With(zap.String("dir", cfg.Dir)),
		timers: make(map[string]*time.Timer),
	}
}

// Start starts the queue, subscribes to the directory and queues existing files.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.running.CAS(false, true) {
		return ErrAlreadyStarted
	}

	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		w.running.Store(false)
		return fmt.Errorf("failed to create watch directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.running.Store(false)
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(w.cfg.Dir); err != nil {
		_ = fsw.Close()
		w.running.Store(false)
		return fmt.Errorf("failed to watch %s: %w", w.cfg.Dir, err)
	}

	if err := w.queue.Start(ctx); err != nil {
		_ = fsw.Close()
		w.running.Store(false)
		return err
	}
	w.fs = fsw

	w.loopWG.Add(1)
	go w.loop(fsw)

	existing, err := w.existingFiles()
	if err != nil {
		w.logger.Warn("Failed to list existing files", zap.Error(err))
	}
	for _, path := range existing {
		w.submit(path)
	}

	w.logger.Info("Watcher started",
		zap.String("extension", w.cfg.Extension),
		zap.Duration("debounce", w.cfg.Debounce),
		zap.Int("existing_files", len(existing)),
	)
	return nil
}

// Stop stops intake, cancels pending debounce timers and drains the queue.
func (w *Watcher) Stop(ctx context.Context) error {
	if !w.running.CAS(true, false) {
		return nil
	}

	closeErr := w.fs.Close()
	w.loopWG.Wait()

	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	if err := w.queue.Stop(ctx); err != nil {
		return err
	}
	w.logger.Info("Watcher stopped")
	return closeErr
}

// Matches reports whether a path is an export file the watcher should queue.
func (w *Watcher) Matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), w.cfg.Extension)
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	defer w.loopWG.Done()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if w.Matches(event.Name) {
				w.schedule(event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the debounce timer of path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running.Load() {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.cfg.Debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.fire(path)
	})
}

func (w *Watcher) fire(path string) {
	if !w.running.Load() {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	w.submit(path)
}

func (w *Watcher) submit(path string) {
	job := scheduler.Job{Key: w.keyFor(path), Path: path, EnqueuedAt: time.Now()}

	err := w.queue.Submit(job)
	switch {
	case err == nil:
		w.logger.Debug("File queued", zap.String("file", path), zap.String("key", job.Key))
	case errors.Is(err, scheduler.ErrQueueFull):
		w.logger.Warn("Queue full, retrying after debounce", zap.String("file", path))
		w.schedule(path)
	default:
		w.logger.Warn("File not queued", zap.String("file", path), zap.Error(err))
	}
}

func (w *Watcher) existingFiles() ([]string, error) {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && w.Matches(e.Name()) {
			files = append(files, filepath.Join(w.cfg.Dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
