package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// sourceExts are the extensions that trigger a rerun when they change next
// to a watched input, so edits to included headers are picked up too.
var sourceExts = map[string]bool{".h": true, ".c": true, ".hh": true, ".hpp": true}

// watcher reruns an extraction whenever an input file, or a C source
// beside one, changes. Bursts of events are collapsed into a single run.
type watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	run      func(ctx context.Context) error
	status   io.Writer
}

func newWatcher(files []string, run func(ctx context.Context) error, status io.Writer) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		debounce: 300 * time.Millisecond,
		run:      run,
		status:   status,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolving path %q: %w", f, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

func (w *watcher) Close() error {
	return w.fsw.Close()
}

// Watch blocks until ctx is done. Failed reruns are reported to status and
// watching continues.
func (w *watcher) Watch(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			fmt.Fprintln(w.status, "Change detected, extracting again")
			if err := w.run(ctx); err != nil {
				fmt.Fprintf(w.status, "Error: %s\n", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("cdecl: watch: %v", err)
		}
	}
}

func (w *watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	if w.files[event.Name] {
		return true
	}
	return sourceExts[filepath.Ext(event.Name)]
}
